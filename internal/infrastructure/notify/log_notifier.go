package notify

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

var _ ports.Notifier = (*LogNotifier)(nil)

// LogNotifier solo registra el cambio (desarrollo).
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &LogNotifier{log: log.Named("notify")}
}

func (n *LogNotifier) NotifyPriceChange(_ context.Context, p *entity.Product, oldPrice decimal.Decimal) error {
	msg := newPriceChange(p, oldPrice)
	n.log.Info().
		Str("product_id", msg.ProductID).
		Str("old_price", msg.OldPrice.String()).
		Str("new_price", msg.NewPrice.String()).
		Msg("precio " + msg.Direction())
	return nil
}
