package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// Notifier envía el aviso de cambio de precio de un producto.
// Se invoca fuera del ciclo petición-respuesta; su error solo se registra.
type Notifier interface {
	NotifyPriceChange(ctx context.Context, product *entity.Product, oldPrice decimal.Decimal) error
}
