package notify

import (
	"context"
	"fmt"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// New elige el canal según NOTIFIER (smtp | sns | log).
func New(ctx context.Context, cfg *config.Config, recipients RecipientSource, log *logger.Logger) (ports.Notifier, error) {
	switch cfg.Notifier.Kind {
	case "smtp":
		return NewSMTPNotifier(cfg.Mail, recipients, log), nil
	case "sns":
		client, err := NewSNSClient(ctx, cfg.Storage.Region, cfg.Notifier.SNSEndpoint)
		if err != nil {
			return nil, err
		}
		return NewSNSNotifier(client, cfg.Notifier), nil
	case "", "log":
		return NewLogNotifier(log), nil
	default:
		return nil, fmt.Errorf("notificador desconocido: %q", cfg.Notifier.Kind)
	}
}
