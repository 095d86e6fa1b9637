package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

var _ ports.Notifier = (*SMTPNotifier)(nil)

// RecipientSource entrega los emails de los usuarios de un rol.
type RecipientSource interface {
	ListEmailsByRole(ctx context.Context, role string) ([]string, error)
}

// mailSender subconjunto de *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

var priceTemplate = template.Must(template.New("price").Parse(`<h2>{{.Name}}</h2>
<p>El precio {{.Direction}}: <s>{{.OldPrice.StringFixed 2}}</s> &rarr; <strong>{{.NewPrice.StringFixed 2}}</strong></p>
{{if .ImageURL}}<p><img src="{{.ImageURL}}" alt="{{.Name}}" width="240"></p>{{end}}`))

// SMTPNotifier envía un email a todos los clientes (en copia oculta).
type SMTPNotifier struct {
	sender     mailSender
	from       string
	recipients RecipientSource
	log        *logger.Logger
}

// NewSMTPNotifier construye el notificador sobre un gomail.Dialer.
func NewSMTPNotifier(cfg config.MailConfig, recipients RecipientSource, log *logger.Logger) *SMTPNotifier {
	return newSMTPNotifier(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From, recipients, log)
}

func newSMTPNotifier(sender mailSender, from string, recipients RecipientSource, log *logger.Logger) *SMTPNotifier {
	if log == nil {
		log = logger.Nop()
	}
	return &SMTPNotifier{sender: sender, from: from, recipients: recipients, log: log.Named("notify.smtp")}
}

func (n *SMTPNotifier) NotifyPriceChange(ctx context.Context, p *entity.Product, oldPrice decimal.Decimal) error {
	to, err := n.recipients.ListEmailsByRole(ctx, entity.RoleClient)
	if err != nil {
		return fmt.Errorf("destinatarios: %w", err)
	}
	if len(to) == 0 {
		n.log.Debug().Str("product_id", p.ID).Msg("sin clientes a notificar")
		return nil
	}

	msg := newPriceChange(p, oldPrice)
	var body bytes.Buffer
	if err := priceTemplate.Execute(&body, msg); err != nil {
		return fmt.Errorf("plantilla: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.from)
	m.SetHeader("Bcc", to...)
	m.SetHeader("Subject", fmt.Sprintf("El precio de %s %s", msg.Name, msg.Direction()))
	m.SetBody("text/html", body.String())

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("enviar email: %w", err)
	}
	n.log.Info().Str("product_id", p.ID).Int("recipients", len(to)).Msg("aviso de precio enviado")
	return nil
}
