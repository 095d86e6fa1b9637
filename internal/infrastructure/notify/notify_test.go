package notify

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

func product() *entity.Product {
	return &entity.Product{
		ID:        "p1",
		Name:      "Zapatilla",
		Price:     decimal.NewFromInt(80),
		Image:     &entity.ImageRef{URL: "https://cdn/x.jpg"},
		UpdatedAt: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

type staticRecipients struct {
	emails []string
	err    error
	role   string
}

func (s *staticRecipients) ListEmailsByRole(_ context.Context, role string) ([]string, error) {
	s.role = role
	return s.emails, s.err
}

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func TestSMTP_SendsToClientsInBcc(t *testing.T) {
	sender := &captureSender{}
	rec := &staticRecipients{emails: []string{"a@t.com", "b@t.com"}}
	n := newSMTPNotifier(sender, "tienda@t.com", rec, nil)

	err := n.NotifyPriceChange(context.Background(), product(), decimal.NewFromInt(100))

	require.NoError(t, err)
	assert.Equal(t, entity.RoleClient, rec.role)
	require.Len(t, sender.sent, 1)
	m := sender.sent[0]
	assert.Equal(t, []string{"a@t.com", "b@t.com"}, m.GetHeader("Bcc"))
	subject := m.GetHeader("Subject")
	require.Len(t, subject, 1)
	// gomail guarda el asunto codificado (RFC 2047) cuando lleva caracteres no ASCII.
	decoded, err := new(mime.WordDecoder).DecodeHeader(subject[0])
	require.NoError(t, err)
	assert.Equal(t, "El precio de Zapatilla bajó", decoded)

	var raw bytes.Buffer
	_, err = m.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "100.00")
	assert.Contains(t, raw.String(), "80.00")
}

func TestSMTP_NoRecipientsSkipsSend(t *testing.T) {
	sender := &captureSender{}
	n := newSMTPNotifier(sender, "tienda@t.com", &staticRecipients{}, nil)

	require.NoError(t, n.NotifyPriceChange(context.Background(), product(), decimal.NewFromInt(1)))
	assert.Empty(t, sender.sent)
}

func TestSMTP_Errors(t *testing.T) {
	n := newSMTPNotifier(&captureSender{}, "x@t.com", &staticRecipients{err: errors.New("db")}, nil)
	assert.Error(t, n.NotifyPriceChange(context.Background(), product(), decimal.Zero))

	n = newSMTPNotifier(&captureSender{err: errors.New("smtp 550")}, "x@t.com", &staticRecipients{emails: []string{"a@t.com"}}, nil)
	assert.Error(t, n.NotifyPriceChange(context.Background(), product(), decimal.Zero))
}

type capturePublish struct {
	in *sns.PublishInput
}

func (c *capturePublish) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	c.in = in
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestSNS_PublishesJSONEvent(t *testing.T) {
	client := &capturePublish{}
	n := NewSNSNotifier(client, config.NotifierConfig{SNSTopicARN: "arn:aws:sns:us-east-1:000000000000:precios"})

	require.NoError(t, n.NotifyPriceChange(context.Background(), product(), decimal.NewFromInt(60)))

	require.NotNil(t, client.in)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:precios", aws.ToString(client.in.TopicArn))
	var msg PriceChange
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.in.Message)), &msg))
	assert.Equal(t, EventPriceChanged, msg.Event)
	assert.Equal(t, "p1", msg.ProductID)
	assert.True(t, msg.OldPrice.Equal(decimal.NewFromInt(60)))
	assert.True(t, msg.NewPrice.Equal(decimal.NewFromInt(80)))
	assert.Equal(t, "subió", msg.Direction())
	assert.Equal(t, EventPriceChanged, aws.ToString(client.in.MessageAttributes["event"].StringValue))
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "info", Output: &buf})

	require.NoError(t, NewLogNotifier(log).NotifyPriceChange(context.Background(), product(), decimal.NewFromInt(100)))

	assert.Contains(t, buf.String(), `"product_id":"p1"`)
	assert.Contains(t, buf.String(), "precio bajó")
}

func TestNew_SelectsChannel(t *testing.T) {
	cfg := &config.Config{}
	n, err := New(context.Background(), cfg, &staticRecipients{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)

	cfg.Notifier.Kind = "smtp"
	n, err = New(context.Background(), cfg, &staticRecipients{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SMTPNotifier{}, n)

	cfg.Notifier.Kind = "fax"
	_, err = New(context.Background(), cfg, &staticRecipients{}, nil)
	assert.Error(t, err)
}
