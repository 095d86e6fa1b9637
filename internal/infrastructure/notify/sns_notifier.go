package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/pkg/config"
)

var _ ports.Notifier = (*SNSNotifier)(nil)

type snsAPI interface {
	Publish(ctx context.Context, in *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publica el evento en un tópico; los suscriptores deciden cómo avisar.
type SNSNotifier struct {
	client   snsAPI
	topicARN string
}

// NewSNSClient construye el cliente SNS. Con endpoint propio (localstack) usa credenciales de prueba.
func NewSNSClient(ctx context.Context, region, endpoint string) (*sns.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cargar config AWS: %w", err)
	}
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			if o.Region == "" {
				o.Region = "us-east-1"
			}
			o.Credentials = credentials.NewStaticCredentialsProvider("test", "test", "")
		}
	}), nil
}

// NewSNSNotifier construye el notificador.
func NewSNSNotifier(client snsAPI, cfg config.NotifierConfig) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: cfg.SNSTopicARN}
}

func (n *SNSNotifier) NotifyPriceChange(ctx context.Context, p *entity.Product, oldPrice decimal.Decimal) error {
	payload, err := json.Marshal(newPriceChange(p, oldPrice))
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"content-type": {DataType: aws.String("String"), StringValue: aws.String("application/json")},
			"event":        {DataType: aws.String("String"), StringValue: aws.String(EventPriceChanged)},
		},
	})
	if err != nil {
		return fmt.Errorf("publicar en SNS: %w", err)
	}
	return nil
}
