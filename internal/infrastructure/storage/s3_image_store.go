// Package storage aloja las imágenes de producto en un bucket S3 (o compatible).
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

var _ ports.ImageStore = (*S3ImageStore)(nil)

// Tipos de imagen aceptados y su extensión.
var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// s3API subconjunto del cliente S3 que usa el store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3ImageStore implementa ports.ImageStore.
type S3ImageStore struct {
	client  s3API
	bucket  string
	prefix  string
	baseURL string
	log     *logger.Logger
}

// NewS3Client construye el cliente S3. Con endpoint propio (MinIO, localstack) usa path-style.
func NewS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("cargar config AWS: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
			if o.Region == "" {
				o.Region = "us-east-1"
			}
		}
	}), nil
}

// NewS3ImageStore construye el store sobre un cliente ya configurado.
func NewS3ImageStore(client s3API, cfg config.StorageConfig, log *logger.Logger) *S3ImageStore {
	if log == nil {
		log = logger.Nop()
	}
	return &S3ImageStore{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		baseURL: publicBaseURL(cfg),
		log:     log.Named("storage"),
	}
}

// publicBaseURL prefijo de las URLs públicas de los objetos.
func publicBaseURL(cfg config.StorageConfig) string {
	switch {
	case cfg.PublicBaseURL != "":
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	default:
		region := cfg.Region
		if region == "" {
			region = "us-east-1"
		}
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	}
}

// Upload sube la imagen con una clave única y devuelve su URL pública.
func (s *S3ImageStore) Upload(ctx context.Context, img ports.ImageUpload) (*entity.ImageRef, error) {
	if len(img.Data) == 0 {
		return nil, domain.NewValidationError("image", "archivo vacío")
	}
	contentType := strings.ToLower(strings.TrimSpace(strings.Split(img.ContentType, ";")[0]))
	ext, ok := allowedTypes[contentType]
	if !ok {
		return nil, domain.NewValidationError("image", "formato no soportado (jpg, png, webp o gif)")
	}
	key := path.Join(s.prefix, uuid.New().String()+ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}
	s.log.Debug().Str("key", key).Int("bytes", len(img.Data)).Msg("imagen subida")
	return &entity.ImageRef{URL: s.baseURL + "/" + key, Key: key}, nil
}

// Delete borra el objeto. Una referencia sin clave no pertenece al bucket y se ignora.
func (s *S3ImageStore) Delete(ctx context.Context, ref entity.ImageRef) error {
	if ref.Key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", ref.Key, err)
	}
	s.log.Debug().Str("key", ref.Key).Msg("imagen eliminada")
	return nil
}
