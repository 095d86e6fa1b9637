package ports

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// ImageUpload archivo de imagen recibido en una petición multipart.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ImageStore colaborador que aloja las imágenes de producto.
// Delete es de mejor esfuerzo: el llamador registra el error y no lo propaga.
type ImageStore interface {
	Upload(ctx context.Context, img ImageUpload) (*entity.ImageRef, error)
	Delete(ctx context.Context, ref entity.ImageRef) error
}
