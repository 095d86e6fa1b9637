package repository

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Find y Count deben aplicar exactamente el mismo filtro.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) (*entity.Product, error)
	Delete(ctx context.Context, id string) (*entity.Product, error)
	Find(ctx context.Context, q catalog.Query) ([]*entity.Product, error)
	Count(ctx context.Context, f catalog.Filter) (int, error)
}
