package repository

import "context"

// ResourceStore es el puerto de persistencia mínimo que necesita el CRUD genérico.
// Find devuelve la colección completa ordenada por nombre ascendente.
// FindByID, UpdateByID y DeleteByID devuelven domain.ErrNotFound si el id no existe;
// Insert y UpdateByID devuelven un *domain.ValidationError si el store rechaza el documento.
type ResourceStore[T any] interface {
	Find(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, doc T) error
	UpdateByID(ctx context.Context, id string, doc T) (T, error)
	DeleteByID(ctx context.Context, id string) (T, error)
}
