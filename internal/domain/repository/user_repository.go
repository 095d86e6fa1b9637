package repository

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// Las lecturas devuelven (nil, nil) si el usuario no existe.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
	Delete(ctx context.Context, id string) (bool, error)
	// ListEmailsByRole devuelve los emails de los usuarios con el rol indicado.
	ListEmailsByRole(ctx context.Context, role string) ([]string, error)
}

// RoleRepository define el puerto de persistencia para Role.
type RoleRepository interface {
	Count(ctx context.Context) (int, error)
	EnsureName(ctx context.Context, name string) error
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	List(ctx context.Context) ([]*entity.Role, error)
}
