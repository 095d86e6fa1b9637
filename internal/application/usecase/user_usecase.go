package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/catalogo-api/internal/application/auth"
	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// UserTxRunner ejecuta fn con repos de usuarios y roles atados a una misma transacción.
type UserTxRunner interface {
	RunUsers(ctx context.Context, fn func(users repository.UserRepository, roles repository.RoleRepository) error) error
}

// UserUseCase aplica reglas de negocio para usuarios, roles y direcciones.
type UserUseCase struct {
	repo  repository.UserRepository
	roles repository.RoleRepository
	log   *logger.Logger
	now   func() time.Time
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, roles repository.RoleRepository, log *logger.Logger) *UserUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UserUseCase{repo: repo, roles: roles, log: log.Named("users"), now: time.Now}
}

// EnsureRoles crea los roles del sistema si faltan. Se ejecuta antes de aceptar peticiones
// y es seguro repetirlo o correrlo desde varias instancias a la vez.
func (uc *UserUseCase) EnsureRoles(ctx context.Context) error {
	return ensureRoles(ctx, uc.roles, uc.log)
}

func ensureRoles(ctx context.Context, roles repository.RoleRepository, log *logger.Logger) error {
	n, err := roles.Count(ctx)
	if err != nil {
		return domain.Upstream("contar roles", err)
	}
	if n >= len(entity.Roles()) {
		return nil
	}
	for _, name := range entity.Roles() {
		if err := roles.EnsureName(ctx, name); err != nil {
			return domain.Upstream("crear rol", err)
		}
	}
	log.Info().Strs("roles", entity.Roles()).Msg("roles inicializados")
	return nil
}

// ListRoles devuelve los roles existentes.
func (uc *UserUseCase) ListRoles(ctx context.Context) ([]dto.RoleResponse, error) {
	list, err := uc.roles.List(ctx)
	if err != nil {
		return nil, domain.Upstream("listar roles", err)
	}
	out := make([]dto.RoleResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.RoleResponse{ID: r.ID, Name: r.Name})
	}
	return out, nil
}

// GetByID obtiene un usuario por ID; ErrUserNotFound si no existe.
func (uc *UserUseCase) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

func (uc *UserUseCase) get(ctx context.Context, id string) (*entity.User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Upstream("leer usuario", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// List lista usuarios con paginación.
func (uc *UserUseCase) List(ctx context.Context, limit, offset int) (*dto.UserListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, domain.Upstream("listar usuarios", err)
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *auth.ToUserResponse(u))
	}
	return &dto.UserListResponse{Items: items, Limit: limit, Offset: offset}, nil
}

// Create alta de usuario por un administrador, con rol explícito (client por defecto).
func (uc *UserUseCase) Create(ctx context.Context, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.create(ctx, uc.repo, uc.roles, in)
	if err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

func (uc *UserUseCase) create(ctx context.Context, users repository.UserRepository, roles repository.RoleRepository, in dto.CreateUserRequest) (*entity.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "es obligatorio")
	}
	email, err := auth.ValidateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	roleName := strings.TrimSpace(in.Role)
	if roleName == "" {
		roleName = entity.RoleClient
	}
	role, err := resolveRole(ctx, roles, roleName)
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
		Role:         role.Name,
		Addresses:    []entity.Address{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, user); err != nil {
		return nil, userStoreError("crear usuario", err)
	}
	return user, nil
}

// UpdateProfile actualiza nombre, email y password del propio usuario. El rol no se toca.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	in.Role = nil
	return uc.update(ctx, id, in)
}

// Update edición administrativa: además de los datos de perfil permite cambiar el rol.
func (uc *UserUseCase) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	return uc.update(ctx, id, in)
}

func (uc *UserUseCase) update(ctx context.Context, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.NewValidationError("name", "es obligatorio")
		}
		user.Name = name
	}
	if in.Email != nil {
		email, err := auth.ValidateEmail(*in.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}
	// La credencial solo se re-hashea cuando llega un texto plano nuevo.
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if in.Role != nil {
		role, err := resolveRole(ctx, uc.roles, strings.TrimSpace(*in.Role))
		if err != nil {
			return nil, err
		}
		user.RoleID = role.ID
		user.Role = role.Name
	}
	user.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, userStoreError("actualizar usuario", err)
	}
	return auth.ToUserResponse(user), nil
}

// ReplaceAddresses reemplaza la lista de direcciones garantizando una única principal.
func (uc *UserUseCase) ReplaceAddresses(ctx context.Context, id string, in dto.AddressesRequest) (*dto.UserResponse, error) {
	for i, a := range in.Addresses {
		if strings.TrimSpace(a.Street) == "" || strings.TrimSpace(a.City) == "" {
			return nil, domain.NewValidationError("addresses", fmt.Sprintf("la dirección %d requiere calle y ciudad", i+1))
		}
	}
	user, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Addresses = entity.NormalizeAddresses(in.Addresses)
	user.UpdatedAt = uc.now().UTC()
	if err := uc.repo.Update(ctx, user); err != nil {
		return nil, userStoreError("actualizar direcciones", err)
	}
	return auth.ToUserResponse(user), nil
}

// Delete elimina un usuario; ErrUserNotFound si no existía.
func (uc *UserUseCase) Delete(ctx context.Context, id string) error {
	ok, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return domain.Upstream("eliminar usuario", err)
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

// SeedAdmin crea los roles y un administrador inicial en una sola transacción.
// Si el email ya existe no hace nada y devuelve created=false.
func (uc *UserUseCase) SeedAdmin(ctx context.Context, tx UserTxRunner, in dto.CreateUserRequest) (created bool, err error) {
	in.Role = entity.RoleAdmin
	err = tx.RunUsers(ctx, func(users repository.UserRepository, roles repository.RoleRepository) error {
		if err := ensureRoles(ctx, roles, uc.log); err != nil {
			return err
		}
		existing, err := users.GetByEmail(ctx, auth.NormalizeEmail(in.Email))
		if err != nil {
			return domain.Upstream("buscar usuario", err)
		}
		if existing != nil {
			return nil
		}
		if _, err := uc.create(ctx, users, roles, in); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if created {
		uc.log.Info().Str("email", auth.NormalizeEmail(in.Email)).Msg("administrador creado")
	}
	return created, nil
}

func resolveRole(ctx context.Context, roles repository.RoleRepository, name string) (*entity.Role, error) {
	if !entity.IsValidRole(name) {
		return nil, domain.NewValidationError("role", "debe ser admin o client")
	}
	role, err := roles.GetByName(ctx, name)
	if err != nil {
		return nil, domain.Upstream("leer rol", err)
	}
	if role == nil {
		return nil, domain.Upstream("leer rol", domain.ErrNotFound)
	}
	return role, nil
}

func userStoreError(op string, err error) error {
	if errors.Is(err, domain.ErrEmailAlreadyExists) || errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	return domain.Upstream(op, err)
}
