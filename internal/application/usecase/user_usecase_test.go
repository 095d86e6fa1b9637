package usecase

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/application/auth"
	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

type memUserRepo struct {
	mu    sync.Mutex
	items map[string]entity.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{items: map[string]entity.User{}} }

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.items {
		if other.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.items[u.ID] = *u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	for id, other := range r.items {
		if id != u.ID && other.Email == u.Email {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.items[u.ID] = *u
	return nil
}

func (r *memUserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*entity.User
	for _, u := range r.items {
		cp := u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	if offset >= len(all) {
		return []*entity.User{}, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	delete(r.items, id)
	return ok, nil
}

func (r *memUserRepo) ListEmailsByRole(_ context.Context, role string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, u := range r.items {
		if u.Role == role {
			out = append(out, u.Email)
		}
	}
	sort.Strings(out)
	return out, nil
}

type memRoleRepo struct {
	mu      sync.Mutex
	byName  map[string]*entity.Role
	ensured int
}

func newMemRoleRepo(names ...string) *memRoleRepo {
	r := &memRoleRepo{byName: map[string]*entity.Role{}}
	for _, n := range names {
		r.byName[n] = &entity.Role{ID: "role-" + n, Name: n}
	}
	return r
}

func (r *memRoleRepo) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byName), nil
}

func (r *memRoleRepo) EnsureName(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensured++
	if _, ok := r.byName[name]; !ok {
		r.byName[name] = &entity.Role{ID: "role-" + name, Name: name}
	}
	return nil
}

func (r *memRoleRepo) GetByName(_ context.Context, name string) (*entity.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byName[name], nil
}

func (r *memRoleRepo) List(context.Context) ([]*entity.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Role
	for _, role := range r.byName {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// inlineTx ejecuta el callback sobre los mismos repos en memoria.
type inlineTx struct {
	users *memUserRepo
	roles *memRoleRepo
}

func (tx inlineTx) RunUsers(ctx context.Context, fn func(repository.UserRepository, repository.RoleRepository) error) error {
	return fn(tx.users, tx.roles)
}

func newUserUC(roles ...string) (*UserUseCase, *memUserRepo, *memRoleRepo) {
	users := newMemUserRepo()
	roleRepo := newMemRoleRepo(roles...)
	return NewUserUseCase(users, roleRepo, nil), users, roleRepo
}

func TestEnsureRoles_SeedsMissing(t *testing.T) {
	uc, _, roles := newUserUC()

	require.NoError(t, uc.EnsureRoles(context.Background()))
	require.NoError(t, uc.EnsureRoles(context.Background()))

	list, err := uc.ListRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []dto.RoleResponse{
		{ID: "role-admin", Name: "admin"},
		{ID: "role-client", Name: "client"},
	}, list)
	// la segunda ejecución no inserta nada
	assert.Equal(t, 2, roles.ensured)
}

func TestEnsureRoles_PartialSeed(t *testing.T) {
	uc, _, roles := newUserUC(entity.RoleAdmin)

	require.NoError(t, uc.EnsureRoles(context.Background()))

	assert.Len(t, roles.byName, 2)
}

func TestUserCreate_AdminChoosesRole(t *testing.T) {
	uc, _, _ := newUserUC(entity.RoleAdmin, entity.RoleClient)

	out, err := uc.Create(context.Background(), dto.CreateUserRequest{
		Name: "Root", Email: "Root@Tienda.com", Password: "123456", Role: "admin",
	})

	require.NoError(t, err)
	assert.Equal(t, "root@tienda.com", out.Email)
	assert.Equal(t, entity.RoleAdmin, out.Role)
}

func TestUserCreate_UnknownRole(t *testing.T) {
	uc, _, _ := newUserUC(entity.RoleAdmin, entity.RoleClient)

	_, err := uc.Create(context.Background(), dto.CreateUserRequest{
		Name: "X", Email: "x@tienda.com", Password: "123456", Role: "vendedor",
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "role", verr.Field)
}

func TestUserUpdateProfile_PasswordOnlyWhenProvided(t *testing.T) {
	uc, users, _ := newUserUC(entity.RoleAdmin, entity.RoleClient)
	u, err := uc.Create(context.Background(), dto.CreateUserRequest{Name: "Ana", Email: "ana@t.com", Password: "secreta"})
	require.NoError(t, err)
	before := users.items[u.ID].PasswordHash

	_, err = uc.UpdateProfile(context.Background(), u.ID, dto.UpdateUserRequest{Name: strPtr("Ana María"), Password: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, before, users.items[u.ID].PasswordHash)
	assert.Equal(t, "Ana María", users.items[u.ID].Name)

	_, err = uc.UpdateProfile(context.Background(), u.ID, dto.UpdateUserRequest{Password: strPtr("nueva-clave")})
	require.NoError(t, err)
	assert.NotEqual(t, before, users.items[u.ID].PasswordHash)
	assert.True(t, auth.CheckPassword(users.items[u.ID].PasswordHash, "nueva-clave"))
}

func TestUserUpdateProfile_CannotChangeRole(t *testing.T) {
	uc, users, _ := newUserUC(entity.RoleAdmin, entity.RoleClient)
	u, err := uc.Create(context.Background(), dto.CreateUserRequest{Name: "Ana", Email: "ana@t.com", Password: "secreta"})
	require.NoError(t, err)

	out, err := uc.UpdateProfile(context.Background(), u.ID, dto.UpdateUserRequest{Role: strPtr("admin")})

	require.NoError(t, err)
	assert.Equal(t, entity.RoleClient, out.Role)
	assert.Equal(t, entity.RoleClient, users.items[u.ID].Role)
}

func TestUserUpdate_AdminChangesRoleAndEmailConflict(t *testing.T) {
	uc, _, _ := newUserUC(entity.RoleAdmin, entity.RoleClient)
	a, err := uc.Create(context.Background(), dto.CreateUserRequest{Name: "Ana", Email: "ana@t.com", Password: "secreta"})
	require.NoError(t, err)
	_, err = uc.Create(context.Background(), dto.CreateUserRequest{Name: "Beto", Email: "beto@t.com", Password: "secreta"})
	require.NoError(t, err)

	out, err := uc.Update(context.Background(), a.ID, dto.UpdateUserRequest{Role: strPtr("admin")})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, out.Role)

	_, err = uc.Update(context.Background(), a.ID, dto.UpdateUserRequest{Email: strPtr("BETO@t.com")})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestUserReplaceAddresses_SinglePrimary(t *testing.T) {
	uc, _, _ := newUserUC(entity.RoleAdmin, entity.RoleClient)
	u, err := uc.Create(context.Background(), dto.CreateUserRequest{Name: "Ana", Email: "ana@t.com", Password: "secreta"})
	require.NoError(t, err)

	out, err := uc.ReplaceAddresses(context.Background(), u.ID, dto.AddressesRequest{Addresses: []entity.Address{
		{Label: "Casa", Street: "Calle 1", City: "Lima", District: "Miraflores"},
		{Label: "Oficina", Street: "Av. 2", City: "Lima", District: "San Isidro", IsPrimary: true},
		{Label: "Playa", Street: "Malecón", City: "Lima", District: "Barranco"},
	}})

	require.NoError(t, err)
	require.Len(t, out.Addresses, 3)
	assert.False(t, out.Addresses[0].IsPrimary)
	assert.True(t, out.Addresses[1].IsPrimary)
	assert.False(t, out.Addresses[2].IsPrimary)
}

func TestUserReplaceAddresses_RequiresStreet(t *testing.T) {
	uc, _, _ := newUserUC(entity.RoleAdmin, entity.RoleClient)
	u, err := uc.Create(context.Background(), dto.CreateUserRequest{Name: "Ana", Email: "ana@t.com", Password: "secreta"})
	require.NoError(t, err)

	_, err = uc.ReplaceAddresses(context.Background(), u.ID, dto.AddressesRequest{Addresses: []entity.Address{{City: "Lima"}}})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserDeleteAndGet(t *testing.T) {
	uc, _, _ := newUserUC(entity.RoleAdmin, entity.RoleClient)
	u, err := uc.Create(context.Background(), dto.CreateUserRequest{Name: "Ana", Email: "ana@t.com", Password: "secreta"})
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), u.ID))
	assert.ErrorIs(t, uc.Delete(context.Background(), u.ID), domain.ErrUserNotFound)

	_, err = uc.GetByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserList_DefaultsLimit(t *testing.T) {
	uc, _, _ := newUserUC(entity.RoleAdmin, entity.RoleClient)
	for _, e := range []string{"a@t.com", "b@t.com", "c@t.com"} {
		_, err := uc.Create(context.Background(), dto.CreateUserRequest{Name: "U", Email: e, Password: "secreta"})
		require.NoError(t, err)
	}

	out, err := uc.List(context.Background(), 0, 1)

	require.NoError(t, err)
	assert.Equal(t, 20, out.Limit)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "b@t.com", out.Items[0].Email)
}

func TestSeedAdmin_Idempotent(t *testing.T) {
	uc, users, roles := newUserUC()
	tx := inlineTx{users: users, roles: roles}
	in := dto.CreateUserRequest{Name: "Admin", Email: "admin@tienda.com", Password: "cambiar123"}

	created, err := uc.SeedAdmin(context.Background(), tx, in)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.SeedAdmin(context.Background(), tx, in)
	require.NoError(t, err)
	assert.False(t, created)

	admin, _ := users.GetByEmail(context.Background(), "admin@tienda.com")
	require.NotNil(t, admin)
	assert.Equal(t, entity.RoleAdmin, admin.Role)
	assert.Len(t, roles.byName, 2)
}
