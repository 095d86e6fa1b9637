package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// --- fakes ---

type memProductRepo struct {
	mu        sync.Mutex
	items     map[string]entity.Product
	createErr error
	updateErr error
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{items: map[string]entity.Product{}}
}

func (r *memProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.items[p.ID] = *p
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *memProductRepo) Update(_ context.Context, p *entity.Product) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	if _, ok := r.items[p.ID]; !ok {
		return nil, nil
	}
	r.items[p.ID] = *p
	out := *p
	return &out, nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	delete(r.items, id)
	return &p, nil
}

func (r *memProductRepo) matching(f catalog.Filter) []*entity.Product {
	var out []*entity.Product
	for _, p := range r.items {
		if f.Matches(&p) {
			cp := p
			out = append(out, &cp)
		}
	}
	return out
}

func (r *memProductRepo) Find(_ context.Context, q catalog.Query) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.matching(q.Filter)
	slices.SortFunc(all, func(a, b *entity.Product) int {
		switch {
		case q.Sort.Less(a, b):
			return -1
		case q.Sort.Less(b, a):
			return 1
		}
		return 0
	})
	if q.Skip >= len(all) {
		return []*entity.Product{}, nil
	}
	end := min(q.Skip+q.Limit, len(all))
	return all[q.Skip:end], nil
}

func (r *memProductRepo) Count(_ context.Context, f catalog.Filter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.matching(f)), nil
}

type fakeImageStore struct {
	mu        sync.Mutex
	seq       int
	uploadErr error
	deleted   []string
}

func (s *fakeImageStore) Upload(_ context.Context, img ports.ImageUpload) (*entity.ImageRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	s.seq++
	key := fmt.Sprintf("products/%d-%s", s.seq, img.Filename)
	return &entity.ImageRef{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (s *fakeImageStore) Delete(_ context.Context, ref entity.ImageRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, ref.Key)
	return nil
}

type priceNotice struct {
	productID string
	oldPrice  string
	newPrice  string
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []priceNotice
}

func (n *fakeNotifier) NotifyPriceChange(_ context.Context, p *entity.Product, oldPrice decimal.Decimal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, priceNotice{p.ID, oldPrice.String(), p.Price.String()})
	return nil
}

// syncDispatcher ejecuta la tarea en línea y registra su nombre.
type syncDispatcher struct {
	names []string
}

func (d *syncDispatcher) Dispatch(name string, fn func(ctx context.Context) error) bool {
	d.names = append(d.names, name)
	_ = fn(context.Background())
	return true
}

type productFixture struct {
	uc       *ProductUseCase
	repo     *memProductRepo
	images   *fakeImageStore
	notifier *fakeNotifier
	tasks    *syncDispatcher
}

func newProductFixture() *productFixture {
	f := &productFixture{
		repo:     newMemProductRepo(),
		images:   &fakeImageStore{},
		notifier: &fakeNotifier{},
		tasks:    &syncDispatcher{},
	}
	f.uc = NewProductUseCase(f.repo, f.images, f.notifier, f.tasks, nil)
	return f
}

func strPtr(s string) *string { return &s }

func numPtr(s string) *dto.NumericText {
	n := dto.NumericText(s)
	return &n
}

func validCreate() dto.CreateProductRequest {
	return dto.CreateProductRequest{Name: "Zapatilla", Price: "100", Stock: "5", BrandID: "b1"}
}

// --- Create ---

func TestProductCreate_OK(t *testing.T) {
	f := newProductFixture()

	out, err := f.uc.Create(context.Background(), validCreate())

	require.NoError(t, err)
	assert.NotEmpty(t, out.ID)
	assert.Equal(t, "Zapatilla", out.Name)
	assert.True(t, out.Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 5, out.Stock)
	assert.Empty(t, out.ImageURL)
	assert.Len(t, f.repo.items, 1)
}

func TestProductCreate_MissingFields(t *testing.T) {
	cases := map[string]func(*dto.CreateProductRequest){
		"name":     func(r *dto.CreateProductRequest) { r.Name = "  " },
		"price":    func(r *dto.CreateProductRequest) { r.Price = "" },
		"stock":    func(r *dto.CreateProductRequest) { r.Stock = "abc" },
		"brand_id": func(r *dto.CreateProductRequest) { r.BrandID = "" },
	}
	for field, mutate := range cases {
		t.Run(field, func(t *testing.T) {
			f := newProductFixture()
			in := validCreate()
			mutate(&in)

			_, err := f.uc.Create(context.Background(), in)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
			assert.Empty(t, f.repo.items)
		})
	}
}

func TestProductCreate_NegativePrice(t *testing.T) {
	f := newProductFixture()
	in := validCreate()
	in.Price = "-1"

	_, err := f.uc.Create(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductCreate_WithImage(t *testing.T) {
	f := newProductFixture()
	in := validCreate()
	in.Image = &ports.ImageUpload{Filename: "a.jpg", ContentType: "image/jpeg", Data: []byte{1}}

	out, err := f.uc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/products/1-a.jpg", out.ImageURL)
	assert.Empty(t, f.images.deleted)
}

func TestProductCreate_InsertFailsDeletesUploadedImage(t *testing.T) {
	f := newProductFixture()
	f.repo.createErr = domain.NewValidationError("brand_id", "la referencia no existe")
	in := validCreate()
	in.Image = &ports.ImageUpload{Filename: "a.jpg", Data: []byte{1}}

	_, err := f.uc.Create(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, []string{"products/1-a.jpg"}, f.images.deleted)
	assert.Equal(t, []string{"image.delete"}, f.tasks.names)
}

func TestProductCreate_StoreFailureIsUpstream(t *testing.T) {
	f := newProductFixture()
	f.repo.createErr = errors.New("conexión rechazada")

	_, err := f.uc.Create(context.Background(), validCreate())

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductCreate_UploadFailure(t *testing.T) {
	f := newProductFixture()
	f.images.uploadErr = errors.New("s3 caído")
	in := validCreate()
	in.Image = &ports.ImageUpload{Filename: "a.jpg"}

	_, err := f.uc.Create(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Empty(t, f.repo.items)
}

// --- Update ---

func createProduct(t *testing.T, f *productFixture, in dto.CreateProductRequest) *dto.ProductResponse {
	t.Helper()
	out, err := f.uc.Create(context.Background(), in)
	require.NoError(t, err)
	return out
}

func TestProductUpdate_PriceChangeNotifiesOnce(t *testing.T) {
	f := newProductFixture()
	p := createProduct(t, f, validCreate())

	out, err := f.uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Price: numPtr("120")})

	require.NoError(t, err)
	assert.True(t, out.Price.Equal(decimal.NewFromInt(120)))
	require.Len(t, f.notifier.notices, 1)
	assert.Equal(t, priceNotice{p.ID, "100", "120"}, f.notifier.notices[0])
}

func TestProductUpdate_SamePriceDoesNotNotify(t *testing.T) {
	f := newProductFixture()
	p := createProduct(t, f, validCreate())

	_, err := f.uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{Price: numPtr("100.00"), Name: strPtr("Otra")})

	require.NoError(t, err)
	assert.Empty(t, f.notifier.notices)
}

func TestProductUpdate_UnparsableKeepsPrior(t *testing.T) {
	f := newProductFixture()
	p := createProduct(t, f, validCreate())

	out, err := f.uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		Price: numPtr("caro"),
		Stock: numPtr("muchos"),
	})

	require.NoError(t, err)
	assert.True(t, out.Price.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 5, out.Stock)
	assert.Empty(t, f.notifier.notices)
}

func TestProductUpdate_NotFound(t *testing.T) {
	f := newProductFixture()

	out, err := f.uc.Update(context.Background(), "nope", dto.UpdateProductRequest{Name: strPtr("x")})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUpdate_ReplacesImageAndDeletesOld(t *testing.T) {
	f := newProductFixture()
	in := validCreate()
	in.Image = &ports.ImageUpload{Filename: "viejo.jpg"}
	p := createProduct(t, f, in)

	out, err := f.uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		Image: &ports.ImageUpload{Filename: "nuevo.jpg"},
	})

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/products/2-nuevo.jpg", out.ImageURL)
	assert.Equal(t, []string{"products/1-viejo.jpg"}, f.images.deleted)
}

func TestProductUpdate_FailureDeletesNewImage(t *testing.T) {
	f := newProductFixture()
	in := validCreate()
	in.Image = &ports.ImageUpload{Filename: "viejo.jpg"}
	p := createProduct(t, f, in)
	f.repo.updateErr = errors.New("timeout")

	_, err := f.uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{
		Price: numPtr("150"),
		Image: &ports.ImageUpload{Filename: "nuevo.jpg"},
	})

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, []string{"products/2-nuevo.jpg"}, f.images.deleted)
	assert.Empty(t, f.notifier.notices)
	stored, _ := f.repo.GetByID(context.Background(), p.ID)
	assert.Equal(t, "products/1-viejo.jpg", stored.Image.Key)
}

func TestProductUpdate_EmptyBrandRejected(t *testing.T) {
	f := newProductFixture()
	p := createProduct(t, f, validCreate())

	_, err := f.uc.Update(context.Background(), p.ID, dto.UpdateProductRequest{BrandID: strPtr("")})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "brand_id", verr.Field)
}

// --- Delete ---

func TestProductDelete(t *testing.T) {
	f := newProductFixture()
	in := validCreate()
	in.Image = &ports.ImageUpload{Filename: "a.jpg"}
	p := createProduct(t, f, in)

	id, err := f.uc.Delete(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, id)
	assert.Equal(t, []string{"products/1-a.jpg"}, f.images.deleted)

	_, err = f.uc.Delete(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.uc.GetByID(context.Background(), p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// --- List ---

func seedProducts(t *testing.T, f *productFixture, n int) {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= n; i++ {
		f.uc.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		brand := "b1"
		if i%2 == 0 {
			brand = "b2"
		}
		createProduct(t, f, dto.CreateProductRequest{
			Name:    fmt.Sprintf("Producto %02d", i),
			Price:   dto.NumericText(fmt.Sprintf("%d", i*10)),
			Stock:   "1",
			BrandID: brand,
		})
	}
}

func TestProductList_SecondPageNewest(t *testing.T) {
	f := newProductFixture()
	seedProducts(t, f, 20)

	page, err := f.uc.List(context.Background(), catalog.RawListParams{Page: "2"})

	require.NoError(t, err)
	assert.Equal(t, dto.PageResponse{Page: 2, Limit: 8, Total: 20, TotalPages: 3}, page.Page)
	require.Len(t, page.Items, 8)
	// newest primero: la página 2 contiene del 12 al 5.
	assert.Equal(t, "Producto 12", page.Items[0].Name)
	assert.Equal(t, "Producto 05", page.Items[7].Name)
}

func TestProductList_FilterAndCountAgree(t *testing.T) {
	f := newProductFixture()
	seedProducts(t, f, 20)

	page, err := f.uc.List(context.Background(), catalog.RawListParams{
		BrandID:  "b2",
		MinPrice: "50",
		MaxPrice: "150",
		Sort:     "price-asc",
		Limit:    "3",
	})

	require.NoError(t, err)
	// marca b2 (pares) con precio entre 50 y 150: cinco productos.
	assert.Equal(t, 5, page.Page.Total)
	assert.Equal(t, 2, page.Page.TotalPages)
	require.Len(t, page.Items, 3)
	assert.True(t, page.Items[0].Price.Equal(decimal.NewFromInt(60)))
	assert.True(t, page.Items[2].Price.Equal(decimal.NewFromInt(100)))
}

func TestProductList_InvertedRangeIsEmpty(t *testing.T) {
	f := newProductFixture()
	seedProducts(t, f, 5)

	page, err := f.uc.List(context.Background(), catalog.RawListParams{MinPrice: "100", MaxPrice: "10"})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Page.Total)
	assert.Equal(t, 0, page.Page.TotalPages)
}

func TestProductAll_WalksEveryPage(t *testing.T) {
	f := newProductFixture()
	seedProducts(t, f, catalog.MaxLimit+3)

	all, err := f.uc.All(context.Background())

	require.NoError(t, err)
	assert.Len(t, all, catalog.MaxLimit+3)
}

func TestProductCreate_ExternalImageURLNeverDeleted(t *testing.T) {
	f := newProductFixture()
	in := validCreate()
	in.ImageURL = "https://otro.cdn/foto.png"
	p := createProduct(t, f, in)
	assert.Equal(t, "https://otro.cdn/foto.png", p.ImageURL)

	_, err := f.uc.Delete(context.Background(), p.ID)

	require.NoError(t, err)
	assert.Empty(t, f.images.deleted)
	assert.Empty(t, f.tasks.names)
}
