package usecase

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// ProductUseCase ciclo de vida del producto: alta, edición, baja y listado.
// Borrado de imágenes y avisos de precio se despachan en segundo plano.
type ProductUseCase struct {
	repo     repository.ProductRepository
	images   ports.ImageStore
	notifier ports.Notifier
	tasks    ports.Dispatcher
	log      *logger.Logger
	now      func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	images ports.ImageStore,
	notifier ports.Notifier,
	tasks ports.Dispatcher,
	log *logger.Logger,
) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{
		repo:     repo,
		images:   images,
		notifier: notifier,
		tasks:    tasks,
		log:      log.Named("products"),
		now:      time.Now,
	}
}

// Create valida y persiste un producto nuevo. Si llega imagen se sube antes de insertar;
// si la inserción falla la imagen recién subida se borra.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.NewValidationError("name", "es obligatorio")
	}
	price, err := parsePrice(in.Price.String())
	if err != nil {
		return nil, err
	}
	stock, err := parseStock(in.Stock.String())
	if err != nil {
		return nil, err
	}
	brandID := strings.TrimSpace(in.BrandID)
	if brandID == "" {
		return nil, domain.NewValidationError("brand_id", "es obligatorio")
	}

	now := uc.now().UTC()
	product := &entity.Product{
		ID:        uuid.New().String(),
		Name:      name,
		Price:     price,
		Stock:     stock,
		BrandID:   brandID,
		ModelID:   strings.TrimSpace(in.ModelID),
		ColorID:   strings.TrimSpace(in.ColorID),
		SizeID:    strings.TrimSpace(in.SizeID),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if in.Image != nil {
		ref, err := uc.images.Upload(ctx, *in.Image)
		if err != nil {
			return nil, storeError("subir imagen", err)
		}
		product.Image = ref
	} else if u := strings.TrimSpace(in.ImageURL); u != "" {
		product.Image = &entity.ImageRef{URL: u}
	}

	if err := uc.repo.Create(ctx, product); err != nil {
		if product.Image != nil {
			uc.dispatchImageDelete(*product.Image)
		}
		return nil, storeError("crear producto", err)
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto; ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// Get devuelve la entidad (uso interno: PDF).
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*entity.Product, error) {
	return uc.get(ctx, id)
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.Upstream("leer producto", err)
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// Update aplica los cambios sobre el estado previo. Precio y stock no numéricos conservan
// el valor anterior. Un cambio real de precio dispara el aviso a clientes.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	old, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *old
	if in.Name != nil {
		next.Name = strings.TrimSpace(*in.Name)
		if next.Name == "" {
			return nil, domain.NewValidationError("name", "es obligatorio")
		}
	}
	if in.Price != nil {
		if p, err := decimal.NewFromString(strings.TrimSpace(in.Price.String())); err == nil {
			if p.IsNegative() {
				return nil, domain.NewValidationError("price", "no puede ser negativo")
			}
			next.Price = p
		}
	}
	if in.Stock != nil {
		if s, err := strconv.Atoi(strings.TrimSpace(in.Stock.String())); err == nil {
			if s < 0 {
				return nil, domain.NewValidationError("stock", "no puede ser negativo")
			}
			next.Stock = s
		}
	}
	if in.BrandID != nil {
		next.BrandID = strings.TrimSpace(*in.BrandID)
		if next.BrandID == "" {
			return nil, domain.NewValidationError("brand_id", "es obligatorio")
		}
	}
	if in.ModelID != nil {
		next.ModelID = strings.TrimSpace(*in.ModelID)
	}
	if in.ColorID != nil {
		next.ColorID = strings.TrimSpace(*in.ColorID)
	}
	if in.SizeID != nil {
		next.SizeID = strings.TrimSpace(*in.SizeID)
	}

	var uploaded *entity.ImageRef
	if in.Image != nil {
		uploaded, err = uc.images.Upload(ctx, *in.Image)
		if err != nil {
			return nil, storeError("subir imagen", err)
		}
		next.Image = uploaded
	}
	next.UpdatedAt = uc.now().UTC()

	saved, err := uc.repo.Update(ctx, &next)
	if err != nil || saved == nil {
		if uploaded != nil {
			uc.dispatchImageDelete(*uploaded)
		}
		if err != nil {
			return nil, storeError("actualizar producto", err)
		}
		return nil, domain.ErrNotFound
	}

	if uploaded != nil && old.Image != nil && old.Image.Key != uploaded.Key {
		uc.dispatchImageDelete(*old.Image)
	}
	if !old.Price.Equal(saved.Price) {
		uc.dispatchPriceChange(saved, old.Price)
	}
	return ToProductResponse(saved), nil
}

// Delete elimina el producto y despacha el borrado de su imagen.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) (string, error) {
	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return "", domain.Upstream("eliminar producto", err)
	}
	if deleted == nil {
		return "", domain.ErrNotFound
	}
	if deleted.Image != nil {
		uc.dispatchImageDelete(*deleted.Image)
	}
	return deleted.ID, nil
}

// List interpreta los parámetros crudos, consulta la ventana pedida y el total con el mismo filtro.
func (uc *ProductUseCase) List(ctx context.Context, raw catalog.RawListParams) (*dto.ProductPage, error) {
	opts := catalog.ParseListParams(raw)
	q := catalog.BuildQuery(opts)

	items, err := uc.repo.Find(ctx, q)
	if err != nil {
		return nil, domain.Upstream("listar productos", err)
	}
	total, err := uc.repo.Count(ctx, q.Filter)
	if err != nil {
		return nil, domain.Upstream("contar productos", err)
	}

	out := make([]dto.ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, *ToProductResponse(p))
	}
	return &dto.ProductPage{
		Items: out,
		Page: dto.PageResponse{
			Page:       opts.Page,
			Limit:      opts.Limit,
			Total:      total,
			TotalPages: catalog.TotalPages(total, opts.Limit),
		},
	}, nil
}

// All recorre el catálogo completo en orden de creación (exportación).
func (uc *ProductUseCase) All(ctx context.Context) ([]*entity.Product, error) {
	var (
		all  []*entity.Product
		skip int
	)
	for {
		page, err := uc.repo.Find(ctx, catalog.Query{Sort: catalog.SortNewest, Skip: skip, Limit: catalog.MaxLimit})
		if err != nil {
			return nil, domain.Upstream("listar productos", err)
		}
		all = append(all, page...)
		if len(page) < catalog.MaxLimit {
			return all, nil
		}
		skip += len(page)
	}
}

// dispatchImageDelete solo borra imágenes alojadas por el servicio (con clave de almacenamiento).
func (uc *ProductUseCase) dispatchImageDelete(ref entity.ImageRef) {
	if ref.Key == "" {
		return
	}
	uc.tasks.Dispatch("image.delete", func(ctx context.Context) error {
		return uc.images.Delete(ctx, ref)
	})
}

func (uc *ProductUseCase) dispatchPriceChange(p *entity.Product, oldPrice decimal.Decimal) {
	snapshot := *p
	uc.log.Info().Str("product_id", p.ID).
		Str("old_price", oldPrice.String()).Str("new_price", p.Price.String()).
		Msg("cambio de precio")
	uc.tasks.Dispatch("notify.price_change", func(ctx context.Context) error {
		return uc.notifier.NotifyPriceChange(ctx, &snapshot, oldPrice)
	})
}

func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, domain.NewValidationError("price", "es obligatorio")
	}
	p, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.NewValidationError("price", "debe ser numérico")
	}
	if p.IsNegative() {
		return decimal.Zero, domain.NewValidationError("price", "no puede ser negativo")
	}
	return p, nil
}

func parseStock(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, domain.NewValidationError("stock", "es obligatorio")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, domain.NewValidationError("stock", "debe ser un entero")
	}
	if n < 0 {
		return 0, domain.NewValidationError("stock", "no puede ser negativo")
	}
	return n, nil
}

// storeError deja pasar los errores de validación del store y envuelve el resto como fallo upstream.
func storeError(op string, err error) error {
	if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return domain.Upstream(op, err)
}

// ToProductResponse convierte la entidad al DTO de salida.
func ToProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	r := &dto.ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Stock:     p.Stock,
		BrandID:   p.BrandID,
		ModelID:   p.ModelID,
		ColorID:   p.ColorID,
		SizeID:    p.SizeID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Image != nil {
		r.ImageURL = p.Image.URL
	}
	return r
}
