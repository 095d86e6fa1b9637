// Package catalog reúne las operaciones de catálogo que cruzan productos y referencias:
// exportación e importación en planilla y ficha técnica en PDF.
package catalog

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/ports"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// Placeholder para referencias que ya no existen o no están informadas.
const missingRef = "—"

// ProductService lo que este paquete necesita del ciclo de vida de productos.
type ProductService interface {
	Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id string) (*entity.Product, error)
	All(ctx context.Context) ([]*entity.Product, error)
}

// ReferenceIndex devuelve id -> nombre de una entidad de referencia.
type ReferenceIndex interface {
	Index(ctx context.Context) (map[string]string, error)
}

// References índices de las cuatro entidades de referencia.
type References struct {
	Brands ReferenceIndex
	Models ReferenceIndex
	Colors ReferenceIndex
	Sizes  ReferenceIndex
}

// Config parámetros del caso de uso.
type Config struct {
	ImageTimeout time.Duration // espera máxima al descargar la imagen de la ficha
}

// UseCase exportación, importación y ficha técnica.
type UseCase struct {
	products ProductService
	refs     References
	sheet    ports.ProductSheet
	pdf      ports.SpecSheetRenderer
	fetcher  ports.ImageFetcher
	cfg      Config
	log      *logger.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	products ProductService,
	refs References,
	sheet ports.ProductSheet,
	pdf ports.SpecSheetRenderer,
	fetcher ports.ImageFetcher,
	cfg Config,
	log *logger.Logger,
) *UseCase {
	if cfg.ImageTimeout <= 0 {
		cfg.ImageTimeout = 5 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		products: products,
		refs:     refs,
		sheet:    sheet,
		pdf:      pdf,
		fetcher:  fetcher,
		cfg:      cfg,
		log:      log.Named("catalog"),
		now:      time.Now,
	}
}

type refIndexes struct {
	brands, models, colors, sizes map[string]string
}

func (uc *UseCase) loadIndexes(ctx context.Context) (*refIndexes, error) {
	var (
		out refIndexes
		err error
	)
	if out.brands, err = uc.refs.Brands.Index(ctx); err != nil {
		return nil, domain.Upstream("leer marcas", err)
	}
	if out.models, err = uc.refs.Models.Index(ctx); err != nil {
		return nil, domain.Upstream("leer modelos", err)
	}
	if out.colors, err = uc.refs.Colors.Index(ctx); err != nil {
		return nil, domain.Upstream("leer colores", err)
	}
	if out.sizes, err = uc.refs.Sizes.Index(ctx); err != nil {
		return nil, domain.Upstream("leer tallas", err)
	}
	return &out, nil
}

// Export genera la planilla con todo el catálogo.
func (uc *UseCase) Export(ctx context.Context) ([]byte, error) {
	idx, err := uc.loadIndexes(ctx)
	if err != nil {
		return nil, err
	}
	list, err := uc.products.All(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]ports.ProductRow, 0, len(list))
	for _, p := range list {
		row := ports.ProductRow{
			Name:      p.Name,
			Price:     p.Price,
			Stock:     p.Stock,
			Brand:     idx.brands[p.BrandID],
			Model:     idx.models[p.ModelID],
			Color:     idx.colors[p.ColorID],
			Size:      idx.sizes[p.SizeID],
			CreatedAt: p.CreatedAt,
		}
		if p.Image != nil {
			row.ImageURL = p.Image.URL
		}
		rows = append(rows, row)
	}
	data, err := uc.sheet.Export(rows)
	if err != nil {
		return nil, domain.Upstream("generar planilla", err)
	}
	return data, nil
}

// Import crea un producto por fila. Una fila fallida se reporta y no aborta el lote.
func (uc *UseCase) Import(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	rows, err := uc.sheet.Import(r)
	if err != nil {
		return nil, domain.NewValidationError("file", "planilla ilegible: "+err.Error())
	}
	idx, err := uc.loadIndexes(ctx)
	if err != nil {
		return nil, err
	}
	lookup := struct{ brands, models, colors, sizes map[string]string }{
		byName(idx.brands), byName(idx.models), byName(idx.colors), byName(idx.sizes),
	}

	res := &dto.ImportResult{Errors: []dto.ImportRowError{}}
	for _, row := range rows {
		in := dto.CreateProductRequest{
			Name:     row.Name,
			Price:    dto.NumericText(row.Price),
			Stock:    dto.NumericText(row.Stock),
			ImageURL: row.ImageURL,
		}
		var rowErr error
		for _, ref := range []struct {
			label  string
			name   string
			index  map[string]string
			target *string
		}{
			{"marca", row.Brand, lookup.brands, &in.BrandID},
			{"modelo", row.Model, lookup.models, &in.ModelID},
			{"color", row.Color, lookup.colors, &in.ColorID},
			{"talla", row.Size, lookup.sizes, &in.SizeID},
		} {
			name := strings.TrimSpace(ref.name)
			if name == "" {
				continue
			}
			id, ok := ref.index[foldKey(name)]
			if !ok {
				rowErr = domain.NewValidationError(ref.label, "no existe: "+name)
				break
			}
			*ref.target = id
		}
		if rowErr == nil {
			_, rowErr = uc.products.Create(ctx, in)
		}
		if rowErr != nil {
			res.Failed++
			res.Errors = append(res.Errors, dto.ImportRowError{Row: row.Row, Message: uc.rowMessage(row.Row, rowErr)})
			continue
		}
		res.Created++
	}
	uc.log.Info().Int("created", res.Created).Int("failed", res.Failed).Msg("importación finalizada")
	return res, nil
}

// rowMessage expone el detalle de validación; los fallos internos se registran y se informan genéricos.
func (uc *UseCase) rowMessage(row int, err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	uc.log.Error().Err(err).Int("row", row).Msg("fila de importación fallida")
	return "la operación falló"
}

// SpecSheet genera la ficha técnica en PDF. Si la imagen no se obtiene a tiempo
// la ficha se genera igual, con un recuadro en su lugar.
func (uc *UseCase) SpecSheet(ctx context.Context, id string) ([]byte, error) {
	p, err := uc.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	idx, err := uc.loadIndexes(ctx)
	if err != nil {
		return nil, err
	}
	sheet := ports.SpecSheet{
		ProductID:   p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Stock:       p.Stock,
		Brand:       refName(idx.brands, p.BrandID),
		Model:       refName(idx.models, p.ModelID),
		Color:       refName(idx.colors, p.ColorID),
		Size:        refName(idx.sizes, p.SizeID),
		GeneratedAt: uc.now(),
	}
	if p.HasImage() {
		sheet.Image, sheet.ImageFormat = uc.fetchImage(ctx, p.Image.URL)
	}
	data, err := uc.pdf.Render(sheet)
	if err != nil {
		return nil, domain.Upstream("generar pdf", err)
	}
	return data, nil
}

func (uc *UseCase) fetchImage(ctx context.Context, url string) ([]byte, string) {
	ctx, cancel := context.WithTimeout(ctx, uc.cfg.ImageTimeout)
	defer cancel()
	data, contentType, err := uc.fetcher.Fetch(ctx, url)
	if err != nil {
		uc.log.Warn().Err(err).Str("url", url).Msg("imagen no disponible para la ficha")
		return nil, ""
	}
	format := imageFormat(contentType, url)
	if format == "" {
		uc.log.Warn().Str("url", url).Str("content_type", contentType).Msg("formato de imagen no soportado")
		return nil, ""
	}
	return data, format
}

// imageFormat acepta jpg y png, por content-type o por extensión.
func imageFormat(contentType, url string) string {
	ct := strings.ToLower(contentType)
	u := strings.ToLower(url)
	switch {
	case strings.Contains(ct, "png"), strings.HasSuffix(u, ".png"):
		return "png"
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "jpg"),
		strings.HasSuffix(u, ".jpg"), strings.HasSuffix(u, ".jpeg"):
		return "jpg"
	}
	return ""
}

func refName(idx map[string]string, id string) string {
	if name, ok := idx[id]; ok && id != "" {
		return name
	}
	return missingRef
}

// byName invierte id -> nombre a nombre plegado -> id.
func byName(idx map[string]string) map[string]string {
	out := make(map[string]string, len(idx))
	for id, name := range idx {
		out[foldKey(name)] = id
	}
	return out
}

func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
