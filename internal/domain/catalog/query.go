// Package catalog traduce los parámetros de listado de productos a una consulta
// independiente del store: filtro, orden y ventana skip/limit.
package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// Valores por defecto de paginación.
const (
	DefaultPage  = 1
	DefaultLimit = 8
	MaxLimit     = 100
)

// SortKey criterio de orden soportado por el listado.
type SortKey string

const (
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNewest    SortKey = "newest"
)

// ParseSort devuelve el criterio reconocido o SortNewest para cualquier otro valor.
func ParseSort(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortPriceAsc:
		return SortPriceAsc
	case SortPriceDesc:
		return SortPriceDesc
	default:
		return SortNewest
	}
}

// RawListParams parámetros tal como llegan en el query string.
type RawListParams struct {
	Search   string `query:"search"`
	BrandID  string `query:"brandId"`
	ColorID  string `query:"colorId"`
	MinPrice string `query:"minPrice"`
	MaxPrice string `query:"maxPrice"`
	Sort     string `query:"sort"`
	Page     string `query:"page"`
	Limit    string `query:"limit"`
}

// ListOptions parámetros ya interpretados. Nil en un límite de precio significa "sin límite".
type ListOptions struct {
	Search   string
	BrandID  string
	ColorID  string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     SortKey
	Page     int
	Limit    int
}

// ParseListParams interpreta los parámetros crudos. Los valores no numéricos o fuera de rango
// se descartan (precios) o se reemplazan por el valor por defecto (page, limit); nunca falla.
func ParseListParams(raw RawListParams) ListOptions {
	opts := ListOptions{
		Search:   strings.TrimSpace(raw.Search),
		BrandID:  strings.TrimSpace(raw.BrandID),
		ColorID:  strings.TrimSpace(raw.ColorID),
		MinPrice: parsePrice(raw.MinPrice),
		MaxPrice: parsePrice(raw.MaxPrice),
		Sort:     ParseSort(raw.Sort),
		Page:     parsePositive(raw.Page, DefaultPage),
		Limit:    parsePositive(raw.Limit, DefaultLimit),
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
	return opts
}

func parsePositive(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func parsePrice(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}

// Filter predicado sobre productos. Los campos vacíos/nil no restringen.
type Filter struct {
	Search   string
	BrandID  string
	ColorID  string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

// Matches evalúa el predicado en memoria con la misma semántica que el store:
// subcadena sin distinguir mayúsculas en el nombre, igualdad de marca/color y rango cerrado de precio.
func (f Filter) Matches(p *entity.Product) bool {
	if p == nil {
		return false
	}
	if f.Search != "" && !ContainsFold(p.Name, f.Search) {
		return false
	}
	if f.BrandID != "" && p.BrandID != f.BrandID {
		return false
	}
	if f.ColorID != "" && p.ColorID != f.ColorID {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// ContainsFold indica si sub aparece en s sin distinguir mayúsculas (case folding Unicode).
func ContainsFold(s, sub string) bool {
	folder := cases.Fold()
	return strings.Contains(folder.String(s), folder.String(sub))
}

// Query consulta lista para el store.
type Query struct {
	Filter Filter
	Sort   SortKey
	Skip   int
	Limit  int
}

// BuildQuery construye la consulta: skip = (page-1) * limit.
func BuildQuery(o ListOptions) Query {
	page, limit := o.Page, o.Limit
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return Query{
		Filter: Filter{
			Search:   o.Search,
			BrandID:  o.BrandID,
			ColorID:  o.ColorID,
			MinPrice: o.MinPrice,
			MaxPrice: o.MaxPrice,
		},
		Sort:  ParseSort(string(o.Sort)),
		Skip:  (page - 1) * limit,
		Limit: limit,
	}
}

// TotalPages número de páginas para total registros con el tamaño de página dado.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Less indica si a va antes que b según el criterio. Empates en precio se resuelven por
// fecha de creación descendente y luego por id, igual que el ORDER BY del store.
func (s SortKey) Less(a, b *entity.Product) bool {
	switch s {
	case SortPriceAsc:
		if !a.Price.Equal(b.Price) {
			return a.Price.LessThan(b.Price)
		}
	case SortPriceDesc:
		if !a.Price.Equal(b.Price) {
			return a.Price.GreaterThan(b.Price)
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
