package catalog_test

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/domain/catalog"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

// decimalComparer permite a cmp comparar decimal.Decimal por valor.
var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func TestParseListParams_Defaults(t *testing.T) {
	opts := catalog.ParseListParams(catalog.RawListParams{})

	assert.Equal(t, catalog.DefaultPage, opts.Page)
	assert.Equal(t, catalog.DefaultLimit, opts.Limit)
	assert.Equal(t, catalog.SortNewest, opts.Sort)
	assert.Nil(t, opts.MinPrice)
	assert.Nil(t, opts.MaxPrice)
}

func TestParseListParams_ValoresNoNumericosSeDescartan(t *testing.T) {
	opts := catalog.ParseListParams(catalog.RawListParams{
		MinPrice: "barato",
		MaxPrice: "10,5",
		Page:     "dos",
		Limit:    "-3",
	})

	assert.Nil(t, opts.MinPrice, "minPrice no numérico se trata como ausente")
	assert.Nil(t, opts.MaxPrice, "maxPrice no numérico se trata como ausente")
	assert.Equal(t, 1, opts.Page)
	assert.Equal(t, 8, opts.Limit)
}

func TestParseListParams_LimiteMaximo(t *testing.T) {
	opts := catalog.ParseListParams(catalog.RawListParams{Limit: "5000"})
	assert.Equal(t, catalog.MaxLimit, opts.Limit)
}

func TestParseListParams_PrecioNegativoSeDescarta(t *testing.T) {
	opts := catalog.ParseListParams(catalog.RawListParams{MinPrice: "-1", MaxPrice: "20"})
	assert.Nil(t, opts.MinPrice)
	require.NotNil(t, opts.MaxPrice)
	assert.True(t, opts.MaxPrice.Equal(decimal.NewFromInt(20)))
}

func TestParseSort(t *testing.T) {
	cases := map[string]catalog.SortKey{
		"price-asc":  catalog.SortPriceAsc,
		"PRICE-DESC": catalog.SortPriceDesc,
		"newest":     catalog.SortNewest,
		"":           catalog.SortNewest,
		"popular":    catalog.SortNewest,
		"price":      catalog.SortNewest,
	}
	for in, want := range cases {
		assert.Equal(t, want, catalog.ParseSort(in), "sort=%q", in)
	}
}

func TestBuildQuery_SkipEsPaginaMenosUnoPorLimite(t *testing.T) {
	for page := 1; page <= 5; page++ {
		for _, limit := range []int{1, 8, 25} {
			q := catalog.BuildQuery(catalog.ListOptions{Page: page, Limit: limit})
			assert.Equal(t, (page-1)*limit, q.Skip, "page=%d limit=%d", page, limit)
			assert.Equal(t, limit, q.Limit)
		}
	}

	q := catalog.BuildQuery(catalog.ParseListParams(catalog.RawListParams{Page: "1", Limit: "8"}))
	assert.Equal(t, 0, q.Skip)
}

func TestBuildQuery_ComponeFiltro(t *testing.T) {
	opts := catalog.ParseListParams(catalog.RawListParams{
		Search:   " shoe ",
		BrandID:  "b1",
		ColorID:  "c1",
		MinPrice: "10",
		MaxPrice: "50",
		Sort:     "price-desc",
		Page:     "2",
		Limit:    "8",
	})

	got := catalog.BuildQuery(opts)
	want := catalog.Query{
		Filter: catalog.Filter{
			Search:   "shoe",
			BrandID:  "b1",
			ColorID:  "c1",
			MinPrice: dec("10"),
			MaxPrice: dec("50"),
		},
		Sort:  catalog.SortPriceDesc,
		Skip:  8,
		Limit: 8,
	}
	if diff := cmp.Diff(want, got, decimalComparer); diff != "" {
		t.Errorf("BuildQuery() mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterMatches(t *testing.T) {
	p := &entity.Product{Name: "Zapato Shoe Runner", Price: decimal.NewFromInt(30), BrandID: "b1", ColorID: "c1"}

	assert.True(t, catalog.Filter{}.Matches(p))
	assert.True(t, catalog.Filter{Search: "SHOE"}.Matches(p))
	assert.False(t, catalog.Filter{Search: "bota"}.Matches(p))
	assert.False(t, catalog.Filter{BrandID: "b2"}.Matches(p))
	assert.False(t, catalog.Filter{ColorID: "c2"}.Matches(p))
	assert.True(t, catalog.Filter{MinPrice: dec("30"), MaxPrice: dec("30")}.Matches(p), "el rango es cerrado")
	assert.False(t, catalog.Filter{MinPrice: dec("31")}.Matches(p))
	assert.False(t, catalog.Filter{MaxPrice: dec("29.99")}.Matches(p))
	assert.False(t, catalog.Filter{MinPrice: dec("50"), MaxPrice: dec("10")}.Matches(p), "rango invertido queda vacío")
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, catalog.TotalPages(0, 8))
	assert.Equal(t, 1, catalog.TotalPages(8, 8))
	assert.Equal(t, 2, catalog.TotalPages(9, 8))
	assert.Equal(t, 3, catalog.TotalPages(20, 8))
}

func TestSortLess_NewestPorDefecto(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var list []*entity.Product
	for i := 0; i < 5; i++ {
		list = append(list, &entity.Product{
			ID:        fmt.Sprintf("p%d", i),
			Price:     decimal.NewFromInt(int64(10 - i)),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	sorted := append([]*entity.Product(nil), list...)
	key := catalog.ParseSort("desconocido")
	sort.SliceStable(sorted, func(i, j int) bool { return key.Less(sorted[i], sorted[j]) })
	assert.Equal(t, "p4", sorted[0].ID, "el más reciente primero")
	assert.Equal(t, "p0", sorted[4].ID)

	sort.SliceStable(sorted, func(i, j int) bool { return catalog.SortPriceAsc.Less(sorted[i], sorted[j]) })
	assert.Equal(t, "p4", sorted[0].ID, "precio 6 es el menor")
}
