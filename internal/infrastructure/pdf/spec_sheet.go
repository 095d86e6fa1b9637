// Package pdf genera la ficha técnica de un producto con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Nombre del producto      │  Ficha técnica + fecha  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  IMAGEN (o recuadro)   │  PRECIO destacado + stock          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Atributo | Valor                                    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: generado el ... / id del producto                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
)

var _ ports.SpecSheetRenderer = (*SpecSheetRenderer)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorLight   = &props.Color{Red: 235, Green: 240, Blue: 245}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// ── Renderer ──────────────────────────────────────────────────────────────────

// SpecSheetRenderer implementa ports.SpecSheetRenderer usando Maroto v2.
type SpecSheetRenderer struct {
	author string
}

// NewSpecSheetRenderer construye el generador. author aparece en los metadatos del PDF.
func NewSpecSheetRenderer(author string) *SpecSheetRenderer {
	return &SpecSheetRenderer{author: author}
}

// Render genera el PDF y devuelve sus bytes.
func (g *SpecSheetRenderer) Render(s ports.SpecSheet) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Ficha técnica: "+s.Name, true).
		WithAuthor(nonEmpty(g.author, "catalogo-api"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(s))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(row.New(4))
	m.AddRows(heroRow(s))
	m.AddRows(row.New(6))

	m.AddRows(tableHeaderRow())
	for i, r := range attributeRows(s) {
		m.AddRows(tableRow(r[0], r[1], i%2 == 1))
	}

	m.AddRows(row.New(6))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(s))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: nombre del producto (izq) y título + fecha (der).
func headerRow(s ports.SpecSheet) core.Row {
	return row.New(16).Add(
		col.New(8).Add(
			text.New(s.Name, props.Text{
				Style: fontstyle.Bold, Size: 15, Color: colorPrimary, Top: 2,
			}),
		),
		col.New(4).Add(
			text.New("FICHA TÉCNICA", props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Color: colorPrimary, Top: 2,
			}),
			text.New("Fecha: "+s.GeneratedAt.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 9, Color: colorGray,
			}),
		),
	)
}

// heroRow: imagen o recuadro a la izquierda; precio y stock a la derecha.
func heroRow(s ports.SpecSheet) core.Row {
	return row.New(70).Add(
		imageCol(s),
		col.New(1),
		col.New(5).Add(
			text.New("PRECIO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorGray, Top: 8,
			}),
			text.New(formatPrice(s.Price), props.Text{
				Style: fontstyle.Bold, Size: 22, Color: colorPrimary, Top: 14,
			}),
			text.New("STOCK DISPONIBLE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorGray, Top: 34,
			}),
			text.New(stockLabel(s.Stock), props.Text{
				Size: 12, Top: 40,
			}),
		),
	)
}

// imageCol dibuja la imagen si se pudo descargar; si no, un recuadro gris con leyenda.
func imageCol(s ports.SpecSheet) core.Col {
	if ext, ok := imageExtension(s.ImageFormat); ok && len(s.Image) > 0 {
		return col.New(6).Add(image.NewFromBytes(s.Image, ext, props.Rect{
			Center:  true,
			Percent: 95,
		}))
	}
	return col.New(6).
		Add(text.New("Imagen no disponible", props.Text{
			Size: 9, Align: align.Center, Color: colorGray, Top: 32,
		})).
		WithStyle(&props.Cell{
			BackgroundColor: colorLight,
			BorderType:      border.Full,
			BorderColor:     colorGray,
			BorderThickness: 0.2,
		})
}

// tableHeaderRow: cabecera de la tabla de atributos.
func tableHeaderRow() core.Row {
	h := func(label string, size int) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 9, Color: colorWhite, Top: 2, Left: 2,
		}))
	}
	return row.New(8).Add(h("Atributo", 4), h("Valor", 8)).
		WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableRow: una fila atributo/valor; las filas pares llevan fondo claro.
func tableRow(label, value string, shaded bool) core.Row {
	r := row.New(8).Add(
		col.New(4).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 9, Top: 2, Left: 2,
		})),
		col.New(8).Add(text.New(value, props.Text{
			Size: 9, Top: 2, Left: 2,
		})),
	)
	if shaded {
		r.WithStyle(&props.Cell{BackgroundColor: colorLight})
	}
	return r
}

// footerRow: fecha/hora de generación e id del producto.
func footerRow(s ports.SpecSheet) core.Row {
	return row.New(10).Add(
		col.New(8).Add(text.New(
			"Generado el "+s.GeneratedAt.Format("02/01/2006 15:04"),
			props.Text{Size: 7, Color: colorGray, Top: 3},
		)),
		col.New(4).Add(text.New(
			"ID: "+s.ProductID,
			props.Text{Size: 7, Color: colorGray, Top: 3, Align: align.Right},
		)),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func attributeRows(s ports.SpecSheet) [][2]string {
	return [][2]string{
		{"Marca", s.Brand},
		{"Modelo", s.Model},
		{"Color", s.Color},
		{"Talla", s.Size},
		{"Precio", formatPrice(s.Price)},
		{"Stock", stockLabel(s.Stock)},
	}
}

func imageExtension(format string) (extension.Type, bool) {
	switch strings.ToLower(format) {
	case "png":
		return extension.Png, true
	case "jpg", "jpeg":
		return extension.Jpg, true
	}
	return "", false
}

func stockLabel(n int) string {
	if n == 1 {
		return "1 unidad"
	}
	return formatMoney(strconv.Itoa(n)) + " unidades"
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// formatPrice: "$1.500" o "$1.500,50" si hay centavos.
func formatPrice(p decimal.Decimal) string {
	fixed := p.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	out := "$" + formatMoney(intPart)
	if frac != "00" {
		out += "," + frac
	}
	return out
}

// formatMoney inserta puntos de miles en un string numérico sin decimales.
// Ej: "25000" → "25.000", "1000000" → "1.000.000"
func formatMoney(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}
