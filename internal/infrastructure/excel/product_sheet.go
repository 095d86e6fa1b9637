// Package excel implementa la planilla de productos (.xlsx) con excelize.
package excel

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
)

var _ ports.ProductSheet = (*ProductSheet)(nil)

// Columnas en el orden de la planilla (A..I). La importación ignora "Creado".
var headers = []string{"Nombre", "Precio", "Stock", "Marca", "Modelo", "Color", "Talla", "Imagen", "Creado"}

const (
	sheetName  = "Productos"
	dateLayout = "2006-01-02 15:04"
)

// ProductSheet codec de planillas de productos.
type ProductSheet struct{}

// NewProductSheet construye el codec.
func NewProductSheet() *ProductSheet { return &ProductSheet{} }

// Export escribe una fila de encabezados y una fila por producto.
func (s *ProductSheet) Export(rows []ports.ProductRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("renombrar hoja: %w", err)
	}

	headerStyleID, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F4E78"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("estilo encabezado: %w", err)
	}
	priceStyleID, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("estilo precio: %w", err)
	}

	colWidth := make([]int, len(headers))
	set := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if w := len([]rune(fmt.Sprint(v))); w > colWidth[col] {
			colWidth[col] = w
		}
		return f.SetCellValue(sheetName, cell, v)
	}

	for i, h := range headers {
		if err := set(i, 1, h); err != nil {
			return nil, fmt.Errorf("encabezado: %w", err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", headerStyleID); err != nil {
		return nil, fmt.Errorf("estilo encabezado: %w", err)
	}

	for i, p := range rows {
		r := i + 2
		values := []any{
			p.Name,
			p.Price.InexactFloat64(),
			p.Stock,
			p.Brand,
			p.Model,
			p.Color,
			p.Size,
			p.ImageURL,
			p.CreatedAt.Format(dateLayout),
		}
		for c, v := range values {
			if err := set(c, r, v); err != nil {
				return nil, fmt.Errorf("fila %d: %w", r, err)
			}
		}
		if err := f.SetCellStyle(sheetName, fmt.Sprintf("B%d", r), fmt.Sprintf("B%d", r), priceStyleID); err != nil {
			return nil, fmt.Errorf("estilo precio: %w", err)
		}
	}

	for i, w := range colWidth {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(w)*1.2 + 2
		if width < 8 {
			width = 8
		}
		if width > 60 {
			width = 60
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return nil, fmt.Errorf("ancho de columna: %w", err)
		}
	}
	if len(rows) > 0 {
		if err := f.AutoFilter(sheetName, fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1), nil); err != nil {
			return nil, fmt.Errorf("autofiltro: %w", err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("escribir planilla: %w", err)
	}
	return buf.Bytes(), nil
}

// Import lee la primera hoja desde la fila 2. Las filas vacías se omiten.
func (s *ProductSheet) Import(r io.Reader) ([]ports.SheetRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abrir planilla: %w", err)
	}
	defer f.Close()

	first := f.GetSheetName(0)
	if first == "" {
		return nil, fmt.Errorf("planilla sin hojas")
	}
	rows, err := f.GetRows(first)
	if err != nil {
		return nil, fmt.Errorf("leer filas: %w", err)
	}

	out := make([]ports.SheetRow, 0, len(rows))
	for idx := 1; idx < len(rows); idx++ {
		row := rows[idx]
		get := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}
		if isBlank(row) {
			continue
		}
		out = append(out, ports.SheetRow{
			Row:      idx + 1,
			Name:     get(0),
			Price:    normalizeNumber(get(1)),
			Stock:    normalizeNumber(get(2)),
			Brand:    get(3),
			Model:    get(4),
			Color:    get(5),
			Size:     get(6),
			ImageURL: get(7),
		})
	}
	return out, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// normalizeNumber quita separadores de miles que Excel agrega al formatear (1,500.00 -> 1500.00).
func normalizeNumber(s string) string {
	return strings.ReplaceAll(s, ",", "")
}
