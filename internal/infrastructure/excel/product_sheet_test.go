package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
)

func TestExport_HeaderAndRows(t *testing.T) {
	sheet := NewProductSheet()
	created := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)

	data, err := sheet.Export([]ports.ProductRow{
		{Name: "Zapatilla", Price: decimal.RequireFromString("1500.50"), Stock: 3, Brand: "Nike",
			Color: "Rojo", ImageURL: "https://cdn/x.jpg", CreatedAt: created},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Productos")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, "Zapatilla", rows[1][0])
	assert.Equal(t, "Nike", rows[1][3])
	assert.Equal(t, "2026-03-01 10:30", rows[1][8])

	raw, err := f.GetCellValue("Productos", "B2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "1500.5", raw)
}

func TestExportThenImport(t *testing.T) {
	sheet := NewProductSheet()
	data, err := sheet.Export([]ports.ProductRow{
		{Name: "A", Price: decimal.NewFromInt(1200), Stock: 1, Brand: "Nike", Size: "42"},
		{Name: "B", Price: decimal.RequireFromString("9.99"), Stock: 0, Brand: "Adidas", Model: "Superstar"},
	})
	require.NoError(t, err)

	rows, err := sheet.Import(bytes.NewReader(data))

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ports.SheetRow{Row: 2, Name: "A", Price: "1200.00", Stock: "1", Brand: "Nike", Size: "42"}, rows[0])
	assert.Equal(t, 3, rows[1].Row)
	assert.Equal(t, "9.99", rows[1].Price)
	assert.Equal(t, "Superstar", rows[1].Model)
}

func TestImport_SkipsBlankRowsAndKeepsRowNumbers(t *testing.T) {
	f := excelize.NewFile()
	s := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(s, "A1", &[]any{"Nombre", "Precio", "Stock", "Marca"}))
	require.NoError(t, f.SetSheetRow(s, "A2", &[]any{"Uno", "10", "1", "Nike"}))
	require.NoError(t, f.SetSheetRow(s, "A4", &[]any{"Tres", "30", "3"}))
	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))

	rows, err := NewProductSheet().Import(buf)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[0].Row)
	assert.Equal(t, 4, rows[1].Row)
	assert.Empty(t, rows[1].Brand)
}

func TestImport_InvalidFile(t *testing.T) {
	_, err := NewProductSheet().Import(bytes.NewReader([]byte("no es un xlsx")))
	assert.Error(t, err)
}
