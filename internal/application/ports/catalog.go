package ports

import (
	"context"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

// ProductRow fila de la planilla exportada, con las referencias ya resueltas a nombre.
type ProductRow struct {
	Name      string
	Price     decimal.Decimal
	Stock     int
	Brand     string
	Model     string
	Color     string
	Size      string
	ImageURL  string
	CreatedAt time.Time
}

// SheetRow fila leída de una planilla de carga masiva. Row es el número de fila en la hoja.
type SheetRow struct {
	Row      int
	Name     string
	Price    string
	Stock    string
	Brand    string
	Model    string
	Color    string
	Size     string
	ImageURL string
}

// ProductSheet codifica y decodifica la planilla de productos.
type ProductSheet interface {
	Export(rows []ProductRow) ([]byte, error)
	Import(r io.Reader) ([]SheetRow, error)
}

// SpecSheet datos de la ficha técnica de un producto.
// Image vacío indica que la imagen no está disponible y se dibuja un recuadro en su lugar.
type SpecSheet struct {
	ProductID   string
	Name        string
	Price       decimal.Decimal
	Stock       int
	Brand       string
	Model       string
	Color       string
	Size        string
	Image       []byte
	ImageFormat string // "jpg" | "png"
	GeneratedAt time.Time
}

// SpecSheetRenderer genera el PDF de la ficha.
type SpecSheetRenderer interface {
	Render(sheet SpecSheet) ([]byte, error)
}

// ImageFetcher descarga una imagen remota. El llamador acota la espera con ctx.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}
