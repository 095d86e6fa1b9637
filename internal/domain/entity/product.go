package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImageRef referencia opaca a una imagen alojada en el image store.
type ImageRef struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Product representa un producto del catálogo.
// BrandID es obligatorio; ModelID, ColorID y SizeID vacíos significan "sin asociación".
type Product struct {
	ID        string
	Name      string
	Price     decimal.Decimal // precio de venta, nunca negativo
	Stock     int
	Image     *ImageRef
	BrandID   string
	ModelID   string
	ColorID   string
	SizeID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasImage indica si el producto tiene una imagen asociada, alojada por el
// servicio o externa (sin Key). Solo las que tienen Key se borran del image store.
func (p *Product) HasImage() bool {
	return p != nil && p.Image != nil && p.Image.URL != ""
}
