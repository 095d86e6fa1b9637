package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/application/ports"
)

// CreateProductRequest entrada para crear un producto (multipart o JSON; price y stock admiten número o texto).
type CreateProductRequest struct {
	Name    string             `json:"name" form:"name"`
	Price   NumericText        `json:"price" form:"price"`
	Stock   NumericText        `json:"stock" form:"stock"`
	BrandID string             `json:"brand_id" form:"brand_id"`
	ModelID string             `json:"model_id" form:"model_id"`
	ColorID string             `json:"color_id" form:"color_id"`
	SizeID  string             `json:"size_id" form:"size_id"`
	Image   *ports.ImageUpload `json:"-" form:"-"`
	// ImageURL imagen ya alojada fuera del servicio (importación); se ignora si llega Image.
	ImageURL string `json:"image_url" form:"image_url"`
}

// UpdateProductRequest entrada para actualizar un producto. Nil = no cambia.
// Price y Stock no numéricos conservan el valor anterior.
type UpdateProductRequest struct {
	Name    *string            `json:"name" form:"name"`
	Price   *NumericText       `json:"price" form:"price"`
	Stock   *NumericText       `json:"stock" form:"stock"`
	BrandID *string            `json:"brand_id" form:"brand_id"`
	ModelID *string            `json:"model_id" form:"model_id"`
	ColorID *string            `json:"color_id" form:"color_id"`
	SizeID  *string            `json:"size_id" form:"size_id"`
	Image   *ports.ImageUpload `json:"-" form:"-"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	ImageURL  string          `json:"image_url,omitempty"`
	BrandID   string          `json:"brand_id"`
	ModelID   string          `json:"model_id,omitempty"`
	ColorID   string          `json:"color_id,omitempty"`
	SizeID    string          `json:"size_id,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductPage lista paginada de productos.
type ProductPage struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ImportRowError fallo de una fila de la planilla (número de fila 1-based, como en Excel).
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult resultado de la carga masiva: las filas fallidas no abortan el lote.
type ImportResult struct {
	Created int              `json:"created"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors"`
}
