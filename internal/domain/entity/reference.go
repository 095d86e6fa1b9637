package entity

import (
	"regexp"
	"strings"
	"time"

	"github.com/jhoicas/catalogo-api/internal/domain"
)

// Resource es la capacidad mínima que comparten las entidades de referencia
// (marca, modelo, color, talla) para ser servidas por el CRUD genérico.
type Resource interface {
	GetID() string
	SetID(id string)
	DisplayName() string
	Touch(now time.Time)
	Validate() error
}

// Reference campos comunes de toda entidad de referencia.
type Reference struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Reference) GetID() string       { return r.ID }
func (r *Reference) SetID(id string)     { r.ID = id }
func (r *Reference) DisplayName() string { return r.Name }

// Touch actualiza las marcas de tiempo; CreatedAt solo se fija la primera vez.
func (r *Reference) Touch(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// Validate aplica las reglas de campo comunes.
func (r *Reference) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return domain.NewValidationError("name", "es requerido")
	}
	if len(r.Name) > 100 {
		return domain.NewValidationError("name", "máximo 100 caracteres")
	}
	return nil
}

// Brand marca de producto.
type Brand struct{ Reference }

// Model modelo de producto.
type Model struct{ Reference }

// Size talla de producto.
type Size struct{ Reference }

// Color color de producto con código hexadecimal opcional.
type Color struct {
	Reference
	HexCode string `json:"hex_code,omitempty"`
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Validate agrega la regla del código hexadecimal.
func (c *Color) Validate() error {
	if err := c.Reference.Validate(); err != nil {
		return err
	}
	c.HexCode = strings.TrimSpace(c.HexCode)
	if c.HexCode != "" && !hexColor.MatchString(c.HexCode) {
		return domain.NewValidationError("hex_code", "debe tener formato #RGB o #RRGGBB")
	}
	return nil
}

var (
	_ Resource = (*Brand)(nil)
	_ Resource = (*Model)(nil)
	_ Resource = (*Color)(nil)
	_ Resource = (*Size)(nil)
)
