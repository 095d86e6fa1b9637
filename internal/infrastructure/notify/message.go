// Package notify implementa los canales de aviso de cambio de precio.
package notify

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// EventPriceChanged nombre del evento publicado.
const EventPriceChanged = "product.price_changed"

// PriceChange contenido común a todos los canales.
type PriceChange struct {
	Event     string          `json:"event"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	ImageURL  string          `json:"image_url,omitempty"`
	ChangedAt time.Time       `json:"changed_at"`
}

func newPriceChange(p *entity.Product, oldPrice decimal.Decimal) PriceChange {
	msg := PriceChange{
		Event:     EventPriceChanged,
		ProductID: p.ID,
		Name:      p.Name,
		OldPrice:  oldPrice,
		NewPrice:  p.Price,
		ChangedAt: p.UpdatedAt,
	}
	if p.Image != nil {
		msg.ImageURL = p.Image.URL
	}
	return msg
}

// Direction "bajó" o "subió" según el sentido del cambio.
func (m PriceChange) Direction() string {
	if m.NewPrice.LessThan(m.OldPrice) {
		return "bajó"
	}
	return "subió"
}
