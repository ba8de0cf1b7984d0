package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultImageURL is substituted whenever a product is created without an image.
const DefaultImageURL = "https://images.unsplash.com/photo-1557821552-17105176677c?w=900&auto=format&fit=crop&q=60&ixlib=rb-4.0.3&ixid=M3wxMjA3fDB8MHxzZWFyY2h8ODN8fHNob3BwaW5nJTIwYmFnfGVufDB8MHwwfHx8Mg%3D%3D"

// Product represents an inventory item. Cost is held as a decimal so the
// two-fractional-digit invariant survives storage and JSON round-trips.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"type:varchar(30);not null" validate:"required,max=30"`
	Cost        decimal.Decimal `json:"cost" gorm:"type:decimal(10,2);not null"`
	Stock       int             `json:"stock" gorm:"default:0" validate:"gte=0"`
	Description string          `json:"description" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	Image       string          `json:"image" gorm:"type:varchar(2083)" validate:"omitempty,max=2083"`
}

// AfterFind re-pins the cost to two decimal places after a load; some
// drivers hand numeric columns back without trailing zeros.
func (p *Product) AfterFind(*gorm.DB) error {
	p.Cost = p.Cost.Round(2)
	return nil
}

// MarshalJSON renders the cost with exactly two fractional digits. The
// decimal's own rendering trims trailing zeros, which would turn a cost of
// 10.00 into "10" on the wire.
func (p Product) MarshalJSON() ([]byte, error) {
	type product Product
	return json.Marshal(struct {
		product
		Cost string `json:"cost"`
	}{product(p), p.Cost.StringFixed(2)})
}

// ProductInput is the wire shape for create and update requests. Pointer
// fields distinguish "absent" from a zero value, so an explicit stock of 0
// is never mistaken for a missing field during an update merge.
type ProductInput struct {
	Name        *string          `json:"name,omitempty"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
	Description *string          `json:"description,omitempty"`
	Image       *string          `json:"image,omitempty"`
}
