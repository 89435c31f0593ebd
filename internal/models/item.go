package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func init() {
	// Money is rendered as a JSON number, not a quoted string.
	decimal.MarshalJSONWithoutQuotes = true
}

// Item is a catalog entry. IDs come from the authored menu and are stable.
type Item struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Name        string                      `gorm:"size:150;not null" json:"name"`
	Category    string                      `gorm:"size:100;index" json:"category"`
	Price       decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"price" swaggertype:"number"`
	Description string                      `json:"description,omitempty"`
	Image       string                      `json:"image,omitempty"`
	Tags        datatypes.JSONSlice[string] `json:"tags,omitempty" swaggertype:"array,string"`
	Veg         bool                        `gorm:"not null" json:"veg"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}
