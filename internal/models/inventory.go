package models

import "time"

// InventoryRecord tracks stock for a catalog item. Quantity never drops below zero.
type InventoryRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SKU          string    `gorm:"size:64;index" json:"sku"`
	Name         string    `gorm:"size:150;not null" json:"name"`
	ItemID       *uint     `gorm:"index" json:"item_id,omitempty"`
	Quantity     int       `gorm:"not null;default:0" json:"quantity"`
	ReorderLevel int       `gorm:"not null;default:0" json:"reorder_level"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (InventoryRecord) TableName() string {
	return "inventory"
}

// Low reports whether the record is at or below its reorder level.
func (r InventoryRecord) Low() bool {
	return r.Quantity <= r.ReorderLevel
}

// StockStatus is "low" or "ok".
func (r InventoryRecord) StockStatus() string {
	if r.Low() {
		return "low"
	}
	return "ok"
}
