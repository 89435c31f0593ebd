package models

import "time"

// OrderHistory is one append-only audit row for an order status change.
// ChangedBy is a weak reference: deleting the user nulls it.
type OrderHistory struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	OrderID       uint         `gorm:"not null;index" json:"order_id"`
	OldStatus     *OrderStatus `gorm:"size:20" json:"old_status"`
	NewStatus     OrderStatus  `gorm:"size:20;not null" json:"new_status"`
	ChangedBy     *uint        `gorm:"index" json:"changed_by"`
	ChangedByUser *User        `gorm:"foreignKey:ChangedBy;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
	Notes         string       `json:"notes,omitempty"`
	ChangedAt     time.Time    `gorm:"not null;index" json:"changed_at"`
}

func (OrderHistory) TableName() string {
	return "order_history"
}
