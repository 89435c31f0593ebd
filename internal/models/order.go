package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderStatus is the lifecycle state shared by orders and their items.
type OrderStatus string

const (
	StatusQueued    OrderStatus = "queued"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusServed    OrderStatus = "served"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every recognized status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusQueued, StatusPreparing, StatusReady, StatusServed, StatusCancelled}

// Valid reports whether s is one of the recognized statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further kitchen work happens in this state.
func (s OrderStatus) Terminal() bool {
	return s == StatusServed || s == StatusCancelled
}

// ParseOrderStatus normalizes and validates a status string.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("unrecognized status %q", raw)
	}
	return s, nil
}

type OrderType string

const (
	OrderTypeDineIn   OrderType = "dine-in"
	OrderTypeTakeaway OrderType = "takeaway"
	OrderTypeDelivery OrderType = "delivery"
)

// ParseOrderType returns dine-in for an empty value.
func ParseOrderType(raw string) (OrderType, error) {
	switch t := OrderType(strings.ToLower(strings.TrimSpace(raw))); t {
	case "":
		return OrderTypeDineIn, nil
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return t, nil
	default:
		return "", fmt.Errorf("unrecognized order type %q", raw)
	}
}

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityRush   Priority = "rush"
)

// ParsePriority returns normal for an empty value.
func ParsePriority(raw string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PriorityNormal, nil
	case PriorityNormal, PriorityRush:
		return p, nil
	default:
		return "", fmt.Errorf("unrecognized priority %q", raw)
	}
}

// Order is one customer transaction. TotalAmount is fixed at creation.
type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CustomerName  string          `gorm:"size:150" json:"customer_name"`
	CustomerPhone string          `gorm:"size:40" json:"customer_phone,omitempty"`
	Type          OrderType       `gorm:"size:20;not null;default:dine-in" json:"type"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount" swaggertype:"number"`
	Status        OrderStatus     `gorm:"size:20;not null;index" json:"status"`
	Priority      Priority        `gorm:"size:10;not null;default:normal" json:"priority"`
	CustomerNotes string          `json:"customer_notes,omitempty"`
	Cashier       string          `gorm:"size:100" json:"cashier,omitempty"`
	CreatedBy     *uint           `json:"created_by,omitempty"`
	OrderTime     time.Time       `gorm:"not null;index" json:"order_time"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem is one priced line of an order. Price is frozen at creation.
type OrderItem struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	OrderID    uint                        `gorm:"not null;index" json:"order_id"`
	ItemID     uint                        `gorm:"not null;index" json:"item_id"`
	Qty        int                         `gorm:"not null" json:"qty"`
	Price      decimal.Decimal             `gorm:"type:decimal(10,2);not null" json:"price" swaggertype:"number"`
	Modifiers  datatypes.JSONSlice[string] `json:"modifiers,omitempty" swaggertype:"array,string"`
	ItemStatus OrderStatus                 `gorm:"size:20;not null;default:queued" json:"item_status"`
	PrepStart  *time.Time                  `json:"prep_start,omitempty"`
	PrepEnd    *time.Time                  `json:"prep_end,omitempty"`
}

// LineTotal is price × qty.
func (oi OrderItem) LineTotal() decimal.Decimal {
	return oi.Price.Mul(decimal.NewFromInt(int64(oi.Qty)))
}
