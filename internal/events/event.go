// Package events defines the domain events pushed to staff dashboards and the
// broker contract used to fan them out.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

type Type string

const (
	NewOrder         Type = "new_order"
	OrderUpdated     Type = "order_updated"
	InventoryUpdated Type = "inventory_updated"
	KPIUpdated       Type = "kpi_updated"
)

// Dashboard topics. One per staff role.
const (
	TopicChief        = "chief"
	TopicReceptionist = "receptionist"
	TopicInventory    = "inventory"
	TopicManager      = "manager"
)

// Topics lists every dashboard topic.
var Topics = []string{TopicChief, TopicReceptionist, TopicInventory, TopicManager}

// ValidTopic reports whether topic is a known dashboard.
func ValidTopic(topic string) bool {
	for _, t := range Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// ErrClosed is returned by brokers after Close.
var ErrClosed = errors.New("broker closed")

// Event is one timestamped message for a dashboard.
type Event struct {
	Type      Type        `json:"type"`
	OrderID   uint        `json:"order_id,omitempty"`
	Dashboard string      `json:"dashboard,omitempty"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// New stamps an event with the current time.
func New(t Type, data interface{}) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now().UTC()}
}

// Broker fans events out by topic. Delivery is best-effort.
type Broker interface {
	Publish(ctx context.Context, topic string, evt Event) error
	// Subscribe streams events for topic until ctx is done; the channel is then closed.
	Subscribe(ctx context.Context, topic string) (<-chan Event, error)
	Close() error
}

// Payloads carried by Event.Data.

type NewOrderPayload struct {
	OrderID      uint    `json:"order_id"`
	CustomerName string  `json:"customer_name"`
	ItemsCount   int     `json:"items_count"`
	TotalAmount  float64 `json:"total_amount"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
}

type OrderUpdatedPayload struct {
	OrderID   uint   `json:"order_id"`
	OldStatus string `json:"old_status,omitempty"`
	Status    string `json:"status"`
	LineID    uint   `json:"line_id,omitempty"`
	ChangedBy string `json:"changed_by,omitempty"`
}

type InventoryPayload struct {
	IngredientID uint   `json:"ingredient_id"`
	ItemID       *uint  `json:"item_id,omitempty"`
	Name         string `json:"name"`
	StockLevel   int    `json:"stock_level"`
	Status       string `json:"status"`
}
