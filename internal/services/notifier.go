package services

import (
	"context"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/events"
	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 2 * time.Second

// Notifier emits domain events after their changes are committed.
// Publishing is fire-and-forget; failures are only logged.
type Notifier struct {
	broker events.Broker
}

func NewNotifier(broker events.Broker) *Notifier {
	return &Notifier{broker: broker}
}

func (n *Notifier) publish(ctx context.Context, evt events.Event, topics ...string) {
	if n == nil || n.broker == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for _, topic := range topics {
		if err := n.broker.Publish(ctx, topic, evt); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"topic": topic,
				"event": evt.Type,
			}).Warn("Event publish failed")
		}
	}
}

func (n *Notifier) OrderCreated(ctx context.Context, order *models.Order) {
	evt := events.New(events.NewOrder, events.NewOrderPayload{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		ItemsCount:   len(order.Items),
		TotalAmount:  order.TotalAmount.InexactFloat64(),
		Type:         string(order.Type),
		Status:       string(order.Status),
	})
	evt.OrderID = order.ID
	n.publish(ctx, evt, events.TopicChief, events.TopicReceptionist, events.TopicManager)
}

func (n *Notifier) OrderUpdated(ctx context.Context, payload events.OrderUpdatedPayload) {
	evt := events.New(events.OrderUpdated, payload)
	evt.OrderID = payload.OrderID
	n.publish(ctx, evt, events.TopicChief, events.TopicReceptionist, events.TopicManager)
}

func (n *Notifier) InventoryChanged(ctx context.Context, rec models.InventoryRecord) {
	evt := events.New(events.InventoryUpdated, events.InventoryPayload{
		IngredientID: rec.ID,
		ItemID:       rec.ItemID,
		Name:         rec.Name,
		StockLevel:   rec.Quantity,
		Status:       rec.StockStatus(),
	})
	n.publish(ctx, evt, events.TopicInventory, events.TopicManager)
}

func (n *Notifier) KPIUpdated(ctx context.Context, dashboard string, data interface{}) {
	evt := events.New(events.KPIUpdated, data)
	evt.Dashboard = dashboard
	n.publish(ctx, evt, dashboard)
}
