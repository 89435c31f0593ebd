package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/events"
	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type orderFixture struct {
	db        *gorm.DB
	clock     *testClock
	broker    *events.MemoryBroker
	orders    OrderService
	inventory InventoryService
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	db := setupTestDB(t)
	clock := newTestClock(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	broker := events.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })

	notifier := NewNotifier(broker)
	inventory := NewInventoryService(db, notifier)
	kpis := NewKPIService(db, WithClock(clock.Now))
	orders := NewOrderService(db, NewCatalogService(db, setupTestMenu(t)), inventory, NewAuditService(db), kpis, notifier, WithClock(clock.Now))

	return &orderFixture{db: db, clock: clock, broker: broker, orders: orders, inventory: inventory}
}

func (f *orderFixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func TestCreateOrderComputesServerTotal(t *testing.T) {
	f := newOrderFixture(t)
	clientTotal := 999.0

	order, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		Items: []OrderLineRequest{
			{ItemID: float64(1), Qty: intPtr(2)},
			{ItemID: float64(2), Qty: intPtr(1)},
		},
		CustomerName: "Asha",
		TotalAmount:  &clientTotal,
	}, PublicActor)
	require.NoError(t, err)

	assert.True(t, order.TotalAmount.Equal(money("180.00")), "got %s", order.TotalAmount)
	assert.Equal(t, models.StatusQueued, order.Status)
	assert.Equal(t, models.OrderTypeDineIn, order.Type)
	assert.Equal(t, models.PriorityNormal, order.Priority)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].Price.Equal(money("50")))
	assert.True(t, order.Items[1].Price.Equal(money("80")))
	for _, line := range order.Items {
		assert.Equal(t, models.StatusQueued, line.ItemStatus)
	}

	history, err := f.orders.History(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].OldStatus)
	assert.Equal(t, models.StatusQueued, history[0].NewStatus)
	assert.Nil(t, history[0].ChangedBy)
}

func TestCreateOrderSeedsItemsOnce(t *testing.T) {
	f := newOrderFixture(t)
	req := CreateOrderRequest{Items: []OrderLineRequest{{ItemID: float64(3)}, {ItemID: float64(3)}}}

	_, err := f.orders.CreateOrder(context.Background(), req, PublicActor)
	require.NoError(t, err)
	_, err = f.orders.CreateOrder(context.Background(), req, PublicActor)
	require.NoError(t, err)

	assert.Equal(t, int64(1), f.count(t, &models.Item{}))
	assert.Equal(t, int64(2), f.count(t, &models.Order{}))
}

func TestCreateOrderUnknownItemCreatesNothing(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		Items: []OrderLineRequest{
			{ItemID: float64(999)},
			{ItemID: float64(1)},
			{ItemID: "998"},
		},
	}, PublicActor)
	require.Error(t, err)

	var notFound *ItemNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, []uint{999, 998}, notFound.Missing)
	assert.Contains(t, err.Error(), "999")
	assert.Contains(t, err.Error(), "998")

	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Zero(t, f.count(t, &models.OrderItem{}))
	assert.Zero(t, f.count(t, &models.OrderHistory{}))
}

func TestCreateOrderRejectsInvalidInput(t *testing.T) {
	f := newOrderFixture(t)

	tests := []struct {
		name string
		req  CreateOrderRequest
		want error
	}{
		{"no items", CreateOrderRequest{}, ErrEmptyOrder},
		{"non numeric id", CreateOrderRequest{Items: []OrderLineRequest{{ItemID: "latte"}}}, ErrInvalidItemReference},
		{"fractional id", CreateOrderRequest{Items: []OrderLineRequest{{ItemID: 1.5}}}, ErrInvalidItemReference},
		{"missing id", CreateOrderRequest{Items: []OrderLineRequest{{Qty: intPtr(1)}}}, ErrInvalidItemReference},
		{"zero qty", CreateOrderRequest{Items: []OrderLineRequest{{ItemID: float64(1), Qty: intPtr(0)}}}, ErrInvalidQuantity},
		{"unknown type", CreateOrderRequest{Type: "drive-thru", Items: []OrderLineRequest{{ItemID: float64(1)}}}, ErrInvalidOrderType},
		{"unknown priority", CreateOrderRequest{Priority: "asap", Items: []OrderLineRequest{{ItemID: float64(1)}}}, ErrInvalidPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.CreateOrder(context.Background(), tt.req, PublicActor)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, f.count(t, &models.Order{}))
}

func TestCreateOrderAcceptsNumericStrings(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		Items:    []OrderLineRequest{{ItemID: "2", Modifiers: []string{" oat milk ", ""}}},
		Type:     "Takeaway",
		Priority: "rush",
	}, PublicActor)
	require.NoError(t, err)

	assert.Equal(t, models.OrderTypeTakeaway, order.Type)
	assert.Equal(t, models.PriorityRush, order.Priority)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1, order.Items[0].Qty)
	assert.Equal(t, []string{"oat milk"}, []string(order.Items[0].Modifiers))
	assert.Equal(t, "Walk-in", order.CustomerName)
}

func TestStatusTransitionsAppendHistory(t *testing.T) {
	f := newOrderFixture(t)
	chief := createStaff(t, f.db, "kitchen", models.RoleChief)
	actor := StaffActor(chief.ID, chief.Username)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []OrderLineRequest{{ItemID: float64(1), Qty: intPtr(2)}},
	}, PublicActor)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Minute)
	old, updated, err := f.orders.SetStatus(ctx, order.ID, "preparing", actor, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, old)
	assert.Equal(t, models.StatusPreparing, updated.Status)
	require.NotNil(t, updated.Items[0].PrepStart)
	assert.Nil(t, updated.Items[0].PrepEnd)

	f.clock.Advance(12 * time.Minute)
	old, updated, err = f.orders.SetStatus(ctx, order.ID, "READY", actor, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, old)
	assert.Equal(t, models.StatusReady, updated.Items[0].ItemStatus)
	require.NotNil(t, updated.Items[0].PrepEnd)
	assert.Equal(t, 12*time.Minute, updated.Items[0].PrepEnd.Sub(*updated.Items[0].PrepStart))

	history, err := f.orders.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.NotNil(t, history[1].OldStatus)
	require.NotNil(t, history[2].OldStatus)
	assert.Equal(t, models.StatusQueued, *history[1].OldStatus)
	assert.Equal(t, models.StatusPreparing, *history[2].OldStatus)
	assert.Equal(t, models.StatusReady, history[2].NewStatus)
	require.NotNil(t, history[2].ChangedBy)
	assert.Equal(t, chief.ID, *history[2].ChangedBy)
	assert.Equal(t, "Status updated by kitchen", history[2].Notes)
}

func TestSetStatusAllowsBackwardAndRepeatedTransitions(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, CreateOrderRequest{Items: []OrderLineRequest{{ItemID: float64(1)}}}, PublicActor)
	require.NoError(t, err)

	_, _, err = f.orders.SetStatus(ctx, order.ID, "ready", PublicActor, "")
	require.NoError(t, err)
	old, _, err := f.orders.SetStatus(ctx, order.ID, "ready", PublicActor, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, old)
	old, updated, err := f.orders.SetStatus(ctx, order.ID, "queued", PublicActor, "back to the line")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, old)
	assert.Equal(t, models.StatusQueued, updated.Status)

	history, err := f.orders.History(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 4)
	assert.Equal(t, "back to the line", history[3].Notes)
}

func TestSetStatusErrors(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, CreateOrderRequest{Items: []OrderLineRequest{{ItemID: float64(1)}}}, PublicActor)
	require.NoError(t, err)

	_, _, err = f.orders.SetStatus(ctx, order.ID, "done", PublicActor, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, _, err = f.orders.SetStatus(ctx, 4242, "ready", PublicActor, "")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	assert.Equal(t, int64(1), f.count(t, &models.OrderHistory{}))
}

func TestCancelledItemsKeepStatus(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []OrderLineRequest{{ItemID: float64(1)}, {ItemID: float64(2)}},
	}, PublicActor)
	require.NoError(t, err)

	line, err := f.orders.SetItemStatus(ctx, order.ID, order.Items[1].ID, "cancelled", PublicActor)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, line.ItemStatus)

	_, updated, err := f.orders.SetStatus(ctx, order.ID, "preparing", PublicActor, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, updated.Items[0].ItemStatus)
	assert.Equal(t, models.StatusCancelled, updated.Items[1].ItemStatus)
	assert.Nil(t, updated.Items[1].PrepStart)

	_, err = f.orders.SetItemStatus(ctx, order.ID, 9999, "ready", PublicActor)
	assert.ErrorIs(t, err, ErrOrderItemNotFound)
}

func TestSetItemStatusTracksPrepTimes(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, CreateOrderRequest{Items: []OrderLineRequest{{ItemID: float64(3)}}}, PublicActor)
	require.NoError(t, err)
	lineID := order.Items[0].ID

	_, err = f.orders.SetItemStatus(ctx, order.ID, lineID, "preparing", PublicActor)
	require.NoError(t, err)
	f.clock.Advance(7 * time.Minute)
	line, err := f.orders.SetItemStatus(ctx, order.ID, lineID, "served", PublicActor)
	require.NoError(t, err)

	require.NotNil(t, line.PrepStart)
	require.NotNil(t, line.PrepEnd)
	assert.Equal(t, 7*time.Minute, line.PrepEnd.Sub(*line.PrepStart))

	reloaded, err := f.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusQueued, reloaded.Status, "line updates leave the order status alone")
	assert.Equal(t, models.StatusServed, reloaded.Items[0].ItemStatus)
}

func TestQuickPOSSimulatedPayment(t *testing.T) {
	f := newOrderFixture(t)
	cashier := createStaff(t, f.db, "front", models.RoleReceptionist)
	ctx := context.Background()

	order, err := f.orders.CreateOrder(ctx, CreateOrderRequest{
		Items:           []OrderLineRequest{{ItemID: float64(2), Qty: intPtr(2)}},
		Type:            "takeaway",
		SimulatePayment: true,
	}, StaffActor(cashier.ID, cashier.Username))
	require.NoError(t, err)

	assert.Equal(t, models.StatusServed, order.Status)
	assert.Equal(t, "front", order.Cashier)
	require.NotNil(t, order.CreatedBy)
	assert.Equal(t, cashier.ID, *order.CreatedBy)
	assert.Equal(t, models.StatusServed, order.Items[0].ItemStatus)

	history, err := f.orders.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].OldStatus)
	require.NotNil(t, history[1].OldStatus)
	assert.Equal(t, models.StatusQueued, *history[1].OldStatus)
	assert.Equal(t, models.StatusServed, history[1].NewStatus)
	assert.Equal(t, "Payment simulated", history[1].Notes)
}

func TestCreateOrderDecrementsInventoryAndPublishes(t *testing.T) {
	f := newOrderFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	itemID := uint(1)
	beans := &models.InventoryRecord{Name: "Espresso beans", ItemID: &itemID, Quantity: 1, ReorderLevel: 5}
	require.NoError(t, f.db.Create(beans).Error)

	chief, err := f.broker.Subscribe(ctx, events.TopicChief)
	require.NoError(t, err)
	stock, err := f.broker.Subscribe(ctx, events.TopicInventory)
	require.NoError(t, err)
	desk, err := f.broker.Subscribe(ctx, events.TopicReceptionist)
	require.NoError(t, err)

	order, err := f.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []OrderLineRequest{{ItemID: float64(1), Qty: intPtr(3)}, {ItemID: float64(2)}},
	}, PublicActor)
	require.NoError(t, err)

	var reloaded models.InventoryRecord
	require.NoError(t, f.db.First(&reloaded, beans.ID).Error)
	assert.Equal(t, 0, reloaded.Quantity, "stock is clamped at zero")

	evt := receiveEvent(t, chief)
	assert.Equal(t, events.NewOrder, evt.Type)
	assert.Equal(t, order.ID, evt.OrderID)
	payload, ok := evt.Data.(events.NewOrderPayload)
	require.True(t, ok)
	assert.Equal(t, 2, payload.ItemsCount)
	assert.Equal(t, 230.0, payload.TotalAmount)

	evt = receiveEvent(t, stock)
	assert.Equal(t, events.InventoryUpdated, evt.Type)
	inv, ok := evt.Data.(events.InventoryPayload)
	require.True(t, ok)
	assert.Equal(t, "low", inv.Status)
	assert.Equal(t, 0, inv.StockLevel)

	assert.Equal(t, events.NewOrder, receiveEvent(t, desk).Type)
	evt = receiveEvent(t, desk)
	assert.Equal(t, events.KPIUpdated, evt.Type)
	assert.Equal(t, events.TopicReceptionist, evt.Dashboard)
	kpis, ok := evt.Data.(ReceptionistKPIs)
	require.True(t, ok)
	assert.Equal(t, int64(1), kpis.QueueLength)
}

func TestDeletedActorKeepsHistoryWithoutAuthor(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	ghost := StaffActor(9999, "ghost")

	order, err := f.orders.CreateOrder(ctx, CreateOrderRequest{Items: []OrderLineRequest{{ItemID: float64(1)}}}, ghost)
	require.NoError(t, err)
	_, _, err = f.orders.SetStatus(ctx, order.ID, "preparing", ghost, "")
	require.NoError(t, err)

	history, err := f.orders.History(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, row := range history {
		assert.Nil(t, row.ChangedBy)
	}
	assert.Equal(t, models.StatusPreparing, history[1].NewStatus)
}

func TestAuditAndInventoryFailuresDoNotFailOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	chief := createStaff(t, f.db, "kitchen", models.RoleChief)

	require.NoError(t, f.db.Migrator().DropTable(&models.OrderHistory{}))
	require.NoError(t, f.db.Migrator().DropTable(&models.InventoryRecord{}))

	order, err := f.orders.CreateOrder(ctx, CreateOrderRequest{
		Items: []OrderLineRequest{{ItemID: float64(1), Qty: intPtr(2)}},
	}, PublicActor)
	require.NoError(t, err)
	assert.True(t, order.TotalAmount.Equal(money("100")))

	_, updated, err := f.orders.SetStatus(ctx, order.ID, "ready", StaffActor(chief.ID, chief.Username), "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusReady, updated.Status)

	assert.Equal(t, int64(1), f.count(t, &models.Order{}))
	assert.Equal(t, int64(1), f.count(t, &models.OrderItem{}))
}

func TestFailedLineInsertRollsBackOrder(t *testing.T) {
	f := newOrderFixture(t)
	require.NoError(t, f.db.Exec(`CREATE TRIGGER refuse_order_lines BEFORE INSERT ON order_items
		BEGIN SELECT RAISE(ABORT, 'order line refused'); END`).Error)

	_, err := f.orders.CreateOrder(context.Background(), CreateOrderRequest{
		Items: []OrderLineRequest{{ItemID: float64(1)}, {ItemID: float64(2)}},
	}, PublicActor)
	require.Error(t, err)

	assert.Zero(t, f.count(t, &models.Order{}))
	assert.Zero(t, f.count(t, &models.OrderItem{}))
	assert.Zero(t, f.count(t, &models.OrderHistory{}))
}

func TestListOrdersAndExport(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	first, err := f.orders.CreateOrder(ctx, CreateOrderRequest{
		Items:        []OrderLineRequest{{ItemID: float64(1)}, {ItemID: float64(3)}},
		CustomerName: "Ravi",
	}, PublicActor)
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.orders.CreateOrder(ctx, CreateOrderRequest{Items: []OrderLineRequest{{ItemID: float64(2)}}}, PublicActor)
	require.NoError(t, err)
	_, _, err = f.orders.SetStatus(ctx, second.ID, "cancelled", PublicActor, "")
	require.NoError(t, err)

	all, err := f.orders.ListOrders(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	cancelled, err := f.orders.ListOrders(ctx, OrderFilter{Status: models.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, second.ID, cancelled[0].ID)

	rows, err := f.orders.ExportRows(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, first.ID, rows[0].OrderID)
	assert.Equal(t, "Espresso", rows[0].ItemName)
	assert.Equal(t, "Croissant", rows[1].ItemName)
	assert.Equal(t, 115.0, rows[1].TotalAmount)
	assert.Equal(t, "cancelled", rows[2].Status)
	assert.Len(t, ExportHeaders, 12)
}

func receiveEvent(t *testing.T, ch <-chan events.Event) events.Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "channel closed")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}
