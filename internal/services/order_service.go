package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/events"
	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultOrderListLimit = 100
	maxOrderListLimit     = 500
)

// OrderLineRequest is one requested line. ItemID is left untyped so a
// malformed reference can be reported by value.
type OrderLineRequest struct {
	ItemID    interface{} `json:"item_id" swaggertype:"integer"`
	Qty       *int        `json:"qty"`
	Modifiers []string    `json:"modifiers"`
}

// CreateOrderRequest is an order submission. TotalAmount is informational only.
type CreateOrderRequest struct {
	Items           []OrderLineRequest `json:"items"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone"`
	Type            string             `json:"type"`
	TotalAmount     *float64           `json:"total_amount"`
	CustomerNotes   string             `json:"customer_notes"`
	Priority        string             `json:"priority"`
	SimulatePayment bool               `json:"simulate_payment"`
}

type OrderFilter struct {
	Status models.OrderStatus
	Limit  int
}

// ExportRow is one order line flattened for CSV or JSON export.
type ExportRow struct {
	OrderID       uint      `json:"OrderID"`
	CustomerName  string    `json:"CustomerName"`
	CustomerPhone string    `json:"CustomerPhone"`
	OrderType     string    `json:"OrderType"`
	TotalAmount   float64   `json:"TotalAmount"`
	Status        string    `json:"Status"`
	Priority      string    `json:"Priority"`
	OrderTime     time.Time `json:"OrderTime"`
	ItemID        uint      `json:"ItemID,omitempty"`
	ItemName      string    `json:"ItemName,omitempty"`
	ItemQty       int       `json:"ItemQty,omitempty"`
	ItemPrice     float64   `json:"ItemPrice,omitempty"`
}

// ExportHeaders is the CSV column order for ExportRow.
var ExportHeaders = []string{
	"OrderID", "CustomerName", "CustomerPhone", "OrderType", "TotalAmount", "Status",
	"Priority", "OrderTime", "ItemID", "ItemName", "ItemQty", "ItemPrice",
}

// OrderService owns order creation and the status state machine.
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest, actor Actor) (*models.Order, error)
	// SetStatus moves an order to status and returns the status it had before.
	SetStatus(ctx context.Context, orderID uint, status string, actor Actor, note string) (models.OrderStatus, *models.Order, error)
	SetItemStatus(ctx context.Context, orderID, lineID uint, status string, actor Actor) (*models.OrderItem, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	History(ctx context.Context, orderID uint) ([]models.OrderHistory, error)
	ExportRows(ctx context.Context) ([]ExportRow, error)
}

type orderService struct {
	db        *gorm.DB
	catalog   CatalogService
	inventory InventoryService
	audit     AuditService
	kpis      KPIService
	notifier  *Notifier
	opts      options
}

func NewOrderService(db *gorm.DB, catalog CatalogService, inventory InventoryService, audit AuditService, kpis KPIService, notifier *Notifier, opts ...Option) OrderService {
	return &orderService{
		db:        db,
		catalog:   catalog,
		inventory: inventory,
		audit:     audit,
		kpis:      kpis,
		notifier:  notifier,
		opts:      newOptions(opts),
	}
}

// parseItemID accepts positive integers as JSON numbers or numeric strings.
func parseItemID(v interface{}) (uint, bool) {
	switch id := v.(type) {
	case float64:
		if id < 1 || id != math.Trunc(id) || id > math.MaxUint32 {
			return 0, false
		}
		return uint(id), true
	case int:
		if id < 1 {
			return 0, false
		}
		return uint(id), true
	case json.Number:
		return parseItemID(id.String())
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(id), 10, 32)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint(n), true
	default:
		return 0, false
	}
}

func cleanModifiers(in []string) datatypes.JSONSlice[string] {
	out := make(datatypes.JSONSlice[string], 0, len(in))
	for _, m := range in {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest, actor Actor) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	orderType, err := models.ParseOrderType(req.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOrderType, err)
	}
	priority, err := models.ParsePriority(req.Priority)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPriority, err)
	}

	lines := make([]models.OrderItem, 0, len(req.Items))
	ids := make([]uint, 0, len(req.Items))
	for i, line := range req.Items {
		id, ok := parseItemID(line.ItemID)
		if !ok {
			return nil, &InvalidItemReferenceError{Line: i, Value: line.ItemID}
		}
		qty := 1
		if line.Qty != nil {
			qty = *line.Qty
		}
		if qty < 1 {
			return nil, fmt.Errorf("%w: line %d has qty %d", ErrInvalidQuantity, i+1, qty)
		}
		lines = append(lines, models.OrderItem{
			ItemID:     id,
			Qty:        qty,
			Modifiers:  cleanModifiers(line.Modifiers),
			ItemStatus: models.StatusQueued,
		})
		ids = append(ids, id)
	}

	prices, missing, err := s.catalog.ResolvePrices(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve prices: %w", err)
	}
	if len(missing) > 0 {
		return nil, &ItemNotFoundError{Missing: missing}
	}

	total := decimal.Zero
	for i := range lines {
		lines[i].Price = prices[lines[i].ItemID]
		total = total.Add(lines[i].LineTotal())
	}
	total = total.Round(2)

	if req.TotalAmount != nil && !decimal.NewFromFloat(*req.TotalAmount).Round(2).Equal(total) {
		log.WithFields(logrus.Fields{
			"client_total": *req.TotalAmount,
			"server_total": total.String(),
		}).Debug("Ignoring client-supplied total")
	}

	now := s.opts.now().UTC()
	order := &models.Order{
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		Type:          orderType,
		TotalAmount:   total,
		Status:        models.StatusQueued,
		Priority:      priority,
		CustomerNotes: req.CustomerNotes,
		Cashier:       actor.Username,
		CreatedBy:     actor.UserID,
		OrderTime:     now,
		Items:         lines,
	}
	if order.CustomerName == "" {
		order.CustomerName = "Walk-in"
	}

	var restocked []models.InventoryRecord
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		s.audit.Append(tx, AuditEntry{
			OrderID:   order.ID,
			NewStatus: models.StatusQueued,
			Actor:     actor,
			Note:      "Order created",
			At:        now,
		})

		for _, line := range order.Items {
			recs, err := s.inventory.Decrement(ctx, tx, line.ItemID, line.Qty)
			if err != nil {
				log.WithError(err).WithField("order_id", order.ID).Warn("Inventory decrement skipped")
				continue
			}
			restocked = append(restocked, recs...)
		}

		if req.SimulatePayment {
			if err := s.transition(tx, order, models.StatusServed, now); err != nil {
				return err
			}
			queued := models.StatusQueued
			s.audit.Append(tx, AuditEntry{
				OrderID:   order.ID,
				OldStatus: &queued,
				NewStatus: models.StatusServed,
				Actor:     actor,
				Note:      "Payment simulated",
				At:        now,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"items":    len(order.Items),
		"total":    total.String(),
		"status":   order.Status,
		"actor":    actor.Label(),
	}).Info("Order created")

	if fresh, err := s.GetOrder(ctx, order.ID); err == nil {
		order = fresh
	}
	s.notifier.OrderCreated(ctx, order)
	for _, rec := range restocked {
		s.notifier.InventoryChanged(ctx, rec)
	}
	s.pushQueueKPIs(ctx)
	return order, nil
}

// transition moves order to status, guarding against a concurrent change of
// the status it was read with, and mirrors the change onto open items.
func (s *orderService) transition(tx *gorm.DB, order *models.Order, status models.OrderStatus, now time.Time) error {
	res := tx.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Updates(map[string]interface{}{"status": status, "updated_at": now})
	if res.Error != nil {
		return fmt.Errorf("update order %d: %w", order.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	if err := mirrorItems(tx, order.ID, status, now); err != nil {
		return fmt.Errorf("update items of order %d: %w", order.ID, err)
	}
	order.Status = status
	return nil
}

var closedItemStatuses = []models.OrderStatus{models.StatusServed, models.StatusCancelled}

func mirrorItems(tx *gorm.DB, orderID uint, status models.OrderStatus, now time.Time) error {
	switch status {
	case models.StatusPreparing:
		err := tx.Model(&models.OrderItem{}).
			Where("order_id = ? AND prep_start IS NULL AND item_status NOT IN ?", orderID, closedItemStatuses).
			Update("prep_start", now).Error
		if err != nil {
			return err
		}
	case models.StatusReady, models.StatusServed:
		err := tx.Model(&models.OrderItem{}).
			Where("order_id = ? AND prep_start IS NOT NULL AND prep_end IS NULL AND item_status <> ?", orderID, models.StatusCancelled).
			Update("prep_end", now).Error
		if err != nil {
			return err
		}
	}
	return tx.Model(&models.OrderItem{}).
		Where("order_id = ? AND item_status NOT IN ?", orderID, closedItemStatuses).
		Update("item_status", status).Error
}

func (s *orderService) SetStatus(ctx context.Context, orderID uint, raw string, actor Actor, note string) (models.OrderStatus, *models.Order, error) {
	status, err := models.ParseOrderStatus(raw)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}
	if note == "" {
		note = fmt.Sprintf("Status updated by %s", actor.Label())
	}

	now := s.opts.now().UTC()
	var (
		order models.Order
		old   models.OrderStatus
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		old = order.Status
		if err := s.transition(tx, &order, status, now); err != nil {
			return err
		}
		prev := old
		s.audit.Append(tx, AuditEntry{
			OrderID:   order.ID,
			OldStatus: &prev,
			NewStatus: status,
			Actor:     actor,
			Note:      note,
			At:        now,
		})
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	log.WithFields(logrus.Fields{
		"order_id":   orderID,
		"old_status": old,
		"new_status": status,
		"actor":      actor.Label(),
	}).Info("Order status updated")

	updated, err := s.GetOrder(ctx, orderID)
	if err != nil {
		updated = &order
	}
	s.notifier.OrderUpdated(ctx, events.OrderUpdatedPayload{
		OrderID:   orderID,
		OldStatus: string(old),
		Status:    string(status),
		ChangedBy: actor.Label(),
	})
	s.pushQueueKPIs(ctx)
	return old, updated, nil
}

func (s *orderService) SetItemStatus(ctx context.Context, orderID, lineID uint, raw string, actor Actor) (*models.OrderItem, error) {
	status, err := models.ParseOrderStatus(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStatus, err)
	}

	now := s.opts.now().UTC()
	var line models.OrderItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND order_id = ?", lineID, orderID).First(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderItemNotFound
			}
			return err
		}

		updates := map[string]interface{}{"item_status": status}
		if status == models.StatusPreparing && line.PrepStart == nil {
			updates["prep_start"] = now
			line.PrepStart = &now
		}
		if (status == models.StatusReady || status == models.StatusServed) && line.PrepStart != nil && line.PrepEnd == nil {
			updates["prep_end"] = now
			line.PrepEnd = &now
		}
		line.ItemStatus = status
		return tx.Model(&models.OrderItem{}).Where("id = ?", line.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifier.OrderUpdated(ctx, events.OrderUpdatedPayload{
		OrderID:   orderID,
		LineID:    lineID,
		Status:    string(status),
		ChangedBy: actor.Label(),
	})
	return &line, nil
}

func (s *orderService) pushQueueKPIs(ctx context.Context) {
	if s.kpis == nil {
		return
	}
	s.notifier.KPIUpdated(ctx, events.TopicReceptionist, s.kpis.Receptionist(ctx, DefaultReceptionistRangeHours))
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultOrderListLimit
	}
	if limit > maxOrderListLimit {
		limit = maxOrderListLimit
	}

	q := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("order_time DESC, id DESC").
		Limit(limit)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *orderService) History(ctx context.Context, orderID uint) ([]models.OrderHistory, error) {
	if _, err := s.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return s.audit.History(ctx, orderID)
}

func (s *orderService) ExportRows(ctx context.Context) ([]ExportRow, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("order_time, id").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}

	var items []models.Item
	if err := s.db.WithContext(ctx).Select("id, name").Find(&items).Error; err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(items))
	for _, it := range items {
		names[it.ID] = it.Name
	}

	rows := make([]ExportRow, 0, len(orders))
	for _, o := range orders {
		base := ExportRow{
			OrderID:       o.ID,
			CustomerName:  o.CustomerName,
			CustomerPhone: o.CustomerPhone,
			OrderType:     string(o.Type),
			TotalAmount:   o.TotalAmount.InexactFloat64(),
			Status:        string(o.Status),
			Priority:      string(o.Priority),
			OrderTime:     o.OrderTime,
		}
		if len(o.Items) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, line := range o.Items {
			row := base
			row.ItemID = line.ItemID
			row.ItemName = names[line.ItemID]
			row.ItemQty = line.Qty
			row.ItemPrice = line.Price.InexactFloat64()
			rows = append(rows, row)
		}
	}
	return rows, nil
}
