package controllers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/franciscosanchezn/gin-cafe-api/internal/services"
	"github.com/gin-gonic/gin"
)

// OrderController serves order submission, the kitchen status flow and exports.
type OrderController struct {
	orders services.OrderService
}

func NewOrderController(orders services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// CreatePublicOrder godoc
// @Summary Place an order
// @Description Customer order submission. The total is always computed from catalog prices.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body services.CreateOrderRequest true "Order"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError "Unknown item ids, listed in details"
// @Failure 500 {object} models.APIError
// @Router /api/v1/public/orders [post]
func (oc *OrderController) CreatePublicOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	req.SimulatePayment = false

	order, err := oc.orders.CreateOrder(c.Request.Context(), req, services.PublicActor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createdResponse(order))
}

// CreatePOSOrder godoc
// @Summary Quick POS order
// @Description Counter order entered by staff. With simulate_payment the order is settled immediately and recorded as served.
// @Tags orders
// @Accept json
// @Produce json
// @Param order body services.CreateOrderRequest true "Order"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/pos/orders [post]
func (oc *OrderController) CreatePOSOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := oc.orders.CreateOrder(c.Request.Context(), req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, createdResponse(order))
}

// createdResponse carries the order summary fields alongside the full order.
func createdResponse(order *models.Order) gin.H {
	total := order.TotalAmount.InexactFloat64()
	return gin.H{
		"order_id":     order.ID,
		"status":       order.Status,
		"total_amount": total,
		"total":        total,
		"order":        order,
	}
}

// ListOrders godoc
// @Summary List orders
// @Description Most recent orders first
// @Tags orders
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Maximum rows (default 100)"
// @Success 200 {array} models.Order
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders [get]
func (oc *OrderController) ListOrders(c *gin.Context) {
	filter := services.OrderFilter{Limit: queryInt(c, "limit")}
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseOrderStatus(raw)
		if err != nil {
			respondError(c, fmt.Errorf("%w: %v", services.ErrInvalidStatus, err))
			return
		}
		filter.Status = status
	}

	orders, err := oc.orders.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// GetOrder godoc
// @Summary Get order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/{id} [get]
func (oc *OrderController) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	order, err := oc.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateStatus godoc
// @Summary Change order status
// @Description Any recognized status may follow any other. Every call appends one history row.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param body body statusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/{id}/status [put]
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	old, order, err := oc.orders.SetStatus(c.Request.Context(), id, req.Status, actor(c), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order_id":   order.ID,
		"status":     order.Status,
		"old_status": old,
		"message":    fmt.Sprintf("Order %d moved from %s to %s", order.ID, old, order.Status),
		"order":      order,
	})
}

// UpdateItemStatus godoc
// @Summary Change one line's kitchen status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param lineId path int true "Order line ID"
// @Param body body statusRequest true "New status"
// @Success 200 {object} models.OrderItem
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/{id}/items/{lineId}/status [put]
func (oc *OrderController) UpdateItemStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(c, "lineId")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	line, err := oc.orders.SetItemStatus(c.Request.Context(), id, lineID, req.Status, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

// History godoc
// @Summary Order status history
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {array} models.OrderHistory
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/orders/{id}/history [get]
func (oc *OrderController) History(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := oc.orders.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Export godoc
// @Summary Export orders
// @Description One row per order line. CSV unless format=json.
// @Tags manager
// @Produce text/csv,json
// @Param format query string false "csv or json"
// @Success 200 {array} services.ExportRow
// @Security BearerAuth
// @Router /api/v1/manager/orders/export [get]
func (oc *OrderController) Export(c *gin.Context) {
	rows, err := oc.orders.ExportRows(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	stamp := time.Now().UTC().Format("20060102_150405")
	if strings.EqualFold(c.Query("format"), "json") {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=orders_export_%s.json", stamp))
		c.JSON(http.StatusOK, rows)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=orders_export_%s.csv", stamp))
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(services.ExportHeaders)
	for _, r := range rows {
		_ = w.Write(exportRecord(r))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.WithError(err).Error("CSV export write failed")
	}
}

func exportRecord(r services.ExportRow) []string {
	record := []string{
		strconv.FormatUint(uint64(r.OrderID), 10),
		r.CustomerName,
		r.CustomerPhone,
		r.OrderType,
		strconv.FormatFloat(r.TotalAmount, 'f', 2, 64),
		r.Status,
		r.Priority,
		r.OrderTime.UTC().Format(time.RFC3339),
		"", "", "", "",
	}
	if r.ItemID != 0 {
		record[8] = strconv.FormatUint(uint64(r.ItemID), 10)
		record[9] = r.ItemName
		record[10] = strconv.Itoa(r.ItemQty)
		record[11] = strconv.FormatFloat(r.ItemPrice, 'f', 2, 64)
	}
	return record
}
