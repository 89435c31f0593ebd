package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/franciscosanchezn/gin-cafe-api/internal/services"
	"github.com/gin-gonic/gin"
)

type InventoryController struct {
	inventory services.InventoryService
}

func NewInventoryController(inventory services.InventoryService) *InventoryController {
	return &InventoryController{inventory: inventory}
}

type createInventoryRequest struct {
	SKU          string `json:"sku"`
	Name         string `json:"name" binding:"required"`
	ItemID       *uint  `json:"item_id"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorder_level" binding:"gte=0"`
}

// List godoc
// @Summary List stock records
// @Tags inventory
// @Produce json
// @Success 200 {array} models.InventoryRecord
// @Security BearerAuth
// @Router /api/v1/inventory [get]
func (ic *InventoryController) List(c *gin.Context) {
	records, err := ic.inventory.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Create godoc
// @Summary Track a new stock record
// @Tags inventory
// @Accept json
// @Produce json
// @Param record body createInventoryRequest true "Stock record"
// @Success 201 {object} models.InventoryRecord
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/inventory [post]
func (ic *InventoryController) Create(c *gin.Context) {
	var req createInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rec := &models.InventoryRecord{
		SKU:          req.SKU,
		Name:         req.Name,
		ItemID:       req.ItemID,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
	}
	if err := ic.inventory.Create(c.Request.Context(), rec); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// Adjust godoc
// @Summary Adjust a stock record
// @Description quantity sets an absolute level, delta adds to it. Stock never drops below zero.
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "Record ID"
// @Param body body services.InventoryAdjustment true "Changes"
// @Success 200 {object} models.InventoryRecord
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/inventory/{id} [patch]
func (ic *InventoryController) Adjust(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var adj services.InventoryAdjustment
	if err := c.ShouldBindJSON(&adj); err != nil {
		bindError(c, err)
		return
	}

	rec, err := ic.inventory.Adjust(c.Request.Context(), id, adj)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Alerts godoc
// @Summary Low stock alerts
// @Tags inventory
// @Produce json
// @Success 200 {object} services.InventoryAlerts
// @Security BearerAuth
// @Router /api/v1/inventory/alerts [get]
func (ic *InventoryController) Alerts(c *gin.Context) {
	c.JSON(http.StatusOK, ic.inventory.Alerts(c.Request.Context()))
}
