package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-cafe-api/internal/catalog"
	"github.com/franciscosanchezn/gin-cafe-api/internal/services"
	"github.com/gin-gonic/gin"
)

// MenuController serves the public menu and the manager's menu editor.
type MenuController interface {
	// ListItems returns every orderable item
	ListItems(c *gin.Context)
	// GetMenu returns the authored menu document
	GetMenu(c *gin.Context)
	// SaveItem creates or updates an authored item
	SaveItem(c *gin.Context)
	// DeleteItem removes an authored item
	DeleteItem(c *gin.Context)
}

type menuController struct {
	catalog services.CatalogService
}

func NewMenuController(catalog services.CatalogService) MenuController {
	return &menuController{catalog: catalog}
}

// ListItems godoc
// @Summary List menu items
// @Description Every item customers can order, from the authored menu when present
// @Tags menu
// @Produce json
// @Success 200 {array} models.Item
// @Failure 500 {object} models.APIError
// @Router /api/v1/public/items [get]
func (mc *menuController) ListItems(ctx *gin.Context) {
	items, err := mc.catalog.ListItems(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, items)
}

// GetMenu godoc
// @Summary Authored menu
// @Tags manager
// @Produce json
// @Success 200 {object} catalog.Menu
// @Security BearerAuth
// @Router /api/v1/manager/menu [get]
func (mc *menuController) GetMenu(ctx *gin.Context) {
	menu, err := mc.catalog.GetMenu(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, menu)
}

// SaveItem godoc
// @Summary Create or update a menu item
// @Description A zero id creates a new item with the next free id. Existing orders keep their prices.
// @Tags manager
// @Accept json
// @Produce json
// @Param item body catalog.ItemInput true "Menu item"
// @Success 200 {object} models.Item
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/manager/menu/items [post]
func (mc *menuController) SaveItem(ctx *gin.Context) {
	var in catalog.ItemInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		bindError(ctx, err)
		return
	}

	item, err := mc.catalog.SaveMenuItem(ctx.Request.Context(), in)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, item)
}

// DeleteItem godoc
// @Summary Delete a menu item
// @Tags manager
// @Param id path int true "Item ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/manager/menu/items/{id} [delete]
func (mc *menuController) DeleteItem(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := mc.catalog.DeleteMenuItem(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
