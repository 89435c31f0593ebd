package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/database"
	"github.com/franciscosanchezn/gin-cafe-api/internal/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ShopInfo is the static storefront description from configuration.
type ShopInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Hours   string `json:"hours"`
}

type ShopController struct {
	info    ShopInfo
	db      *gorm.DB
	users   services.UserService
	catalog services.CatalogService
}

func NewShopController(info ShopInfo, db *gorm.DB, users services.UserService, catalog services.CatalogService) *ShopController {
	return &ShopController{info: info, db: db, users: users, catalog: catalog}
}

// Shop godoc
// @Summary Shop details
// @Tags shop
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/public/shop [get]
func (sc *ShopController) Shop(c *gin.Context) {
	staff, err := sc.users.CountUsers()
	if err != nil {
		log.WithError(err).Warn("Staff count unavailable")
	}
	items, err := sc.catalog.CountItems(c.Request.Context())
	if err != nil {
		log.WithError(err).Warn("Menu count unavailable")
	}

	c.JSON(http.StatusOK, gin.H{
		"name":        sc.info.Name,
		"address":     sc.info.Address,
		"hours":       sc.info.Hours,
		"staff_count": staff,
		"menu_items":  items,
	})
}

// Health godoc
// @Summary Health check
// @Description Reports database reachability and the applied schema version
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (sc *ShopController) Health(c *gin.Context) {
	body := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "gin-cafe-api",
	}

	version, err := database.CurrentVersion(sc.db.WithContext(c.Request.Context()))
	if err == nil {
		if sqlDB, dbErr := sc.db.DB(); dbErr != nil {
			err = dbErr
		} else {
			err = sqlDB.PingContext(c.Request.Context())
		}
	}
	if err != nil {
		log.WithError(err).Error("Health check failed")
		body["status"] = "unhealthy"
		body["error"] = "database unavailable"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}

	body["schema_version"] = version
	body["schema_expected"] = database.SchemaVersion
	c.JSON(http.StatusOK, body)
}
