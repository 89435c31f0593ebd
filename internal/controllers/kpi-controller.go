package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/franciscosanchezn/gin-cafe-api/internal/services"
	"github.com/gin-gonic/gin"
)

// KPIController exposes the role dashboards' metrics. Reads never fail;
// an unavailable store yields zero values.
type KPIController struct {
	kpis services.KPIService
	loc  *time.Location
}

func NewKPIController(kpis services.KPIService, loc *time.Location) *KPIController {
	if loc == nil {
		loc = time.UTC
	}
	return &KPIController{kpis: kpis, loc: loc}
}

// Kitchen godoc
// @Summary Kitchen KPIs
// @Tags kpis
// @Produce json
// @Param range_hours query int false "Window in hours (default 24, max 8784)"
// @Success 200 {object} services.KitchenKPIs
// @Security BearerAuth
// @Router /api/v1/kpis/chef [get]
func (kc *KPIController) Kitchen(c *gin.Context) {
	c.JSON(http.StatusOK, kc.kpis.Kitchen(c.Request.Context(), queryInt(c, "range_hours")))
}

// Manager godoc
// @Summary Manager KPIs
// @Tags kpis
// @Produce json
// @Param range_days query int false "Window in days (default 30, max 366)"
// @Success 200 {object} services.ManagerKPIs
// @Security BearerAuth
// @Router /api/v1/kpis/manager [get]
func (kc *KPIController) Manager(c *gin.Context) {
	c.JSON(http.StatusOK, kc.kpis.Manager(c.Request.Context(), queryInt(c, "range_days")))
}

// Receptionist godoc
// @Summary Receptionist KPIs
// @Tags kpis
// @Produce json
// @Param range_hours query int false "Window in hours (default 24, max 8784)"
// @Success 200 {object} services.ReceptionistKPIs
// @Security BearerAuth
// @Router /api/v1/kpis/receptionist [get]
func (kc *KPIController) Receptionist(c *gin.Context) {
	c.JSON(http.StatusOK, kc.kpis.Receptionist(c.Request.Context(), queryInt(c, "range_hours")))
}

// RevenueSeries godoc
// @Summary Daily revenue series
// @Description Exactly N points, oldest first, zero for days without orders
// @Tags kpis
// @Produce json
// @Param days query int false "Number of days (default 14, max 366)"
// @Success 200 {object} services.RevenueSeries
// @Security BearerAuth
// @Router /api/v1/kpis/revenue_range [get]
func (kc *KPIController) RevenueSeries(c *gin.Context) {
	c.JSON(http.StatusOK, kc.kpis.RevenueSeries(c.Request.Context(), queryInt(c, "days")))
}

// TopItems godoc
// @Summary Best-selling items
// @Tags kpis
// @Produce json
// @Param limit query int false "Number of items (default 5, max 100)"
// @Success 200 {array} services.TopItem
// @Security BearerAuth
// @Router /api/v1/kpis/top_items [get]
func (kc *KPIController) TopItems(c *gin.Context) {
	c.JSON(http.StatusOK, kc.kpis.TopItems(c.Request.Context(), queryInt(c, "limit")))
}

// Overview godoc
// @Summary Dashboard summary
// @Tags kpis
// @Produce json
// @Success 200 {object} services.KPIOverview
// @Security BearerAuth
// @Router /api/v1/kpis/overview [get]
func (kc *KPIController) Overview(c *gin.Context) {
	c.JSON(http.StatusOK, kc.kpis.Overview(c.Request.Context()))
}

// Rollup godoc
// @Summary Roll up one day's metrics
// @Description Recomputes and stores the daily metrics row. Defaults to yesterday.
// @Tags manager
// @Produce json
// @Param date query string false "Day as YYYY-MM-DD"
// @Success 200 {object} models.DailyMetric
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/manager/metrics/rollup [post]
func (kc *KPIController) Rollup(c *gin.Context) {
	day := time.Now().In(kc.loc).AddDate(0, 0, -1)
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, kc.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "date must be YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	metric, err := kc.kpis.Rollup(c.Request.Context(), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metric)
}

// DailyMetrics godoc
// @Summary Stored daily metrics
// @Tags manager
// @Produce json
// @Param days query int false "Number of days (default 30, max 366)"
// @Success 200 {array} models.DailyMetric
// @Security BearerAuth
// @Router /api/v1/manager/metrics/daily [get]
func (kc *KPIController) DailyMetrics(c *gin.Context) {
	metrics, err := kc.kpis.DailyMetrics(c.Request.Context(), queryInt(c, "days"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}
