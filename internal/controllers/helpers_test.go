package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-cafe-api/internal/auth"
	"github.com/franciscosanchezn/gin-cafe-api/internal/catalog"
	"github.com/franciscosanchezn/gin-cafe-api/internal/database"
	"github.com/franciscosanchezn/gin-cafe-api/internal/events"
	"github.com/franciscosanchezn/gin-cafe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/franciscosanchezn/gin-cafe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "controllers-test-secret"

const testMenuJSON = `{
  "categories": [
    {"id": "coffee", "label": "Coffee", "items": [
      {"id": 1, "name": "Espresso", "price": 50},
      {"id": 2, "name": "Cappuccino", "price": 80}
    ]}
  ]
}`

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	users  services.UserService
	orders services.OrderService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))

	menuPath := filepath.Join(t.TempDir(), "menu.json")
	require.NoError(t, os.WriteFile(menuPath, []byte(testMenuJSON), 0o644))

	broker := events.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })

	notifier := services.NewNotifier(broker)
	catalogService := services.NewCatalogService(db, catalog.NewFileStore(menuPath))
	inventoryService := services.NewInventoryService(db, notifier)
	kpiService := services.NewKPIService(db)
	orderService := services.NewOrderService(db, catalogService, inventoryService, services.NewAuditService(db), kpiService, notifier)
	userService := services.NewUserService(db)

	orders := NewOrderController(orderService)
	kpis := NewKPIController(kpiService, time.UTC)
	users := NewUserController(userService)
	login := NewAuthController(userService, testSecret, time.Hour)
	shop := NewShopController(ShopInfo{Name: "Test Café", Hours: "08:00-20:00"}, db, userService, catalogService)

	bearer := middleware.OAuth2Auth([]byte(testSecret))
	router := gin.New()
	router.GET("/health", shop.Health)
	v1 := router.Group("/api/v1")
	v1.POST("/public/orders", orders.CreatePublicOrder)
	v1.GET("/public/shop", shop.Shop)
	v1.POST("/auth/login", login.Login)
	v1.GET("/auth/me", bearer, login.Me)

	staff := v1.Group("", bearer)
	ordersApi := staff.Group("/orders", middleware.RequireRole(models.RoleChief, models.RoleReceptionist, models.RoleManager))
	ordersApi.GET("", orders.ListOrders)
	ordersApi.GET("/:id/history", orders.History)
	ordersApi.PUT("/:id/status", orders.UpdateStatus)
	staff.POST("/pos/orders", middleware.RequireRole(models.RoleReceptionist, models.RoleManager), orders.CreatePOSOrder)
	staff.GET("/kpis/chef", middleware.RequireRole(models.RoleChief, models.RoleManager), kpis.Kitchen)
	manager := staff.Group("/manager", middleware.RequireRole(models.RoleManager))
	manager.GET("/orders/export", orders.Export)
	manager.DELETE("/users/:id", users.DeleteUser)
	manager.POST("/users", users.CreateUser)

	return &testEnv{router: router, db: db, users: userService, orders: orderService}
}

func (e *testEnv) staff(t *testing.T, username, role string) (*models.User, string) {
	t.Helper()
	user := &models.User{Username: username, Name: username, Password: "secret-pass", Role: role}
	require.NoError(t, e.users.CreateUser(user))
	token, _, err := auth.SignUserToken([]byte(testSecret), user, time.Hour)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func intPtr(v int) *int {
	return &v
}
