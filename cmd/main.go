package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-cafe-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-cafe-api/internal/auth"
	"github.com/franciscosanchezn/gin-cafe-api/internal/catalog"
	"github.com/franciscosanchezn/gin-cafe-api/internal/config"
	"github.com/franciscosanchezn/gin-cafe-api/internal/controllers"
	"github.com/franciscosanchezn/gin-cafe-api/internal/database"
	"github.com/franciscosanchezn/gin-cafe-api/internal/events"
	"github.com/franciscosanchezn/gin-cafe-api/internal/middleware"
	"github.com/franciscosanchezn/gin-cafe-api/internal/models"
	"github.com/franciscosanchezn/gin-cafe-api/internal/realtime"
	"github.com/franciscosanchezn/gin-cafe-api/internal/scheduler"
	"github.com/franciscosanchezn/gin-cafe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/swaggo/files"
	"github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

var (
	db            *gorm.DB
	broker        events.Broker
	configuration *config.Config
)

// app holds the wired controllers the router needs.
type app struct {
	orders    *controllers.OrderController
	kpis      *controllers.KPIController
	inventory *controllers.InventoryController
	menu      controllers.MenuController
	users     *controllers.UserController
	clients   *controllers.ClientController
	login     *controllers.AuthController
	shop      *controllers.ShopController
	oauth     *auth.OAuthService
	hub       *realtime.DashboardHub
}

// @title Café POS API
// @version 1.0
// @description Order lifecycle, kitchen tracking, inventory and per-role KPIs for a café.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration = loadConfig()
	setLogLevel(configuration.LogLevel)
	loc := configuration.Location()

	// Initialize database connection
	setupDatabase(configuration)

	// Event broker for dashboards
	broker = setupBroker(configuration)
	defer broker.Close()

	// Initialize services and controllers
	a, kpiService := setupApp(configuration, loc)

	cron := setupScheduler(configuration, loc, kpiService)
	cron.Start()
	defer cron.Shutdown()

	// Initialize Gin router
	router := setupRouter(a)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%v:%d", configuration.Host, configuration.Port),
		Handler: router,
	}

	go func() {
		log.Infof("Starting server on %s:%d", configuration.Host, configuration.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shut down")
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Info("Server exited")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// setLogLevel applies LOG_LEVEL when it parses; the environment default stays otherwise.
func setLogLevel(level string) {
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.WithError(err).Warn("Ignoring LOG_LEVEL")
		return
	}
	log.SetLevel(parsed)
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the database, migrates it and checks the schema version
func setupDatabase(conf *config.Config) *gorm.DB {
	var err error
	db, err = database.InitDatabase(database.DatabaseConfig{
		Driver:      conf.DBDriver,
		URL:         conf.DatabaseURL,
		Host:        conf.DBHost,
		Port:        conf.DBPort,
		User:        conf.DBUser,
		Password:    conf.DBPassword,
		Name:        conf.DBName,
		SSLMode:     conf.DBSSLMode,
		Path:        conf.DBPath,
		AutoMigrate: conf.AutoMigrate,
	})
	checkPanicErr(err)
	return db
}

// setupBroker connects the configured event broker, falling back to the
// in-process broker when an external one is unreachable
func setupBroker(conf *config.Config) events.Broker {
	switch conf.EventBroker {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		b, err := events.NewRedisBroker(ctx, events.RedisOptions{
			Addr:     conf.RedisAddr,
			Password: conf.RedisPassword,
			DB:       conf.RedisDB,
		})
		if err == nil {
			return b
		}
		log.WithError(err).Error("Redis broker unavailable, using in-process broker")
	case "rabbitmq":
		b, err := events.NewAMQPBroker(conf.AMQPURL, conf.AMQPExchange)
		if err == nil {
			return b
		}
		log.WithError(err).Error("RabbitMQ broker unavailable, using in-process broker")
	}
	return events.NewMemoryBroker()
}

// setupApp builds services and controllers, then bootstraps the first manager
// and materializes the authored menu
func setupApp(conf *config.Config, loc *time.Location) (*app, services.KPIService) {
	ttl := time.Duration(conf.TokenTTLHours) * time.Hour
	opts := []services.Option{services.WithLocation(loc)}

	notifier := services.NewNotifier(broker)
	catalogService := services.NewCatalogService(db, catalog.NewFileStore(conf.MenuFile))
	inventoryService := services.NewInventoryService(db, notifier)
	auditService := services.NewAuditService(db)
	kpiService := services.NewKPIService(db, opts...)
	orderService := services.NewOrderService(db, catalogService, inventoryService, auditService, kpiService, notifier, opts...)
	userService := services.NewUserService(db)
	clientService := services.NewClientService(db)

	bootstrapManager(conf, userService)

	n, err := catalogService.SyncFromMenu(context.Background())
	if err != nil {
		log.WithError(err).Warn("Menu sync failed")
	} else if n > 0 {
		log.WithField("items", n).Info("Authored menu items materialized")
	}

	return &app{
		orders:    controllers.NewOrderController(orderService),
		kpis:      controllers.NewKPIController(kpiService, loc),
		inventory: controllers.NewInventoryController(inventoryService),
		menu:      controllers.NewMenuController(catalogService),
		users:     controllers.NewUserController(userService),
		clients:   controllers.NewClientController(clientService),
		login:     controllers.NewAuthController(userService, conf.JWTSecret, ttl),
		shop: controllers.NewShopController(controllers.ShopInfo{
			Name:    conf.ShopName,
			Address: conf.ShopAddress,
			Hours:   conf.ShopHours,
		}, db, userService, catalogService),
		oauth: auth.NewOAuthService(db, conf.JWTSecret, ttl),
		hub:   realtime.NewDashboardHub(broker),
	}, kpiService
}

// bootstrapManager creates the configured manager account on an empty user table
func bootstrapManager(conf *config.Config, users services.UserService) {
	if conf.BootstrapManagerUsername == "" || conf.BootstrapManagerPassword == "" {
		return
	}
	count, err := users.CountUsers()
	if err != nil || count > 0 {
		return
	}
	if _, err := users.EnsureManager(conf.BootstrapManagerUsername, conf.BootstrapManagerPassword); err != nil {
		log.WithError(err).Error("Bootstrap manager creation failed")
	}
}

func setupScheduler(conf *config.Config, loc *time.Location, kpis services.KPIService) *scheduler.Scheduler {
	var roller scheduler.Roller = kpis
	if !conf.RollupEnabled {
		log.Info("Daily rollup disabled")
		roller = nil
	}
	hour, minute, err := config.ParseClock(conf.RollupTime)
	checkPanicErr(err)
	s, err := scheduler.New(scheduler.Config{
		Location:     loc,
		RollupHour:   hour,
		RollupMinute: minute,
		PurgeEvery:   time.Hour,
	}, roller, auth.NewGormTokenStore(db))
	checkPanicErr(err)
	return s
}

// setupRouter initializes the Gin router and sets up the routes
// It returns the configured router
func setupRouter(a *app) *gin.Engine {
	if configuration.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log.StandardLogger()), middleware.CORS(configuration.CORSOrigins))

	// Define routes
	setupRoutes(router, a)

	return router
}

// setupRoutes defines the routes for the Gin router
func setupRoutes(router *gin.Engine, a *app) {
	secret := []byte(configuration.JWTSecret)
	bearer := middleware.OAuth2Auth(secret)

	// Health check endpoint
	router.GET("/health", a.shop.Health)

	// OAuth2 client-credentials endpoint
	router.POST("/oauth/token", a.oauth.HandleToken)

	// Dashboard feed; browsers pass the token as access_token
	router.GET("/ws/dashboard", bearer, a.hub.ServeDashboard)

	v1 := router.Group("/api/v1")
	{
		publicApi := v1.Group("/public")
		{
			publicApi.POST("/orders", a.orders.CreatePublicOrder)
			publicApi.GET("/items", a.menu.ListItems)
			publicApi.GET("/shop", a.shop.Shop)
		}

		authApi := v1.Group("/auth")
		{
			authApi.POST("/login", a.login.Login)
			authApi.GET("/me", bearer, a.login.Me)
		}

		// Everything below requires a staff token
		protectedApi := v1.Group("")
		protectedApi.Use(bearer)
		{
			ordersApi := protectedApi.Group("/orders")
			ordersApi.Use(middleware.RequireRole(models.RoleChief, models.RoleReceptionist, models.RoleManager))
			{
				ordersApi.GET("", a.orders.ListOrders)
				ordersApi.GET("/:id", a.orders.GetOrder)
				ordersApi.GET("/:id/history", a.orders.History)
				ordersApi.PUT("/:id/status", a.orders.UpdateStatus)
				ordersApi.PUT("/:id/items/:lineId/status",
					middleware.RequireRole(models.RoleChief, models.RoleManager), a.orders.UpdateItemStatus)
			}

			posApi := protectedApi.Group("/pos")
			posApi.Use(middleware.RequireRole(models.RoleReceptionist, models.RoleManager))
			{
				posApi.POST("/orders", a.orders.CreatePOSOrder)
			}

			kpiApi := protectedApi.Group("/kpis")
			{
				kpiApi.GET("/chef", middleware.RequireRole(models.RoleChief, models.RoleManager), a.kpis.Kitchen)
				kpiApi.GET("/receptionist", middleware.RequireRole(models.RoleReceptionist, models.RoleManager), a.kpis.Receptionist)

				managerKPIs := kpiApi.Group("")
				managerKPIs.Use(middleware.RequireRole(models.RoleManager))
				{
					managerKPIs.GET("/manager", a.kpis.Manager)
					managerKPIs.GET("/revenue_range", a.kpis.RevenueSeries)
					managerKPIs.GET("/top_items", a.kpis.TopItems)
					managerKPIs.GET("/overview", a.kpis.Overview)
				}
			}

			inventoryApi := protectedApi.Group("/inventory")
			inventoryApi.Use(middleware.RequireRole(models.RoleInventory, models.RoleManager))
			{
				inventoryApi.GET("", a.inventory.List)
				inventoryApi.POST("", a.inventory.Create)
				inventoryApi.GET("/alerts", a.inventory.Alerts)
				inventoryApi.PATCH("/:id", a.inventory.Adjust)
			}

			managerApi := protectedApi.Group("/manager")
			managerApi.Use(middleware.RequireRole(models.RoleManager))
			{
				managerApi.GET("/orders/export", a.orders.Export)
				managerApi.GET("/menu", a.menu.GetMenu)
				managerApi.POST("/menu/items", a.menu.SaveItem)
				managerApi.DELETE("/menu/items/:id", a.menu.DeleteItem)
				managerApi.GET("/users", a.users.ListUsers)
				managerApi.POST("/users", a.users.CreateUser)
				managerApi.DELETE("/users/:id", a.users.DeleteUser)
				managerApi.POST("/metrics/rollup", a.kpis.Rollup)
				managerApi.GET("/metrics/daily", a.kpis.DailyMetrics)
			}

			clientsApi := protectedApi.Group("/clients")
			{
				clientsApi.POST("", a.clients.CreateClient)
				clientsApi.GET("", a.clients.ListClients)
				clientsApi.DELETE("/:id", a.clients.DeleteClient)
			}
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
