package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/voltio/energy-tracking-api/internal/api/handler"
	"github.com/voltio/energy-tracking-api/internal/api/middleware"
	"github.com/voltio/energy-tracking-api/internal/core/ports"
	"github.com/voltio/energy-tracking-api/internal/core/service"
	"github.com/voltio/energy-tracking-api/internal/infrastructure/config"
	mongorepo "github.com/voltio/energy-tracking-api/internal/infrastructure/db/mongo"
	redisrepo "github.com/voltio/energy-tracking-api/internal/infrastructure/db/redis"
	"github.com/voltio/energy-tracking-api/internal/infrastructure/mail"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("energy"))

	// --- Repositories ---
	users := mongorepo.NewUserRepository(db)
	tokens := mongorepo.NewTokenRepository(db)
	resets := mongorepo.NewPasswordResetRepository(db)
	distributors := mongorepo.NewDistributorRepository(db)
	properties := mongorepo.NewPropertyRepository(db)
	areas := mongorepo.NewAreaRepository(db)
	devices := mongorepo.NewDeviceRepository(db)
	iotConfigs := mongorepo.NewIoTConfigRepository(db)
	consumptions := mongorepo.NewConsumptionRepository(db)
	revoked := redisrepo.NewRevocationCache(rdb)

	// --- Services ---
	clock := service.SystemClock()
	var mailer ports.Mailer = mail.NewLogMailer(log)

	authService := service.NewAuthService(
		users, tokens, resets, revoked, mailer, clock,
		cfg.JWTSecret, cfg.WebTokenTTL, cfg.ResetTTL, log,
	)
	userService := service.NewUserService(
		users, tokens, resets, distributors, properties,
		areas, devices, consumptions, iotConfigs, clock, log,
	)
	distributorService := service.NewDistributorService(distributors, properties, clock, log)
	propertyService := service.NewPropertyService(
		properties, distributors, areas, devices, consumptions, iotConfigs, clock, log,
	)
	areaService := service.NewAreaService(
		properties, areas, devices, consumptions, iotConfigs, clock, log,
	)
	deviceService := service.NewDeviceService(
		properties, areas, devices, consumptions, iotConfigs, clock, log,
	)
	consumptionService := service.NewConsumptionService(
		consumptions, distributors, properties, areas, devices, clock, log,
	)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	distributorHandler := handler.NewDistributorHandler(distributorService)
	propertyHandler := handler.NewPropertyHandler(propertyService)
	areaHandler := handler.NewAreaHandler(areaService)
	deviceHandler := handler.NewDeviceHandler(deviceService)
	consumptionHandler := handler.NewConsumptionHandler(consumptionService)
	healthHandler := handler.NewHealthHandler(db.Client(), rdb)

	// --- Public routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.POST("/auth/reset-password", authHandler.ResetPassword)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// --- Authenticated routes ---
	v1 := e.Group("/v1", middleware.Auth(authService))

	v1.POST("/auth/logout", authHandler.Logout)

	v1.GET("/me", userHandler.Get)
	v1.PATCH("/me", userHandler.Update)
	v1.DELETE("/me", userHandler.Delete)

	v1.POST("/distributors", distributorHandler.Create)
	v1.GET("/distributors", distributorHandler.List)
	v1.GET("/distributors/:id", distributorHandler.Get)
	v1.PATCH("/distributors/:id", distributorHandler.Update)
	v1.DELETE("/distributors/:id", distributorHandler.Delete)

	v1.POST("/properties", propertyHandler.Create)
	v1.GET("/properties", propertyHandler.List)
	v1.GET("/properties/:propertyId", propertyHandler.Get)
	v1.PATCH("/properties/:propertyId", propertyHandler.Update)
	v1.DELETE("/properties/:propertyId", propertyHandler.Delete)

	areasGroup := v1.Group("/properties/:propertyId/areas")
	areasGroup.POST("", areaHandler.Create)
	areasGroup.GET("", areaHandler.List)
	areasGroup.GET("/:areaId", areaHandler.Get)
	areasGroup.PATCH("/:areaId", areaHandler.Update)
	areasGroup.DELETE("/:areaId", areaHandler.Delete)

	devicesGroup := v1.Group("/properties/:propertyId/areas/:areaId/devices")
	devicesGroup.POST("", deviceHandler.Create)
	devicesGroup.GET("", deviceHandler.List)
	devicesGroup.GET("/:deviceId", deviceHandler.Get)
	devicesGroup.PATCH("/:deviceId", deviceHandler.Update)
	devicesGroup.DELETE("/:deviceId", deviceHandler.Delete)
	devicesGroup.PUT("/:deviceId/iot-config", deviceHandler.PutIoTConfig)
	devicesGroup.GET("/:deviceId/iot-config", deviceHandler.GetIoTConfig)
	devicesGroup.DELETE("/:deviceId/iot-config", deviceHandler.DeleteIoTConfig)

	// Consumption collections hang off whichever hierarchy node they measure;
	// individual records are addressed flat by id.
	v1.POST("/properties/:propertyId/consumptions", consumptionHandler.Create)
	v1.GET("/properties/:propertyId/consumptions", consumptionHandler.List)
	v1.POST("/properties/:propertyId/areas/:areaId/consumptions", consumptionHandler.Create)
	v1.GET("/properties/:propertyId/areas/:areaId/consumptions", consumptionHandler.List)
	v1.POST("/properties/:propertyId/areas/:areaId/devices/:deviceId/consumptions", consumptionHandler.Create)
	v1.GET("/properties/:propertyId/areas/:areaId/devices/:deviceId/consumptions", consumptionHandler.List)

	v1.GET("/consumptions/:id", consumptionHandler.Get)
	v1.PATCH("/consumptions/:id", consumptionHandler.Update)
	v1.DELETE("/consumptions/:id", consumptionHandler.Delete)

	return e
}
