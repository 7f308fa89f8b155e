package routes

import (
	"CareSlot/cache"
	"CareSlot/config"
	"CareSlot/controllers"
	"CareSlot/database"
	"CareSlot/handlers"
	"CareSlot/metrics"
	"CareSlot/middlewares"
	"CareSlot/repositories"
	"CareSlot/services"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Dependencies are the process-wide handles the router is built from.
type Dependencies struct {
	Config   *config.AppConfig
	DB       *gorm.DB
	Redis    *redis.Client
	Cache    *cache.Cache
	Logger   zerolog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// SetupRoutes builds repositories, services and handlers over deps and
// returns the HTTP handler.
func SetupRoutes(deps Dependencies) http.Handler {
	appointmentRepo := repositories.NewAppointmentRepository(deps.DB, deps.Cache, deps.Logger)
	patientRepo := repositories.NewPatientRepository(deps.DB, deps.Cache, appointmentRepo, deps.Logger)

	var locker services.SlotLocker
	if deps.Redis != nil {
		locker = database.NewLocker(deps.Redis)
	}

	patientService := services.NewPatientService(patientRepo, appointmentRepo, deps.Metrics)
	appointmentService := services.NewAppointmentService(appointmentRepo, patientRepo, locker, deps.Metrics, deps.Logger)

	checks := []controllers.HealthCheck{
		{Name: "postgres", Check: func(ctx context.Context) error { return database.Ping(ctx, deps.DB) }},
		{Name: "redis", Check: func(ctx context.Context) error { return database.PingRedis(ctx, deps.Redis) }},
	}

	return NewRouter(RouterConfig{
		Development: deps.Config.IsDevelopment(),
		CORSOrigins: deps.Config.CORSOrigins,
		RateLimit: middlewares.RateLimiterConfig{
			RequestsPerSecond: deps.Config.RateLimitRPS,
			Burst:             deps.Config.RateLimitBurst,
		},
		Logger:   deps.Logger,
		Metrics:  deps.Metrics,
		Gatherer: deps.Gatherer,
		Checks:   checks,
	}, handlers.NewPatientHandler(patientService), handlers.NewAppointmentHandler(appointmentService))
}

// RouterConfig controls the middleware chain and the operational routes.
type RouterConfig struct {
	Development bool
	CORSOrigins []string
	RateLimit   middlewares.RateLimiterConfig
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
	Gatherer    prometheus.Gatherer
	Checks      []controllers.HealthCheck
}

// NewRouter assembles the gin engine around already built handlers.
func NewRouter(cfg RouterConfig, patientHandler *handlers.PatientHandler, appointmentHandler *handlers.AppointmentHandler) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestLogger(cfg.Logger))
	router.Use(middlewares.RequestMetrics(cfg.Metrics))
	router.Use(middlewares.SecurityHeaders())
	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(cfg.CORSOrigins)))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		router.Use(middlewares.NewRateLimiterMiddleware(cfg.RateLimit))
	}

	controllers.SetupPatientRoutes(router, patientHandler, appointmentHandler)
	controllers.SetupRootRoute(router, cfg.Checks, cfg.Gatherer)

	return router
}
