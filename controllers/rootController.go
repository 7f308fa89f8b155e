package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck is one named dependency probe for /healthz.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// rootHandler handles requests to the root path
func rootHandler(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to the CareSlot scheduling API!")
}

// healthHandler runs every check and answers 503 if any of them fails.
func healthHandler(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(gin.H, len(checks))
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("check", check.Name).Msg("health check failed")
				results[check.Name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[check.Name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}

// SetupRootRoute registers the welcome, health and metrics routes.
func SetupRootRoute(router *gin.Engine, checks []HealthCheck, gatherer prometheus.Gatherer) {
	router.GET("/", rootHandler)
	router.GET("/healthz", healthHandler(checks))
	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
