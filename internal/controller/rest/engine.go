package rest

import (
	"OrderDesk/internal/controller/rest/handlers"
	"OrderDesk/pkg/health"
	"OrderDesk/pkg/logger"
	"OrderDesk/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewGinEngine builds an engine with the shared middleware chain and the
// operational endpoints. Wrong verbs on known paths get a JSON 405.
func NewGinEngine(registry *health.Registry) *gin.Engine {
	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(handlers.MethodNotAllowed)
	engine.Use(logger.CorrelationMiddleware(), metrics.GinMiddleware(), logger.RequestLogger(), gin.Recovery())

	engine.GET("/health/live", health.LivenessHandler())
	engine.GET("/health/ready", health.ReadinessHandler(registry, health.DefaultTimeout))
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	return engine
}
