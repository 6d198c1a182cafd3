package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// LivenessHandler answers 200 while the process serves requests and reports
// how long it has been up.
func LivenessHandler() gin.HandlerFunc {
	started := time.Now()
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, gin.H{
			"status":   StatusUp,
			"uptime_s": int64(time.Since(started).Seconds()),
		})
	}
}

// ReadinessHandler answers 503 while any dependency is down.
func ReadinessHandler(registry *Registry, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		response := registry.CheckAll(ctx)

		c.Header("Cache-Control", "no-store")
		if response.Status == StatusDown {
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		c.JSON(http.StatusOK, response)
	}
}
