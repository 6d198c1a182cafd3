package rest

import (
	"OrderDesk/internal/controller/rest/handlers"

	"github.com/gin-gonic/gin"
)

const WebhookPath = "/api/shopify-webhook"

// Router serves the full application: the webhook plus the dashboard API.
type Router struct {
	webhook   handlers.WebhookHandler
	dashboard handlers.DashboardHandler
}

func (r *Router) SetUp(engine *gin.Engine) {
	engine.POST(WebhookPath, r.webhook.Receive)

	dashboard := engine.Group("/dashboard")
	{
		dashboard.GET("/orders", r.dashboard.List)
		dashboard.POST("/orders", r.dashboard.Act)
		dashboard.GET("/orders/:order_id/events", r.dashboard.Events)
	}
}

func NewRouter(webhook handlers.WebhookHandler, dashboard handlers.DashboardHandler) *Router {
	return &Router{
		webhook:   webhook,
		dashboard: dashboard,
	}
}
