package rest

import (
	"OrderDesk/internal/controller/rest/handlers"

	"github.com/gin-gonic/gin"
)

// WebhookRouter - lightweight router for the ingest gateway (webhook only)
type WebhookRouter struct {
	webhook handlers.WebhookHandler
}

func (r *WebhookRouter) SetUp(engine *gin.Engine) {
	engine.POST(WebhookPath, r.webhook.Receive)
}

func NewWebhookRouter(webhook handlers.WebhookHandler) *WebhookRouter {
	return &WebhookRouter{webhook: webhook}
}
