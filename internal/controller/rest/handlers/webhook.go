package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"OrderDesk/internal/domain/order"
	"OrderDesk/internal/webhook"
	"OrderDesk/pkg/logger"
	"OrderDesk/pkg/metrics"

	"github.com/gin-gonic/gin"
)

const (
	HeaderTopic     = "X-Shopify-Topic"
	HeaderWebhookID = "X-Shopify-Webhook-Id"

	// DefaultMaxBodyBytes caps a webhook body when no limit is configured.
	DefaultMaxBodyBytes int64 = 1 << 20
)

type WebhookHandler struct {
	processor    webhook.Processor
	maxBodyBytes int64
}

func NewWebhookHandler(processor webhook.Processor, maxBodyBytes int64) WebhookHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return WebhookHandler{processor: processor, maxBodyBytes: maxBodyBytes}
}

// Receive normalizes an order webhook and hands it to the processor.
// Parse and validation failures are answered before storage is touched.
func (h *WebhookHandler) Receive(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			countIntent("unknown", metrics.ResultRejected)
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload too large"})
			return
		}
		countIntent("unknown", metrics.ResultRejected)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	meta := order.DeliveryMeta{
		Topic:     topicFrom(c),
		WebhookID: c.GetHeader(HeaderWebhookID),
	}

	intent, err := order.Normalize(body, meta.Topic)
	if err != nil {
		countIntent("unknown", metrics.ResultRejected)
		slog.WarnContext(ctx, "Webhook rejected", slog.String("topic", meta.Topic), logger.Err(err))
		switch {
		case errors.Is(err, order.ErrInvalidPayload):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		case errors.Is(err, order.ErrMissingOrderID):
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing order id"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		}
		return
	}

	outcome, err := h.processor.Process(ctx, intent, meta)
	if err != nil {
		countIntent(string(intent.Kind), metrics.ResultFailed)
		slog.ErrorContext(ctx, "Webhook processing failed",
			slog.String("topic", meta.Topic),
			slog.String("order_id", intent.OrderID()),
			slog.String("kind", string(intent.Kind)),
			logger.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if outcome.Queued {
		countIntent(string(intent.Kind), metrics.ResultQueued)
		c.JSON(http.StatusAccepted, gin.H{"success": true, "queued": true})
		return
	}

	result := metrics.ResultApplied
	if outcome.RowsAffected == 0 {
		result = metrics.ResultNoop
	}
	countIntent(string(intent.Kind), result)
	slog.InfoContext(ctx, "Webhook applied",
		slog.String("topic", meta.Topic),
		slog.String("order_id", intent.OrderID()),
		slog.String("action", string(outcome.Action)),
		slog.Int64("rows_affected", outcome.RowsAffected))

	if outcome.Action == order.KindDelete {
		c.JSON(http.StatusOK, gin.H{"success": true, "action": order.KindDelete, "deleted": outcome.RowsAffected})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "action": order.KindUpsert, "inserted": outcome.RowsAffected})
}

// MethodNotAllowed answers wrong verbs on registered paths.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
}

// topicFrom reads the topic header, falling back to the topic query parameter.
func topicFrom(c *gin.Context) string {
	if topic := c.GetHeader(HeaderTopic); topic != "" {
		return topic
	}
	return c.Query("topic")
}

func countIntent(kind, result string) {
	metrics.WebhookIntentsTotal.WithLabelValues(kind, result).Inc()
}
