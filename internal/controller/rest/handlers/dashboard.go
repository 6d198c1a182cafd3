package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"OrderDesk/internal/domain/order"
	"OrderDesk/pkg/logger"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	service *order.OrderService
}

func NewDashboardHandler(s *order.OrderService) DashboardHandler {
	return DashboardHandler{service: s}
}

type ordersQuery struct {
	Q string `form:"q"`
}

// List returns the recent orders matching q, with q echoed back trimmed.
func (h *DashboardHandler) List(c *gin.Context) {
	var query ordersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}

	orders, err := h.service.SearchOrders(c.Request.Context(), query.Q)
	if err != nil {
		serverError(c, "Failed to search orders", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders, "q": strings.TrimSpace(query.Q)})
}

type orderActionForm struct {
	OrderID     string `form:"orderId" binding:"required"`
	OrderStatus string `form:"orderStatus"`
	Delete      bool   `form:"delete"`
}

// Act applies a status change or a delete posted from the dashboard and
// redirects back to the posting view.
func (h *DashboardHandler) Act(c *gin.Context) {
	var form orderActionForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		return
	}
	form.OrderID = strings.TrimSpace(form.OrderID)

	// A status outside the enum rejects the whole form, delete included.
	if form.OrderStatus != "" {
		if _, err := order.NewStatus(form.OrderStatus); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order status"})
			return
		}
	}

	ctx := c.Request.Context()
	var (
		rows int64
		err  error
	)
	switch {
	case form.Delete:
		rows, err = h.service.DeleteOrder(ctx, form.OrderID)
	case form.OrderStatus != "":
		rows, err = h.service.UpdateStatus(ctx, form.OrderID, form.OrderStatus)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order status"})
		case errors.Is(err, order.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		default:
			serverError(c, "Failed to apply dashboard action", err)
		}
		return
	}

	slog.InfoContext(ctx, "Dashboard action applied",
		slog.String("order_id", form.OrderID),
		slog.Bool("delete", form.Delete),
		slog.String("order_status", form.OrderStatus),
		slog.Int64("rows_affected", rows))

	c.Redirect(http.StatusSeeOther, c.Request.URL.RequestURI())
}

// Events returns the event history of one order, newest first.
func (h *DashboardHandler) Events(c *gin.Context) {
	events, err := h.service.GetEvents(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		if errors.Is(err, order.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing order id"})
			return
		}
		serverError(c, "Failed to load order events", err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func serverError(c *gin.Context, msg string, err error) {
	slog.ErrorContext(c.Request.Context(), msg, logger.Err(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
}
