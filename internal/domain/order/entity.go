package order

import (
	"fmt"
	"slices"
	"time"
)

// UnknownCustomer is stored when a payload carries no customer object.
const UnknownCustomer = "Unknown"

type Order struct {
	ID           string     `json:"id"`
	CreatedAt    *time.Time `json:"created_at"`
	CustomerName string     `json:"customer_name"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	TotalPrice   *string    `json:"total_price"`
	Currency     *string    `json:"currency"`
	OrderStatus  Status     `json:"order_status"`
}

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

var AvailableStatuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func NewStatus(raw string) (Status, error) {
	if slices.Contains(AvailableStatuses, Status(raw)) {
		return Status(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// StatusOrDefault maps a stored, possibly NULL status to its read value.
func StatusOrDefault(stored *string) Status {
	if stored == nil || *stored == "" {
		return StatusPending
	}
	return Status(*stored)
}

// OrdersQuery selects orders for the dashboard list.
type OrdersQuery struct {
	// Search is matched case-insensitively as a substring of id, email, phone
	// and customer name. Empty disables the filter.
	Search       string
	CreatedSince time.Time
}
