package order

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPayload is returned when a webhook body is not a JSON object.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrValidation is the parent of every input validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrMissingOrderID is returned when a payload or form carries no usable order id.
	ErrMissingOrderID = fmt.Errorf("%w: missing order id", ErrValidation)

	// ErrInvalidStatus is returned for a status outside AvailableStatuses.
	ErrInvalidStatus = fmt.Errorf("%w: invalid order status", ErrValidation)

	// ErrInvalidIntent is returned when an intent is structurally incomplete.
	ErrInvalidIntent = fmt.Errorf("%w: invalid intent", ErrValidation)

	// ErrStorage wraps every failure of the order store.
	ErrStorage = errors.New("storage failure")
)

func storageError(err error) error {
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
