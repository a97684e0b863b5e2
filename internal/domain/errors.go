package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrZoneNotFound     = errors.New("shipping zone not found")

	ErrProductInactive  = errors.New("product is inactive")
	ErrPermissionDenied = errors.New("permission denied")
	ErrOrderNotPayable  = errors.New("order is not payable")

	// ErrConflict is returned when transactional retries are exhausted; it is
	// the only error worth retrying from the caller side.
	ErrConflict = errors.New("conflicting concurrent update, retry")
)

// ValidationError marks semantically invalid input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError names the offending product and the shortfall.
type InsufficientStockError struct {
	ProductID   uint64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d (%s): requested %d, available %d",
		e.ProductID, e.ProductName, e.Requested, e.Available)
}

// InvalidTransitionError names the current and requested order states.
type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid order status transition from %q to %q", e.From, e.To)
}

// PaymentGatewayError wraps a failed call to the external payment collaborator.
type PaymentGatewayError struct {
	Op  string
	Err error
}

func (e *PaymentGatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err)
}

func (e *PaymentGatewayError) Unwrap() error { return e.Err }
