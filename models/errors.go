package models

import (
	"errors"
	"fmt"
)

// Domain sentinels surfaced by the coordinators. The HTTP layer maps these to
// status codes; anything else is treated as a persistence failure.
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCannotReverse     = errors.New("stock already consumed, entry cannot be reversed")
	ErrInvalidState      = errors.New("record is not in a cancellable state")
	ErrMissingReason     = errors.New("cancellation reason is required")
	ErrForbidden         = errors.New("not allowed for this role")
	ErrResourceInUse     = errors.New("record is referenced by other records")
)

// ResourceInUseError blocks catalog deletes that would orphan history or
// break existing variants; the message tells the caller what to do instead.
type ResourceInUseError struct {
	Message string
}

func (e *ResourceInUseError) Error() string {
	return e.Message
}

func (e *ResourceInUseError) Unwrap() error {
	return ErrResourceInUse
}

// InsufficientStockError carries the sku and available quantity so the caller
// can show which line failed.
type InsufficientStockError struct {
	Sku       string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.Sku, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// CannotReverseError carries the sku and shortfall for entry cancellation.
type CannotReverseError struct {
	Sku       string
	Available int
	Required  int
}

func (e *CannotReverseError) Error() string {
	return fmt.Sprintf("cannot reverse entry for %s: current stock %d is below entry quantity %d", e.Sku, e.Available, e.Required)
}

func (e *CannotReverseError) Unwrap() error {
	return ErrCannotReverse
}
