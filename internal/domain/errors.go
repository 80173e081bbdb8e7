package domain

import (
	"errors"
	"fmt"
)

var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrInvalidTimeRange = errors.New("end time must be after start time")
	ErrUnauthorized     = errors.New("actor is not allowed to act on this booking")
	ErrInvalidState     = errors.New("booking is not in a state that allows this transition")
)

// ConflictError reports an overlapping active booking on the same resource.
// It carries enough detail for callers to surface "occupied by X" messaging.
type ConflictError struct {
	BookingID string
	UserID    string
	Range     TimeRange
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource already booked by user %s (booking %s)", e.UserID, e.BookingID)
}
