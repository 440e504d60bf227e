package appointment

import "errors"

var (
	ErrNotFound      = errors.New("appointment not found")
	ErrInvalidStatus = errors.New("status must be one of pending, confirmed, cancelled, missed")
	ErrConflict      = errors.New("appointment was updated concurrently")

	// ErrSlotUnavailable is returned when a cancelled appointment cannot be
	// reinstated because its slot has since been booked by someone else.
	ErrSlotUnavailable = errors.New("appointment slot is no longer available")
)
