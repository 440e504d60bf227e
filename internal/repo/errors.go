package repo

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	// ErrSlotTaken is returned when a conditional slot claim matched no unbooked row.
	ErrSlotTaken = errors.New("slot is already booked")

	// ErrStatusChanged is returned when a guarded appointment update found the
	// row in a different status than the one it was guarded on.
	ErrStatusChanged = errors.New("appointment status changed concurrently")
)

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
