package booking

import "errors"

var (
	// ErrValidation is wrapped with the detail, e.g. "invalid booking request: missing email".
	ErrValidation            = errors.New("invalid booking request")
	ErrDoctorNotFound        = errors.New("doctor not found")
	ErrSlotNotFound          = errors.New("slot not found")
	ErrSlotUnavailable       = errors.New("slot unavailable")
	ErrSlotNoLongerAvailable = errors.New("slot no longer available")
	ErrInvalidOrExpiredCode  = errors.New("invalid or expired OTP")
	ErrNoPendingBooking      = errors.New("no pending booking found")
)
