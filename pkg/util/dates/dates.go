package dates

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalid = errors.New("date must be YYYY-MM-DD or RFC 3339")

// Parse reads a calendar date. A bare "2006-01-02" is midnight UTC; an
// RFC 3339 timestamp keeps its instant and is returned in UTC.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, ErrInvalid
}
