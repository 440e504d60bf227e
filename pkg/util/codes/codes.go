package codes

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidLength = errors.New("invalid code length")

const (
	// SessionIDByteLength produces a 32 character URL-safe booking session id.
	SessionIDByteLength = 24

	// SlugByteLength is the random suffix size of a doctor's booking link.
	SlugByteLength = 6
)

// GenerateSecureToken creates a cryptographically secure hex token.
// byteLength specifies the number of random bytes (output will be 2x this length in hex).
func GenerateSecureToken(byteLength int) (string, error) {
	b, err := randomBytes(byteLength)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateURLSafeToken creates a URL-safe base64-encoded token.
func GenerateURLSafeToken(byteLength int) (string, error) {
	b, err := randomBytes(byteLength)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewSessionID returns an opaque identifier for a booking session.
func NewSessionID() (string, error) {
	return GenerateURLSafeToken(SessionIDByteLength)
}

// BookingSlug derives the path segment of a doctor's public booking link,
// e.g. "dr-jane-doe-3f9a1c0b2e7d".
func BookingSlug(name string) (string, error) {
	suffix, err := GenerateSecureToken(SlugByteLength)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	base := strings.TrimSuffix(b.String(), "-")
	if base == "" {
		return suffix, nil
	}
	return base + "-" + suffix, nil
}

func randomBytes(n int) ([]byte, error) {
	if n < 1 {
		return nil, ErrInvalidLength
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}
