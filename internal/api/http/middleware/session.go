package middleware

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/pkg/reqctx"
	"github.com/Alijeyrad/medibook_backend/pkg/util/codes"
)

const (
	HeaderBookingSession = "X-Booking-Session"
	DefaultSessionCookie = "medibook_sid"
	LocalSessionID       = "booking_session"

	maxSessionIDLength = 128
)

type SessionConfig struct {
	CookieName string
	Secure     bool
	// MaxAge should cover the lifetime of a pending booking.
	MaxAge time.Duration
}

// BookingSession correlates the request and verify calls of a booking.
// The id is taken from the X-Booking-Session header, then the session cookie,
// and generated when neither carries a usable value. It is always echoed back
// in both.
func BookingSession(cfg SessionConfig) fiber.Handler {
	name := cfg.CookieName
	if name == "" {
		name = DefaultSessionCookie
	}

	return func(c fiber.Ctx) error {
		sid := c.Get(HeaderBookingSession)
		if !validSessionID(sid) {
			sid = c.Cookies(name)
		}
		if !validSessionID(sid) {
			var err error
			if sid, err = codes.NewSessionID(); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
			}
		}

		c.Locals(LocalSessionID, sid)
		c.Set(HeaderBookingSession, sid)
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    sid,
			Path:     "/",
			MaxAge:   int(cfg.MaxAge.Seconds()),
			HTTPOnly: true,
			Secure:   cfg.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		if meta, ok := reqctx.RequestMetaFromContext(c.Context()); ok {
			meta.SessionID = sid
		}
		return c.Next()
	}
}

// SessionIDFromFiber returns the booking session set by BookingSession.
func SessionIDFromFiber(c fiber.Ctx) string {
	s, _ := c.Locals(LocalSessionID).(string)
	return s
}

func validSessionID(s string) bool {
	if s == "" || len(s) > maxSessionIDLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}
