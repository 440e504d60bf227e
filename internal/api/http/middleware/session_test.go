package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/medibook_backend/pkg/reqctx"
)

func newSessionApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestID())
	app.Use(BookingSession(SessionConfig{MaxAge: time.Hour}))
	app.Get("/", func(c fiber.Ctx) error {
		meta, _ := reqctx.RequestMetaFromContext(c.Context())
		return c.SendString(SessionIDFromFiber(c) + "|" + meta.SessionID)
	})
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestBookingSessionGenerated(t *testing.T) {
	app := newSessionApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	sid := resp.Header.Get(HeaderBookingSession)
	require.Len(t, sid, 32)
	assert.Equal(t, sid+"|"+sid, body(t, resp))

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == DefaultSessionCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, sid, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestBookingSessionFromHeaderAndCookie(t *testing.T) {
	app := newSessionApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderBookingSession, "from-header_1")
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "from-cookie"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-header_1", resp.Header.Get(HeaderBookingSession))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "from-cookie"})
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", resp.Header.Get(HeaderBookingSession))
}

func TestBookingSessionRejectsJunk(t *testing.T) {
	app := newSessionApp()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderBookingSession, "not valid!")
	resp, err := app.Test(req)
	require.NoError(t, err)

	sid := resp.Header.Get(HeaderBookingSession)
	assert.NotEqual(t, "not valid!", sid)
	assert.Len(t, sid, 32)
}

func TestRequestIDPreserved(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(reqctx.RequestIDFromContext(c.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))
	assert.Equal(t, "abc-123", body(t, resp))
}
