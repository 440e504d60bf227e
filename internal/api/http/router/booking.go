package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/handler"
)

func (r *Router) registerBookingRoutes(
	api fiber.Router,
	bh *handler.BookingHandler,
	session fiber.Handler,
	limiter fiber.Handler,
) {
	bookings := api.Group("/bookings", limiter, session)

	bookings.Post("/request", bh.Request)
	bookings.Post("/verify", bh.Verify)
}
