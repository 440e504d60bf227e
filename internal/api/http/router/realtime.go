package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/handler"
)

func (r *Router) registerRealtimeRoutes(api fiber.Router, rh *handler.RealtimeHandler) {
	api.Get("/rooms/:room/events", rh.Stream)
}
