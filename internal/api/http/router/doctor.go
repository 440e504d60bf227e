package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/handler"
)

func (r *Router) registerDoctorRoutes(api fiber.Router, dh *handler.DoctorHandler) {
	doctors := api.Group("/doctors")

	doctors.Post("/", dh.Register)

	d := doctors.Group("/:id")
	d.Get("/", dh.Get)
	d.Put("/setup", dh.Setup)
	d.Get("/slots", dh.Slots)
	d.Get("/appointments", dh.Appointments)
}
