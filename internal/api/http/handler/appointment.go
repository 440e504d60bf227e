package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/medibook_backend/internal/service/appointment"
	"github.com/Alijeyrad/medibook_backend/pkg/reqctx"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

func mapAppointmentError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, appointment.ErrInvalidStatus):
		return badRequest(c, err.Error())
	case errors.Is(err, appointment.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, appointment.ErrSlotUnavailable), errors.Is(err, appointment.ErrConflict):
		return conflict(c, err.Error())
	default:
		reqctx.Logger(c.Context()).Error("appointment update failed", "error", err)
		return internalError(c)
	}
}

// PUT /appointments/:id/status
func (h *AppointmentHandler) UpdateStatus(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.UpdateStatus(c.Context(), id, body.Status)
	if err != nil {
		return mapAppointmentError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Appointment updated", "data": appt})
}
