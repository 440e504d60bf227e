package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/service/appointment"
	"github.com/Alijeyrad/medibook_backend/internal/service/doctor"
	"github.com/Alijeyrad/medibook_backend/pkg/reqctx"
)

type DoctorHandler struct {
	svc   doctor.Service
	appts appointment.Service
}

func NewDoctorHandler(svc doctor.Service, appts appointment.Service) *DoctorHandler {
	return &DoctorHandler{svc: svc, appts: appts}
}

func mapDoctorError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, doctor.ErrValidation):
		return badRequest(c, err.Error())
	case errors.Is(err, doctor.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, doctor.ErrAlreadyExists):
		return conflict(c, err.Error())
	default:
		reqctx.Logger(c.Context()).Error("doctor request failed", "error", err)
		return internalError(c)
	}
}

func doctorIDParam(c fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

// POST /doctors
func (h *DoctorHandler) Register(c fiber.Ctx) error {
	var body struct {
		Name             string `json:"name"`
		Email            string `json:"email"`
		Password         string `json:"password"`
		SubscriptionPlan string `json:"subscription_plan"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	d, err := h.svc.Register(c.Context(), doctor.RegisterRequest{
		Name:             body.Name,
		Email:            body.Email,
		Password:         body.Password,
		SubscriptionPlan: body.SubscriptionPlan,
	})
	if err != nil {
		return mapDoctorError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Doctor registered, awaiting approval",
		"data":    d,
	})
}

// PUT /doctors/:id/setup
func (h *DoctorHandler) Setup(c fiber.Ctx) error {
	id, valid := doctorIDParam(c)
	if !valid {
		return badRequest(c, "invalid doctor id")
	}

	var body struct {
		ClinicDetails repo.ClinicDetails `json:"clinic_details"`
		Slots         []struct {
			Date string `json:"date"`
			Time string `json:"time"`
		} `json:"appointment_slots"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req := doctor.SetupRequest{Clinic: body.ClinicDetails}
	for _, s := range body.Slots {
		req.Slots = append(req.Slots, doctor.SlotInput{Date: s.Date, Time: s.Time})
	}
	if err := h.svc.Setup(c.Context(), id, req); err != nil {
		return mapDoctorError(c, err)
	}
	return message(c, "Clinic setup complete")
}

// GET /doctors/:id
func (h *DoctorHandler) Get(c fiber.Ctx) error {
	id, valid := doctorIDParam(c)
	if !valid {
		return badRequest(c, "invalid doctor id")
	}
	d, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return mapDoctorError(c, err)
	}
	return ok(c, d)
}

// GET /doctors/:id/slots?available=true
func (h *DoctorHandler) Slots(c fiber.Ctx) error {
	id, valid := doctorIDParam(c)
	if !valid {
		return badRequest(c, "invalid doctor id")
	}

	var q struct {
		Available bool `query:"available"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query")
	}

	slots, err := h.svc.ListSlots(c.Context(), id, q.Available)
	if err != nil {
		return mapDoctorError(c, err)
	}
	if slots == nil {
		slots = []*repo.Slot{}
	}
	return ok(c, slots)
}

// GET /doctors/:id/appointments
func (h *DoctorHandler) Appointments(c fiber.Ctx) error {
	id, valid := doctorIDParam(c)
	if !valid {
		return badRequest(c, "invalid doctor id")
	}
	if _, err := h.svc.Get(c.Context(), id); err != nil {
		return mapDoctorError(c, err)
	}

	appts, err := h.appts.ListForDoctor(c.Context(), id)
	if err != nil {
		reqctx.Logger(c.Context()).Error("list appointments failed", "doctor_id", id, "error", err)
		return internalError(c)
	}
	if appts == nil {
		appts = []*repo.Appointment{}
	}
	return ok(c, appts)
}
