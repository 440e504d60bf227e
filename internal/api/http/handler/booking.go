package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/Alijeyrad/medibook_backend/internal/api/http/middleware"
	"github.com/Alijeyrad/medibook_backend/internal/service/booking"
	"github.com/Alijeyrad/medibook_backend/pkg/reqctx"
	"github.com/Alijeyrad/medibook_backend/pkg/util/dates"
)

type BookingHandler struct {
	svc booking.Service
}

func NewBookingHandler(svc booking.Service) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func mapBookingError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, booking.ErrValidation),
		errors.Is(err, booking.ErrInvalidOrExpiredCode),
		errors.Is(err, booking.ErrNoPendingBooking):
		return badRequest(c, err.Error())
	case errors.Is(err, booking.ErrDoctorNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, booking.ErrSlotNotFound),
		errors.Is(err, booking.ErrSlotUnavailable),
		errors.Is(err, booking.ErrSlotNoLongerAvailable):
		return conflict(c, err.Error())
	default:
		reqctx.Logger(c.Context()).Error("booking failed", "error", err)
		return internalError(c)
	}
}

// POST /bookings/request
func (h *BookingHandler) Request(c fiber.Ctx) error {
	var body struct {
		DoctorID string `json:"doctor_id"`
		Date     string `json:"date"`
		Time     string `json:"time"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	req := booking.Request{
		Time:  body.Time,
		Name:  body.Name,
		Email: body.Email,
		Phone: body.Phone,
	}
	if s := strings.TrimSpace(body.DoctorID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return badRequest(c, "invalid doctor_id")
		}
		req.DoctorID = id
	}
	if strings.TrimSpace(body.Date) != "" {
		d, err := dates.Parse(body.Date)
		if err != nil {
			return badRequest(c, err.Error())
		}
		req.Date = d
	}

	if err := h.svc.RequestBooking(c.Context(), middleware.SessionIDFromFiber(c), req); err != nil {
		return mapBookingError(c, err)
	}
	return message(c, "OTP sent to your email. Please verify to confirm the appointment.")
}

// POST /bookings/verify
func (h *BookingHandler) Verify(c fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.Bind().Body(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(body.Email) == "" || strings.TrimSpace(body.OTP) == "" {
		return badRequest(c, "email and otp are required")
	}

	appt, err := h.svc.VerifyBooking(c.Context(), middleware.SessionIDFromFiber(c), booking.VerifyRequest{
		Email: body.Email,
		OTP:   body.OTP,
	})
	if err != nil {
		return mapBookingError(c, err)
	}

	return c.JSON(fiber.Map{
		"message":      "Appointment booked",
		"token_number": appt.TokenNumber,
		"data": fiber.Map{
			"appointment_id": appt.ID,
			"date":           appt.Date.Format(time.DateOnly),
			"time":           appt.Time,
			"status":         appt.Status,
		},
	})
}
