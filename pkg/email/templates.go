package email

import (
	"fmt"
	"html"
	"time"
)

const dateLayout = "Monday, 2 January 2006"

// OTPEmailData contains the data needed for the booking code email.
type OTPEmailData struct {
	AppName    string
	Email      string
	Code       string
	TTLMinutes int
}

// BuildOTPEmail creates the message carrying a booking verification code.
func BuildOTPEmail(data OTPEmailData) Message {
	name := appName(data.AppName)
	subject := "Your OTP for Appointment Booking"

	textBody := fmt.Sprintf(`Your OTP is %s. It is valid for %d minutes.

If you did not request an appointment, you can ignore this email.

%s`, data.Code, data.TTLMinutes, name)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <p>Your booking code is:</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-family: monospace; font-size: 24px; letter-spacing: 4px; text-align: center;">%s</p>
    <p>It is valid for %d minutes.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">If you did not request an appointment, you can ignore this email.<br>%s</p>
</body>
</html>`, html.EscapeString(data.Code), data.TTLMinutes, html.EscapeString(name))

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// AppointmentEmailData describes a confirmed or moved appointment.
type AppointmentEmailData struct {
	AppName        string
	Email          string
	PatientName    string
	DoctorName     string
	ClinicName     string
	ClinicLocation string
	Date           time.Time
	Time           string
	TokenNumber    int
}

// BuildConfirmationEmail creates the message sent once a booking is confirmed.
func BuildConfirmationEmail(data AppointmentEmailData) Message {
	name := appName(data.AppName)
	date := data.Date.UTC().Format(dateLayout)

	textBody := fmt.Sprintf(`Hi %s,

Appointment confirmed with Dr. %s on %s at %s. Token: %d
%s
Thanks,
%s`, greeting(data.PatientName), data.DoctorName, date, data.Time, data.TokenNumber, clinicLine(data), name)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>Your appointment with <strong>Dr. %s</strong> is confirmed for <strong>%s</strong> at <strong>%s</strong>.</p>
    <p>Your token number is:</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-family: monospace; font-size: 20px; text-align: center;">%d</p>
    <p>%s</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>%s</p>
</body>
</html>`,
		html.EscapeString(greeting(data.PatientName)), html.EscapeString(data.DoctorName), date,
		html.EscapeString(data.Time), data.TokenNumber, html.EscapeString(clinicLine(data)), html.EscapeString(name))

	return Message{
		To:       []string{data.Email},
		Subject:  "Appointment Confirmed",
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// RescheduleText is the plain-text body of the reschedule email.
func RescheduleText(date time.Time, at string) string {
	return fmt.Sprintf("Your appointment has been rescheduled to %s at %s", date.UTC().Format(time.DateOnly), at)
}

// BuildRescheduleEmail creates the notice sent after a missed appointment is moved.
func BuildRescheduleEmail(data AppointmentEmailData) Message {
	name := appName(data.AppName)

	textBody := fmt.Sprintf(`Hi %s,

Your appointment with Dr. %s was missed. %s.

Thanks,
%s`, greeting(data.PatientName), data.DoctorName, RescheduleText(data.Date, data.Time), name)

	return Message{
		To:       []string{data.Email},
		Subject:  "Appointment Rescheduled",
		TextBody: textBody,
	}
}

func greeting(name string) string {
	if name == "" {
		return "there"
	}
	return name
}

func clinicLine(data AppointmentEmailData) string {
	switch {
	case data.ClinicName != "" && data.ClinicLocation != "":
		return data.ClinicName + ", " + data.ClinicLocation
	case data.ClinicName != "":
		return data.ClinicName
	default:
		return data.ClinicLocation
	}
}
