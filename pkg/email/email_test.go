package email

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsIncompleteConfig(t *testing.T) {
	_, err := New(Config{Enabled: true, From: "clinic@example.com"})
	var mis ErrMisconfigured
	require.ErrorAs(t, err, &mis)
	assert.Equal(t, "smtp.host", mis.Field)

	_, err = New(Config{Enabled: true, SMTPHost: "smtp.example.com"})
	require.ErrorAs(t, err, &mis)
	assert.Equal(t, "from", mis.Field)

	c, err := New(Config{})
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestSendWhenDisabled(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)

	err = c.Send(context.Background(), BuildOTPEmail(OTPEmailData{Email: "a@example.com", Code: "123456", TTLMinutes: 5}))
	assert.ErrorAs(t, err, &ErrDisabled{})
}

func TestBuildMessageValidation(t *testing.T) {
	valid := Message{To: []string{"a@example.com"}, Subject: "s", TextBody: "b"}

	tests := []struct {
		name    string
		from    string
		mutate  func(m *Message)
		wantErr bool
	}{
		{"valid", "clinic@example.com", func(*Message) {}, false},
		{"missing from", " ", func(*Message) {}, true},
		{"blank recipients", "clinic@example.com", func(m *Message) { m.To = []string{" "} }, true},
		{"missing subject", "clinic@example.com", func(m *Message) { m.Subject = "" }, true},
		{"missing body", "clinic@example.com", func(m *Message) { m.TextBody = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := valid
			tt.mutate(&m)
			_, err := buildMessage(tt.from, m)
			if tt.wantErr {
				assert.ErrorAs(t, err, &ErrInvalidMessage{})
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildOTPEmail(t *testing.T) {
	m := BuildOTPEmail(OTPEmailData{Email: "pat@example.com", Code: "482913", TTLMinutes: 5})

	assert.Equal(t, []string{"pat@example.com"}, m.To)
	assert.Equal(t, "Your OTP for Appointment Booking", m.Subject)
	assert.Contains(t, m.TextBody, "Your OTP is 482913. It is valid for 5 minutes.")
	assert.Contains(t, m.HTMLBody, "482913")
	assert.Contains(t, m.TextBody, "Medibook")
}

func TestBuildConfirmationEmail(t *testing.T) {
	m := BuildConfirmationEmail(AppointmentEmailData{
		Email:       "pat@example.com",
		PatientName: "<Pat>",
		DoctorName:  "Smith",
		ClinicName:  "Sunrise Clinic",
		Date:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Time:        "10:00 AM",
		TokenNumber: 4821,
	})

	assert.Equal(t, "Appointment Confirmed", m.Subject)
	assert.Contains(t, m.TextBody, "Appointment confirmed with Dr. Smith on Tuesday, 10 March 2026 at 10:00 AM. Token: 4821")
	assert.Contains(t, m.TextBody, "Sunrise Clinic")
	assert.Contains(t, m.HTMLBody, "&lt;Pat&gt;")
	assert.NotContains(t, m.HTMLBody, "<Pat>")
}

func TestBuildRescheduleEmail(t *testing.T) {
	m := BuildRescheduleEmail(AppointmentEmailData{
		Email:      "pat@example.com",
		DoctorName: "Smith",
		Date:       time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		Time:       "11:00 AM",
	})

	assert.Equal(t, "Appointment Rescheduled", m.Subject)
	assert.Contains(t, m.TextBody, "Hi there,")
	assert.Contains(t, m.TextBody, "Your appointment has been rescheduled to 2026-03-11 at 11:00 AM")
	assert.Empty(t, m.HTMLBody)
}
