package realtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	b := New(nil, "clinic")

	got, err := b.Subject("0190b6a4-7d2c-7000-8000-000000000001", EventNewAppointment)
	require.NoError(t, err)
	assert.Equal(t, "clinic.room.0190b6a4-7d2c-7000-8000-000000000001.new_appointment", got)

	got, err = New(nil, "").Subject("r1", "*")
	require.NoError(t, err)
	assert.Equal(t, "medibook.room.r1.*", got)
}

func TestSubjectRejectsWildcardsAndSeparators(t *testing.T) {
	b := New(nil, "medibook")
	for _, room := range []string{"", "a.b", "*", ">", "has space"} {
		_, err := b.Subject(room, EventAppointmentUpdate)
		assert.ErrorIs(t, err, ErrInvalidRoom, room)
	}
}

func TestBroadcastChecksRoomBeforePublishing(t *testing.T) {
	b := New(nil, "medibook")
	err := b.Broadcast(context.Background(), "bad.room", EventNewAppointment, "hi")
	assert.ErrorIs(t, err, ErrInvalidRoom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Broadcast(ctx, "room", EventNewAppointment, "hi"), context.Canceled)
}
