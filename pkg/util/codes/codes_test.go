package codes

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionID(t *testing.T) {
	a, err := NewSessionID()
	require.NoError(t, err)
	b, err := NewSessionID()
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_-]+$`), a)
}

func TestBookingSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Dr. Jane Doe", `^dr-jane-doe-[0-9a-f]{12}$`},
		{"collapses punctuation", "  Ana  --  Maria ", `^ana-maria-[0-9a-f]{12}$`},
		{"no usable characters", "***", `^[0-9a-f]{12}$`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BookingSlug(tt.in)
			require.NoError(t, err)
			assert.Regexp(t, regexp.MustCompile(tt.want), got)
		})
	}
}

func TestInvalidLength(t *testing.T) {
	_, err := GenerateSecureToken(0)
	assert.ErrorIs(t, err, ErrInvalidLength)
	_, err = GenerateURLSafeToken(-1)
	assert.ErrorIs(t, err, ErrInvalidLength)
}
