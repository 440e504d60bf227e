package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		region string
		want   string
	}{
		{"international", "+91 98765 43210", "IN", "+919876543210"},
		{"national with default region", "098765 43210", "IN", "+919876543210"},
		{"region ignored when prefixed", "+44 20 7183 8750", "IN", "+442071838750"},
		{"lower case region", "9876543210", "in", "+919876543210"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw, tt.region)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "12345", "not a number"} {
		_, err := Normalize(raw, "IN")
		assert.ErrorIs(t, err, ErrInvalid, raw)
	}
}
