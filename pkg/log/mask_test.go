package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{name: "empty", secret: "", want: ""},
		{name: "short secret fully hidden", secret: "abc123", want: "******"},
		{name: "boundary length fully hidden", secret: "12345678", want: "********"},
		{name: "long secret keeps prefix", secret: "a1b2c3d4e5f6g7h8", want: "a1b2********"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Mask(tt.secret))
		})
	}
}

func TestMask_DoesNotLeakLength(t *testing.T) {
	short := Mask("abcdefghijkl")
	long := Mask("abcdefghijklmnopqrstuvwxyz0123456789")
	assert.Equal(t, len(short), len(long))
	assert.NotContains(t, long, "xyz")
}
