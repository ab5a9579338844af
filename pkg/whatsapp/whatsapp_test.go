package whatsapp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeNumber(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+6281234567890", "6281234567890"},
		{"6281234567890", "6281234567890"},
		{"081234567890", "6281234567890"},
		{"+62 812-3456-7890", "6281234567890"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.want, normalizeNumber(tc.in))
		})
	}
}
