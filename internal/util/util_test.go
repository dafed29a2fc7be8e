package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Nike Air Max", "nike-air-max"},
		{"  spaced  out  ", "spaced-out"},
		{"Chanel No.5", "chanel-no-5"},
		{"UPPER", "upper"},
		{"---", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slugify(tc.in), "Slugify(%q)", tc.in)
	}
}

func TestCalculate(t *testing.T) {
	offset, limit := Calculate(1, 15)
	require.Zero(t, offset)
	require.Equal(t, 15, limit)

	offset, limit = Calculate(3, 10)
	require.Equal(t, 20, offset)
	require.Equal(t, 10, limit)

	// out-of-range inputs fall back to defaults
	offset, limit = Calculate(0, 0)
	require.Zero(t, offset)
	require.Equal(t, DefaultPageSize, limit)

	_, limit = Calculate(1, 500)
	require.Equal(t, DefaultPageSize, limit)
}
