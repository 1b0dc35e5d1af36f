package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name        string
		page, size  int
		offset, lim int
	}{
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 10, 20, 10},
		{"page below one", 0, 5, 0, 5},
		{"size too big", 2, 1000, DefaultPageSize, DefaultPageSize},
		{"size zero", 1, 0, 0, DefaultPageSize},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			off, lim := Calculate(tc.page, tc.size)
			assert.Equal(t, tc.offset, off)
			assert.Equal(t, tc.lim, lim)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}
