package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2026, time.March, 1, 14, 30, 0, 0, loc)

	cases := []struct {
		name       string
		start, end time.Time
	}{
		{Today, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), time.Date(2026, 3, 2, 0, 0, 0, 0, loc)},
		{Yesterday, time.Date(2026, 2, 28, 0, 0, 0, 0, loc), time.Date(2026, 3, 1, 0, 0, 0, 0, loc)},
		{Week, time.Date(2026, 2, 23, 0, 0, 0, 0, loc), time.Date(2026, 3, 2, 0, 0, 0, 0, loc)},
		{Month, time.Date(2026, 1, 31, 0, 0, 0, 0, loc), time.Date(2026, 3, 2, 0, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r, err := Window(tc.name, now)
			require.NoError(t, err)
			assert.True(t, tc.start.Equal(r.Start), "start %s", r.Start)
			assert.True(t, tc.end.Equal(r.End), "end %s", r.End)
			assert.Equal(t, tc.name != Yesterday, r.Contains(now))
		})
	}
}

func TestWindow_Unknown(t *testing.T) {
	_, err := Window("decade", time.Now())
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestRange_HalfOpen(t *testing.T) {
	r, err := Window(Today, time.Date(2026, 5, 5, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, r.Contains(r.Start))
	assert.False(t, r.Contains(r.End))
	assert.False(t, r.Contains(r.Start.Add(-time.Nanosecond)))
}
