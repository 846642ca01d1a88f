package fat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateTimeRoundTrip(t *testing.T) {
	cases := []DateTime{
		{Year: 1980, Month: 1, Day: 1, Hour: 0, Minute: 0, Second: 0},
		{Year: 2026, Month: 7, Day: 31, Hour: 23, Minute: 59, Second: 58},
		{Year: 2107, Month: 12, Day: 31, Hour: 12, Minute: 30, Second: 0},
	}
	for _, dt := range cases {
		date, clock := encodeDateTime(dt)
		got := decodeDateTime(date, clock)
		require.Equal(t, dt, got)
	}
}

func TestDateTimeOddSecondsTruncated(t *testing.T) {
	date, clock := encodeDateTime(DateTime{Year: 2000, Month: 6, Day: 15, Second: 43})
	got := decodeDateTime(date, clock)
	require.Equal(t, 42, got.Second)
}

func TestNewDateTimeFromTime(t *testing.T) {
	src := time.Date(2024, time.March, 3, 8, 15, 30, 0, time.UTC)
	dt := newDateTime(src)
	require.Equal(t, 2024, dt.Year)
	require.Equal(t, 3, dt.Month)
	require.Equal(t, 3, dt.Day)
	require.Equal(t, 8, dt.Hour)
	require.Equal(t, 15, dt.Minute)
	require.Equal(t, 30, dt.Second)

	back := dt.Time(time.UTC)
	require.True(t, src.Equal(back))
}
