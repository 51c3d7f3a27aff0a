package dates

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestISOToAPI(t *testing.T) {
	got, err := ISOToAPI("2025-08-09")
	require.NoError(t, err)
	assert.Equal(t, "9/8/2025", got)
}

func TestAPIToISO(t *testing.T) {
	got, err := APIToISO("9/8/2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-08-09", got)
}

func TestRoundTrip(t *testing.T) {
	// Every day of a leap year round-trips.
	day := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.Local)
	for day.Year() == 2024 {
		iso := day.Format("2006-01-02")
		api, err := ISOToAPI(iso)
		require.NoError(t, err)
		back, err := APIToISO(api)
		require.NoError(t, err)
		assert.Equal(t, iso, back)
		day = day.AddDate(0, 0, 1)
	}
}

func TestToAPIFormatUnpadded(t *testing.T) {
	d := time.Date(2025, time.March, 5, 12, 0, 0, 0, time.Local)
	assert.Equal(t, "5/3/2025", ToAPIFormat(d))
}

func TestInvalidDates(t *testing.T) {
	for _, bad := range []string{"", "1/2", "32/1/2025", "9/13/2025", "x/8/2025"} {
		_, err := APIToISO(bad)
		assert.Error(t, err, "api date %q", bad)
	}
	for _, bad := range []string{"", "2025-13-01", "2025-00-10", "not-a-date", "2025-02-xx"} {
		_, err := ISOToAPI(bad)
		assert.Error(t, err, "iso date %q", bad)
	}
}

func TestAPIToTime(t *testing.T) {
	got, err := APIToTime("17/8/2025")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year())
	assert.Equal(t, time.August, got.Month())
	assert.Equal(t, 17, got.Day())
}

func TestDayToken(t *testing.T) {
	before := time.Date(2025, time.August, 17, 23, 59, 59, 0, time.Local)
	after := time.Date(2025, time.August, 18, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "2025-08-17", DayToken(before))
	assert.Equal(t, "2025-08-18", DayToken(after))
	assert.NotEqual(t, DayToken(before), DayToken(after))
}

func TestCountdownToOpen(t *testing.T) {
	cases := []struct {
		h, m, s int
		want    string
	}{
		{8, 30, 0, "02:30:00"},
		{11, 0, 1, "23:59:59"}, // already open, rolls to tomorrow
		{10, 59, 59, "00:00:01"},
		{0, 0, 0, "11:00:00"},
		{23, 0, 0, "12:00:00"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%02d:%02d:%02d", tc.h, tc.m, tc.s), func(t *testing.T) {
			now := time.Date(2025, time.August, 17, tc.h, tc.m, tc.s, 0, time.Local)
			assert.Equal(t, tc.want, CountdownToOpen(now, 11))
		})
	}
}
