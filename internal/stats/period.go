package stats

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"menukiosk/pkg/dates"
)

// Period selects the slice of menu history an aggregation runs over.
// Rolling windows ("last30"...) are anchored to "now"; presets like
// "current-month" map to whole calendar intervals; "custom" carries an
// explicit inclusive ISO date range.
type Period struct {
	Kind  string
	Days  int       // lastN kinds
	Year  int       // "year-N"
	Start time.Time // custom
	End   time.Time // custom, inclusive
}

// ParsePeriod understands the selector strings used by both the public
// stats screen and the admin panel. For "custom", startISO and endISO
// are required.
func ParsePeriod(s, startISO, endISO string) (Period, error) {
	switch s {
	case "", "all", "all-time":
		return Period{Kind: "all"}, nil
	case "last30":
		return Period{Kind: "lastN", Days: 30}, nil
	case "last90":
		return Period{Kind: "lastN", Days: 90}, nil
	case "last180":
		return Period{Kind: "lastN", Days: 180}, nil
	case "last365":
		return Period{Kind: "lastN", Days: 365}, nil
	case "current-month", "last-month", "current-year", "last-year":
		return Period{Kind: s}, nil
	case "custom":
		start, err := dates.ISOToTime(startISO)
		if err != nil {
			return Period{}, fmt.Errorf("custom period start: %w", err)
		}
		end, err := dates.ISOToTime(endISO)
		if err != nil {
			return Period{}, fmt.Errorf("custom period end: %w", err)
		}
		if end.Before(start) {
			return Period{}, fmt.Errorf("custom period ends before it starts")
		}
		return Period{Kind: "custom", Start: start, End: end}, nil
	}

	if rest, ok := strings.CutPrefix(s, "year-"); ok {
		year, err := strconv.Atoi(rest)
		if err != nil {
			return Period{}, fmt.Errorf("invalid period %q", s)
		}
		return Period{Kind: "year", Year: year}, nil
	}
	return Period{}, fmt.Errorf("invalid period %q", s)
}

// Contains reports whether a menu's calendar date falls inside the
// period. Both endpoints are inclusive.
func (p Period) Contains(t, now time.Time) bool {
	switch p.Kind {
	case "all":
		return true
	case "lastN":
		return !t.Before(now.AddDate(0, 0, -p.Days))
	case "year":
		return t.Year() == p.Year
	case "current-month":
		return sameInterval(t, startOfMonth(now), startOfNextMonth(now))
	case "last-month":
		// Anchor at the first of the month so a 31st doesn't normalize
		// into the same month when stepping back.
		lm := startOfMonth(now).AddDate(0, -1, 0)
		return sameInterval(t, lm, startOfNextMonth(lm))
	case "current-year":
		return t.Year() == now.Year()
	case "last-year":
		return t.Year() == now.Year()-1
	case "custom":
		return !t.Before(p.Start) && !t.After(p.End)
	}
	return false
}

func sameInterval(t, start, next time.Time) bool {
	return !t.Before(start) && t.Before(next)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfNextMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, 0)
}
