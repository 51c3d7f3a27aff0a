// Package dates converts between the backend's textual date format
// (D/M/YYYY, no zero padding) and the ISO form (YYYY-MM-DD) used for
// date-picker style inputs, and derives "today" tokens for the kiosk.
package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ToAPIFormat renders a time as the backend's D/M/YYYY text.
func ToAPIFormat(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// ISOToAPI converts YYYY-MM-DD to D/M/YYYY.
func ISOToAPI(iso string) (string, error) {
	y, m, d, err := splitISO(iso)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d/%d/%d", d, m, y), nil
}

// APIToISO converts D/M/YYYY to YYYY-MM-DD. Round-trips with ISOToAPI
// for every valid calendar date.
func APIToISO(api string) (string, error) {
	d, m, y, err := splitAPI(api)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), nil
}

// APIToTime parses D/M/YYYY into a local-midnight time.
func APIToTime(api string) (time.Time, error) {
	d, m, y, err := splitAPI(api)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local), nil
}

// ISOToTime parses YYYY-MM-DD into a local-midnight time.
func ISOToTime(iso string) (time.Time, error) {
	y, m, d, err := splitISO(iso)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.Local), nil
}

// TodayAPI returns "now" as the backend's date text.
func TodayAPI(now time.Time) string {
	return ToAPIFormat(now)
}

// DayToken is a day-granularity token; the kiosk compares consecutive
// tokens to detect midnight rollover.
func DayToken(now time.Time) string {
	return now.Format("2006-01-02")
}

// CountdownToOpen formats the remaining time until the next opening
// instant (today at openHour:00:00, or tomorrow's if already past) as
// zero-padded HH:MM:SS.
func CountdownToOpen(now time.Time, openHour int) string {
	target := time.Date(now.Year(), now.Month(), now.Day(), openHour, 0, 0, 0, now.Location())
	if !now.Before(target) {
		target = target.AddDate(0, 0, 1)
	}
	remaining := target.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	total := int(remaining / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

func splitISO(iso string) (year, month, day int, err error) {
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid iso date %q", iso)
	}
	year, err = strconv.Atoi(parts[0])
	if err == nil {
		month, err = strconv.Atoi(parts[1])
	}
	if err == nil {
		day, err = strconv.Atoi(parts[2])
	}
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid iso date %q", iso)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("invalid iso date %q", iso)
	}
	return year, month, day, nil
}

func splitAPI(api string) (day, month, year int, err error) {
	parts := strings.Split(api, "/")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("invalid api date %q", api)
	}
	day, err = strconv.Atoi(parts[0])
	if err == nil {
		month, err = strconv.Atoi(parts[1])
	}
	if err == nil {
		year, err = strconv.Atoi(parts[2])
	}
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid api date %q", api)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("invalid api date %q", api)
	}
	return day, month, year, nil
}
