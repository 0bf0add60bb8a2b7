// Package timezone provides timezone utilities for timepilot.
//
// This package handles timezone conversions, parsing, and formatting
// to ensure consistent time handling across the application.
package timezone

import (
	"fmt"
	"time"
)

// ParseTimezone parses an IANA timezone identifier (e.g., "Asia/Shanghai").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParseTimezone parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParseTimezone(tz string) *time.Location {
	loc, err := ParseTimezone(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	if tz == "" || tz == "UTC" {
		return true
	}

	_, err := time.LoadLocation(tz)
	return err == nil
}

// ToUserTimezone converts a Unix timestamp to the user's timezone.
func ToUserTimezone(ts int64, tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	return time.Unix(ts, 0).In(tz)
}

// FormatSlotTime formats a resolved slot for display:
// "2006-01-02 15:04 - 16:00".
func FormatSlotTime(start, end time.Time, tz *time.Location) string {
	if tz == nil {
		tz = time.UTC
	}
	return fmt.Sprintf("%s - %s",
		start.In(tz).Format("2006-01-02 15:04"),
		end.In(tz).Format("15:04"))
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	day := t.In(tz)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, tz)
}

// TimezoneAsiaShanghai is the default timezone of the product.
const TimezoneAsiaShanghai = "Asia/Shanghai"

// LocationAsiaShanghai is the pre-loaded Asia/Shanghai location.
var LocationAsiaShanghai = MustParseTimezone(TimezoneAsiaShanghai)
