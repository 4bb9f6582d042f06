// Package timezone provides timezone utilities for the habla backend.
//
// All schedule matching and reminder dispatch happens in the user's
// configured IANA timezone; this package handles parsing and the
// weekday/time/date reduction both of them share.
package timezone

import (
	"fmt"
	"time"
)

// DefaultTimezone is applied when a user has no timezone configured.
const DefaultTimezone = "America/Asuncion"

// LocationDefault is the pre-loaded default location.
var LocationDefault = MustParse(DefaultTimezone)

// Parse parses an IANA timezone identifier (e.g. "America/Sao_Paulo").
// If the identifier is invalid, returns UTC and an error.
func Parse(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParse parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParse(tz string) *time.Location {
	loc, err := Parse(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// UserLocation resolves a user's timezone string, falling back to the
// default location when the string is empty or invalid.
func UserLocation(tz string) *time.Location {
	if tz == "" {
		return LocationDefault
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return LocationDefault
	}
	return loc
}

// Weekday symbols in schedule order. Index 0 is Monday.
var weekdaySymbols = [7]string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// WeekdaySymbol returns the schedule symbol ("mon".."sun") for a weekday.
func WeekdaySymbol(d time.Weekday) string {
	// time.Weekday starts at Sunday; the schedule week starts at Monday.
	return weekdaySymbols[(int(d)+6)%7]
}

// WeekdayIndex returns the Monday-based index (0..6) for a schedule
// symbol, or -1 if the symbol is unknown.
func WeekdayIndex(symbol string) int {
	for i, s := range weekdaySymbols {
		if s == symbol {
			return i
		}
	}
	return -1
}

// Parts is an instant reduced to the fields schedule documents are keyed by.
type Parts struct {
	Weekday string // "mon".."sun"
	Time    string // 24-hour "HH:MM"
	ISODate string // "2006-01-02"
}

// LocalParts reduces an instant to its weekday, HH:MM and ISO date in loc.
func LocalParts(t time.Time, loc *time.Location) Parts {
	local := t.In(loc)
	return Parts{
		Weekday: WeekdaySymbol(local.Weekday()),
		Time:    local.Format("15:04"),
		ISODate: local.Format("2006-01-02"),
	}
}
