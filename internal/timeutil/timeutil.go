package timeutil

import (
	"log/slog"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout      = "2006-01-02"
	DisplayDate     = "02/01/2006"
	DisplayTime     = "15.04.05"
	DisplayDateTime = DisplayDate + " " + DisplayTime
)

// LoadLocation resolves the business time zone, falling back to a fixed
// UTC+7 (WIB) zone when the tz database lacks name.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown time zone, using WIB", "zone", name, "error", err)
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// StartOfDay returns 00:00:00 of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last representable instant of t's calendar day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 23, 59, 59, 999999999, loc)
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// Format renders t in loc using layout.
func Format(t time.Time, loc *time.Location, layout string) string {
	return t.In(loc).Format(layout)
}
