// Package localtime pins every persisted timestamp to the fixed UTC-3 offset
// and the "YYYY-MM-DD HH:MM:SS" text layout shared by rules, history and readings.
package localtime

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the text layout stored in the database
const Layout = "2006-01-02 15:04:05"

// DateLayout is the date part of Layout
const DateLayout = "2006-01-02"

// Location is the fixed UTC-3 zone
var Location = time.FixedZone("UTC-3", -3*60*60)

// Now returns the current time in Location
func Now() time.Time {
	return time.Now().In(Location)
}

// Format renders t in Location using Layout
func Format(t time.Time) string {
	return t.In(Location).Format(Layout)
}

// Date renders the calendar date of t in Location
func Date(t time.Time) string {
	return t.In(Location).Format(DateLayout)
}

// Parse reads a stored timestamp. Values without an offset are taken as UTC-3.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.ParseInLocation(Layout, value, Location); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, Location); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.In(Location), nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
