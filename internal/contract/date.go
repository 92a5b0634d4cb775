package contract

import "time"

// DateLayout is the layout of the canonical date string stored in weather.date.
// It sorts lexicographically in chronological order, so range filters need no date parsing.
const DateLayout = "20060102"

// DateString converts a point in time into the canonical date string (UTC)
func DateString(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a canonical date string
func ParseDate(raw string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, raw, time.UTC)
}
