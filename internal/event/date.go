package event

import (
	"strings"
	"time"
)

// dateLayouts lists the formats found in the events collection, most common first.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
}

// ParseDate attempts to parse a stored event date into a time.Time.
// Returns time.Time{} (zero value) if parsing fails.
// Supports ISO dates ("2026-06-14"), RFC 3339 timestamps with or without
// fractional seconds, and day-first Spanish dates ("14/06/2026").
func ParseDate(dateText string) time.Time {
	dateText = strings.TrimSpace(dateText)
	if dateText == "" {
		return time.Time{}
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, dateText)
		if err == nil {
			return t.UTC()
		}
	}

	// Could not parse, return zero time
	return time.Time{}
}

// Day formats t as the calendar day used for identity keys and sentinel checks.
func Day(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
