package rules

import (
	"fmt"
	"strings"
)

// Code names why a record was flagged
type Code string

const (
	MissingLocation            Code = "missing_location"
	NameTooShort               Code = "name_too_short"
	CalendarUIElement          Code = "calendar_ui_element"
	NewsArticleNotEvent        Code = "news_article_not_event"
	NoContactInfo              Code = "no_contact_info"
	MissingDate                Code = "missing_date"
	InvalidDate                Code = "invalid_date"
	PastDate                   Code = "past_date"
	WrongYear                  Code = "wrong_year"
	CityEqualsRegion           Code = "city_equals_region"
	SuspiciousNamePattern      Code = "suspicious_name_pattern"
	GenericCalendarContactOnly Code = "generic_calendar_contact_only"
	PlaceholderDate            Code = "placeholder_date"
	MissingDiscipline          Code = "missing_discipline"

	// Duplicate is assigned by the duplicate grouper, never by a table rule.
	Duplicate Code = "duplicate"
)

// Canonical returns the codes of the standard rule set in documentation order.
func Canonical() []Code {
	return []Code{
		MissingLocation,
		NameTooShort,
		CalendarUIElement,
		NewsArticleNotEvent,
		NoContactInfo,
		MissingDate,
		InvalidDate,
		PastDate,
		WrongYear,
		CityEqualsRegion,
		SuspiciousNamePattern,
		GenericCalendarContactOnly,
		PlaceholderDate,
	}
}

// ParseCodes converts names into codes, rejecting anything the default table
// does not define.
func ParseCodes(names []string) ([]Code, error) {
	known := make(map[Code]bool)
	for _, r := range DefaultTable() {
		known[r.Code] = true
	}

	codes := make([]Code, 0, len(names))
	for _, name := range names {
		c := Code(strings.ToLower(strings.TrimSpace(name)))
		if !known[c] {
			return nil, fmt.Errorf("unknown reason code: %q", name)
		}
		codes = append(codes, c)
	}
	return codes, nil
}
