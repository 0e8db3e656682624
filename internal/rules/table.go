package rules

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pfrederiksen/aqua-events/internal/cities"
	"github.com/pfrederiksen/aqua-events/internal/event"
)

// Version identifies the rule table; it is printed in every report so two runs
// can be compared.
const Version = "2025.11.3"

const (
	DefaultMinTitleLength = 10
	DefaultMaxTitleLength = 200
)

// DefaultPlaceholderDates are days the scrapers store when no real date was found.
var DefaultPlaceholderDates = []string{"2025-12-31"}

// Params carries the run-specific inputs of the predicates
type Params struct {
	// Now is the run clock used by past_date.
	Now time.Time

	MinTitleLength int
	MaxTitleLength int

	// YearMin and YearMax bound wrong_year, inclusive.
	YearMin int
	YearMax int

	PlaceholderDates []string
	MajorCities      *cities.Set
}

// withDefaults fills zero values: title bounds from the Default constants, the
// year window from Now's year ±1, major cities from cities.Major.
func (p Params) withDefaults() Params {
	if p.Now.IsZero() {
		p.Now = time.Now().UTC()
	}
	if p.MinTitleLength <= 0 {
		p.MinTitleLength = DefaultMinTitleLength
	}
	if p.MaxTitleLength <= 0 {
		p.MaxTitleLength = DefaultMaxTitleLength
	}
	if p.YearMin == 0 {
		p.YearMin = p.Now.Year() - 1
	}
	if p.YearMax == 0 {
		p.YearMax = p.Now.Year() + 1
	}
	if p.PlaceholderDates == nil {
		p.PlaceholderDates = DefaultPlaceholderDates
	}
	if p.MajorCities == nil {
		p.MajorCities = cities.Major
	}
	return p
}

// Predicate reports whether a rule matches a view
type Predicate func(v event.View, p Params) bool

// Rule is one named entry of the table
type Rule struct {
	Code        Code
	Description string
	Match       Predicate
}

// Table is an ordered list of rules. Order only affects the order of reported reasons.
type Table []Rule

// Lookup returns the rule registered for code.
func (t Table) Lookup(code Code) (Rule, bool) {
	for _, r := range t {
		if r.Code == code {
			return r, true
		}
	}
	return Rule{}, false
}

// DefaultTable returns the rule table. A fresh slice is returned on every call.
func DefaultTable() Table {
	return Table{
		{
			Code:        MissingLocation,
			Description: "city or region empty",
			Match: func(v event.View, _ Params) bool {
				return v.City == "" || v.Region == ""
			},
		},
		{
			Code:        NameTooShort,
			Description: "title shorter than the minimum length",
			Match: func(v event.View, p Params) bool {
				return utf8.RuneCountInString(strings.TrimSpace(v.TitleEs)) < p.MinTitleLength
			},
		},
		{
			Code:        CalendarUIElement,
			Description: "title is calendar page chrome",
			Match: func(v event.View, _ Params) bool {
				return matchesAny(calendarPatterns, strings.TrimSpace(v.TitleEs))
			},
		},
		{
			Code:        NewsArticleNotEvent,
			Description: "title is a news item or announcement",
			Match: func(v event.View, _ Params) bool {
				return matchesAny(newsPatterns, strings.TrimSpace(v.TitleEs))
			},
		},
		{
			Code:        NoContactInfo,
			Description: "no usable email, phone or website",
			Match: func(v event.View, _ Params) bool {
				return !v.HasEmail && !v.HasPhone && !v.HasWebsite
			},
		},
		{
			Code:        MissingDate,
			Description: "date absent",
			Match: func(v event.View, _ Params) bool {
				return v.DateState == event.DateMissing
			},
		},
		{
			Code:        InvalidDate,
			Description: "date present but unparsable",
			Match: func(v event.View, _ Params) bool {
				return v.DateState == event.DateInvalid
			},
		},
		{
			Code:        PastDate,
			Description: "date before the run clock",
			Match: func(v event.View, p Params) bool {
				return v.HasDate() && v.ParsedDate.Before(p.Now)
			},
		},
		{
			Code:        WrongYear,
			Description: "year outside the allowed window",
			Match: func(v event.View, p Params) bool {
				if !v.HasDate() {
					return false
				}
				y := v.ParsedDate.Year()
				return y < p.YearMin || y > p.YearMax
			},
		},
		{
			Code:        CityEqualsRegion,
			Description: "city equals region and is not a major city",
			Match: func(v event.View, p Params) bool {
				if v.City == "" || v.Region == "" {
					return false
				}
				return event.Fold(v.City) == event.Fold(v.Region) && !p.MajorCities.Contains(v.City)
			},
		},
		{
			Code:        SuspiciousNamePattern,
			Description: "title matches known scraping garbage",
			Match: func(v event.View, p Params) bool {
				title := v.TitleEs
				if utf8.RuneCountInString(title) > p.MaxTitleLength {
					return true
				}
				if hasScrapingArtifacts(title) || looksLikeCalendarMarkup(title) || hasMarkup(title) {
					return true
				}
				return matchesAny(suspiciousPatterns, strings.TrimSpace(title))
			},
		},
		{
			Code:        GenericCalendarContactOnly,
			Description: "only contact is a generic calendar page",
			Match: func(v event.View, _ Params) bool {
				return !v.HasEmail && !v.HasPhone && genericCalendarURL.MatchString(v.Website)
			},
		},
		{
			Code:        PlaceholderDate,
			Description: "date is a scraper placeholder",
			Match: func(v event.View, p Params) bool {
				for _, day := range p.PlaceholderDates {
					if day != "" && strings.HasPrefix(v.DateRaw, day) {
						return true
					}
				}
				return false
			},
		},
		{
			Code:        MissingDiscipline,
			Description: "discipline empty",
			Match: func(v event.View, _ Params) bool {
				return v.Discipline == ""
			},
		},
	}
}
