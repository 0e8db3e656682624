package config

import (
	"fmt"

	"github.com/pfrederiksen/aqua-events/internal/dedup"
	"github.com/pfrederiksen/aqua-events/internal/fixes"
	"github.com/pfrederiksen/aqua-events/internal/rules"
)

// Profile selects what a run checks and fixes
type Profile struct {
	Name        string `yaml:"-"`
	Description string `yaml:"description"`

	// Rules are reason codes evaluated by the classifier.
	Rules []string `yaml:"rules"`

	// Correctors name the field correctors to run (city, discipline, federation).
	Correctors []string `yaml:"correctors"`

	// Dedup lists duplicate strategies in execution order (submission, content).
	Dedup []string `yaml:"dedup"`

	MinTitleLength   int      `yaml:"minTitleLength"`
	MaxTitleLength   int      `yaml:"maxTitleLength"`
	YearMin          int      `yaml:"yearMin"`
	YearMax          int      `yaml:"yearMax"`
	PlaceholderDates []string `yaml:"placeholderDates"`
}

// Codes returns the rule codes of the profile.
func (p Profile) Codes() ([]rules.Code, error) {
	return rules.ParseCodes(p.Rules)
}

// Strategies returns the dedup strategies of the profile.
func (p Profile) Strategies() ([]dedup.Strategy, error) {
	out := make([]dedup.Strategy, 0, len(p.Dedup))
	for _, name := range p.Dedup {
		s, err := dedup.ParseStrategy(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Params returns the classifier parameters of the profile. Zero values are
// filled in by the classifier.
func (p Profile) Params() rules.Params {
	return rules.Params{
		MinTitleLength:   p.MinTitleLength,
		MaxTitleLength:   p.MaxTitleLength,
		YearMin:          p.YearMin,
		YearMax:          p.YearMax,
		PlaceholderDates: p.PlaceholderDates,
	}
}

func (p Profile) validate() error {
	if _, err := p.Codes(); err != nil {
		return err
	}
	if _, err := p.Strategies(); err != nil {
		return err
	}
	for _, name := range p.Correctors {
		if !contains(fixes.Names, name) {
			return fmt.Errorf("unknown corrector: %q", name)
		}
	}
	if len(p.Rules) == 0 && len(p.Correctors) == 0 && len(p.Dedup) == 0 {
		return fmt.Errorf("profile selects no rules, correctors or dedup strategies")
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func codeNames(codes ...rules.Code) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}

func builtinProfiles() map[string]Profile {
	return map[string]Profile{
		"full": {
			Description: "every canonical rule, city fixes, submission and content dedup",
			Rules:       codeNames(rules.Canonical()...),
			Correctors:  []string{"city"},
			Dedup:       []string{string(dedup.Submission), string(dedup.Content)},
		},
		"aggressive": {
			Description: "location, title, contact and date checks",
			Rules: codeNames(
				rules.MissingLocation,
				rules.NameTooShort,
				rules.CalendarUIElement,
				rules.NewsArticleNotEvent,
				rules.NoContactInfo,
				rules.MissingDate,
				rules.InvalidDate,
				rules.PastDate,
				rules.WrongYear,
				rules.CityEqualsRegion,
			),
		},
		"ultra": {
			Description: "scraping garbage, placeholder dates and missing essentials",
			Rules: codeNames(
				rules.SuspiciousNamePattern,
				rules.CalendarUIElement,
				rules.PlaceholderDate,
				rules.MissingLocation,
				rules.NoContactInfo,
				rules.InvalidDate,
				rules.PastDate,
			),
		},
		"smart": {
			Description: "no contact at all, or city equal to region outside major cities",
			Rules:       codeNames(rules.NoContactInfo, rules.CityEqualsRegion),
		},
		"final": {
			Description: "suspicious titles, calendar-only contacts and city fixes",
			Rules:       codeNames(rules.SuspiciousNamePattern, rules.GenericCalendarContactOnly),
			Correctors:  []string{"city"},
		},
		"standard": {
			Description: "required fields, invalid and very short titles, past events, content dedup",
			Rules: codeNames(
				rules.MissingLocation,
				rules.MissingDate,
				rules.MissingDiscipline,
				rules.SuspiciousNamePattern,
				rules.CalendarUIElement,
				rules.NameTooShort,
				rules.PastDate,
			),
			Dedup:          []string{string(dedup.Content)},
			MinTitleLength: 6,
		},
		"duplicates": {
			Description: "duplicate removal only",
			Dedup:       []string{string(dedup.Submission), string(dedup.Content)},
		},
		"disciplines": {
			Description: "translate English discipline slugs",
			Correctors:  []string{"discipline"},
		},
		"federations": {
			Description: "replace placeholder federation labels",
			Correctors:  []string{"federation"},
		},
	}
}
