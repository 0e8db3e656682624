package event

import (
	"strings"
	"time"
)

// DateState classifies the date field of a record
type DateState int

const (
	DateMissing DateState = iota
	DateInvalid
	DateValid
)

// String returns a human-readable label.
func (s DateState) String() string {
	switch s {
	case DateValid:
		return "valid"
	case DateInvalid:
		return "invalid"
	default:
		return "missing"
	}
}

// View is the normalized, flat form of a Record that rules are evaluated against
type View struct {
	ID           string
	TitleEs      string
	City         string
	Region       string
	Discipline   string
	Website      string
	SubmissionID string

	HasEmail   bool
	HasPhone   bool
	HasWebsite bool

	DateRaw    string
	DateState  DateState
	ParsedDate time.Time
}

// Normalize extracts the canonical scalar values of r. It never fails: malformed
// values surface as empty strings, false flags or an invalid DateState.
func Normalize(r *Record) View {
	if r == nil {
		return View{}
	}

	v := View{
		ID:           r.ID,
		TitleEs:      r.Title.Es(),
		City:         strings.TrimSpace(r.Location.City),
		Region:       strings.TrimSpace(r.Location.Region),
		Discipline:   strings.TrimSpace(r.Discipline),
		Website:      strings.TrimSpace(r.Contact.Website),
		SubmissionID: r.SubmissionID,
		HasEmail:     present(r.Contact.Email) && strings.Contains(r.Contact.Email, "@"),
		HasPhone:     present(r.Contact.Phone) && len([]rune(strings.TrimSpace(r.Contact.Phone))) >= 9,
		HasWebsite:   present(r.Contact.Website) && strings.HasPrefix(strings.TrimSpace(r.Contact.Website), "http"),
		DateRaw:      strings.TrimSpace(r.Date.Raw),
	}

	switch {
	case r.Date.Missing():
		v.DateState = DateMissing
	case r.Date.Native:
		v.DateState = DateValid
		v.ParsedDate = r.Date.Time
	default:
		if t := ParseDate(r.Date.Raw); !t.IsZero() {
			v.DateState = DateValid
			v.ParsedDate = t
		} else {
			v.DateState = DateInvalid
		}
	}

	return v
}

// HasDate reports whether the view carries a parsed date.
func (v View) HasDate() bool {
	return v.DateState == DateValid
}
