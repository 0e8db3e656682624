package event

import (
	"strings"
	"time"
)

// NoneSentinel is the literal some scrapers store when a contact channel is unknown.
const NoneSentinel = "None"

// Record represents one document of the events collection
type Record struct {
	ID           string
	Title        Title
	Date         Date
	Location     Location
	Discipline   string
	Contact      Contact
	Federation   string
	Source       string
	SubmissionID string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Doc is the raw document as read from the store.
	Doc map[string]interface{}
}

// Title maps a language code to the event name in that language
type Title map[string]string

// Es returns the Spanish title, or "" when the record has none.
func (t Title) Es() string {
	return t["es"]
}

// Date keeps both the stored value and its native form when the store had one
type Date struct {
	Present bool
	Raw     string
	Time    time.Time
	Native  bool
}

// Missing reports whether the record carries no usable date value at all.
func (d Date) Missing() bool {
	return !d.Present || (!d.Native && strings.TrimSpace(d.Raw) == "")
}

// Location is where the event takes place
type Location struct {
	City    string
	Region  string
	Country string
}

// Contact lists the organizer channels
type Contact struct {
	Email   string
	Phone   string
	Website string
}

// Any reports whether at least one channel holds a non-sentinel value.
func (c Contact) Any() bool {
	return present(c.Email) || present(c.Phone) || present(c.Website)
}

// Stamp returns the timestamp used to order copies of the same event:
// UpdatedAt when set, otherwise CreatedAt.
func (r *Record) Stamp() time.Time {
	if !r.UpdatedAt.IsZero() {
		return r.UpdatedAt
	}
	return r.CreatedAt
}

func present(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != NoneSentinel
}
