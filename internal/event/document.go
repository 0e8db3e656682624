package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FromDocument builds a Record from a raw document. Both BSON-decoded documents
// (primitive.M, primitive.DateTime, primitive.ObjectID) and JSON-decoded ones
// (map[string]interface{}, strings, float64) are accepted.
func FromDocument(doc map[string]interface{}) *Record {
	r := &Record{Doc: doc}
	if doc == nil {
		return r
	}

	r.ID = IDString(doc["_id"])

	r.Title = titleFrom(doc["name"])
	if r.Title.Es() == "" {
		if alt := titleFrom(doc["title"]); alt.Es() != "" {
			r.Title = alt
		}
	}

	r.Date = dateFrom(doc["date"])

	loc := asMap(doc["location"])
	r.Location = Location{
		City:    strings.TrimSpace(asString(loc["city"])),
		Region:  strings.TrimSpace(asString(loc["region"])),
		Country: strings.TrimSpace(asString(loc["country"])),
	}

	contact := asMap(doc["contact"])
	r.Contact = Contact{
		Email:   strings.TrimSpace(asString(contact["email"])),
		Phone:   strings.TrimSpace(asString(contact["phone"])),
		Website: strings.TrimSpace(asString(contact["website"])),
	}

	r.Discipline = strings.TrimSpace(asString(doc["discipline"]))
	r.Federation = strings.TrimSpace(asString(doc["federation"]))
	r.Source = strings.TrimSpace(asString(doc["source"]))
	r.SubmissionID = strings.TrimSpace(IDString(doc["submissionId"]))
	r.CreatedAt = timeFrom(doc["createdAt"])
	r.UpdatedAt = timeFrom(doc["updatedAt"])

	return r
}

// IDString renders a document identifier as an opaque string.
func IDString(v interface{}) string {
	switch id := v.(type) {
	case nil:
		return ""
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return asString(id)
	}
}

func titleFrom(v interface{}) Title {
	switch t := v.(type) {
	case string:
		return Title{"es": t}
	case nil:
		return Title{}
	}

	m := asMap(v)
	title := make(Title, len(m))
	for lang, val := range m {
		if s, ok := val.(string); ok {
			title[lang] = s
		}
	}
	return title
}

func dateFrom(v interface{}) Date {
	switch d := v.(type) {
	case nil:
		return Date{}
	case string:
		return Date{Present: strings.TrimSpace(d) != "", Raw: d}
	case primitive.DateTime:
		t := d.Time().UTC()
		return Date{Present: true, Raw: t.Format(time.RFC3339), Time: t, Native: true}
	case time.Time:
		t := d.UTC()
		return Date{Present: true, Raw: t.Format(time.RFC3339), Time: t, Native: true}
	default:
		return Date{Present: true, Raw: asString(d)}
	}
}

func timeFrom(v interface{}) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case string:
		return ParseDate(t)
	default:
		return time.Time{}
	}
}

func asMap(v interface{}) map[string]interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m
	case primitive.M:
		return m
	case primitive.D:
		out := make(map[string]interface{}, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out
	default:
		return map[string]interface{}{}
	}
}

// asString renders scalar values; numbers matter because phone numbers are
// sometimes stored as integers.
func asString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	case primitive.ObjectID:
		return s.Hex()
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(s)
	}
}
