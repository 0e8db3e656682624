package fixes

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/aqua-events/internal/cities"
	"github.com/pfrederiksen/aqua-events/internal/event"
)

// Document paths written by the correctors.
const (
	FieldCity       = "location.city"
	FieldDiscipline = "discipline"
	FieldFederation = "federation"
)

// Correction is a planned single-field update of one record
type Correction struct {
	RecordID string `json:"record_id"`
	Title    string `json:"title,omitempty"`
	Field    string `json:"field"`
	From     string `json:"from"`
	To       string `json:"to"`
	Reason   string `json:"reason"`
}

// Corrector proposes at most one correction per record
type Corrector interface {
	Name() string
	Propose(r *event.Record, v event.View) (Correction, bool)
}

// Names lists the correctors New understands.
var Names = []string{"city", "discipline", "federation"}

// New builds the correctors named in names, in that order. The city corrector
// proposes only names from known.
func New(names []string, known *cities.Set) ([]Corrector, error) {
	out := make([]Corrector, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "city":
			out = append(out, NewCityCorrector(cities.NewReconciler(known)))
		case "discipline":
			out = append(out, NewDisciplineCorrector())
		case "federation":
			out = append(out, NewFederationCorrector())
		default:
			return nil, fmt.Errorf("unknown corrector: %q", name)
		}
	}
	return out, nil
}

// Fields merges corrections into the field set of a single update. A later
// correction of the same field wins.
func Fields(cs []Correction) map[string]interface{} {
	if len(cs) == 0 {
		return nil
	}
	fields := make(map[string]interface{}, len(cs))
	for _, c := range cs {
		fields[c.Field] = c.To
	}
	return fields
}

func newCorrection(v event.View, field, from, to, reason string) Correction {
	return Correction{
		RecordID: v.ID,
		Title:    v.TitleEs,
		Field:    field,
		From:     from,
		To:       to,
		Reason:   reason,
	}
}
