package fixes

import (
	"strings"

	"github.com/pfrederiksen/aqua-events/internal/event"
)

// disciplineSlugs maps English slugs left by older scrapers to the catalogue slugs.
var disciplineSlugs = map[string]string{
	"swimming":              "natacion",
	"triathlon":             "triatlon",
	"waterpolo":             "waterpolo",
	"open-water":            "aguas-abiertas",
	"synchronized-swimming": "natacion-sincronizada",
	"diving":                "saltos",
	"lifesaving":            "salvamento-socorrismo",
}

// DisciplineCorrector translates English discipline slugs
type DisciplineCorrector struct {
	slugs map[string]string
}

// NewDisciplineCorrector creates a DisciplineCorrector with the built-in mapping.
func NewDisciplineCorrector() *DisciplineCorrector {
	return &DisciplineCorrector{slugs: disciplineSlugs}
}

// Name implements Corrector.
func (c *DisciplineCorrector) Name() string { return "discipline" }

// Propose implements Corrector.
func (c *DisciplineCorrector) Propose(r *event.Record, v event.View) (Correction, bool) {
	from := v.Discipline
	to, ok := c.slugs[strings.ToLower(from)]
	if !ok || to == from {
		return Correction{}, false
	}
	return newCorrection(v, FieldDiscipline, from, to, "english discipline slug"), true
}
