package cities

import (
	"regexp"
	"strings"

	"github.com/pfrederiksen/aqua-events/internal/event"
)

var (
	// "Encuentro Amazonas 2025 - ELCHE", "Copa – Valencia 2026", "Travesía — Vigo (2026)"
	dashSuffix = regexp.MustCompile(`[-–—]\s*(\p{L}[\p{L}\s.'’]*?)\s*(?:\(?\d{4}\)?)?\s*$`)

	// "Triatlón de Valencia", "Travesía de Pontevedra 2026"
	deInfix = regexp.MustCompile(`(?i)\bde\s+(\p{L}[\p{L}\s]*?)(?:\s*[-–—(]|\s*\d{4}|$)`)
)

type wordPattern struct {
	city string
	re   *regexp.Regexp
}

// Reconciler proposes a city for an event by reading its title
type Reconciler struct {
	known *Set
	words []wordPattern
}

// NewReconciler creates a Reconciler restricted to the names in known.
func NewReconciler(known *Set) *Reconciler {
	r := &Reconciler{known: known}
	for _, name := range known.Names() {
		r.words = append(r.words, wordPattern{
			city: name,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(event.Fold(name)) + `\b`),
		})
	}
	return r
}

// ProposeCity extracts a known city from title. It tries, in order, a trailing
// "- CITY [YEAR]" suffix, a "de CITY" infix and finally a whole-word search for
// every known city. Only names in the allow-list are ever returned.
func (r *Reconciler) ProposeCity(title string) (string, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", false
	}

	if m := dashSuffix.FindStringSubmatch(title); m != nil {
		if city, ok := r.known.Canonical(m[1]); ok {
			return city, true
		}
	}

	for _, m := range deInfix.FindAllStringSubmatch(title, -1) {
		if city, ok := r.known.Canonical(m[1]); ok {
			return city, true
		}
	}

	// Word boundaries in RE2 are ASCII-only, so match against the folded title.
	folded := event.Fold(title)
	for _, w := range r.words {
		if w.re.MatchString(folded) {
			return w.city, true
		}
	}

	return "", false
}
