package fixes

import (
	"strings"

	"github.com/pfrederiksen/aqua-events/internal/event"
)

const (
	// placeholderFederation is the label scrapers stored before federations were tracked.
	placeholderFederation = "Federation"

	defaultFederation   = "RFEN"
	triathlonFederation = "FETRI"
)

// regionalFederations maps a region to its swimming federation.
var regionalFederations = map[string]string{
	"Andalucía":          "Federación Andaluza de Natación",
	"Cataluña":           "Federació Catalana de Natació",
	"Madrid":             "Federación Madrileña de Natación",
	"Valencia":           "Federació de Natació de la Comunitat Valenciana",
	"Galicia":            "Federación Galega de Natación",
	"País Vasco":         "Euskal Igeri Federazioa",
	"Canarias":           "Federación Canaria de Natación",
	"Castilla y León":    "Federación de Castilla y León de Natación",
	"Murcia":             "Federación de Natación de la Región de Murcia",
	"Aragón":             "Federación Aragonesa de Natación",
	"Asturias":           "Federación de Natación del Principado de Asturias",
	"Baleares":           "Federació Balear de Natació",
	"Cantabria":          "Federación Cántabra de Natación",
	"Castilla-La Mancha": "Federación de Natación de Castilla-La Mancha",
	"Extremadura":        "Federación Extremeña de Natación",
	"La Rioja":           "Federación Riojana de Natación",
	"Navarra":            "Federación Navarra de Natación",
	"Ceuta":              "Federación de Natación de Ceuta",
	"Melilla":            "Federación de Natación de Melilla",
}

// FederationCorrector fills in the federation of scraped events
type FederationCorrector struct {
	regions map[string]string
}

// NewFederationCorrector creates a FederationCorrector with the built-in regional table.
func NewFederationCorrector() *FederationCorrector {
	return &FederationCorrector{regions: regionalFederations}
}

// Name implements Corrector.
func (c *FederationCorrector) Name() string { return "federation" }

// Propose plans a federation update for records whose federation is missing or
// still the scraper placeholder. Other values are never touched.
func (c *FederationCorrector) Propose(r *event.Record, v event.View) (Correction, bool) {
	if r == nil {
		return Correction{}, false
	}
	current := strings.TrimSpace(r.Federation)
	if current != "" && current != placeholderFederation {
		return Correction{}, false
	}
	return newCorrection(v, FieldFederation, current, c.resolve(r), "federation derived from source"), true
}

// resolve picks the federation from the scraper source, falling back to RFEN.
func (c *FederationCorrector) resolve(r *event.Record) string {
	source := r.Source
	switch {
	case strings.Contains(source, "rfen"):
		return defaultFederation
	case strings.Contains(source, "triathlon"):
		return triathlonFederation
	case strings.Contains(source, "regional"), strings.Contains(source, "autonomica"):
		if fed, ok := c.regions[strings.TrimSpace(r.Location.Region)]; ok {
			return fed
		}
	}
	return defaultFederation
}
