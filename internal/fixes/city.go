package fixes

import (
	"github.com/pfrederiksen/aqua-events/internal/cities"
	"github.com/pfrederiksen/aqua-events/internal/event"
)

// CityCorrector replaces the stored city with the one named in the title
type CityCorrector struct {
	reconciler *cities.Reconciler
}

// NewCityCorrector creates a CityCorrector backed by r.
func NewCityCorrector(r *cities.Reconciler) *CityCorrector {
	return &CityCorrector{reconciler: r}
}

// Name implements Corrector.
func (c *CityCorrector) Name() string { return "city" }

// Propose plans a location.city update when the title names a known city that
// differs from the stored one. The comparison is exact so a wrongly cased city
// is rewritten to its canonical spelling.
func (c *CityCorrector) Propose(r *event.Record, v event.View) (Correction, bool) {
	if c.reconciler == nil {
		return Correction{}, false
	}
	city, ok := c.reconciler.ProposeCity(v.TitleEs)
	if !ok || city == v.City {
		return Correction{}, false
	}
	return newCorrection(v, FieldCity, v.City, city, "city extracted from title"), true
}
