package cities

import "github.com/pfrederiksen/aqua-events/internal/event"

var majorNames = []string{
	"Madrid", "Barcelona", "Valencia", "Sevilla", "Zaragoza", "Málaga",
	"Murcia", "Palma", "Las Palmas", "Bilbao", "Alicante", "Córdoba",
	"Valladolid", "Vigo", "Gijón", "Hospitalet", "Vitoria", "Granada",
	"Elche", "Oviedo", "Badalona", "Cartagena", "Terrassa", "Jerez",
	"Sabadell", "Santa Cruz", "Pamplona", "Almería", "Fuenlabrada",
	"Leganés", "Santander", "Burgos", "Castellón", "Alcorcón",
	"Getafe", "Salamanca", "Logroño", "San Sebastián", "Badajoz",
	"Albacete", "Mataró", "Tarragona",
}

var extraKnownNames = []string{
	"Pontevedra", "León", "Cádiz", "Huelva", "Lleida", "Girona", "Ourense", "Lugo",
	"Ávila", "Cuenca", "Soria", "Segovia", "Palencia", "Zamora",
	"Guadalajara", "Toledo", "Ciudad Real", "Jaén", "Huesca", "Teruel",
	"Castellón de la Plana", "Santa Pola", "Cheste", "Benidorm",
	"Torrevieja", "Orihuela", "Gandía", "Sagunto", "Xàbia", "Dénia",
	"Calpe", "Altea", "Villajoyosa", "Elda", "Alcoy", "Ontinyent",
}

// Major is the allow-list of cities that may legitimately share their name with their region.
var Major = NewSet(majorNames...)

// Known is the allow-list of cities the reconciler may propose.
var Known = NewSet(append(append([]string{}, majorNames...), extraKnownNames...)...)

// Set is an ordered, accent- and case-insensitive collection of city names
type Set struct {
	names []string
	byKey map[string]string
}

// NewSet creates a Set preserving the given order. Later duplicates are ignored.
func NewSet(names ...string) *Set {
	s := &Set{byKey: make(map[string]string, len(names))}
	for _, name := range names {
		key := event.Fold(name)
		if key == "" {
			continue
		}
		if _, exists := s.byKey[key]; exists {
			continue
		}
		s.byKey[key] = name
		s.names = append(s.names, name)
	}
	return s
}

// Contains reports whether name is in the set, ignoring case and accents.
func (s *Set) Contains(name string) bool {
	_, ok := s.Canonical(name)
	return ok
}

// Canonical returns the spelling stored in the set for name.
func (s *Set) Canonical(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	c, ok := s.byKey[event.Fold(name)]
	return c, ok
}

// Names returns the names in insertion order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of names in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}
