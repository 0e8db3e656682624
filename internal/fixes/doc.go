// Package fixes plans field corrections for event records.
//
// A Corrector looks at one record and may propose a single Correction. The
// pipeline collects proposals for every record, merges them per record and
// writes them with one field update each. Correctors never write themselves.
//
// Available correctors:
//   - city: location.city proposed from the title by the city reconciler
//   - discipline: English discipline slugs mapped to the Spanish catalogue
//   - federation: placeholder "Federation" labels replaced by the source federation
package fixes
