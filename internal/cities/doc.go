// Package cities holds the Spanish city allow-lists and the reconciler that
// recovers a city name from an event title.
//
// Major lists the provincial capitals and large municipalities for which a
// location whose city equals its region is legitimate. Known is the wider list
// the reconciler is allowed to propose; proposals are always returned in the
// canonical spelling of the list, whatever casing or accents the title used.
package cities
