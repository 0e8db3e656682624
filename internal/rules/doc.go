// Package rules implements the event record classifier.
//
// A classifier evaluates a versioned table of narrow, high-precision predicates
// against a normalized event view. Every active predicate is evaluated (there is
// no short-circuit) and each match appends its reason code, so a report always
// shows the full set of reasons a record was flagged for. A record with at least
// one reason is marked for deletion.
//
// Example usage:
//
//	c := rules.NewClassifier(rules.DefaultTable(), rules.Canonical(), rules.Params{Now: time.Now()})
//	result := c.Classify(event.Normalize(record))
//	if result.Verdict == rules.Delete {
//	    fmt.Println(result.Reasons)
//	}
package rules
