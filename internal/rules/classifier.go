package rules

import (
	"github.com/pfrederiksen/aqua-events/internal/event"
)

// Verdict is the outcome of classifying a record
type Verdict string

const (
	Keep   Verdict = "keep"
	Delete Verdict = "delete"
)

// Result is the classification of one record
type Result struct {
	RecordID string  `json:"record_id"`
	Verdict  Verdict `json:"verdict"`
	Reasons  []Code  `json:"reasons,omitempty"`
}

// Has reports whether code is among the reasons.
func (r Result) Has(code Code) bool {
	for _, c := range r.Reasons {
		if c == code {
			return true
		}
	}
	return false
}

// AddReason appends code unless already present and keeps Verdict consistent:
// a result is Delete exactly when it has at least one reason.
func (r *Result) AddReason(code Code) {
	if !r.Has(code) {
		r.Reasons = append(r.Reasons, code)
	}
	r.Verdict = Delete
}

// Classifier evaluates the active rules of a table against normalized views
type Classifier struct {
	rules  []Rule
	params Params
}

// NewClassifier creates a classifier running the rules of table whose code is in
// active, in table order. Unknown codes are ignored; an empty active list keeps
// every record.
func NewClassifier(table Table, active []Code, params Params) *Classifier {
	want := make(map[Code]bool, len(active))
	for _, c := range active {
		want[c] = true
	}

	c := &Classifier{params: params.withDefaults()}
	for _, r := range table {
		if want[r.Code] {
			c.rules = append(c.rules, r)
		}
	}
	return c
}

// Active returns the codes the classifier evaluates, in evaluation order.
func (c *Classifier) Active() []Code {
	codes := make([]Code, len(c.rules))
	for i, r := range c.rules {
		codes[i] = r.Code
	}
	return codes
}

// Params returns the effective parameters after defaults were applied.
func (c *Classifier) Params() Params {
	return c.params
}

// Classify evaluates every active rule against v. Evaluation never stops at the
// first match so the result lists all reasons.
func (c *Classifier) Classify(v event.View) Result {
	res := Result{RecordID: v.ID, Verdict: Keep}
	for _, r := range c.rules {
		if r.Match(v, c.params) {
			res.AddReason(r.Code)
		}
	}
	return res
}
