package pipeline

import (
	"time"

	"github.com/pfrederiksen/aqua-events/internal/dedup"
	"github.com/pfrederiksen/aqua-events/internal/event"
	"github.com/pfrederiksen/aqua-events/internal/fixes"
	"github.com/pfrederiksen/aqua-events/internal/rules"
)

// State is a step of a run
type State int

const (
	Idle State = iota
	Analyzing
	DryRunReport
	Committing
	Verifying
	Done
	Failed
)

// String returns a human-readable label.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Analyzing:
		return "analyzing"
	case DryRunReport:
		return "dry_run_report"
	case Committing:
		return "committing"
	case Verifying:
		return "verifying"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Deletion is a record the plan removes
type Deletion struct {
	Record  *event.Record
	Reasons []rules.Code
}

// Commit records the writes a run performed
type Commit struct {
	Deleted int64 `json:"deleted"`
	Updated int   `json:"updated"`

	// Skipped counts corrections dropped because their record is deleted.
	Skipped int `json:"skipped"`
}

// Verification compares the collection after the commit with the plan
type Verification struct {
	BeforeTotal       int64 `json:"before_total"`
	ExpectedTotal     int64 `json:"expected_total"`
	AfterTotal        int64 `json:"after_total"`
	BeforeWithContact int64 `json:"before_with_contact"`
	AfterWithContact  int64 `json:"after_with_contact"`
	OK                bool  `json:"ok"`
}

// Plan is the in-memory outcome of analysis plus, in commit mode, what was written
type Plan struct {
	RunID        string
	Profile      string
	RulesVersion string
	DryRun       bool
	StartedAt    time.Time
	FinishedAt   time.Time

	BeforeTotal       int64
	BeforeWithContact int64

	// Records and Results are parallel, in store order.
	Records []*event.Record
	Results []rules.Result

	Corrections []fixes.Correction
	Groups      []dedup.Group
	Deletions   []Deletion

	Commit       *Commit
	Verification *Verification
	State        State
}

// Total returns the number of records analyzed.
func (p *Plan) Total() int {
	return len(p.Records)
}

// Kept returns the number of records the plan keeps.
func (p *Plan) Kept() int {
	return len(p.Records) - len(p.Deletions)
}

// DeletionIDs returns the ids of the records to delete in store order.
func (p *Plan) DeletionIDs() []string {
	ids := make([]string, len(p.Deletions))
	for i, d := range p.Deletions {
		ids[i] = d.Record.ID
	}
	return ids
}

// Duplicates returns the number of records that lost a duplicate group.
func (p *Plan) Duplicates() int {
	n := 0
	for _, g := range p.Groups {
		n += len(g.Losers)
	}
	return n
}

// Applicable returns the corrections of records that survive the plan.
func (p *Plan) Applicable() []fixes.Correction {
	doomed := make(map[string]bool, len(p.Deletions))
	for _, d := range p.Deletions {
		doomed[d.Record.ID] = true
	}
	var out []fixes.Correction
	for _, c := range p.Corrections {
		if !doomed[c.RecordID] {
			out = append(out, c)
		}
	}
	return out
}

// Updates merges the applicable corrections into one field set per record,
// keyed by record id, and returns the ids in first-correction order.
func (p *Plan) Updates() ([]string, map[string]map[string]interface{}) {
	var order []string
	byID := make(map[string][]fixes.Correction)
	for _, c := range p.Applicable() {
		if _, seen := byID[c.RecordID]; !seen {
			order = append(order, c.RecordID)
		}
		byID[c.RecordID] = append(byID[c.RecordID], c)
	}

	updates := make(map[string]map[string]interface{}, len(byID))
	for id, cs := range byID {
		updates[id] = fixes.Fields(cs)
	}
	return order, updates
}
