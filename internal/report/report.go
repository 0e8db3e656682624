package report

import (
	"time"

	"github.com/pfrederiksen/aqua-events/internal/dedup"
	"github.com/pfrederiksen/aqua-events/internal/event"
	"github.com/pfrederiksen/aqua-events/internal/fixes"
	"github.com/pfrederiksen/aqua-events/internal/pipeline"
	"github.com/pfrederiksen/aqua-events/internal/rules"
)

// DefaultSamples is the number of samples kept per bucket.
const DefaultSamples = 5

// Options control how much detail a summary keeps
type Options struct {
	// Samples is the number of samples per bucket; zero uses DefaultSamples
	// and a negative value disables samples.
	Samples int

	// Descriptions maps reason codes to the text shown next to them.
	Descriptions map[rules.Code]string
}

// Totals are the bucket sizes of a run
type Totals struct {
	Records      int `json:"records"`
	Keep         int `json:"keep"`
	Delete       int `json:"delete"`
	Duplicates   int `json:"duplicates"`
	Fixes        int `json:"fixes"`
	FixesSkipped int `json:"fixes_skipped"`
}

// ReasonCount is the number of records flagged with one code
type ReasonCount struct {
	Code        rules.Code `json:"code"`
	Description string     `json:"description,omitempty"`
	Count       int        `json:"count"`
}

// Sample is one record shown as an example of a bucket
type Sample struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	City    string       `json:"city,omitempty"`
	Date    string       `json:"date,omitempty"`
	Reasons []rules.Code `json:"reasons,omitempty"`
}

// DuplicateSample is one duplicate group
type DuplicateSample struct {
	Strategy string   `json:"strategy"`
	Title    string   `json:"title"`
	Survivor string   `json:"survivor"`
	Losers   []string `json:"losers"`
}

// Counts are collection sizes at one point in time
type Counts struct {
	Total       int64 `json:"total"`
	WithContact int64 `json:"with_contact"`
}

// Summary is the reportable view of a plan
type Summary struct {
	RunID        string    `json:"run_id"`
	Profile      string    `json:"profile"`
	RulesVersion string    `json:"rules_version"`
	DryRun       bool      `json:"dry_run"`
	State        string    `json:"state"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at,omitempty"`

	Totals  Totals        `json:"totals"`
	Reasons []ReasonCount `json:"reasons"`

	KeepSamples      []Sample                `json:"keep_samples,omitempty"`
	Samples          map[rules.Code][]Sample `json:"samples,omitempty"`
	FixSamples       []fixes.Correction      `json:"fix_samples,omitempty"`
	DuplicateSamples []DuplicateSample       `json:"duplicate_samples,omitempty"`

	Before       Counts                 `json:"before"`
	After        *Counts                `json:"after,omitempty"`
	Commit       *pipeline.Commit       `json:"commit,omitempty"`
	Verification *pipeline.Verification `json:"verification,omitempty"`
}

// Summarize builds a Summary from plan.
func Summarize(plan *pipeline.Plan, opts Options) *Summary {
	limit := opts.Samples
	if limit == 0 {
		limit = DefaultSamples
	}

	s := &Summary{
		RunID:        plan.RunID,
		Profile:      plan.Profile,
		RulesVersion: plan.RulesVersion,
		DryRun:       plan.DryRun,
		State:        plan.State.String(),
		StartedAt:    plan.StartedAt,
		FinishedAt:   plan.FinishedAt,
		Before:       Counts{Total: plan.BeforeTotal, WithContact: plan.BeforeWithContact},
		Commit:       plan.Commit,
		Verification: plan.Verification,
	}

	applicable := plan.Applicable()
	s.Totals = Totals{
		Records:      plan.Total(),
		Keep:         plan.Kept(),
		Delete:       len(plan.Deletions),
		Duplicates:   plan.Duplicates(),
		Fixes:        len(applicable),
		FixesSkipped: len(plan.Corrections) - len(applicable),
	}

	counts := make(map[rules.Code]int)
	first := make(map[rules.Code]int)
	for _, d := range plan.Deletions {
		for _, code := range d.Reasons {
			if _, seen := first[code]; !seen {
				first[code] = len(first)
			}
			counts[code]++
			if limit > 0 && len(s.Samples[code]) < limit {
				if s.Samples == nil {
					s.Samples = make(map[rules.Code][]Sample)
				}
				s.Samples[code] = append(s.Samples[code], sampleOf(d.Record, d.Reasons))
			}
		}
	}
	for code, n := range counts {
		s.Reasons = append(s.Reasons, ReasonCount{Code: code, Description: opts.Descriptions[code], Count: n})
	}
	sortReasons(s.Reasons, first)

	if limit > 0 {
		for i, res := range plan.Results {
			if len(s.KeepSamples) == limit || i >= len(plan.Records) {
				break
			}
			if res.Verdict == rules.Keep {
				s.KeepSamples = append(s.KeepSamples, sampleOf(plan.Records[i], nil))
			}
		}
		for i, c := range applicable {
			if i == limit {
				break
			}
			s.FixSamples = append(s.FixSamples, c)
		}
		for i, g := range plan.Groups {
			if i == limit {
				break
			}
			s.DuplicateSamples = append(s.DuplicateSamples, duplicateOf(g))
		}
	}

	if v := plan.Verification; v != nil {
		s.After = &Counts{Total: v.AfterTotal, WithContact: v.AfterWithContact}
	}
	return s
}

func sampleOf(r *event.Record, reasons []rules.Code) Sample {
	s := Sample{
		ID:      r.ID,
		Title:   r.Title.Es(),
		City:    r.Location.City,
		Date:    r.Date.Raw,
		Reasons: reasons,
	}
	if r.Date.Native {
		s.Date = event.Day(r.Date.Time)
	}
	return s
}

func duplicateOf(g dedup.Group) DuplicateSample {
	ds := DuplicateSample{Strategy: string(g.Strategy)}
	if g.Survivor != nil {
		ds.Survivor = g.Survivor.ID
		ds.Title = g.Survivor.Title.Es()
	}
	for _, l := range g.Losers {
		ds.Losers = append(ds.Losers, l.ID)
	}
	return ds
}
