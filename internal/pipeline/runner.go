package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/aqua-events/internal/dedup"
	"github.com/pfrederiksen/aqua-events/internal/event"
	"github.com/pfrederiksen/aqua-events/internal/fixes"
	"github.com/pfrederiksen/aqua-events/internal/logger"
	"github.com/pfrederiksen/aqua-events/internal/rules"
)

// Deps are the collaborators of a Runner. Archiver is optional; Gate is
// required unless the run is a dry run.
type Deps struct {
	Store      Store
	Classifier *rules.Classifier
	Correctors []fixes.Corrector
	Grouper    *dedup.Grouper
	Archiver   Archiver
	Gate       Gate
	Clock      func() time.Time
	Log        *logger.Logger
}

// Options select how a run behaves
type Options struct {
	DryRun  bool
	RunID   string
	Profile string
}

// Runner executes one pass of the pipeline
type Runner struct {
	deps  Deps
	opts  Options
	state State
	log   *logger.Logger
}

// NewRunner creates a Runner. Missing Clock and Log default to time.Now and the
// package-level logger.
func NewRunner(deps Deps, opts Options) *Runner {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Log == nil {
		deps.Log = logger.Default()
	}
	if deps.Grouper == nil {
		deps.Grouper = dedup.New()
	}
	return &Runner{
		deps: deps,
		opts: opts,
		log:  deps.Log.With(logger.Fields{"run_id": opts.RunID, "profile": opts.Profile}),
	}
}

// State returns the step the runner is in.
func (r *Runner) State() State {
	return r.state
}

// Run analyzes the collection and, unless DryRun is set, commits the plan.
// The returned plan is non-nil whenever analysis got far enough to build one,
// including when a later step failed.
func (r *Runner) Run(ctx context.Context) (*Plan, error) {
	if r.deps.Store == nil || r.deps.Classifier == nil {
		return nil, errors.New("pipeline: store and classifier are required")
	}

	plan, err := r.analyze(ctx)
	if err != nil {
		return nil, r.fail(plan, err)
	}

	if r.opts.DryRun {
		r.enter(plan, DryRunReport)
		r.log.Info("dry run, no changes written", logger.Fields{
			"would_delete": len(plan.Deletions),
			"would_fix":    len(plan.Applicable()),
		})
		r.finish(plan)
		return plan, nil
	}

	if r.deps.Gate == nil {
		return plan, r.fail(plan, ErrNotConfirmed)
	}
	if err := r.deps.Gate.Wait(ctx, plan); err != nil {
		return plan, r.fail(plan, err)
	}

	r.enter(plan, Committing)
	if err := r.commit(ctx, plan); err != nil {
		return plan, r.fail(plan, err)
	}

	r.enter(plan, Verifying)
	if err := r.verify(ctx, plan); err != nil {
		return plan, r.fail(plan, err)
	}

	r.finish(plan)
	return plan, nil
}

func (r *Runner) analyze(ctx context.Context) (*Plan, error) {
	r.state = Analyzing
	plan := &Plan{
		RunID:        r.opts.RunID,
		Profile:      r.opts.Profile,
		RulesVersion: rules.Version,
		DryRun:       r.opts.DryRun,
		StartedAt:    r.deps.Clock().UTC(),
		State:        Analyzing,
	}

	var err error
	if plan.BeforeTotal, err = r.deps.Store.Count(ctx); err != nil {
		return plan, fmt.Errorf("counting events: %w", err)
	}
	if plan.BeforeWithContact, err = r.deps.Store.CountWithContact(ctx); err != nil {
		return plan, fmt.Errorf("counting events with contact: %w", err)
	}

	records, err := r.deps.Store.FindAll(ctx)
	if err != nil {
		return plan, fmt.Errorf("reading events: %w", err)
	}
	r.log.Info("events loaded", logger.Fields{"records": len(records)})

	plan.Records = records
	plan.Results = make([]rules.Result, len(records))
	items := make([]dedup.Item, 0, len(records))
	index := make(map[string]int, len(records))

	for i, rec := range records {
		v := event.Normalize(rec)
		res := r.deps.Classifier.Classify(v)
		plan.Results[i] = res
		index[rec.ID] = i

		city := v.City
		for _, c := range r.deps.Correctors {
			corr, ok := c.Propose(rec, v)
			if !ok {
				continue
			}
			plan.Corrections = append(plan.Corrections, corr)
			if corr.Field == fixes.FieldCity {
				city = corr.To
			}
		}

		if res.Verdict == rules.Keep {
			items = append(items, dedup.Item{Record: rec, View: v, City: city})
		}
	}

	grouped := r.deps.Grouper.Group(items)
	plan.Groups = grouped.Groups
	for _, id := range grouped.LoserIDs() {
		plan.Results[index[id]].AddReason(rules.Duplicate)
	}

	for i, res := range plan.Results {
		if res.Verdict == rules.Delete {
			plan.Deletions = append(plan.Deletions, Deletion{Record: records[i], Reasons: res.Reasons})
		}
	}

	r.log.Info("analysis complete", logger.Fields{
		"records":     len(records),
		"delete":      len(plan.Deletions),
		"duplicates":  plan.Duplicates(),
		"corrections": len(plan.Corrections),
	})
	return plan, nil
}

func (r *Runner) commit(ctx context.Context, plan *Plan) error {
	plan.Commit = &Commit{Skipped: len(plan.Corrections) - len(plan.Applicable())}

	if len(plan.Deletions) > 0 && r.deps.Archiver != nil {
		if err := r.deps.Archiver.Archive(ctx, plan.RunID, plan.Deletions); err != nil {
			return fmt.Errorf("archiving deleted events: %w", err)
		}
		r.log.Info("deleted events archived", logger.Fields{"count": len(plan.Deletions)})
	}

	if ids := plan.DeletionIDs(); len(ids) > 0 {
		deleted, err := r.deps.Store.DeleteByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("deleting events: %w", err)
		}
		plan.Commit.Deleted = deleted
		r.log.Info("events deleted", logger.Fields{"requested": len(ids), "deleted": deleted})
	}

	order, updates := plan.Updates()
	for _, id := range order {
		if err := r.deps.Store.UpdateFields(ctx, id, updates[id]); err != nil {
			return fmt.Errorf("updating event %s: %w", id, err)
		}
		plan.Commit.Updated++
		r.log.Debug("event updated", logger.Fields{"id": id, "fields": updates[id]})
	}
	if plan.Commit.Updated > 0 {
		r.log.Info("events updated", logger.Fields{"updated": plan.Commit.Updated})
	}
	return nil
}

func (r *Runner) verify(ctx context.Context, plan *Plan) error {
	after, err := r.deps.Store.Count(ctx)
	if err != nil {
		return fmt.Errorf("verifying count: %w", err)
	}
	afterContact, err := r.deps.Store.CountWithContact(ctx)
	if err != nil {
		return fmt.Errorf("verifying contact count: %w", err)
	}

	v := &Verification{
		BeforeTotal:       plan.BeforeTotal,
		ExpectedTotal:     plan.BeforeTotal - plan.Commit.Deleted,
		AfterTotal:        after,
		BeforeWithContact: plan.BeforeWithContact,
		AfterWithContact:  afterContact,
	}
	v.OK = v.AfterTotal == v.ExpectedTotal
	plan.Verification = v

	fields := logger.Fields{
		"expected_total":     v.ExpectedTotal,
		"after_total":        v.AfterTotal,
		"after_with_contact": v.AfterWithContact,
	}
	if v.OK {
		r.log.Info("verification passed", fields)
	} else {
		r.log.Warn("verification mismatch, collection changed during the run", fields)
	}
	return nil
}

func (r *Runner) enter(plan *Plan, s State) {
	r.state = s
	if plan != nil {
		plan.State = s
	}
	r.log.Debug("state changed", logger.Fields{"state": s.String()})
}

func (r *Runner) finish(plan *Plan) {
	plan.FinishedAt = r.deps.Clock().UTC()
	r.enter(plan, Done)
}

func (r *Runner) fail(plan *Plan, err error) error {
	if plan != nil {
		plan.FinishedAt = r.deps.Clock().UTC()
	}
	r.enter(plan, Failed)
	r.log.Error("run failed", logger.Fields{"state": Failed.String()}, err)
	return err
}
