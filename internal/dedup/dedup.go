package dedup

import (
	"fmt"
	"strings"

	"github.com/pfrederiksen/aqua-events/internal/event"
)

// Strategy names a grouping key
type Strategy string

const (
	Submission Strategy = "submission"
	Content    Strategy = "content"
)

// ParseStrategy converts a name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch s := Strategy(strings.ToLower(strings.TrimSpace(name))); s {
	case Submission, Content:
		return s, nil
	default:
		return "", fmt.Errorf("unknown dedup strategy: %q", name)
	}
}

// Item is one record offered to the grouper
type Item struct {
	Record *event.Record
	View   event.View

	// City is the effective city: the corrected one when a city correction is
	// planned, the stored one otherwise.
	City string
}

// Group is a set of records sharing a key
type Group struct {
	Strategy Strategy        `json:"strategy"`
	Key      string          `json:"key"`
	Survivor *event.Record   `json:"-"`
	Losers   []*event.Record `json:"-"`
}

// Result is the outcome of grouping a record set
type Result struct {
	Groups []Group

	// Survivors are the items left after every strategy, in input order.
	Survivors []Item

	losers map[string]int
}

// LoserIDs returns the ids of every record marked as duplicate, in the order
// they were found.
func (r *Result) LoserIDs() []string {
	var ids []string
	for _, g := range r.Groups {
		for _, l := range g.Losers {
			ids = append(ids, l.ID)
		}
	}
	return ids
}

// IsLoser reports whether id lost a group.
func (r *Result) IsLoser(id string) bool {
	_, ok := r.losers[id]
	return ok
}

// GroupOf returns the group that id lost.
func (r *Result) GroupOf(id string) (Group, bool) {
	i, ok := r.losers[id]
	if !ok {
		return Group{}, false
	}
	return r.Groups[i], true
}

// Grouper runs dedup strategies in sequence
type Grouper struct {
	strategies []Strategy
}

// New creates a Grouper running strategies in the given order. A Grouper
// without strategies keeps every record.
func New(strategies ...Strategy) *Grouper {
	return &Grouper{strategies: strategies}
}

// Strategies returns the configured strategies.
func (g *Grouper) Strategies() []Strategy {
	out := make([]Strategy, len(g.strategies))
	copy(out, g.strategies)
	return out
}

// Group partitions items by each strategy's key and elects survivors.
// Items without a key under a strategy are never grouped by it.
func (g *Grouper) Group(items []Item) *Result {
	res := &Result{losers: make(map[string]int)}
	current := items

	for _, s := range g.strategies {
		var next []Item
		groups, order := partition(s, current)
		dropped := make(map[*event.Record]bool)

		for _, key := range order {
			members := groups[key]
			if len(members) < 2 {
				continue
			}
			survivor := elect(members)
			grp := Group{Strategy: s, Key: key, Survivor: survivor.Record}
			for _, m := range members {
				if m.Record == survivor.Record {
					continue
				}
				grp.Losers = append(grp.Losers, m.Record)
				dropped[m.Record] = true
				res.losers[m.Record.ID] = len(res.Groups)
			}
			res.Groups = append(res.Groups, grp)
		}

		for _, it := range current {
			if !dropped[it.Record] {
				next = append(next, it)
			}
		}
		current = next
	}

	res.Survivors = current
	return res
}

// Key returns the grouping key of it under s, or "" when it has none.
func Key(s Strategy, it Item) string {
	switch s {
	case Submission:
		return strings.TrimSpace(it.View.SubmissionID)
	case Content:
		if strings.TrimSpace(it.View.TitleEs) == "" {
			return ""
		}
		day := it.View.DateRaw
		if it.View.HasDate() {
			day = event.Day(it.View.ParsedDate)
		}
		return event.ContentKey(it.View.TitleEs, day, it.City)
	}
	return ""
}

func partition(s Strategy, items []Item) (map[string][]Item, []string) {
	groups := make(map[string][]Item)
	var order []string
	for _, it := range items {
		if it.Record == nil {
			continue
		}
		key := Key(s, it)
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], it)
	}
	return groups, order
}

// elect returns the member with the latest stamp; the first one wins ties.
func elect(members []Item) Item {
	best := members[0]
	for _, m := range members[1:] {
		if m.Record.Stamp().After(best.Record.Stamp()) {
			best = m
		}
	}
	return best
}
