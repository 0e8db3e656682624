package report

import (
	"sort"

	"github.com/pfrederiksen/aqua-events/internal/rules"
)

// sortReasons orders reason counts by count, highest first. Equal counts keep
// the order in which the codes were first seen.
func sortReasons(reasons []ReasonCount, first map[rules.Code]int) {
	sort.Slice(reasons, func(i, j int) bool {
		if reasons[i].Count != reasons[j].Count {
			return reasons[i].Count > reasons[j].Count
		}
		return first[reasons[i].Code] < first[reasons[j].Code]
	})
}
