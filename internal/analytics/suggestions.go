package analytics

import (
	"math"
	"sort"
	"time"

	"spesa/internal/core"
)

const (
	gettingLowRatio = 0.75
	// Days past the cycle after which a depleted item becomes high priority.
	overdueGraceDays = 3
)

// Suggestions infers a restock cycle for every (name, unit) bought at least
// twice with a recorded quantity, and flags items due for a restock as of today.
//
// The result is ordered by priority label in descending string order, which
// puts low before medium before high. Callers that want severity order must
// re-sort.
func Suggestions(l *core.Ledger, today time.Time) []core.Suggestion {
	history := make(map[core.ItemKey][]core.Purchase)
	var order []core.ItemKey
	for _, p := range l.Purchases(core.Bought, core.WithQuantity) {
		k := p.Key()
		if _, ok := history[k]; !ok {
			order = append(order, k)
		}
		history[k] = append(history[k], p)
	}

	var out []core.Suggestion
	for _, k := range order {
		if s, ok := suggest(k, history[k], today); ok {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}

func suggest(k core.ItemKey, purchases []core.Purchase, today time.Time) (core.Suggestion, bool) {
	if len(purchases) < 2 {
		return core.Suggestion{}, false
	}
	sort.SliceStable(purchases, func(i, j int) bool {
		return purchases[i].Date.Before(purchases[j].Date)
	})

	total := 0
	for i := 1; i < len(purchases); i++ {
		gap := core.DaysBetween(purchases[i-1].Date, purchases[i].Date)
		if gap < 0 {
			gap = -gap
		}
		total += gap
	}
	cycle := int(math.Round(float64(total) / float64(len(purchases)-1)))
	if cycle == 0 {
		return core.Suggestion{}, false
	}

	last := purchases[len(purchases)-1]
	elapsed := core.DaysBetween(last.Date, today)

	s := core.Suggestion{
		Name:          k.Name,
		Unit:          k.Unit,
		Category:      last.Item.Category,
		CycleDays:     cycle,
		DaysSinceLast: elapsed,
		LastPurchase:  core.DayKey(last.Date),
	}
	switch {
	case elapsed >= cycle:
		s.Status = core.SuggestionDepleted
		s.Priority = core.PriorityMedium
		if elapsed-cycle > overdueGraceDays {
			s.Priority = core.PriorityHigh
		}
	case float64(elapsed) >= gettingLowRatio*float64(cycle):
		s.Status = core.SuggestionGettingLow
		s.Priority = core.PriorityLow
	default:
		return core.Suggestion{}, false
	}
	return s, true
}
