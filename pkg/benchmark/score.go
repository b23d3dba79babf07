package benchmark

import (
	"math"

	"github.com/user/posture-adk/pkg/crosswalk"
	"github.com/user/posture-adk/pkg/engine"
)

// Weighting: pass=1.0, partial=0.5, fail=0.0; not_applicable findings are
// excluded from the denominator.
const partialWeight = 0.5

// statusBand maps a unit score onto the green/amber/red traffic light. The
// same two-threshold rule applies to domain-level and overall scores.
func statusBand(score, threshold float64) string {
	switch {
	case score >= threshold:
		return "green"
	case score >= 0.50:
		return "amber"
	default:
		return "red"
	}
}

// tally holds per-status counts for one aggregation unit.
type tally struct {
	Pass, Partial, Fail, NotApplicable int
}

func tallyItems(items []crosswalk.MappedItem) tally {
	var t tally
	for _, item := range items {
		switch item.Status {
		case engine.StatusPass:
			t.Pass++
		case engine.StatusPartial:
			t.Partial++
		case engine.StatusFail:
			t.Fail++
		case engine.StatusNotApplicable:
			t.NotApplicable++
		}
	}
	return t
}

// score computes the weighted compliance score for a tally, rounded to four
// decimal places. A unit with no scoreable findings scores 1.0: fully
// compliant by default, not by evidence.
func (t tally) score() float64 {
	scoreable := t.Pass + t.Partial + t.Fail
	if scoreable == 0 {
		return 1.0
	}
	s := (float64(t.Pass) + float64(t.Partial)*partialWeight) / float64(scoreable)
	return round4(s)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// worstStatus returns the worst finding status for drill-down display, with
// precedence fail > partial > pass > not_applicable.
func worstStatus(items []crosswalk.MappedItem) engine.Status {
	worst := engine.StatusNotApplicable
	for _, item := range items {
		switch item.Status {
		case engine.StatusFail:
			return engine.StatusFail
		case engine.StatusPartial:
			worst = engine.StatusPartial
		case engine.StatusPass:
			if worst != engine.StatusPartial {
				worst = engine.StatusPass
			}
		}
	}
	return worst
}
