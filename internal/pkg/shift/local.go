package shift

import (
	"sort"
	"time"
)

// Rule names how a wall-clock reading was turned into an instant.
type Rule string

const (
	RuleExact Rule = "exact"
	// RuleGapForward: the reading fell in a spring-forward gap and was moved
	// to the first instant after the gap.
	RuleGapForward Rule = "gap_forward"
	// RuleOverlapEarlier: the reading occurred twice (fall back) and the
	// earlier instant was taken.
	RuleOverlapEarlier Rule = "overlap_earlier"
)

// ResolveLocal converts a wall-clock reading in loc to an instant and
// reports which rule was needed. Unlike time.Date, gap and overlap handling
// is fixed and observable.
func ResolveLocal(year int, month time.Month, day, hour, min, sec, nsec int, loc *time.Location) (time.Time, Rule) {
	naive := time.Date(year, month, day, hour, min, sec, nsec, time.UTC)

	offsets := candidateOffsets(naive, loc)
	var matches []time.Time
	for _, off := range offsets {
		cand := naive.Add(-time.Duration(off) * time.Second)
		if _, got := cand.In(loc).Zone(); got == off {
			matches = append(matches, cand)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0].In(loc), RuleExact
	case 0:
		return gapEnd(naive, offsets, loc).In(loc), RuleGapForward
	default:
		sort.Slice(matches, func(i, j int) bool { return matches[i].Before(matches[j]) })
		return matches[0].In(loc), RuleOverlapEarlier
	}
}

// candidateOffsets collects the zone offsets in force around the reading.
// DST transitions are never closer than a day apart, so a day on each side
// covers both states.
func candidateOffsets(naive time.Time, loc *time.Location) []int {
	seen := make(map[int]bool, 3)
	var offsets []int
	for _, probe := range []time.Time{naive.Add(-24 * time.Hour), naive, naive.Add(24 * time.Hour)} {
		_, off := probe.In(loc).Zone()
		if !seen[off] {
			seen[off] = true
			offsets = append(offsets, off)
		}
	}
	sort.Ints(offsets)
	return offsets
}

// gapEnd finds the transition instant that skipped over the reading.
func gapEnd(naive time.Time, offsets []int, loc *time.Location) time.Time {
	if len(offsets) < 2 {
		return naive.Add(-time.Duration(offsets[0]) * time.Second)
	}
	lo := naive.Add(-time.Duration(offsets[len(offsets)-1]) * time.Second).Unix()
	hi := naive.Add(-time.Duration(offsets[0]) * time.Second).Unix()

	_, after := time.Unix(hi, 0).In(loc).Zone()
	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		if _, off := time.Unix(mid, 0).In(loc).Zone(); off == after {
			hi = mid
		} else {
			lo = mid
		}
	}
	return time.Unix(hi, 0)
}
