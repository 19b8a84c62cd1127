package score

import (
	"math"
	"sort"
)

// Point values awarded to employees per logged action.
const (
	ExceptionLogged = 0.01
	PartSwap        = 0.5
	PartRemoval     = -0.5
)

// Delta is one signed contribution to the total of Key.
type Delta struct {
	Key   string  `json:"key"`
	Value float64 `json:"delta"`
}

// Accumulate sums deltas per key. The result does not depend on input
// order: each key's values are sorted before a compensated sum, so any
// permutation of deltas yields bit-identical totals.
func Accumulate(deltas []Delta) map[string]float64 {
	var t Tally
	for _, d := range deltas {
		t.Add(d.Key, d.Value)
	}
	return t.Totals()
}

// Tally collects deltas incrementally, e.g. page by page.
// The zero value is ready to use. Not safe for concurrent use.
type Tally struct {
	values map[string][]float64
	order  []string
}

func (t *Tally) Add(key string, delta float64) {
	if t.values == nil {
		t.values = make(map[string][]float64)
	}
	if _, ok := t.values[key]; !ok {
		t.order = append(t.order, key)
	}
	t.values[key] = append(t.values[key], delta)
}

// Seed registers keys with a zero total so they appear in Totals even
// when nothing is counted for them.
func (t *Tally) Seed(keys ...string) {
	for _, key := range keys {
		t.Add(key, 0)
	}
}

// Count adds 1 to key.
func (t *Tally) Count(key string) {
	t.Add(key, 1)
}

// Keys in first-seen order.
func (t *Tally) Keys() []string {
	return append([]string(nil), t.order...)
}

func (t *Tally) Totals() map[string]float64 {
	totals := make(map[string]float64, len(t.values))
	for key, values := range t.values {
		totals[key] = sum(values)
	}
	return totals
}

func sum(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	// Neumaier summation.
	var s, c float64
	for _, v := range sorted {
		t := s + v
		if math.Abs(s) >= math.Abs(v) {
			c += (s - t) + v
		} else {
			c += (v - t) + s
		}
		s = t
	}
	return s + c
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
