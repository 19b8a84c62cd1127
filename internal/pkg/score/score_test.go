package score

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccumulate_Commutative(t *testing.T) {
	a := Accumulate([]Delta{{Key: "A", Value: 1}, {Key: "A", Value: -0.5}})
	b := Accumulate([]Delta{{Key: "A", Value: -0.5}, {Key: "A", Value: 1}})

	assert.Equal(t, map[string]float64{"A": 0.5}, a)
	assert.Equal(t, a, b)
}

func TestAccumulate_PermutationsAreBitIdentical(t *testing.T) {
	var deltas []Delta
	for i := 0; i < 300; i++ {
		deltas = append(deltas, Delta{Key: "emp-1", Value: ExceptionLogged})
	}
	for i := 0; i < 7; i++ {
		deltas = append(deltas, Delta{Key: "emp-1", Value: PartSwap}, Delta{Key: "emp-2", Value: PartRemoval})
	}
	deltas = append(deltas, Delta{Key: "emp-2", Value: 1e16}, Delta{Key: "emp-2", Value: 1}, Delta{Key: "emp-2", Value: -1e16})

	want := Accumulate(deltas)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]Delta(nil), deltas...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, want, Accumulate(shuffled))
	}

	assert.InDelta(t, 6.5, want["emp-1"], 1e-9)
	assert.InDelta(t, -2.5, want["emp-2"], 1e-9)
}

func TestAccumulate_Empty(t *testing.T) {
	assert.Empty(t, Accumulate(nil))
}

func TestTally(t *testing.T) {
	var tally Tally
	tally.Count("RT_KUBOT")
	tally.Count("RT_KUBOT_MINI")
	tally.Count("RT_KUBOT")
	tally.Add("RT_KUBOT_E2", 0)

	assert.Equal(t, []string{"RT_KUBOT", "RT_KUBOT_MINI", "RT_KUBOT_E2"}, tally.Keys())
	assert.Equal(t, map[string]float64{"RT_KUBOT": 2, "RT_KUBOT_MINI": 1, "RT_KUBOT_E2": 0}, tally.Totals())
}

func TestTally_Seed(t *testing.T) {
	var tally Tally
	tally.Seed("RT_KUBOT", "RT_KUBOT_MINI", "RT_KUBOT_E2")
	tally.Count("RT_KUBOT_MINI")
	tally.Count("UNKNOWN")

	assert.Equal(t, []string{"RT_KUBOT", "RT_KUBOT_MINI", "RT_KUBOT_E2", "UNKNOWN"}, tally.Keys())
	assert.Equal(t, map[string]float64{"RT_KUBOT": 0, "RT_KUBOT_MINI": 1, "RT_KUBOT_E2": 0, "UNKNOWN": 1}, tally.Totals())
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.03, Round(0.01+0.01+0.01, 2))
	assert.Equal(t, -0.5, Round(-0.4999999, 2))
	assert.Equal(t, 12.0, Round(11.995, 1))
}
