package power

import (
	"math/rand"
)

// Roller produces die results. The engine takes a Roller so tests can pin
// the sequence and assert exact heal totals.
type Roller interface {
	// Roll returns a uniform value in [1, sides].
	Roll(sides int) int
}

// RandRoller rolls with a math/rand source.
type RandRoller struct {
	rng *rand.Rand
}

// NewRandRoller creates a roller from the given source.
func NewRandRoller(rng *rand.Rand) *RandRoller {
	return &RandRoller{rng: rng}
}

// Roll implements Roller.
func (r *RandRoller) Roll(sides int) int {
	if sides < 1 {
		return 0
	}
	return r.rng.Intn(sides) + 1
}

// SequenceRoller replays a fixed sequence of results. Test helper.
type SequenceRoller struct {
	Results []int
	next    int
}

// Roll returns the next queued result, or 1 when the queue is exhausted.
func (r *SequenceRoller) Roll(sides int) int {
	if r.next >= len(r.Results) {
		return 1
	}
	v := r.Results[r.next]
	r.next++
	return v
}

// Total rolls the dice formula for a caster of the given level.
func (d Dice) Total(roller Roller, casterLevel int) int {
	total := 0
	for i := 0; i < d.Count; i++ {
		total += roller.Roll(d.Sides)
	}
	if d.AddLevel {
		total += casterLevel
	}
	return total
}
