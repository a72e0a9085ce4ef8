package gametime

import (
	"sort"
	"time"
)

// Sample ties a wall-clock instant to the play clock shown at that moment.
type Sample struct {
	Wall   time.Time
	Period int
	Clock  string
}

// Timeline is a strictly increasing list of samples from one live game.
type Timeline struct {
	samples []Sample
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{}
}

// Add appends s when it is strictly later than the last sample and its
// clock is readable. It reports whether the sample was kept.
func (t *Timeline) Add(s Sample) bool {
	if n := len(t.samples); n > 0 && !s.Wall.After(t.samples[n-1].Wall) {
		return false
	}
	if _, err := ParseClock(s.Clock); err != nil {
		return false
	}
	t.samples = append(t.samples, s)
	return true
}

// Len returns the number of samples.
func (t *Timeline) Len() int { return len(t.samples) }

// Lookup maps a wall-clock instant to game time using the latest sample at
// or before it. Instants before the first sample, or whose latest sample is
// one of the final two, have no mapping and the caller drops the point.
func (t *Timeline) Lookup(at time.Time) (float64, bool) {
	n := len(t.samples)
	idx := sort.Search(n, func(i int) bool { return t.samples[i].Wall.After(at) }) - 1
	if idx < 0 || idx >= n-2 {
		return 0, false
	}
	s := t.samples[idx]
	return FromClock(s.Period, s.Clock), true
}
