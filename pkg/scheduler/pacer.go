// Package scheduler paces the engine against wall-clock time and drives the
// terminal front-end loop.
package scheduler

import (
	"math"
	"time"
)

// Speeds outside this range are clamped. The upper bound keeps the step
// above zero and the batch sizes finite.
const (
	minSpeed = 0.01
	maxSpeed = 1000
)

// Pacer converts elapsed real time into whole logic steps. Each step runs
// LogicBatch ticks and each loop iteration runs FrameBatch more.
type Pacer struct {
	LogicBatch int
	FrameBatch int

	step time.Duration
	acc  time.Duration
	last time.Time
}

func NewPacer(speed float64) *Pacer {
	speed = math.Min(speed, maxSpeed)
	return &Pacer{
		LogicBatch: batch(1000 * speed),
		FrameBatch: batch(100 * speed),
		step:       time.Duration(float64(time.Second) / math.Max(speed, minSpeed)),
	}
}

func batch(v float64) int {
	return max(1, int(math.Round(v)))
}

// Step is the real time one logic step stands for.
func (p *Pacer) Step() time.Duration {
	return p.step
}

// Reset starts measuring from now and drops any accumulated time.
func (p *Pacer) Reset(now time.Time) {
	p.last = now
	p.acc = 0
}

// Advance adds the time since the previous call and returns how many whole
// steps are due. The remainder carries over.
func (p *Pacer) Advance(now time.Time) int {
	if p.last.IsZero() {
		p.Reset(now)
		return 0
	}
	if d := now.Sub(p.last); d > 0 {
		p.acc += d
	}
	p.last = now

	n := int(p.acc / p.step)
	p.acc -= time.Duration(n) * p.step
	return n
}
