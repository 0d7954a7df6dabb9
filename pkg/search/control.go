package search

import (
	"time"

	"go.uber.org/atomic"
)

// nodeCheckInterval is how many visited nodes pass between polls of the cancellation
// flag and the time budget.
const nodeCheckInterval = 4096

// PollFunc is invoked at each cancellation-check tick to drain pending input from a
// protocol collaborator. Returning true requests cancellation, same as calling Stop().
type PollFunc func() bool

// Control is the single-threaded search's cancellation and time-budget capability
// object. It is shared by every node of one search and carries no synchronization
// beyond the atomic stop flag, since the search itself never spawns parallelism.
type Control struct {
	stop atomic.Bool

	start     time.Time
	timeLimit time.Duration // 0 == no limit
	nodes     uint64
	poll      PollFunc
}

// NewControl creates a Control with an optional time budget (0 disables it) and an
// optional external poll hook.
func NewControl(timeLimit time.Duration, poll PollFunc) *Control {
	return &Control{start: time.Now(), timeLimit: timeLimit, poll: poll}
}

// Stop requests cancellation of the in-progress search. Idempotent, safe to call from
// outside the searching goroutine.
func (c *Control) Stop() {
	c.stop.Store(true)
}

// IsStopped reports whether cancellation has been requested.
func (c *Control) IsStopped() bool {
	return c.stop.Load()
}

// Tick increments the node counter and, every nodeCheckInterval nodes, polls the
// external collaborator and the time budget, setting the stop flag if either demands
// it. Returns the updated node count.
func (c *Control) Tick() uint64 {
	c.nodes++
	if c.nodes%nodeCheckInterval == 0 {
		if c.poll != nil && c.poll() {
			c.Stop()
		}
		if c.timeLimit > 0 && time.Since(c.start) >= c.timeLimit {
			c.Stop()
		}
	}
	return c.nodes
}

// Nodes returns the total number of nodes visited so far.
func (c *Control) Nodes() uint64 {
	return c.nodes
}

// Elapsed returns the time elapsed since the Control was created, i.e. since the search
// started.
func (c *Control) Elapsed() time.Duration {
	return time.Since(c.start)
}

// ShouldStartNextIteration reports whether iterative deepening should begin another
// iteration: false once half the time budget has already elapsed, since that iteration
// is unlikely to finish.
func (c *Control) ShouldStartNextIteration() bool {
	if c.timeLimit <= 0 {
		return true
	}
	return time.Since(c.start) < c.timeLimit/2
}
