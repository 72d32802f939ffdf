// Package progress implements the §5 concurrency/resource model that
// surrounds the single-flow rename pipeline: atomic versioned cells for
// per-file summaries, a debouncer that abandons stale summary
// recomputation, and a cancellation token checked at suspension points.
// The debounce-timer shape is grounded on the reference watch-mode
// session's pending-change debounce (cancel-and-restart a time.Timer
// under a mutex); here it is generalized from a fixed 100ms file-watch
// debounce to a caller-supplied delay and a version check instead of a
// boolean dedup flag.
package progress

import (
	"sync"
	"sync/atomic"
	"time"
)

// Step names the six discrete progress steps reported by the Rename
// Driver (§6 "Progress: six discrete steps, each reported as (label,
// increment)").
type Step int

const (
	StepPreload Step = iota
	StepClassify
	StepMaybeFullLoad
	StepResolve
	StepCheck
	StepPlan
)

func (s Step) String() string {
	switch s {
	case StepPreload:
		return "preload"
	case StepClassify:
		return "classify"
	case StepMaybeFullLoad:
		return "maybeFullLoad"
	case StepResolve:
		return "resolve"
	case StepCheck:
		return "check"
	case StepPlan:
		return "plan"
	default:
		return "unknown"
	}
}

// Total is the number of progress units a single rename reports.
const Total = 6

// Reporter receives one (label, increment) notification per completed
// step.
type Reporter func(step Step, increment int)

// Noop is a Reporter that discards every notification.
func Noop(Step, int) {}

// Cell is an atomically-versioned value cell: a newer version always
// wins a concurrent Store, and an older completion is silently discarded
// (§5: "diagnostics are stored in versioned cells that are updated by an
// atomic compare-and-swap on (version, value)").
type Cell[T any] struct {
	mu      sync.Mutex
	version int64
	value   T
}

// Store writes value under version, but only if version is not older
// than the cell's current version. Returns whether the store took
// effect.
func (c *Cell[T]) Store(version int64, value T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if version < c.version {
		return false
	}
	c.version = version
	c.value = value
	return true
}

// Load returns the cell's current version and value.
func (c *Cell[T]) Load() (int64, T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version, c.value
}

// Debouncer runs a summary calculation only if no newer request has been
// recorded by the time its delay elapses. A superseded calculation is
// abandoned without calling deliver; the null value passed to Request
// is never delivered.
type Debouncer[T any] struct {
	delay   time.Duration
	current atomic.Int64
}

// NewDebouncer returns a Debouncer that waits delay before running a
// recorded request.
func NewDebouncer[T any](delay time.Duration) *Debouncer[T] {
	return &Debouncer[T]{delay: delay}
}

// Request records a new version and, after the configured delay, calls
// compute and delivers its result to deliver iff no later Request arrived
// in the meantime. A superseded request delivers nothing at all, leaving
// only the latest request's result to reach deliver.
func (d *Debouncer[T]) Request(compute func() T, deliver func(T), null T) {
	version := d.current.Add(1)
	time.AfterFunc(d.delay, func() {
		if d.current.Load() != version {
			return
		}
		result := compute()
		if d.current.Load() != version {
			return
		}
		deliver(result)
	})
}

// CancelToken is a cooperative cancellation flag propagated from an
// outer request cancellation. The Rename Driver checks IsCancelled
// between its pipeline steps; the legality, resolution and edit-planning
// packages do not check it themselves.
type CancelToken struct {
	cancelled atomic.Bool
}

// NewCancelToken returns a live (not-yet-cancelled) token.
func NewCancelToken() *CancelToken {
	return &CancelToken{}
}

// Cancel marks the token interrupted.
func (t *CancelToken) Cancel() {
	t.cancelled.Store(true)
}

// IsCancelled reports whether Cancel has been called.
func (t *CancelToken) IsCancelled() bool {
	return t != nil && t.cancelled.Load()
}
