// Package playback drives a scrubber over a fixed sequence of visualization steps.
//
// An Engine owns the current position, the run state and the speed multiplier of
// one view. Transport operations (Play, Pause, Next, Prev, Restart, Reset,
// SetSpeed) never fail: out-of-range requests clamp. While playing, the engine
// holds exactly one scheduled tick; every operation that stops or reschedules
// playback stops that tick first, and Dispose stops it unconditionally.
//
// Manual stepping with Next and Prev while playing does not disturb the pending
// tick: it fires on its original schedule. Restart, by contrast, schedules a fresh
// tick.
package playback

import (
	"math"
	"sync"
	"time"

	"algoprep/internal/domain/model"
	"algoprep/internal/steps"
)

const (
	// DefaultMinInterval is the floor on the delay between two ticks.
	DefaultMinInterval = 100 * time.Millisecond
	// MinSpeed is the smallest accepted speed multiplier.
	MinSpeed = 0.1
)

// State is the coarse playback state.
type State int

const (
	Idle State = iota
	Playing
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent read of the engine at one instant.
type Snapshot struct {
	Position int
	Running  bool
	Speed    float64
	Length   int
	State    State
	Step     model.Step
}

// Option configures an Engine.
type Option func(*Engine)

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.sched = s }
}

// WithMinInterval sets the tick delay floor.
func WithMinInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d < time.Millisecond {
			d = time.Millisecond
		}
		e.minInterval = d
	}
}

// WithObserver registers a callback invoked after every observable change, with the
// engine lock held. The callback must not call back into the engine and must not
// block.
func WithObserver(f func(Snapshot)) Option {
	return func(e *Engine) { e.observer = f }
}

type Engine struct {
	mu sync.Mutex

	seq          steps.Sequence
	baseInterval time.Duration
	minInterval  time.Duration
	sched        Scheduler
	observer     func(Snapshot)

	position int
	running  bool
	speed    float64

	// timer is the single scheduled tick, nil when none is pending. gen is bumped
	// whenever the pending tick is abandoned so a callback that already fired and is
	// waiting on mu recognises itself as stale.
	timer    Timer
	gen      uint64
	disposed bool
}

// New builds an engine at position 0, not running, speed 1. A non-positive
// baseInterval falls back to one second.
func New(seq steps.Sequence, baseInterval time.Duration, opts ...Option) *Engine {
	if baseInterval <= 0 {
		baseInterval = time.Second
	}
	e := &Engine{
		seq:          seq,
		baseInterval: baseInterval,
		minInterval:  DefaultMinInterval,
		sched:        WallScheduler,
		speed:        1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Play starts advancing. It is a no-op while playing, on an empty sequence, or when
// already at the last step.
func (e *Engine) Play() {
	e.mutate(func() {
		if e.running || !e.hasNextLocked() {
			return
		}
		e.running = true
		e.scheduleLocked()
	})
}

// Pause stops advancing and cancels the pending tick. The position is kept.
func (e *Engine) Pause() {
	e.mutate(func() {
		e.running = false
		e.cancelLocked()
	})
}

// Next steps forward one frame, clamped to the last step.
func (e *Engine) Next() {
	e.mutate(func() {
		if !e.hasNextLocked() {
			return
		}
		e.position++
		e.finishIfAtEndLocked()
	})
}

// Prev steps back one frame, clamped to the first step.
func (e *Engine) Prev() {
	e.mutate(func() {
		if e.position > 0 {
			e.position--
		}
	})
}

// Restart jumps to the first step and plays from there, whatever the current state.
// A sequence with fewer than two steps has nothing to play and stays stopped.
func (e *Engine) Restart() {
	e.mutate(func() {
		e.position = 0
		e.cancelLocked()
		e.running = e.hasNextLocked()
		if e.running {
			e.scheduleLocked()
		}
	})
}

// Reset jumps to the first step without playing.
func (e *Engine) Reset() {
	e.mutate(func() {
		e.position = 0
		e.running = false
		e.cancelLocked()
	})
}

// SetSpeed changes the multiplier used for every tick scheduled from now on. A tick
// already pending keeps its delay. NaN is ignored; values below MinSpeed clamp.
func (e *Engine) SetSpeed(multiplier float64) {
	if math.IsNaN(multiplier) {
		return
	}
	e.mutate(func() {
		e.speed = math.Max(multiplier, MinSpeed)
	})
}

// Dispose ends the engine's lifetime. The pending tick is cancelled and every later
// transport call is ignored.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.disposed = true
	wasRunning := e.running
	e.running = false
	e.cancelLocked()
	if wasRunning {
		e.notifyLocked()
	}
}

func (e *Engine) Position() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

func (e *Engine) Len() int { return e.seq.Len() }

// CurrentStep is the step at the current position, or the zero Step when the
// sequence is empty.
func (e *Engine) CurrentStep() model.Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	step, _ := e.seq.At(e.position)
	return step
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Interval is the delay the next scheduled tick will use.
func (e *Engine) Interval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.intervalLocked()
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// mutate applies f under the lock and notifies the observer if anything observable
// changed.
func (e *Engine) mutate(f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	before := e.position
	wasRunning, oldSpeed := e.running, e.speed
	f()
	if e.position != before || e.running != wasRunning || e.speed != oldSpeed {
		e.notifyLocked()
	}
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || !e.running || gen != e.gen {
		return
	}
	e.timer = nil
	e.position++
	if !e.finishIfAtEndLocked() {
		e.scheduleLocked()
	}
	e.notifyLocked()
}

// finishIfAtEndLocked enters Finished when the position reached the last step.
func (e *Engine) finishIfAtEndLocked() bool {
	if e.hasNextLocked() {
		return false
	}
	if n := e.seq.Len(); n > 0 {
		e.position = n - 1
	}
	e.running = false
	e.cancelLocked()
	return true
}

func (e *Engine) hasNextLocked() bool {
	return e.position+1 < e.seq.Len()
}

func (e *Engine) scheduleLocked() {
	e.cancelLocked()
	gen := e.gen
	e.timer = e.sched.AfterFunc(e.intervalLocked(), func() { e.tick(gen) })
}

func (e *Engine) cancelLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
}

func (e *Engine) intervalLocked() time.Duration {
	d := time.Duration(float64(e.baseInterval) / e.speed)
	if d < e.minInterval || math.IsInf(e.speed, 1) {
		return e.minInterval
	}
	return d
}

func (e *Engine) stateLocked() State {
	switch {
	case e.running:
		return Playing
	case e.seq.Len() > 0 && !e.hasNextLocked():
		return Finished
	default:
		return Idle
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	step, _ := e.seq.At(e.position)
	return Snapshot{
		Position: e.position,
		Running:  e.running,
		Speed:    e.speed,
		Length:   e.seq.Len(),
		State:    e.stateLocked(),
		Step:     step,
	}
}

func (e *Engine) notifyLocked() {
	if e.observer != nil {
		e.observer(e.snapshotLocked())
	}
}
