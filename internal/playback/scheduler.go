package playback

import (
	"sort"
	"sync"
	"time"
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports false if the callback
	// already fired or the timer was already stopped.
	Stop() bool
}

// Scheduler schedules tick callbacks. The engine owns every Timer it obtains.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type wallScheduler struct{}

func (wallScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// WallScheduler schedules on real time.
var WallScheduler Scheduler = wallScheduler{}

// ManualScheduler is a Scheduler driven by explicit calls to Advance. Callbacks run
// synchronously on the goroutine calling Advance, in due-time order.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	s       *ManualScheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

func (s *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &manualTimer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.s.removeLocked(t)
	return true
}

func (s *ManualScheduler) removeLocked(t *manualTimer) {
	for i, other := range s.timers {
		if other == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}

// Now is the virtual time elapsed since the scheduler was created.
func (s *ManualScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the due offsets, relative to Now, of every live timer.
func (s *ManualScheduler) Pending() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, 0, len(s.timers))
	for _, t := range s.sortedLocked() {
		out = append(out, t.at-s.now)
	}
	return out
}

func (s *ManualScheduler) sortedLocked() []*manualTimer {
	sorted := append([]*manualTimer(nil), s.timers...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].at != sorted[j].at {
			return sorted[i].at < sorted[j].at
		}
		return sorted[i].seq < sorted[j].seq
	})
	return sorted
}

// Advance moves virtual time forward by d, firing every timer that becomes due,
// including timers scheduled by callbacks during the advance. It returns the number
// of callbacks fired.
func (s *ManualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	fired := 0
	for {
		s.mu.Lock()
		var next *manualTimer
		if sorted := s.sortedLocked(); len(sorted) > 0 && sorted[0].at <= target {
			next = sorted[0]
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return fired
		}
		s.now = next.at
		next.fired = true
		s.removeLocked(next)
		s.mu.Unlock()

		next.f()
		fired++
	}
}

// FireNext advances exactly to the earliest pending timer and fires it. It reports
// false when nothing is pending.
func (s *ManualScheduler) FireNext() bool {
	s.mu.Lock()
	sorted := s.sortedLocked()
	if len(sorted) == 0 {
		s.mu.Unlock()
		return false
	}
	d := sorted[0].at - s.now
	s.mu.Unlock()
	s.Advance(d)
	return true
}
