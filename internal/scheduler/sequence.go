package scheduler

import (
	"sync"

	"shell_game/internal/game"
)

// Hooks are called as a Sequence advances. A hook returning an error stops
// the sequence; OnError then receives it.
type Hooks struct {
	OnShuffleStart func() error
	OnShuffle      func(step int) error
	OnDone         func() error
	OnError        func(err error)
}

// Sequence executes a game.Script on a Scheduler: intro delay, then Count
// shuffles Interval apart, then done. OnDone runs right after the last
// shuffle.
type Sequence struct {
	sched  Scheduler
	script game.Script
	hooks  Hooks

	mu        sync.Mutex
	handle    Handle
	step      int
	started   bool
	cancelled bool
	finished  bool
}

func NewSequence(sched Scheduler, script game.Script, hooks Hooks) *Sequence {
	return &Sequence{sched: sched, script: script, hooks: hooks}
}

// Start schedules the first event. It never calls hooks synchronously, so the
// caller may hold locks the hooks also take.
func (s *Sequence) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.cancelled {
		return
	}
	s.started = true

	if s.script.IntroDelay > 0 || s.hooks.OnShuffleStart != nil {
		s.handle = s.sched.Schedule(s.fireIntro, s.script.IntroDelay)
		return
	}
	s.scheduleNextLocked()
}

// Cancel stops the pending timer. No hook is called after Cancel returns,
// except one that was already running.
func (s *Sequence) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancelled || s.finished {
		return
	}
	s.cancelled = true
	s.sched.Cancel(s.handle)
}

// Done reports whether the sequence ran to completion or stopped on error.
func (s *Sequence) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// Steps returns how many shuffles have fired.
func (s *Sequence) Steps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Sequence) scheduleNextLocked() {
	if s.step >= s.script.Count {
		s.handle = s.sched.Schedule(s.fireDone, 0)
		return
	}
	s.handle = s.sched.Schedule(s.fireShuffle, s.script.Interval)
}

func (s *Sequence) active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.cancelled && !s.finished
}

func (s *Sequence) fail(err error) {
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()

	if s.hooks.OnError != nil {
		s.hooks.OnError(err)
	}
}

func (s *Sequence) fireIntro() {
	if !s.active() {
		return
	}
	if s.hooks.OnShuffleStart != nil {
		if err := s.hooks.OnShuffleStart(); err != nil {
			s.fail(err)
			return
		}
	}

	if s.script.Count == 0 {
		s.finish()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cancelled {
		s.scheduleNextLocked()
	}
}

func (s *Sequence) fireShuffle() {
	if !s.active() {
		return
	}

	s.mu.Lock()
	s.step++
	step := s.step
	s.mu.Unlock()

	if s.hooks.OnShuffle != nil {
		if err := s.hooks.OnShuffle(step); err != nil {
			s.fail(err)
			return
		}
	}

	if step >= s.script.Count {
		s.finish()
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.cancelled {
		s.scheduleNextLocked()
	}
}

func (s *Sequence) fireDone() {
	if !s.active() {
		return
	}
	s.finish()
}

func (s *Sequence) finish() {
	if !s.active() {
		return
	}
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()

	if s.hooks.OnDone != nil {
		if err := s.hooks.OnDone(); err != nil && s.hooks.OnError != nil {
			s.hooks.OnError(err)
		}
	}
}
