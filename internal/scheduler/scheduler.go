package scheduler

import (
	"time"

	"github.com/coder/quartz"
)

// Handle identifies a scheduled action so it can be cancelled.
type Handle struct {
	timer *quartz.Timer
}

// Scheduler runs actions after a delay. Actions run on their own goroutine.
type Scheduler interface {
	Schedule(action func(), delay time.Duration) Handle
	Cancel(h Handle)
}

// ClockScheduler schedules on a quartz clock, real in production and mocked
// in tests.
type ClockScheduler struct {
	clock quartz.Clock
}

func New(clock quartz.Clock) *ClockScheduler {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &ClockScheduler{clock: clock}
}

func (s *ClockScheduler) Schedule(action func(), delay time.Duration) Handle {
	return Handle{timer: s.clock.AfterFunc(delay, action, "shell", "sequence")}
}

func (s *ClockScheduler) Cancel(h Handle) {
	if h.timer != nil {
		h.timer.Stop()
	}
}

// Now exposes the clock for callers that stamp events.
func (s *ClockScheduler) Now() time.Time {
	return s.clock.Now()
}
