package game

import "time"

const (
	DefaultShuffleCount    = 5
	DefaultShuffleInterval = 300 * time.Millisecond
	DefaultIntroDelay      = 2000 * time.Millisecond
)

// Script describes the timed part of a round: wait IntroDelay, then shuffle
// Count times, Interval apart, then open the round for a guess. The machine
// does no timing itself; a scheduler executes the script.
type Script struct {
	IntroDelay time.Duration `json:"intro_delay"`
	Count      int           `json:"count"`
	Interval   time.Duration `json:"interval"`
}

// DefaultScript returns the stock 2s intro followed by five shuffles 300ms apart.
func DefaultScript() Script {
	return Script{
		IntroDelay: DefaultIntroDelay,
		Count:      DefaultShuffleCount,
		Interval:   DefaultShuffleInterval,
	}
}

// RunScriptedShuffle returns the directive for count shuffles spaced interval
// apart, keeping the intro delay of s.
func (s Script) RunScriptedShuffle(count int, interval time.Duration) Script {
	if count < 0 {
		count = 0
	}
	if interval < 0 {
		interval = 0
	}
	return Script{IntroDelay: s.IntroDelay, Count: count, Interval: interval}
}

// WithIntro returns s with a different intro delay.
func (s Script) WithIntro(d time.Duration) Script {
	if d < 0 {
		d = 0
	}
	s.IntroDelay = d
	return s
}

// WithoutIntro is used for a manual reshuffle, which skips the intro.
func (s Script) WithoutIntro() Script {
	return s.WithIntro(0)
}

// Duration is the total time from intro start until the guess opens.
func (s Script) Duration() time.Duration {
	return s.IntroDelay + time.Duration(s.Count)*s.Interval
}

// ToInfo returns the script in milliseconds for clients
func (s Script) ToInfo() map[string]interface{} {
	return map[string]interface{}{
		"shuffle_count":       s.Count,
		"shuffle_interval_ms": s.Interval.Milliseconds(),
		"intro_delay_ms":      s.IntroDelay.Milliseconds(),
		"positions":           ShellPositions,
	}
}
