package game

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPosition         = errors.New("invalid position")
	ErrNotReady                = errors.New("round not ready")
	ErrRandomSourceUnavailable = errors.New("random source unavailable")
)

const (
	ShellPositions    = 3
	ShellBallPosition = 2 // seed position of the ball
)

// Phase is the stage of a single round
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseIntroAnimating Phase = "intro_animating"
	PhaseShuffling      Phase = "shuffling"
	PhaseAwaitingGuess  Phase = "awaiting_guess"
	PhaseResolved       Phase = "resolved"
)

var phaseTransitions = map[Phase][]Phase{
	PhaseIdle:           {PhaseIntroAnimating},
	PhaseIntroAnimating: {PhaseShuffling},
	PhaseShuffling:      {PhaseAwaitingGuess},
	PhaseAwaitingGuess:  {PhaseResolved, PhaseShuffling},
}

// CanTransitionTo reports whether the machine may move from p to target.
// Every phase may go back to idle through Reset.
func (p Phase) CanTransitionTo(target Phase) bool {
	if target == PhaseIdle {
		return true
	}
	for _, next := range phaseTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}

func (p Phase) String() string {
	return string(p)
}

// Outcome of a resolved round; empty until then
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWon  Outcome = "won"
	OutcomeLost Outcome = "lost"
)

// Position is one cup
type Position struct {
	ID       int  `json:"id"`
	HasBall  bool `json:"has_ball"`
	Revealed bool `json:"revealed"`
}

// State is the whole round. Operations below never modify the State they are
// given; they return a new one.
type State struct {
	Positions []Position `json:"positions"`
	Phase     Phase      `json:"phase"`
	Outcome   Outcome    `json:"outcome,omitempty"`
	Shuffles  int        `json:"shuffles"`
	Guessed   int        `json:"guessed,omitempty"`
}

// Initialize returns the seed arrangement with the ball under cup 2.
func Initialize() State {
	positions := make([]Position, ShellPositions)
	for i := range positions {
		positions[i] = Position{ID: i + 1, HasBall: i+1 == ShellBallPosition}
	}
	return State{Positions: positions, Phase: PhaseIdle}
}

func (s State) clone() State {
	c := s
	c.Positions = make([]Position, len(s.Positions))
	copy(c.Positions, s.Positions)
	return c
}

func (s State) transition(target Phase) (State, error) {
	if !s.Phase.CanTransitionTo(target) {
		return s, fmt.Errorf("%w: cannot move from %s to %s", ErrNotReady, s.Phase, target)
	}
	n := s.clone()
	n.Phase = target
	return n, nil
}

// BeginIntro moves an idle round into the intro animation.
func BeginIntro(s State) (State, error) {
	return s.transition(PhaseIntroAnimating)
}

// BeginShuffling starts the scripted shuffle once the intro is over.
func BeginShuffling(s State) (State, error) {
	return s.transition(PhaseShuffling)
}

// FinishShuffling opens the round for a guess.
func FinishShuffling(s State) (State, error) {
	return s.transition(PhaseAwaitingGuess)
}

// Reshuffle sends a round that is waiting for a guess back into shuffling.
func Reshuffle(s State) (State, error) {
	if s.Phase != PhaseAwaitingGuess {
		return s, fmt.Errorf("%w: reshuffle needs %s, round is %s", ErrNotReady, PhaseAwaitingGuess, s.Phase)
	}
	return s.transition(PhaseShuffling)
}

// ShuffleOnce applies one Fisher-Yates permutation to the cups. The ball flag
// travels with its cup record.
func ShuffleOnce(s State, rng RandomSource) (State, error) {
	if s.Phase != PhaseIntroAnimating && s.Phase != PhaseShuffling {
		return s, fmt.Errorf("%w: cannot shuffle while %s", ErrNotReady, s.Phase)
	}

	n := s.clone()
	for i := len(n.Positions) - 1; i > 0; i-- {
		j, err := rng.Intn(i + 1)
		if err != nil {
			return s, fmt.Errorf("%w: %v", ErrRandomSourceUnavailable, err)
		}
		n.Positions[i], n.Positions[j] = n.Positions[j], n.Positions[i]
	}
	n.Shuffles++
	return n, nil
}

// Guess reveals the chosen cup and resolves the round. Once resolved, further
// guesses return the state untouched.
func Guess(s State, positionID int) (State, error) {
	idx := s.indexOf(positionID)
	if idx < 0 {
		return s, fmt.Errorf("%w: %d", ErrInvalidPosition, positionID)
	}

	switch s.Phase {
	case PhaseResolved:
		return s, nil
	case PhaseAwaitingGuess:
	default:
		return s, fmt.Errorf("%w: cannot guess while %s", ErrNotReady, s.Phase)
	}

	n := s.clone()
	n.Positions[idx].Revealed = true
	n.Guessed = positionID
	if n.Positions[idx].HasBall {
		n.Outcome = OutcomeWon
	} else {
		n.Outcome = OutcomeLost
	}
	n.Phase = PhaseResolved
	return n, nil
}

// GuessSlot guesses the cup standing in the given left-to-right slot (1..N).
// Record ids travel with their cups, so hosts should take slots from players.
func GuessSlot(s State, slot int) (State, error) {
	if slot < 1 || slot > len(s.Positions) {
		return s, fmt.Errorf("%w: slot %d", ErrInvalidPosition, slot)
	}
	return Guess(s, s.Positions[slot-1].ID)
}

// Reset discards the round and returns a fresh seed arrangement.
func Reset(State) State {
	return Initialize()
}

func (s State) indexOf(positionID int) int {
	for i, p := range s.Positions {
		if p.ID == positionID {
			return i
		}
	}
	return -1
}

// BallPosition returns the id of the cup hiding the ball, 0 if none does.
func (s State) BallPosition() int {
	for _, p := range s.Positions {
		if p.HasBall {
			return p.ID
		}
	}
	return 0
}

// SlotOf returns the 1-based left-to-right slot of a cup id, 0 if unknown.
func (s State) SlotOf(positionID int) int {
	return s.indexOf(positionID) + 1
}

// BallSlot returns the slot currently hiding the ball, 0 if none does.
func (s State) BallSlot() int {
	return s.SlotOf(s.BallPosition())
}

// IsResolved returns whether the round has an outcome
func (s State) IsResolved() bool {
	return s.Phase == PhaseResolved
}

// Order returns the cup ids from left to right.
func (s State) Order() []int {
	ids := make([]int, len(s.Positions))
	for i, p := range s.Positions {
		ids[i] = p.ID
	}
	return ids
}

// ToDetails returns round details for storage
func (s State) ToDetails() map[string]interface{} {
	return map[string]interface{}{
		"order":        s.Order(),
		"ball_slot":    s.BallSlot(),
		"guessed_slot": s.SlotOf(s.Guessed),
		"outcome":      string(s.Outcome),
		"shuffles":     s.Shuffles,
	}
}
