package game

// CupView is what the presentation layer sees of one cup. Slot is the cup's
// left-to-right place (1..N) and is what players guess. ID and HasBall are
// left out while the ball location must stay hidden, since the id travels
// with the ball.
type CupView struct {
	Slot     int   `json:"slot"`
	ID       int   `json:"id,omitempty"`
	HasBall  *bool `json:"has_ball,omitempty"`
	Revealed bool  `json:"revealed"`
	Animated bool  `json:"animated"`
}

// Snapshot is an immutable view of a round. Guessed is a slot.
type Snapshot struct {
	Cups     []CupView `json:"cups"`
	Phase    Phase     `json:"phase"`
	Outcome  Outcome   `json:"outcome,omitempty"`
	Shuffles int       `json:"shuffles"`
	Guessed  int       `json:"guessed,omitempty"`
}

// Snapshot builds the client view. The ball is shown before shuffling starts
// and after the round is resolved; reveal forces it visible (debug).
func (s State) Snapshot(reveal bool) Snapshot {
	show := reveal || s.Phase == PhaseIdle || s.Phase == PhaseIntroAnimating || s.Phase == PhaseResolved

	cups := make([]CupView, len(s.Positions))
	for i, p := range s.Positions {
		cups[i] = CupView{
			Slot:     i + 1,
			Revealed: p.Revealed,
			Animated: p.HasBall && s.Phase == PhaseIntroAnimating,
		}
		if show {
			hasBall := p.HasBall
			cups[i].ID = p.ID
			cups[i].HasBall = &hasBall
		}
	}

	return Snapshot{
		Cups:     cups,
		Phase:    s.Phase,
		Outcome:  s.Outcome,
		Shuffles: s.Shuffles,
		Guessed:  s.SlotOf(s.Guessed),
	}
}
