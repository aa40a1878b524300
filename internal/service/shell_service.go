package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"shell_game/internal/domain"
	"shell_game/internal/game"
	"shell_game/internal/logger"
	"shell_game/internal/scheduler"

	"github.com/google/uuid"
)

var ErrNoSession = errors.New("no active round")

// RoundRecorder stores resolved rounds
type RoundRecorder interface {
	Create(ctx context.Context, rec *domain.RoundRecord) error
}

// ShellOptions configures a ShellService
type ShellOptions struct {
	Script     game.Script
	Random     game.RandomSource // defaults to crypto/rand
	Recorder   RoundRecorder     // optional
	RevealBall bool
	SessionTTL time.Duration
}

// RoundView is a snapshot tagged with its round
type RoundView struct {
	RoundID string `json:"round_id"`
	game.Snapshot
}

// SnapshotEvent is published on every state change of a player's round
type SnapshotEvent struct {
	PlayerID string    `json:"player_id"`
	Round    RoundView `json:"round"`
	Code     string    `json:"code,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Session owns one player's round. mu serialises every call into the
// game state, including scheduler callbacks.
type Session struct {
	PlayerID  string
	RoundID   string
	StartedAt time.Time

	mu         sync.Mutex
	state      game.State
	seq        *scheduler.Sequence
	gen        int
	recorded   bool
	lastActive time.Time
}

// ShellService manages one active shell round per player
type ShellService struct {
	sched    scheduler.Scheduler
	rng      game.RandomSource
	script   game.Script
	recorder RoundRecorder
	reveal   bool
	ttl      time.Duration
	now      func() time.Time
	log      *slog.Logger

	sessions map[string]*Session // playerID -> session
	mu       sync.RWMutex

	subs   map[string]map[int]chan SnapshotEvent
	subSeq int
	subMu  sync.Mutex
}

// NewShellService creates a new shell service
func NewShellService(sched scheduler.Scheduler, opts ShellOptions) *ShellService {
	rng := opts.Random
	if rng == nil {
		rng = game.NewCryptoSource()
	}
	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &ShellService{
		sched:    sched,
		rng:      &lockedSource{src: rng},
		script:   opts.Script,
		recorder: opts.Recorder,
		reveal:   opts.RevealBall,
		ttl:      ttl,
		now:      time.Now,
		log:      logger.With("component", "shell_service"),
		sessions: make(map[string]*Session),
		subs:     make(map[string]map[int]chan SnapshotEvent),
	}
}

// Script returns the configured round script
func (s *ShellService) Script() game.Script {
	return s.script
}

// StartRound replaces the player's round with a fresh one and starts the intro
func (s *ShellService) StartRound(ctx context.Context, playerID string) (RoundView, error) {
	sess := &Session{PlayerID: playerID}

	s.mu.Lock()
	if old, ok := s.sessions[playerID]; ok {
		old.mu.Lock()
		old.gen++
		if old.seq != nil {
			old.seq.Cancel()
		}
		old.mu.Unlock()
	}
	s.sessions[playerID] = sess
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	view, err := s.beginRoundLocked(sess)
	if err != nil {
		return view, err
	}

	roundsStarted.Inc()
	logger.WithContext(ctx).Info("shell round started", "player_id", playerID, "round_id", sess.RoundID)
	return view, nil
}

// beginRoundLocked seeds a new round and schedules intro + shuffles
func (s *ShellService) beginRoundLocked(sess *Session) (RoundView, error) {
	sess.RoundID = uuid.New().String()[:8]
	sess.StartedAt = s.now()
	sess.lastActive = sess.StartedAt
	sess.recorded = false

	next, err := game.BeginIntro(game.Initialize())
	if err != nil {
		return s.viewLocked(sess), err
	}
	sess.state = next
	s.startSequenceLocked(sess, s.script, true)

	view := s.viewLocked(sess)
	s.publish(sess.PlayerID, SnapshotEvent{PlayerID: sess.PlayerID, Round: view})
	return view, nil
}

// Guess reveals the cup in the given left-to-right slot (1..3). After the
// round is resolved it returns the same result.
func (s *ShellService) Guess(ctx context.Context, playerID string, slot int) (RoundView, error) {
	sess, err := s.session(playerID)
	if err != nil {
		return RoundView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = s.now()

	wasResolved := sess.state.IsResolved()
	next, err := game.GuessSlot(sess.state, slot)
	if err != nil {
		return s.viewLocked(sess), err
	}
	sess.state = next

	view := s.viewLocked(sess)
	if !wasResolved && next.IsResolved() {
		roundsResolved.WithLabelValues(string(next.Outcome)).Inc()
		logger.WithContext(ctx).Info("shell round resolved",
			"player_id", playerID, "round_id", sess.RoundID,
			"guessed_slot", slot, "ball_slot", next.BallSlot(), "outcome", next.Outcome)
		s.recordLocked(sess)
	}
	s.publish(playerID, SnapshotEvent{PlayerID: playerID, Round: view})
	return view, nil
}

// Reset discards the round and re-enters the intro. The returned view is the
// fresh idle arrangement.
func (s *ShellService) Reset(ctx context.Context, playerID string) (RoundView, error) {
	sess, err := s.session(playerID)
	if err != nil {
		return RoundView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.gen++
	if sess.seq != nil {
		sess.seq.Cancel()
		sess.seq = nil
	}
	sess.state = game.Reset(sess.state)
	idle := s.viewLocked(sess)
	s.publish(playerID, SnapshotEvent{PlayerID: playerID, Round: idle})

	if _, err := s.beginRoundLocked(sess); err != nil {
		return idle, err
	}
	idle.RoundID = sess.RoundID

	roundsStarted.Inc()
	logger.WithContext(ctx).Info("shell round reset", "player_id", playerID, "round_id", sess.RoundID)
	return idle, nil
}

// Reshuffle runs another scripted shuffle on a round waiting for a guess
func (s *ShellService) Reshuffle(ctx context.Context, playerID string) (RoundView, error) {
	sess, err := s.session(playerID)
	if err != nil {
		return RoundView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.lastActive = s.now()

	next, err := game.Reshuffle(sess.state)
	if err != nil {
		return s.viewLocked(sess), err
	}
	sess.state = next
	s.startSequenceLocked(sess, s.script.WithoutIntro(), false)

	view := s.viewLocked(sess)
	s.publish(playerID, SnapshotEvent{PlayerID: playerID, Round: view})
	logger.WithContext(ctx).Debug("shell reshuffle", "player_id", playerID, "round_id", sess.RoundID)
	return view, nil
}

// State returns the player's current round
func (s *ShellService) State(playerID string) (RoundView, error) {
	sess, err := s.session(playerID)
	if err != nil {
		return RoundView{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess), nil
}

// ActiveSessionsCount returns the number of sessions held in memory
func (s *ShellService) ActiveSessionsCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *ShellService) session(playerID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[playerID]
	if !ok {
		return nil, ErrNoSession
	}
	return sess, nil
}

func (s *ShellService) viewLocked(sess *Session) RoundView {
	return RoundView{RoundID: sess.RoundID, Snapshot: sess.state.Snapshot(s.reveal)}
}

// startSequenceLocked replaces the session's sequence. Callbacks of older
// sequences see a stale generation and do nothing.
func (s *ShellService) startSequenceLocked(sess *Session, script game.Script, withIntro bool) {
	if sess.seq != nil {
		sess.seq.Cancel()
	}
	sess.gen++
	gen := sess.gen
	log := logger.WithRound(sess.PlayerID, sess.RoundID)

	hooks := scheduler.Hooks{
		OnShuffle: func(step int) error {
			err := s.apply(sess, gen, func(st game.State) (game.State, error) {
				return game.ShuffleOnce(st, s.rng)
			})
			if err == nil {
				shufflesTotal.Inc()
				log.Debug("shuffle", "step", step)
			}
			return err
		},
		OnDone: func() error {
			return s.apply(sess, gen, game.FinishShuffling)
		},
		OnError: func(err error) {
			if errors.Is(err, game.ErrRandomSourceUnavailable) {
				randomSourceErrors.Inc()
			}
			log.Error("shuffle sequence stopped", "error", err)

			sess.mu.Lock()
			defer sess.mu.Unlock()
			if sess.gen != gen {
				return
			}
			s.publish(sess.PlayerID, SnapshotEvent{
				PlayerID: sess.PlayerID,
				Round:    s.viewLocked(sess),
				Code:     ErrorCode(err),
				Error:    err.Error(),
			})
		},
	}
	if withIntro {
		hooks.OnShuffleStart = func() error {
			return s.apply(sess, gen, game.BeginShuffling)
		}
	}

	sess.seq = scheduler.NewSequence(s.sched, script, hooks)
	sess.seq.Start()
}

// apply runs fn on the session state unless gen is stale, then publishes
func (s *ShellService) apply(sess *Session, gen int, fn func(game.State) (game.State, error)) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.gen != gen {
		return nil
	}
	next, err := fn(sess.state)
	if err != nil {
		return err
	}
	sess.state = next
	s.publish(sess.PlayerID, SnapshotEvent{PlayerID: sess.PlayerID, Round: s.viewLocked(sess)})
	return nil
}

func (s *ShellService) recordLocked(sess *Session) {
	if sess.recorded || s.recorder == nil {
		return
	}
	sess.recorded = true

	st := sess.state
	rec := &domain.RoundRecord{
		RoundID:     sess.RoundID,
		PlayerID:    sess.PlayerID,
		GameType:    domain.GameTypeShell,
		Mode:        domain.GameModeSolo,
		Result:      domain.ResultFromOutcome(string(st.Outcome)),
		GuessedSlot: st.SlotOf(st.Guessed),
		BallSlot:    st.BallSlot(),
		Shuffles:    st.Shuffles,
		Details:     st.ToDetails(),
		StartedAt:   sess.StartedAt,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.recorder.Create(ctx, rec); err != nil {
			s.log.Error("round record failed", "round_id", rec.RoundID, "error", err)
		}
	}()
}

// Subscribe returns a channel receiving the player's snapshot events. Events
// are dropped for a subscriber that does not keep up.
func (s *ShellService) Subscribe(playerID string) (<-chan SnapshotEvent, func()) {
	ch := make(chan SnapshotEvent, 32)

	s.subMu.Lock()
	s.subSeq++
	id := s.subSeq
	if s.subs[playerID] == nil {
		s.subs[playerID] = make(map[int]chan SnapshotEvent)
	}
	s.subs[playerID][id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			delete(s.subs[playerID], id)
			if len(s.subs[playerID]) == 0 {
				delete(s.subs, playerID)
			}
			close(ch)
		})
	}
}

func (s *ShellService) publish(playerID string, ev SnapshotEvent) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs[playerID] {
		select {
		case ch <- ev:
		default:
			s.log.Warn("subscriber too slow, event dropped", "player_id", playerID)
		}
	}
}

// StartCleanup removes idle sessions every interval until ctx is done
func (s *ShellService) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.cleanupExpired(); n > 0 {
					s.log.Info("cleaned up idle shell sessions", "count", n)
				}
			}
		}
	}()
}

func (s *ShellService) cleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for playerID, sess := range s.sessions {
		sess.mu.Lock()
		expired := now.Sub(sess.lastActive) > s.ttl
		if expired {
			sess.gen++
			if sess.seq != nil {
				sess.seq.Cancel()
			}
		}
		sess.mu.Unlock()

		if expired {
			delete(s.sessions, playerID)
			removed++
		}
	}
	return removed
}

// Close cancels every running sequence
func (s *ShellService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		sess.mu.Lock()
		sess.gen++
		if sess.seq != nil {
			sess.seq.Cancel()
		}
		sess.mu.Unlock()
	}
}

// lockedSource serialises a RandomSource shared by all sessions
type lockedSource struct {
	mu  sync.Mutex
	src game.RandomSource
}

func (l *lockedSource) Intn(n int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}
