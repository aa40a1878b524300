package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shell_game/internal/game"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		OnShuffleStart: func() error { r.add("start"); return nil },
		OnShuffle:      func(step int) error { r.add(fmt.Sprintf("shuffle%d", step)); return nil },
		OnDone:         func() error { r.add("done"); return nil },
		OnError:        func(err error) { r.add("error:" + err.Error()) },
	}
}

func advance(ctx context.Context, t *testing.T, clock *quartz.Mock) time.Duration {
	t.Helper()
	d, w := clock.AdvanceNext()
	w.MustWait(ctx)
	return d
}

func TestSequenceRunsScript(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	rec := &recorder{}
	script := game.Script{IntroDelay: 2 * time.Second, Count: 3, Interval: 300 * time.Millisecond}
	seq := NewSequence(New(clock), script, rec.hooks())
	seq.Start()

	assert.Equal(t, 2*time.Second, advance(ctx, t, clock))
	assert.Equal(t, []string{"start"}, rec.list())

	for i := 1; i <= 3; i++ {
		assert.Equal(t, 300*time.Millisecond, advance(ctx, t, clock))
	}

	assert.Equal(t, []string{"start", "shuffle1", "shuffle2", "shuffle3", "done"}, rec.list())
	assert.True(t, seq.Done())
	assert.Equal(t, 3, seq.Steps())
}

func TestSequenceWithoutIntro(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	rec := &recorder{}
	hooks := rec.hooks()
	hooks.OnShuffleStart = nil
	script := game.DefaultScript().WithoutIntro().RunScriptedShuffle(2, 100*time.Millisecond)
	seq := NewSequence(New(clock), script, hooks)
	seq.Start()

	assert.Equal(t, 100*time.Millisecond, advance(ctx, t, clock))
	assert.Equal(t, 100*time.Millisecond, advance(ctx, t, clock))
	assert.Equal(t, []string{"shuffle1", "shuffle2", "done"}, rec.list())
}

func TestSequenceCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	rec := &recorder{}
	seq := NewSequence(New(clock), game.DefaultScript(), rec.hooks())
	seq.Start()

	advance(ctx, t, clock)
	advance(ctx, t, clock)
	seq.Cancel()

	clock.Advance(10 * time.Second).MustWait(ctx)
	assert.Equal(t, []string{"start", "shuffle1"}, rec.list())
	assert.False(t, seq.Done())
	assert.Equal(t, 1, seq.Steps())
}

func TestSequenceCancelBeforeStart(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	rec := &recorder{}
	seq := NewSequence(New(clock), game.DefaultScript(), rec.hooks())
	seq.Cancel()
	seq.Start()

	clock.Advance(10 * time.Second).MustWait(ctx)
	assert.Empty(t, rec.list())
}

func TestSequenceStopsOnError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	rec := &recorder{}
	hooks := rec.hooks()
	hooks.OnShuffle = func(step int) error {
		if step == 2 {
			return errors.New("boom")
		}
		rec.add(fmt.Sprintf("shuffle%d", step))
		return nil
	}
	seq := NewSequence(New(clock), game.DefaultScript(), hooks)
	seq.Start()

	for i := 0; i < 3; i++ {
		advance(ctx, t, clock)
	}
	require.True(t, seq.Done())

	clock.Advance(10 * time.Second).MustWait(ctx)
	assert.Equal(t, []string{"start", "shuffle1", "error:boom"}, rec.list())
}
