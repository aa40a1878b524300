package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shell_game/internal/config"
	"shell_game/internal/game"
	"shell_game/internal/scheduler"
	"shell_game/internal/service"
)

func newTestServer(t *testing.T, reveal bool) (*gin.Engine, *quartz.Mock) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, service.InitJWT("routes-secret"))

	cfg := &config.Config{
		AppVersion:     "test",
		APIRateLimit:   100000,
		APIRateWindow:  time.Minute,
		GameRateLimit:  100000,
		GameRateWindow: time.Minute,
	}

	clock := quartz.NewMock(t)
	svc := service.NewShellService(scheduler.New(clock), service.ShellOptions{
		Script:     game.Script{IntroDelay: time.Second, Count: 3, Interval: 100 * time.Millisecond},
		Random:     game.NewSeededSource(11),
		RevealBall: reveal,
	})
	t.Cleanup(svc.Close)

	r := gin.New()
	hub := RegisterRoutes(r, nil, svc, cfg)
	t.Cleanup(hub.Close)
	return r, clock
}

func call(t *testing.T, r http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func newToken(t *testing.T, r http.Handler) string {
	t.Helper()
	w, out := call(t, r, "POST", "/api/v1/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, out["player_id"])
	return out["token"].(string)
}

func TestShellRoundOverHTTP(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r, clock := newTestServer(t, true)
	token := newToken(t, r)

	w, out := call(t, r, "GET", "/api/v1/game/shell/state", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, out["active"])

	w, _ = call(t, r, "POST", "/api/v1/game/shell/guess", token, map[string]int{"position": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, out = call(t, r, "POST", "/api/v1/game/shell/start", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "intro_animating", out["phase"])

	w, out = call(t, r, "POST", "/api/v1/game/shell/guess", token, map[string]int{"position": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "not_ready", out["error"])

	for i := 0; i < 4; i++ {
		_, wt := clock.AdvanceNext()
		wt.MustWait(ctx)
	}

	var state struct {
		Active bool              `json:"active"`
		Round  service.RoundView `json:"round"`
	}
	w, _ = call(t, r, "GET", "/api/v1/game/shell/state", token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	require.True(t, state.Active)
	require.Equal(t, game.PhaseAwaitingGuess, state.Round.Phase)
	assert.Equal(t, 3, state.Round.Shuffles)

	w, out = call(t, r, "POST", "/api/v1/game/shell/guess", token, map[string]int{"position": 4})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_position", out["error"])

	w, _ = call(t, r, "POST", "/api/v1/game/shell/guess", token, map[string]string{"cup": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ball := 0
	for _, c := range state.Round.Cups {
		if c.HasBall != nil && *c.HasBall {
			ball = c.Slot
		}
	}
	require.NotZero(t, ball)
	w, out = call(t, r, "POST", "/api/v1/game/shell/guess", token, map[string]int{"position": ball})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "resolved", out["phase"])
	assert.Equal(t, "won", out["outcome"])
	assert.EqualValues(t, ball, out["guessed"])

	w, out = call(t, r, "POST", "/api/v1/game/shell/reset", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "idle", out["phase"])
	assert.EqualValues(t, 0, out["shuffles"])
}

func TestShellFixedSlotOverHTTP(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r, clock := newTestServer(t, false)
	token := newToken(t, r)

	const rounds = 450
	wins := 0
	for i := 0; i < rounds; i++ {
		w, _ := call(t, r, "POST", "/api/v1/game/shell/start", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		for step := 0; step < 4; step++ {
			_, wt := clock.AdvanceNext()
			wt.MustWait(ctx)
		}

		w, _ = call(t, r, "GET", "/api/v1/game/shell/state", token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.NotContains(t, w.Body.String(), "has_ball")
		require.NotContains(t, w.Body.String(), `"id"`)

		w, out := call(t, r, "POST", "/api/v1/game/shell/guess", token, map[string]int{"position": 2})
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "resolved", out["phase"])
		if out["outcome"] == "won" {
			wins++
		}
	}
	assert.InDelta(t, 1.0/3.0, float64(wins)/rounds, 0.1, "slot 2 won %d/%d", wins, rounds)
}

func TestShellRoutesRequireToken(t *testing.T) {
	r, _ := newTestServer(t, true)

	for _, path := range []string{"/game/shell/start", "/game/shell/guess", "/game/shell/reset", "/game/shell/reshuffle"} {
		w, _ := call(t, r, "POST", "/api/v1"+path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w, _ := call(t, r, "GET", "/api/game/shell/state", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShellInfoAndHealth(t *testing.T) {
	r, _ := newTestServer(t, true)

	w, out := call(t, r, "GET", "/api/v1/game/shell/info", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, out["shuffle_count"])
	assert.EqualValues(t, 100, out["shuffle_interval_ms"])
	assert.EqualValues(t, 1000, out["intro_delay_ms"])
	assert.Equal(t, "slot", out["guess_by"])
	assert.NotContains(t, out, "ball_start")

	w, out = call(t, r, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])

	w, out = call(t, r, "GET", "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	checks := out["checks"].(map[string]any)
	assert.Equal(t, "disabled", checks["database"])
	assert.Equal(t, "disabled", checks["redis"])

	w, out = call(t, r, "GET", "/api/v1/me/rounds", newToken(t, r), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "disabled", out["history"])

	w, _ = call(t, r, "GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "shell_rounds_started_total")
}
