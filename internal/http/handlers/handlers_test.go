package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shell_game/internal/domain"
	"shell_game/internal/game"
	"shell_game/internal/http/middleware"
	"shell_game/internal/logger"
	"shell_game/internal/repository"
	"shell_game/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeHistory struct {
	rounds   []*domain.RoundRecord
	err      error
	statsErr error
	limit    int
}

func (f *fakeHistory) GetByPlayer(_ context.Context, playerID string, limit int) ([]*domain.RoundRecord, error) {
	f.limit = limit
	return f.rounds, f.err
}

func (f *fakeHistory) GetPlayerStats(_ context.Context, playerID string, _ time.Time) (*repository.PlayerStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &repository.PlayerStats{PlayerID: playerID, TotalRounds: len(f.rounds), Wins: len(f.rounds), WinRate: 1}, nil
}

func asPlayer(id string) gin.HandlerFunc {
	return func(c *gin.Context) { c.Set(middleware.PlayerIDKey, id) }
}

func TestWriteShellError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: 7", game.ErrInvalidPosition), http.StatusBadRequest, "invalid_position"},
		{fmt.Errorf("%w: cannot guess while shuffling", game.ErrNotReady), http.StatusConflict, "not_ready"},
		{service.ErrNoSession, http.StatusNotFound, "no_session"},
		{fmt.Errorf("%w: eof", game.ErrRandomSourceUnavailable), http.StatusServiceUnavailable, "random_source_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/", nil)

		writeShellError(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body["error"])
	}
}

func TestMyRounds(t *testing.T) {
	hist := &fakeHistory{rounds: []*domain.RoundRecord{{RoundID: "r1", PlayerID: "p1", Result: domain.GameResultWin}}}
	h := NewHandler(nil, hist)

	r := gin.New()
	r.GET("/me/rounds", asPlayer("p1"), h.MyRounds)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/me/rounds?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, hist.limit)

	var body struct {
		Rounds []domain.RoundRecord     `json:"rounds"`
		Stats  *repository.PlayerStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Rounds, 1)
	assert.Equal(t, "r1", body.Rounds[0].RoundID)
	require.NotNil(t, body.Stats)
	assert.Equal(t, 1, body.Stats.Wins)

	hist.err = errors.New("db down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/me/rounds?limit=500", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 50, hist.limit)
}

func TestMyRoundsStatsFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	withLogger := func(c *gin.Context) {
		l := slog.New(slog.NewJSONHandler(&logs, nil))
		c.Request = c.Request.WithContext(logger.NewContext(c.Request.Context(), l))
	}

	hist := &fakeHistory{
		rounds:   []*domain.RoundRecord{{RoundID: "r1", PlayerID: "p1"}},
		statsErr: errors.New("stats query timeout"),
	}
	h := NewHandler(nil, hist)
	r := gin.New()
	r.GET("/me/rounds", withLogger, asPlayer("p1"), h.MyRounds)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/me/rounds", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Rounds []domain.RoundRecord     `json:"rounds"`
		Stats  *repository.PlayerStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Rounds, 1)
	assert.Nil(t, body.Stats)

	assert.Contains(t, logs.String(), "get round stats failed")
	assert.Contains(t, logs.String(), "stats query timeout")
	assert.Contains(t, logs.String(), `"player_id":"p1"`)
}

func TestGetPlayerID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := getPlayerID(c)
	assert.False(t, ok)

	c.Set(middleware.PlayerIDKey, "")
	_, ok = getPlayerID(c)
	assert.False(t, ok)

	c.Set(middleware.PlayerIDKey, 42)
	_, ok = getPlayerID(c)
	assert.False(t, ok)

	c.Set(middleware.PlayerIDKey, "p1")
	id, ok := getPlayerID(c)
	assert.True(t, ok)
	assert.Equal(t, "p1", id)
}

func TestMyRoundsWithoutPlayer(t *testing.T) {
	h := NewHandler(nil, nil)
	r := gin.New()
	r.GET("/me/rounds", h.MyRounds)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/me/rounds", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionIssuesToken(t *testing.T) {
	require.NoError(t, service.InitJWT("handlers-secret"))
	h := NewHandler(nil, nil)
	r := gin.New()
	r.POST("/session", h.Session)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/session", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	playerID, err := service.ParseJWT(body["token"])
	require.NoError(t, err)
	assert.Equal(t, body["player_id"], playerID)
}
