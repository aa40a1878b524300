package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"time"

	"shell_game/internal/logger"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type roundView struct {
	RoundID string `json:"round_id"`
	Phase   string `json:"phase"`
	Outcome string `json:"outcome"`
	Cups    []struct {
		Slot int `json:"slot"`
	} `json:"cups"`
}

// Plays one round against a running server: session, start, wait for the
// guess phase, guess the leftmost cup.
func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server host:port")
	timeout := flag.Duration("timeout", 15*time.Second, "give up after")
	flag.Parse()

	res, err := http.Post("http://"+*addr+"/api/v1/session", "application/json", bytes.NewReader(nil))
	if err != nil {
		logger.Fatal("session request failed", "error", err)
	}
	var sess struct {
		PlayerID string `json:"player_id"`
		Token    string `json:"token"`
	}
	err = json.NewDecoder(res.Body).Decode(&sess)
	res.Body.Close()
	if err != nil || sess.Token == "" {
		logger.Fatal("bad session response", "status", res.StatusCode, "error", err)
	}
	logger.Info("session issued", "player_id", sess.PlayerID)

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s", *addr, sess.Token), nil)
	if err != nil {
		logger.Fatal("dial failed", "error", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "start"}); err != nil {
		logger.Fatal("write start", "error", err)
	}

	deadline := time.Now().Add(*timeout)
	guessed := false
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			logger.Fatal("read failed", "error", err)
		}

		switch msg.Type {
		case "error":
			logger.Warn("server error", "payload", string(msg.Payload))
		case "state":
			var v roundView
			if err := json.Unmarshal(msg.Payload, &v); err != nil {
				logger.Fatal("bad state payload", "error", err)
			}
			logger.Info("state", "round_id", v.RoundID, "phase", v.Phase)

			if v.Phase == "awaiting_guess" && !guessed && len(v.Cups) > 0 {
				guessed = true
				if err := conn.WriteJSON(map[string]any{"type": "guess", "value": v.Cups[0].Slot}); err != nil {
					logger.Fatal("write guess", "error", err)
				}
			}
			if v.Phase == "resolved" {
				logger.Info("smoke test finished", "outcome", v.Outcome)
				return
			}
		}
	}
	logger.Fatal("round did not resolve in time")
}
