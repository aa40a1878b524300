package ws

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"shell_game/internal/logger"
	"shell_game/internal/service"
)

// ShellController is the part of the shell service driven over a socket
type ShellController interface {
	StartRound(ctx context.Context, playerID string) (service.RoundView, error)
	Guess(ctx context.Context, playerID string, slot int) (service.RoundView, error)
	Reset(ctx context.Context, playerID string) (service.RoundView, error)
	Reshuffle(ctx context.Context, playerID string) (service.RoundView, error)
	State(playerID string) (service.RoundView, error)
	Subscribe(playerID string) (<-chan service.SnapshotEvent, func())
}

// Hub tracks connected clients per player and routes their commands
type Hub struct {
	shell   ShellController
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

func NewHub(shell ShellController) *Hub {
	return &Hub{
		shell:   shell,
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.PlayerID] == nil {
		h.clients[c.PlayerID] = make(map[*Client]struct{})
	}
	h.clients[c.PlayerID][c] = struct{}{}
	logger.Debug("ws client registered", "player_id", c.PlayerID, "connections", len(h.clients[c.PlayerID]))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients[c.PlayerID], c)
	if len(h.clients[c.PlayerID]) == 0 {
		delete(h.clients, c.PlayerID)
	}
	logger.Debug("ws client unregistered", "player_id", c.PlayerID)
}

// ClientsCount returns the number of open connections
func (h *Hub) ClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, set := range h.clients {
		for c := range set {
			_ = c.Conn.Close()
		}
	}
}

// HandleMessage runs one client command. Successful commands answer through
// the player's snapshot stream; only errors and pongs are replied directly.
func (h *Hub) HandleMessage(c *Client, raw []byte) {
	var msg Inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("bad_request", "invalid message")
		return
	}

	ctx := context.Background()
	var err error

	switch msg.Type {
	case MsgStart:
		_, err = h.shell.StartRound(ctx, c.PlayerID)
	case MsgGuess:
		slot, convErr := parseSlot(msg.Value)
		if convErr != nil {
			c.sendError(service.CodeInvalidPosition, convErr.Error())
			return
		}
		_, err = h.shell.Guess(ctx, c.PlayerID, slot)
	case MsgReset:
		_, err = h.shell.Reset(ctx, c.PlayerID)
	case MsgReshuffle:
		_, err = h.shell.Reshuffle(ctx, c.PlayerID)
	case MsgState:
		var view service.RoundView
		view, err = h.shell.State(c.PlayerID)
		if err == nil {
			c.send(Message{Type: MsgState, Payload: view})
		}
	case MsgPing:
		c.send(Message{Type: MsgPong})
	default:
		c.sendError("bad_request", "unknown message type: "+msg.Type)
		return
	}

	if err != nil {
		logger.Debug("ws command failed", "player_id", c.PlayerID, "type", msg.Type, "error", err)
		c.sendError(service.ErrorCode(err), err.Error())
	}
}

// parseSlot accepts 2 or "2"
func parseSlot(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errInvalidValue
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errInvalidValue
	}
	return n, nil
}
