package ws

import (
	"encoding/json"
	"errors"
	"time"

	"shell_game/internal/logger"
	"shell_game/internal/service"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

var errInvalidValue = errors.New("value must be a cup id")

type Client struct {
	PlayerID string
	Conn     *websocket.Conn
	Send     chan []byte

	Hub  *Hub
	Done chan struct{}
}

func NewClient(playerID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		PlayerID: playerID,
		Conn:     conn,
		Send:     make(chan []byte, 64),
		Hub:      hub,
		Done:     make(chan struct{}),
	}
}

// Run streams the player's round and reads commands until the socket closes
func (c *Client) Run() {
	c.Hub.register(c)
	events, unsubscribe := c.Hub.shell.Subscribe(c.PlayerID)

	go c.writePump()

	c.send(Message{Type: MsgReady, Payload: ReadyPayload{PlayerID: c.PlayerID}})
	if view, err := c.Hub.shell.State(c.PlayerID); err == nil {
		c.send(Message{Type: MsgState, Payload: view})
	}

	go c.forward(events)

	c.readPump()

	unsubscribe()
	c.Hub.unregister(c)
	close(c.Done)
}

// forward turns snapshot events into messages until the subscription closes
func (c *Client) forward(events <-chan service.SnapshotEvent) {
	for ev := range events {
		if ev.Error != "" {
			code := ev.Code
			if code == "" {
				code = service.CodeInternal
			}
			c.sendError(code, ev.Error)
		}
		c.send(Message{Type: MsgState, Payload: ev.Round})
	}
}

func (c *Client) readPump() {
	defer c.Conn.Close()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("ws read error", "player_id", c.PlayerID, "error", err)
			}
			return
		}
		c.Hub.HandleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "player_id", c.PlayerID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.Done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// send queues msg; a client that stops reading loses messages
func (c *Client) send(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logger.Error("ws marshal error", "error", err)
		return
	}

	select {
	case c.Send <- data:
	case <-c.Done:
	default:
		logger.Warn("ws send buffer full, message dropped", "player_id", c.PlayerID, "type", msg.Type)
	}
}

func (c *Client) sendError(code, message string) {
	c.send(Message{Type: MsgError, Payload: ErrorPayload{Code: code, Message: message}})
}
