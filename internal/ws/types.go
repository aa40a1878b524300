package ws

import "encoding/json"

const (
	// client - server
	MsgStart     = "start"
	MsgGuess     = "guess"
	MsgReset     = "reset"
	MsgReshuffle = "reshuffle"
	MsgState     = "state"
	MsgPing      = "ping"

	// server - client
	MsgReady = "ready"
	MsgPong  = "pong"
	MsgError = "error"
)

// Message is written to the client
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Inbound is a client command. Value carries the cup id for guess.
type Inbound struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}
