package ws

// server → client
type ReadyPayload struct {
	PlayerID string `json:"player_id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
