package messages

import "encoding/json"

// Inbound message types
const (
	TypeMove              = "move"
	TypeRequestBoardState = "requestBoardState"
	TypePlayerExit        = "playerExit"
)

// InboundMessage is the generic wrapper for messages coming from the client.
// The "type" field tells us the action; "payload" is the data we parse further.
type InboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MoveRequest is a move in board coordinates
type MoveRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
}

// MakeMovePayload represents the payload for making a move during a game
type MakeMovePayload struct {
	Move   MoveRequest `json:"move"`
	GameID string      `json:"gameId"`
}

// RequestBoardStatePayload asks for a full position snapshot
type RequestBoardStatePayload struct {
	GameID string `json:"gameId"`
}
