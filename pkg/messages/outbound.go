package messages

// Outbound events
const (
	EventWaiting       = "waiting"
	EventPlayerRole    = "playerRole"
	EventSpectatorRole = "spectatorRole"
	EventGameStart     = "gameStart"
	EventMove          = "move"
	EventInvalidMove   = "invalidMove"
	EventBoardState    = "boardState"
	EventTimerUpdate   = "timerUpdate"
	EventGameOver      = "gameOver"
	EventError         = "error"
)

// WaitingMessage is sent to a player parked in the waiting slot
const WaitingMessage = "Waiting for opponent..."

// OutboundMessage is how we wrap responses before sending
// them to the client
type OutboundMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// PlayerRolePayload tells a player which side it plays and in which room
type PlayerRolePayload struct {
	Role   string `json:"role"`
	GameID string `json:"gameId"`
}

type SpectatorRolePayload struct {
	GameID string `json:"gameId"`
}

// GameStartPayload carries the initial position and the player's side
type GameStartPayload struct {
	FEN    string `json:"fen"`
	Role   string `json:"role"`
	GameID string `json:"gameId"`
}

// MovePayload is an accepted move as broadcast to the room
type MovePayload struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Promotion string `json:"promotion,omitempty"`
	SAN       string `json:"san"`
	Color     string `json:"color"`
	Piece     string `json:"piece"`
	Captured  string `json:"captured,omitempty"`
}

// TimerUpdatePayload contains the remaining seconds of both players
type TimerUpdatePayload struct {
	WhiteSeconds int `json:"whiteSeconds"`
	BlackSeconds int `json:"blackSeconds"`
}

// GameOverPayload announces the result. Winner is empty for a draw.
type GameOverPayload struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
