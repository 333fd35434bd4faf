package domain

import "encoding/json"

// Client actions multiplexed over one push channel. Messages are
// decoded into their payload shape first, then dispatched on the tag.
const (
	ActionNewGame     = "newGame"
	ActionJoinGame    = "joinGame"
	ActionMakeMove    = "makeMove"
	ActionGetGame     = "getGame"
	ActionObserveGame = "observeGame"
)

type ClientMessage struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type NewGamePayload struct {
	PlayerID     string `json:"playerId"`
	PlayerSecret string `json:"playerSecret"`
}

type JoinGamePayload struct {
	GameStateID  string `json:"gameStateId"`
	PlayerID     string `json:"playerId"`
	PlayerSecret string `json:"playerSecret"`
}

type MakeMovePayload struct {
	GameStateID  string     `json:"gameStateId"`
	PlayerID     string     `json:"playerId"`
	PlayerSecret string     `json:"playerSecret"`
	Cord         Coordinate `json:"cord"`
}

type GetGamePayload struct {
	GameStateID string `json:"gameStateId"`
}

type ObserveGamePayload struct {
	GameStateID string `json:"gameStateId"`
}

// ServerMessage is the action-tagged frame pushed to clients. The error
// variant carries Message and no GameState.
type ServerMessage struct {
	Action      string       `json:"action"`
	Message     string       `json:"message,omitempty"`
	GameStateID string       `json:"gameStateId,omitempty"`
	GameState   *GameSession `json:"gameState,omitempty"`
}
