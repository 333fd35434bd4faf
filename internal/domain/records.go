package domain

import "time"

// Player is a registered participant. The secret is an opaque
// server-generated credential compared flat on every action.
// The record carries a sliding expiry: every successful action by the
// player pushes ExpiresAt forward, and the store drops the record once
// it elapses.
type Player struct {
	ID        string    `json:"id"`
	Secret    string    `json:"secret"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Connection is one live push channel and the set of game sessions it
// currently watches.
type Connection struct {
	ID            string   `json:"id"`
	ObservableIDs []string `json:"observableIds"`
}

// Observable fans one game session's updates out to its watchers.
// The observable id equals the game session id.
type Observable struct {
	ObservableID  string   `json:"observableId"`
	ConnectionIDs []string `json:"connectionIds"`
}

// GameResult is the archived row for a finished game.
type GameResult struct {
	GameID     string       `json:"gameId"`
	PlayerOne  string       `json:"playerOne"`
	PlayerTwo  string       `json:"playerTwo"`
	Winner     Seat         `json:"winner"`
	State      SessionState `json:"sessionState"`
	TotalMoves int          `json:"totalMoves"`
	CreatedAt  time.Time    `json:"createdAt"`
	FinishedAt time.Time    `json:"finishedAt"`
}
