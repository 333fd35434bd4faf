package domain

// Seat identifies a player's role inside one game session,
// independent of the player's identity.
type Seat int

const (
	Empty     Seat = 0
	PlayerOne Seat = 1
	PlayerTwo Seat = 2
)

const BoardSize = 3

// Board is a 3x3 grid. Cells hold the seat that marked them, or Empty.
type Board [BoardSize][BoardSize]Seat

// SessionState tracks the lifecycle of a game session
type SessionState string

const (
	StatePlaying   SessionState = "playing"
	StateWon       SessionState = "won"
	StateDraw      SessionState = "draw"
	StateAbandoned SessionState = "abandoned"
)

// Coordinate addresses one cell. X is the column, Y the row.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidCredential Error = "invalid player credential"
	ErrPlayerNotFound    Error = "player not found"
	ErrSessionNotFound   Error = "game session not found"
	ErrSessionFull       Error = "game session already has two players"
	ErrGameOver          Error = "game is no longer active"
	ErrNotAParticipant   Error = "player is not part of this game"
	ErrOutOfTurn         Error = "it is not this player's turn"
	ErrInvalidMove       Error = "move is outside the board"
	ErrCellOccupied      Error = "square is already occupied"
	ErrConnectionGone    Error = "connection not found"
	ErrConflict          Error = "concurrent update conflict"
	ErrDeliveryFailure   Error = "push delivery failed"
	ErrStoreUnavailable  Error = "store unavailable"
)
