package domain

import "time"

// GameSession is one match between two players. PlayerTwo stays empty
// until someone joins. ExpiresAt is fixed at creation; gameplay does
// not extend it.
type GameSession struct {
	ID            string       `json:"id"`
	PlayerOne     string       `json:"playerOne"`
	PlayerTwo     string       `json:"playerTwo,omitempty"`
	CurrentPlayer Seat         `json:"currentPlayer"`
	State         SessionState `json:"sessionState"`
	Board         Board        `json:"board"`
	MovesMade     int          `json:"movesMade"`
	Winner        Seat         `json:"winner,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	ExpiresAt     time.Time    `json:"expiresAt"`
}

func NewGameSession(id, playerOne string, ttl time.Duration) *GameSession {
	now := time.Now().UTC()
	return &GameSession{
		ID:            id,
		PlayerOne:     playerOne,
		CurrentPlayer: PlayerOne,
		State:         StatePlaying,
		Board:         NewBoard(),
		MovesMade:     0,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}
}

// SeatOf maps a player id to their seat in this session.
func (g *GameSession) SeatOf(playerID string) (Seat, bool) {
	switch {
	case playerID == g.PlayerOne:
		return PlayerOne, true
	case g.PlayerTwo != "" && playerID == g.PlayerTwo:
		return PlayerTwo, true
	}
	return Empty, false
}

func (g *GameSession) IsFinished() bool {
	return g.State != StatePlaying
}

// ApplyMove validates and applies one move for the given player.
// It is deterministic and touches no I/O, so callers can safely rerun
// it against a re-read session when an optimistic write loses a race.
//
// Checks run in a fixed order and the first failure wins:
// session still playing, player is a participant, it is their turn,
// the coordinate is on the board, the target cell is empty.
func (g *GameSession) ApplyMove(playerID string, c Coordinate) error {
	if g.State != StatePlaying {
		return ErrGameOver
	}

	seat, ok := g.SeatOf(playerID)
	if !ok {
		return ErrNotAParticipant
	}
	if seat != g.CurrentPlayer {
		return ErrOutOfTurn
	}

	if !InBounds(c) {
		return ErrInvalidMove
	}
	if g.Board.At(c) != Empty {
		return ErrCellOccupied
	}

	g.Board.Mark(c, seat)
	g.MovesMade++

	if CheckWin(g.Board, seat) {
		g.State = StateWon
		g.Winner = seat
		return nil
	}

	if g.MovesMade == BoardSize*BoardSize {
		g.State = StateDraw
		return nil
	}

	if g.CurrentPlayer == PlayerOne {
		g.CurrentPlayer = PlayerTwo
	} else {
		g.CurrentPlayer = PlayerOne
	}

	return nil
}
