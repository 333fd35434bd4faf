package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
)

func newTestGame() *domain.GameSession {
	g := domain.NewGameSession("g1", "alice", time.Hour)
	g.PlayerTwo = "bob"
	return g
}

func TestNewGameSession(t *testing.T) {
	g := domain.NewGameSession("g1", "alice", time.Hour)

	assert.Equal(t, "g1", g.ID)
	assert.Equal(t, "alice", g.PlayerOne)
	assert.Empty(t, g.PlayerTwo)
	assert.Equal(t, domain.PlayerOne, g.CurrentPlayer)
	assert.Equal(t, domain.StatePlaying, g.State)
	assert.Equal(t, 0, g.MovesMade)
	assert.Equal(t, 0, g.Board.MarkCount())
	assert.WithinDuration(t, g.CreatedAt.Add(time.Hour), g.ExpiresAt, time.Second)
}

func TestApplyMove_TurnAlternation(t *testing.T) {
	g := newTestGame()

	moves := []struct {
		player string
		cord   domain.Coordinate
	}{
		{"alice", domain.Coordinate{X: 0, Y: 0}},
		{"bob", domain.Coordinate{X: 1, Y: 0}},
		{"alice", domain.Coordinate{X: 0, Y: 1}},
		{"bob", domain.Coordinate{X: 1, Y: 1}},
	}

	for i, m := range moves {
		require.NoError(t, g.ApplyMove(m.player, m.cord))
		assert.Equal(t, i+1, g.MovesMade)
		assert.Equal(t, g.MovesMade, g.Board.MarkCount(), "movesMade must equal marked cells")
	}

	assert.Equal(t, domain.PlayerOne, g.CurrentPlayer)
}

func TestApplyMove_OutOfTurn(t *testing.T) {
	g := newTestGame()

	err := g.ApplyMove("bob", domain.Coordinate{X: 0, Y: 0})
	assert.ErrorIs(t, err, domain.ErrOutOfTurn)

	require.NoError(t, g.ApplyMove("alice", domain.Coordinate{X: 0, Y: 0}))

	err = g.ApplyMove("alice", domain.Coordinate{X: 1, Y: 1})
	assert.ErrorIs(t, err, domain.ErrOutOfTurn)
}

func TestApplyMove_NotAParticipant(t *testing.T) {
	g := newTestGame()

	err := g.ApplyMove("mallory", domain.Coordinate{X: 0, Y: 0})
	assert.ErrorIs(t, err, domain.ErrNotAParticipant)
}

func TestApplyMove_OutOfBounds(t *testing.T) {
	g := newTestGame()

	for _, cord := range []domain.Coordinate{
		{X: -1, Y: 0},
		{X: 0, Y: -1},
		{X: 3, Y: 0},
		{X: 0, Y: 3},
	} {
		err := g.ApplyMove("alice", cord)
		assert.ErrorIs(t, err, domain.ErrInvalidMove, "cord %+v", cord)
	}

	assert.Equal(t, 0, g.MovesMade)
}

func TestApplyMove_CellOccupied(t *testing.T) {
	g := newTestGame()

	require.NoError(t, g.ApplyMove("alice", domain.Coordinate{X: 0, Y: 0}))

	err := g.ApplyMove("bob", domain.Coordinate{X: 0, Y: 0})
	assert.ErrorIs(t, err, domain.ErrCellOccupied)

	// Rejected move must not consume bob's turn
	require.NoError(t, g.ApplyMove("bob", domain.Coordinate{X: 1, Y: 1}))
}

func TestApplyMove_WinByRow(t *testing.T) {
	g := newTestGame()

	require.NoError(t, g.ApplyMove("alice", domain.Coordinate{X: 0, Y: 0}))
	require.NoError(t, g.ApplyMove("bob", domain.Coordinate{X: 0, Y: 1}))
	require.NoError(t, g.ApplyMove("alice", domain.Coordinate{X: 1, Y: 0}))
	require.NoError(t, g.ApplyMove("bob", domain.Coordinate{X: 1, Y: 1}))
	require.NoError(t, g.ApplyMove("alice", domain.Coordinate{X: 2, Y: 0}))

	assert.Equal(t, domain.StateWon, g.State)
	assert.Equal(t, domain.PlayerOne, g.Winner)
	assert.True(t, g.IsFinished())
}

func TestApplyMove_NoMovesAfterGameOver(t *testing.T) {
	g := newTestGame()

	require.NoError(t, g.ApplyMove("alice", domain.Coordinate{X: 0, Y: 0}))
	require.NoError(t, g.ApplyMove("bob", domain.Coordinate{X: 0, Y: 1}))
	require.NoError(t, g.ApplyMove("alice", domain.Coordinate{X: 1, Y: 0}))
	require.NoError(t, g.ApplyMove("bob", domain.Coordinate{X: 1, Y: 1}))
	require.NoError(t, g.ApplyMove("alice", domain.Coordinate{X: 2, Y: 0}))
	require.Equal(t, domain.StateWon, g.State)

	err := g.ApplyMove("bob", domain.Coordinate{X: 2, Y: 2})
	assert.ErrorIs(t, err, domain.ErrGameOver)
}

func TestApplyMove_Draw(t *testing.T) {
	g := newTestGame()

	// X O X
	// X O O
	// O X X
	sequence := []struct {
		player string
		cord   domain.Coordinate
	}{
		{"alice", domain.Coordinate{X: 0, Y: 0}},
		{"bob", domain.Coordinate{X: 1, Y: 0}},
		{"alice", domain.Coordinate{X: 2, Y: 0}},
		{"bob", domain.Coordinate{X: 1, Y: 1}},
		{"alice", domain.Coordinate{X: 0, Y: 1}},
		{"bob", domain.Coordinate{X: 2, Y: 1}},
		{"alice", domain.Coordinate{X: 1, Y: 2}},
		{"bob", domain.Coordinate{X: 0, Y: 2}},
		{"alice", domain.Coordinate{X: 2, Y: 2}},
	}

	for _, m := range sequence {
		require.NoError(t, g.ApplyMove(m.player, m.cord))
	}

	assert.Equal(t, domain.StateDraw, g.State)
	assert.Equal(t, domain.Empty, g.Winner)
	assert.Equal(t, 9, g.MovesMade)
}

func TestApplyMove_Deterministic(t *testing.T) {
	run := func() *domain.GameSession {
		g := newTestGame()
		g.ApplyMove("alice", domain.Coordinate{X: 1, Y: 1})
		g.ApplyMove("bob", domain.Coordinate{X: 0, Y: 0})
		return g
	}

	first, second := run(), run()
	assert.Equal(t, first.Board, second.Board)
	assert.Equal(t, first.CurrentPlayer, second.CurrentPlayer)
	assert.Equal(t, first.MovesMade, second.MovesMade)
}

// Scripted scenario: create, join, a legal move, an occupied cell, an
// out-of-turn attempt.
func TestGameScenario(t *testing.T) {
	g := domain.NewGameSession("G1", "p1", time.Hour)
	g.PlayerTwo = "p2"

	require.NoError(t, g.ApplyMove("p1", domain.Coordinate{X: 0, Y: 0}))
	assert.Equal(t, domain.PlayerOne, g.Board.At(domain.Coordinate{X: 0, Y: 0}))
	assert.Equal(t, domain.PlayerTwo, g.CurrentPlayer)

	err := g.ApplyMove("p2", domain.Coordinate{X: 0, Y: 0})
	assert.ErrorIs(t, err, domain.ErrCellOccupied)

	err = g.ApplyMove("p1", domain.Coordinate{X: 1, Y: 1})
	assert.ErrorIs(t, err, domain.ErrOutOfTurn)
}

func TestSeatOf(t *testing.T) {
	g := domain.NewGameSession("g1", "alice", time.Hour)

	seat, ok := g.SeatOf("alice")
	assert.True(t, ok)
	assert.Equal(t, domain.PlayerOne, seat)

	// No second player yet: the empty id must not map to a seat
	_, ok = g.SeatOf("")
	assert.False(t, ok)

	g.PlayerTwo = "bob"
	seat, ok = g.SeatOf("bob")
	assert.True(t, ok)
	assert.Equal(t, domain.PlayerTwo, seat)
}
