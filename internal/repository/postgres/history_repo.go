package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
)

type HistoryRepo struct {
	DB *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{DB: db}
}

// SaveResult archives a finished game. UPSERT so a retried move that
// re-finishes the same game does not fail.
func (r *HistoryRepo) SaveResult(g *domain.GameSession) error {
	boardJSON, err := json.Marshal(g.Board)
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %v", err)
	}

	query := `
	INSERT INTO game_history (game_id, player_one, player_two, winner, session_state, total_moves, created_at, finished_at, board_state)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (game_id) DO UPDATE SET
		winner = EXCLUDED.winner,
		session_state = EXCLUDED.session_state,
		total_moves = EXCLUDED.total_moves,
		finished_at = EXCLUDED.finished_at,
		board_state = EXCLUDED.board_state;
	`

	_, err = r.DB.Exec(query,
		g.ID, g.PlayerOne, g.PlayerTwo, int(g.Winner), string(g.State),
		g.MovesMade, g.CreatedAt, time.Now().UTC(), boardJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert game record: %v", err)
	}
	return nil
}

// ListByPlayer returns a player's most recent finished games.
func (r *HistoryRepo) ListByPlayer(playerID string, limit int) ([]domain.GameResult, error) {
	query := `
	SELECT game_id, player_one, player_two, winner, session_state, total_moves, created_at, finished_at
	FROM game_history
	WHERE player_one = $1 OR player_two = $1
	ORDER BY finished_at DESC
	LIMIT $2;
	`
	rows, err := r.DB.Query(query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %v", err)
	}
	defer rows.Close()

	var results []domain.GameResult
	for rows.Next() {
		var res domain.GameResult
		var winner int
		var state string
		if err := rows.Scan(
			&res.GameID,
			&res.PlayerOne,
			&res.PlayerTwo,
			&winner,
			&state,
			&res.TotalMoves,
			&res.CreatedAt,
			&res.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %v", err)
		}
		res.Winner = domain.Seat(winner)
		res.State = domain.SessionState(state)
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history rows: %v", err)
	}

	return results, nil
}
