package postgres

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS game_history (
	game_id       TEXT PRIMARY KEY,
	player_one    TEXT NOT NULL,
	player_two    TEXT NOT NULL DEFAULT '',
	winner        INT NOT NULL DEFAULT 0,
	session_state TEXT NOT NULL,
	total_moves   INT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL,
	board_state   JSONB
);

CREATE INDEX IF NOT EXISTS idx_game_history_player_one ON game_history (player_one);
CREATE INDEX IF NOT EXISTS idx_game_history_player_two ON game_history (player_two);
`

// RunMigrations initializes the archive schema.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %v", err)
	}
	return nil
}
