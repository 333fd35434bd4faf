package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/tic-tac-toe/backend/internal/repository/postgres"
)

const defaultHistoryLimit = 20

type HistoryHandler struct {
	Repo *postgres.HistoryRepo
}

func NewHistoryHandler(repo *postgres.HistoryRepo) *HistoryHandler {
	return &HistoryHandler{Repo: repo}
}

// GetHistory lists a player's recent finished games from the archive.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	playerID := c.Param("playerId")

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	results, err := h.Repo.ListByPlayer(playerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"games": results})
}
