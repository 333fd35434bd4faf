package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/tic-tac-toe/backend/internal/service/player"
)

type PlayerHandler struct {
	Players *player.Service
}

func NewPlayerHandler(players *player.Service) *PlayerHandler {
	return &PlayerHandler{Players: players}
}

// Register creates a player. The secret appears in this response and
// never again.
func (h *PlayerHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	p, err := h.Players.Register(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"playerId":     p.ID,
		"playerSecret": p.Secret,
		"username":     p.Username,
	})
}

func (h *PlayerHandler) Get(c *gin.Context) {
	p, err := h.Players.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	// The secret stays server-side.
	c.JSON(http.StatusOK, gin.H{
		"playerId": p.ID,
		"username": p.Username,
	})
}

func (h *PlayerHandler) Validate(c *gin.Context) {
	var req struct {
		PlayerID     string `json:"playerId" binding:"required"`
		PlayerSecret string `json:"playerSecret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId and playerSecret are required"})
		return
	}

	valid, err := h.Players.Validate(c.Request.Context(), req.PlayerID, req.PlayerSecret)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": valid})
}
