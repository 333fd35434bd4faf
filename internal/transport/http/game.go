package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
	"github.com/iamasit07/tic-tac-toe/backend/internal/service/game"
)

type GameHandler struct {
	Games *game.Service
}

func NewGameHandler(games *game.Service) *GameHandler {
	return &GameHandler{Games: games}
}

func (h *GameHandler) NewGame(c *gin.Context) {
	var req struct {
		PlayerID     string `json:"playerId" binding:"required"`
		PlayerSecret string `json:"playerSecret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId and playerSecret are required"})
		return
	}

	g, err := h.Games.NewGame(c.Request.Context(), req.PlayerID, req.PlayerSecret)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"gameStateId": g.ID})
}

func (h *GameHandler) JoinGame(c *gin.Context) {
	var req struct {
		PlayerID     string `json:"playerId" binding:"required"`
		PlayerSecret string `json:"playerSecret" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId and playerSecret are required"})
		return
	}

	g, err := h.Games.JoinGame(c.Request.Context(), c.Param("id"), req.PlayerID, req.PlayerSecret)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"gameState": g})
}

func (h *GameHandler) MakeMove(c *gin.Context) {
	var req struct {
		PlayerID     string            `json:"playerId" binding:"required"`
		PlayerSecret string            `json:"playerSecret" binding:"required"`
		Cord         domain.Coordinate `json:"cord"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "playerId, playerSecret and cord are required"})
		return
	}

	g, err := h.Games.MakeMove(c.Request.Context(), c.Param("id"), req.PlayerID, req.PlayerSecret, req.Cord)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"gameState": g})
}

func (h *GameHandler) GetGame(c *gin.Context) {
	g, err := h.Games.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"gameState": g})
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionFull), errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrGameOver),
		errors.Is(err, domain.ErrNotAParticipant),
		errors.Is(err, domain.ErrOutOfTurn),
		errors.Is(err, domain.ErrInvalidMove),
		errors.Is(err, domain.ErrCellOccupied):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
