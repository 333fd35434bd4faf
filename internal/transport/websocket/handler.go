package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
	"github.com/iamasit07/tic-tac-toe/backend/internal/service/dispatch"
	"github.com/iamasit07/tic-tac-toe/backend/internal/service/game"
	"github.com/iamasit07/tic-tac-toe/backend/internal/service/subscription"
	"github.com/iamasit07/tic-tac-toe/backend/pkg/uid"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager *ConnectionManager
	Games       *game.Service
	Registry    *subscription.Registry
	Dispatcher  *dispatch.Dispatcher
	Upgrader    websocket.Upgrader
}

func NewHandler(cm *ConnectionManager, gs *game.Service, reg *subscription.Registry, d *dispatch.Dispatcher) *Handler {
	return &Handler{
		ConnManager: cm,
		Games:       gs,
		Registry:    reg,
		Dispatcher:  d,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket is the HTTP handler that upgrades the connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	h.handleConnection(conn)
}

// handleConnection manages the lifecycle of a single WebSocket
// connection: the connection record is created before any message is
// read, and deleting it on exit is what feeds the disconnect cascade.
func (h *Handler) handleConnection(conn *websocket.Conn) {
	ctx := context.Background()
	connID := uid.NewID()

	if err := h.Registry.OpenConnection(ctx, connID); err != nil {
		log.Printf("[WS] Failed to register connection: %v", err)
		conn.Close()
		return
	}

	h.ConnManager.AddConnection(connID, conn)
	log.Printf("[WS] Connection %s opened", connID)

	defer func() {
		log.Printf("[WS] Connection %s closed", connID)
		h.ConnManager.RemoveConnection(connID)
		if err := h.Registry.CloseConnection(ctx, connID); err != nil {
			log.Printf("[WS] Failed to delete connection record %s: %v", connID, err)
		}
	}()

	// Set read deadline to detect stale connections
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	// Keep-alive pinger
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := h.ConnManager.Ping(connID); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] Connection %s dropped: %v", connID, err)
			}
			break
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[WS] Invalid message on %s: %v", connID, err)
			continue
		}

		h.processMessage(ctx, connID, msg)
	}
}

// processMessage decodes the payload for the tagged action, then
// dispatches on the tag.
func (h *Handler) processMessage(ctx context.Context, connID string, msg domain.ClientMessage) {
	switch msg.Action {
	case domain.ActionNewGame:
		var p domain.NewGamePayload
		if !h.decode(connID, msg, &p) {
			return
		}
		h.handleNewGame(ctx, connID, p)

	case domain.ActionJoinGame:
		var p domain.JoinGamePayload
		if !h.decode(connID, msg, &p) {
			return
		}
		h.handleJoinGame(ctx, connID, p)

	case domain.ActionMakeMove:
		var p domain.MakeMovePayload
		if !h.decode(connID, msg, &p) {
			return
		}
		h.handleMakeMove(ctx, connID, p)

	case domain.ActionGetGame:
		var p domain.GetGamePayload
		if !h.decode(connID, msg, &p) {
			return
		}
		h.handleGetGame(ctx, connID, p)

	case domain.ActionObserveGame:
		var p domain.ObserveGamePayload
		if !h.decode(connID, msg, &p) {
			return
		}
		h.handleObserveGame(ctx, connID, p)

	default:
		h.replyError(connID, msg.Action, "unknown action")
	}
}

// handleNewGame creates a game and subscribes the creator's connection
// to it, so the creator sees joins and moves without a separate
// observe call.
func (h *Handler) handleNewGame(ctx context.Context, connID string, p domain.NewGamePayload) {
	g, err := h.Games.NewGame(ctx, p.PlayerID, p.PlayerSecret)
	if err != nil {
		h.replyError(connID, domain.ActionNewGame, err.Error())
		return
	}

	if err := h.Registry.Subscribe(ctx, connID, g.ID); err != nil {
		// The game exists durably; only the watch registration failed.
		h.replyError(connID, domain.ActionNewGame, "game created but subscription failed")
		return
	}

	h.reply(connID, domain.ServerMessage{Action: domain.ActionNewGame, GameStateID: g.ID})
}

// handleJoinGame seats the joiner, subscribes their connection and
// notifies everyone already watching.
func (h *Handler) handleJoinGame(ctx context.Context, connID string, p domain.JoinGamePayload) {
	g, err := h.Games.JoinGame(ctx, p.GameStateID, p.PlayerID, p.PlayerSecret)
	if err != nil {
		h.replyError(connID, domain.ActionJoinGame, err.Error())
		return
	}

	if err := h.Registry.Subscribe(ctx, connID, g.ID); err != nil {
		h.replyError(connID, domain.ActionJoinGame, "joined but subscription failed")
		return
	}

	h.notify(ctx, g.ID, domain.ServerMessage{Action: domain.ActionJoinGame, GameState: g})
}

func (h *Handler) handleMakeMove(ctx context.Context, connID string, p domain.MakeMovePayload) {
	g, err := h.Games.MakeMove(ctx, p.GameStateID, p.PlayerID, p.PlayerSecret, p.Cord)
	if err != nil {
		h.replyError(connID, domain.ActionMakeMove, err.Error())
		return
	}

	h.notify(ctx, g.ID, domain.ServerMessage{Action: domain.ActionMakeMove, GameState: g})
}

func (h *Handler) handleGetGame(ctx context.Context, connID string, p domain.GetGamePayload) {
	g, err := h.Games.GetGame(ctx, p.GameStateID)
	if err != nil {
		h.replyError(connID, domain.ActionGetGame, err.Error())
		return
	}

	h.reply(connID, domain.ServerMessage{Action: domain.ActionGetGame, GameState: g})
}

// handleObserveGame subscribes the connection to an existing game and
// acks with the current state.
func (h *Handler) handleObserveGame(ctx context.Context, connID string, p domain.ObserveGamePayload) {
	g, err := h.Games.GetGame(ctx, p.GameStateID)
	if err != nil {
		h.replyError(connID, domain.ActionObserveGame, err.Error())
		return
	}

	if err := h.Registry.Subscribe(ctx, connID, g.ID); err != nil {
		h.replyError(connID, domain.ActionObserveGame, "failed to observe game")
		return
	}

	h.reply(connID, domain.ServerMessage{Action: domain.ActionObserveGame, GameState: g})
}

func (h *Handler) decode(connID string, msg domain.ClientMessage, out interface{}) bool {
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		h.replyError(connID, msg.Action, "invalid payload")
		return false
	}
	return true
}

// reply pushes a frame to the requesting connection only.
func (h *Handler) reply(connID string, msg domain.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := h.ConnManager.Send(connID, data); err != nil {
		log.Printf("[WS] Reply to %s failed: %v", connID, err)
	}
}

func (h *Handler) replyError(connID, action, message string) {
	h.reply(connID, domain.ServerMessage{Action: action, Message: message})
}

// notify fans out through the dispatcher. The mutation already
// succeeded; a fan-out problem is logged, never surfaced.
func (h *Handler) notify(ctx context.Context, gameID string, msg domain.ServerMessage) {
	if err := h.Dispatcher.Notify(ctx, gameID, msg); err != nil {
		log.Printf("[WS] Fan-out for game %s failed: %v", gameID, err)
	}
}
