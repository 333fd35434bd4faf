package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iamasit07/tic-tac-toe/backend/internal/domain"
)

const writeTimeout = 10 * time.Second

// ConnectionManager tracks live WebSocket connections by connection id
// and implements the dispatcher's push primitive.
type ConnectionManager struct {
	connections map[string]*websocket.Conn

	// writeMu ensures only one goroutine writes to a specific socket at
	// a time; gorilla's write methods are not safe for concurrent use.
	writeMu map[string]*sync.Mutex

	mu sync.RWMutex // Protects the maps themselves
}

func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*websocket.Conn),
		writeMu:     make(map[string]*sync.Mutex),
	}
}

func (cm *ConnectionManager) AddConnection(connID string, conn *websocket.Conn) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[connID] = conn
	cm.writeMu[connID] = &sync.Mutex{}
}

func (cm *ConnectionManager) RemoveConnection(connID string) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if conn, exists := cm.connections[connID]; exists {
		conn.Close()
		delete(cm.connections, connID)
		delete(cm.writeMu, connID)
	}
}

// Send delivers raw bytes to one connection. A missing or dead
// connection is reported to the caller (the dispatcher logs and moves
// on); it never panics the fan-out.
func (cm *ConnectionManager) Send(connID string, data []byte) error {
	cm.mu.RLock()
	conn, exists := cm.connections[connID]
	mu, muExists := cm.writeMu[connID]
	cm.mu.RUnlock()

	if !exists || !muExists {
		return domain.ErrConnectionGone
	}

	mu.Lock()
	defer mu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return err
	}
	return nil
}

// Ping probes a connection's liveness. WriteControl is safe to call
// concurrently with other writers, so this bypasses the write mutex.
func (cm *ConnectionManager) Ping(connID string) error {
	cm.mu.RLock()
	conn, exists := cm.connections[connID]
	cm.mu.RUnlock()

	if !exists {
		return domain.ErrConnectionGone
	}

	return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}
