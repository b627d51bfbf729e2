package services

import (
	"log"
	"sync"

	"patternhub/internal/models"
)

// ConnectionManager manages all active WebSocket connections
type ConnectionManager struct {
	connections map[string]*models.ClientConnection
	mutex       sync.RWMutex
}

// NewConnectionManager creates a new connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*models.ClientConnection),
	}
}

// Add adds a new connection
func (cm *ConnectionManager) Add(conn *models.ClientConnection) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.connections[conn.ConnID] = conn
	log.Printf("✅ Connection added: %s (Total: %d)", conn.ConnID, len(cm.connections))
}

// Remove removes a connection
func (cm *ConnectionManager) Remove(connID string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.connections, connID)
	log.Printf("👋 Connection removed: %s (Total: %d)", connID, len(cm.connections))
}

// Count returns the number of active connections
func (cm *ConnectionManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.connections)
}

// Broadcast sends a message to every connected client. Dead connections are
// skipped; the read loop is responsible for removing them.
func (cm *ConnectionManager) Broadcast(msg models.ServerMessage) {
	cm.mutex.RLock()
	conns := make([]*models.ClientConnection, 0, len(cm.connections))
	for _, c := range cm.connections {
		conns = append(conns, c)
	}
	cm.mutex.RUnlock()

	for _, c := range conns {
		if err := c.Send(msg); err != nil {
			log.Printf("⚠️  Failed to broadcast to %s: %v", c.ConnID, err)
		}
	}
}
