package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Per-user connection registry. A user may hold several connections
// (multiple tabs); every one receives each pushed notification.
var (
	userClients   = make(map[uint]map[*websocket.Conn]bool)
	userClientsMu sync.RWMutex
)

const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 512
)

func Register(userID uint, conn *websocket.Conn) {
	userClientsMu.Lock()
	if userClients[userID] == nil {
		userClients[userID] = make(map[*websocket.Conn]bool)
	}
	userClients[userID][conn] = true
	userClientsMu.Unlock()
}

func Unregister(userID uint, conn *websocket.Conn) {
	userClientsMu.Lock()

	if clients, exists := userClients[userID]; exists {
		delete(clients, conn)

		if len(clients) == 0 {
			delete(userClients, userID)
		}
	}

	userClientsMu.Unlock()
}

// Push sends a JSON payload to every connection of one user. Dead
// connections are dropped from the registry.
func Push(logger *zap.Logger, userID uint, payload any) {
	userClientsMu.RLock()
	clients, exists := userClients[userID]
	if !exists || len(clients) == 0 {
		userClientsMu.RUnlock()
		return
	}

	clientsCopy := make([]*websocket.Conn, 0, len(clients))
	for conn := range clients {
		clientsCopy = append(clientsCopy, conn)
	}
	userClientsMu.RUnlock()

	for _, conn := range clientsCopy {
		if err := conn.SetWriteDeadline(time.Now().Add(WriteWait)); err != nil {
			logger.Warn("ws_write_deadline_failed", zap.Error(err))
			continue
		}

		if err := conn.WriteJSON(payload); err != nil {
			logger.Warn("ws_push_failed", zap.Uint("user_id", userID), zap.Error(err))
			Unregister(userID, conn)
			conn.Close()
		}
	}
}
