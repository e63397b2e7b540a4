package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glowfit-dev/glowfit/internal/types"
	"github.com/glowfit-dev/glowfit/internal/utils"
	"github.com/glowfit-dev/glowfit/internal/ws"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	logger *zap.Logger
}

func NewWSHandler(logger *zap.Logger) *WSHandler {
	return &WSHandler{logger: logger}
}

// Connect upgrades the request and registers the connection for live
// notification pushes until the client goes away.
func (h *WSHandler) Connect(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		types.Unauthorized(ctx)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		h.logger.Warn("ws_upgrade_failed", zap.Error(err))
		return
	}

	conn.SetReadLimit(ws.MaxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(ws.PongWait)); err != nil {
		h.logger.Warn("ws_read_deadline_failed", zap.Error(err))
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(ws.PongWait))
	})

	ws.Register(userID, conn)

	defer func() {
		ws.Unregister(userID, conn)
		conn.Close()
		h.logger.Info("ws_closed", zap.Uint("user_id", userID))
	}()

	if err := conn.SetWriteDeadline(time.Now().Add(ws.WriteWait)); err != nil {
		return
	}

	if err := conn.WriteJSON(map[string]string{"type": "connected"}); err != nil {
		h.logger.Warn("ws_welcome_failed", zap.Error(err))
		return
	}

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	go func() {
		for range ticker.C {
			if err := conn.SetWriteDeadline(time.Now().Add(ws.WriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(ws.PongWait)); err != nil {
			break
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("ws_read_failed", zap.Uint("user_id", userID), zap.Error(err))
			}
			break
		}
	}
}
