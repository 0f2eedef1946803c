package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/learnhub/backend/internal/middleware"
	"github.com/learnhub/backend/internal/realtime"
	"github.com/learnhub/backend/pkg/response"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for now (adjust for production)
	},
}

// WebSocketHandler upgrades authenticated requests and attaches them to
// the realtime hub.
type WebSocketHandler struct {
	hub    *realtime.Hub
	auth   realtime.RoomAuthorizer
	logger *zap.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, auth realtime.RoomAuthorizer, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hub,
		auth:   auth,
		logger: logger,
	}
}

// Handle upgrades the HTTP connection to a websocket. Room joins happen
// afterwards via the membership protocol; the connection starts with an
// empty room set.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "not authenticated")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(userID, conn)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(h.hub, h.auth, h.logger)
}
