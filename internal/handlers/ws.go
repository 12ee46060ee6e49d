package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"clicker-backend/internal/middleware"
	"clicker-backend/internal/services"
	"clicker-backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	hub         *ws.Hub
	coordinator *services.PressCoordinator
	resolver    middleware.Authenticator
}

func NewWSHandler(hub *ws.Hub, coordinator *services.PressCoordinator, resolver middleware.Authenticator) *WSHandler {
	return &WSHandler{hub: hub, coordinator: coordinator, resolver: resolver}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type inboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleWebSocket godoc
// @Summary      Live click channel
// @Description  Connect via WebSocket; send hello/press/set_name events, receive stats/you/error_msg
// @Tags         websocket
// @Router       /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	// Identity comes from the session cookie on the upgrade request; an
	// anonymous connection may watch but not press.
	userID, _ := h.resolver.Resolve(c.Request)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	connID := uuid.NewString()
	h.hub.Add(connID, conn)
	defer func() {
		h.hub.Remove(connID)
		h.coordinator.Disconnect(connID)
	}()

	// Events from one connection dispatch in arrival order; a bad event
	// costs this connection an error_msg, never the process.
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var evt inboundEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			h.hub.SendTo(connID, ws.Message{Type: services.EventError, Data: "malformed event"})
			continue
		}

		switch evt.Type {
		case "hello":
			h.coordinator.HandleHello(connID, userID)
		case "press":
			h.coordinator.HandlePress(connID, userID)
		case "set_name":
			var name string
			if err := json.Unmarshal(evt.Data, &name); err != nil {
				h.hub.SendTo(connID, ws.Message{Type: services.EventError, Data: "malformed event"})
				continue
			}
			h.coordinator.HandleSetName(connID, userID, name)
		default:
			h.hub.SendTo(connID, ws.Message{Type: services.EventError, Data: "unknown event"})
		}
	}
}
