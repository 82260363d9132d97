package chat

import (
	"net/http"

	"github.com/Srujan253/Gupshup/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow CORS for demo; tighten in prod.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RegisterWS mounts GET /ws for authenticated clients.
// Auth works via:
// 1) Cookie: jwt=<JWT>
// 2) Header: Authorization: Bearer <JWT>
// 3) Query:  ?token=<JWT>
//
// A bad credential closes the request before the upgrade, so an
// unauthenticated peer never touches the presence registry.
func RegisterWS(rg *gin.RouterGroup, hub *Hub, jwtSecret string) {
	rg.GET("/ws", func(c *gin.Context) {
		uid, err := auth.Resolve(jwtSecret, auth.TokenFromRequest(c))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := NewClient(hub, conn, uuid.NewString(), uid)
		hub.register <- client

		go client.writePump()
		go client.readPump()
	})
}
