package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mossy-p/rendezvous/internal/signaling"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Origin checking is handled by the OriginFilter middleware.
		return true
	},
}

// ServeSignaling upgrades the request to a websocket and hands the
// connection to the hub. The room is not part of the URL: clients
// declare it in their join message, as every frame carries the room id.
func ServeSignaling(hub *signaling.Hub, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := signaling.NewClient(hub, conn, log)
		log.Debug().Str("conn", client.ID()).Str("remote", conn.RemoteAddr().String()).
			Msg("signaling connection opened")

		go client.WritePump()
		go client.ReadPump()
	}
}
