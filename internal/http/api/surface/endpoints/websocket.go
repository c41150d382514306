// Surfaces (operator console, presenter view, floating mini-view) attach here
// and receive the owning controller's snapshot stream. No surface keeps its
// own clock; they all render the same snapshots in the same order.
package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/CuelineHQ/cueline/internal/http/api"
	"github.com/CuelineHQ/cueline/internal/playback"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var surfaceRoles = map[string]bool{
	"operator":  true,
	"presenter": true,
	"miniview":  true,
}

// SurfaceModule mounts the websocket attachment endpoint.
func SurfaceModule(manager *playback.Manager) api.Module {
	return api.ModuleFunc(func(c *api.Controller) {
		c.RAW_GET("/rundowns/:id/ws", surfaceSocket(manager))
	})
}

func surfaceSocket(manager *playback.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		role := c.DefaultQuery("role", "operator")
		if !surfaceRoles[role] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
			return
		}

		ctl, ok := manager.Get(id)
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "rundown is not active"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error().Err(err).Msg("[surface] websocket upgrade failed")
			return
		}

		subID, snapshots := ctl.Subscribe()
		log.Info().Int("rundown_id", id).Str("role", role).Msg("[surface] attached")

		defer func() {
			ctl.Unsubscribe(subID)
			conn.Close()
			log.Info().Int("rundown_id", id).Str("role", role).Msg("[surface] detached")
		}()

		// Current state first, then the live stream.
		if err := conn.WriteJSON(ctl.Snapshot()); err != nil {
			return
		}

		// Reader goroutine: surfaces never send anything meaningful, but the
		// read loop is what notices a dropped connection.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-closed:
				return
			case snap, ok := <-snapshots:
				if !ok {
					// Controller closed (rundown deactivated or deleted).
					return
				}
				if err := conn.WriteJSON(snap); err != nil {
					return
				}
			}
		}
	}
}
