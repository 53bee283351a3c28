package controllers

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"PetPal/middleware"
	"PetPal/pkg/logger"
	"PetPal/pkg/realtime"
	"PetPal/pkg/services"
)

func newUpgrader(allowedOrigins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// non-browser clients send no Origin
			return origin == "" || slices.Contains(allowedOrigins, origin) || slices.Contains(allowedOrigins, "*")
		},
	}
}

// ChatWS authenticates the handshake before upgrading. A failed handshake is
// a plain 401 envelope and no socket is ever opened.
func ChatWS(auth middleware.Authenticator, gw *realtime.Gateway, opts realtime.ClientOptions, allowedOrigins []string) gin.HandlerFunc {
	upgrader := newUpgrader(allowedOrigins)
	return func(c *gin.Context) {
		p, ok := middleware.Authenticate(c, auth, true)
		if !ok {
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// the upgrader has already written the HTTP error
			logger.FromContext(c.Request.Context()).Warn("ws - upgrade - failed", "error", err)
			return
		}

		client := realtime.NewClient(conn, services.NewParticipantView(p.User), opts, logger.FromContext(c.Request.Context()))
		gw.Serve(c.Request.Context(), client)
	}
}
