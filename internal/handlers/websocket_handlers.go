package handlers

import (
	"log"
	"net/http"

	"hazard-watch/internal/middleware"
	"hazard-watch/internal/websocket"

	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to config.AllowedOrigins
		return true
	},
}

// HandleWebSocket upgrades a connection for live report updates.
// Browsers cannot set headers on websocket requests, so the JWT arrives
// as a query parameter.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			http.Error(w, "Missing authentication token", http.StatusUnauthorized)
			return
		}

		claims, err := middleware.ValidateToken(tokenString)
		if err != nil {
			log.Printf("WebSocket connection failed: Invalid token: %v", err)
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("WebSocket upgrade failed for %s: %v", claims.Email, err)
			return
		}

		client := &websocket.Client{
			Hub:       s.Hub,
			UserEmail: claims.Email,
			Conn:      conn,
			Send:      make(chan []byte, 256),
		}
		client.Hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	}
}
