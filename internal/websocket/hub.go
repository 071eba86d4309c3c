package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"hazard-watch/internal/store"
)

// Hub maintains the set of active clients and pushes report aggregate
// changes to them, so tallies move live in the app without polling.
type Hub struct {
	// Registered clients. Maps user email to a set of active connections.
	Clients map[string]map[*Client]bool

	// Outbound messages fanned out to every client.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Mutex to protect concurrent access to the clients map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[string]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket Hub started.")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Clients[client.UserEmail]; !ok {
				h.Clients[client.UserEmail] = make(map[*Client]bool)
			}
			h.Clients[client.UserEmail][client] = true
			log.Printf("WebSocket client registered for %s. Connections for user: %d",
				client.UserEmail, len(h.Clients[client.UserEmail]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.Clients[client.UserEmail]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					if len(userClients) == 0 {
						delete(h.Clients, client.UserEmail)
					}
					log.Printf("WebSocket client unregistered for %s", client.UserEmail)
				}
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.RLock()
			for _, userClients := range h.Clients {
				for client := range userClients {
					select {
					case client.Send <- message:
					default:
						log.Printf("Broadcast send buffer full for client of %s", client.UserEmail)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// WatchReports subscribes the hub to report writes in the store and
// returns the cancel function. Every vote or new report reaches
// connected clients as a {path, document} envelope.
func (h *Hub) WatchReports(s store.Store) (func(), error) {
	return s.Subscribe(store.CollectionPosts, func(path string, doc map[string]interface{}) {
		payload, err := json.Marshal(map[string]interface{}{
			"path":     path,
			"document": doc,
		})
		if err != nil {
			log.Printf("Failed to encode report update for %s: %v", path, err)
			return
		}
		select {
		case h.Broadcast <- payload:
		default:
			log.Printf("Hub broadcast queue full, dropping update for %s", path)
		}
	})
}
