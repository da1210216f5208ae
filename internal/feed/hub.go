package feed

// ============================================================================
// LIVE COMPLAINT FEED - WEBSOCKET HUB
// ============================================================================
// Empuja reclamos nuevos y cambios de estado a los dashboards de
// municipalidad conectados, en vez de que el frontend haga polling.

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/Koushikkumar2005a/Clean-City-Reporter/internal/models"
	"github.com/gofiber/websocket/v2"
)

// Hub maneja las conexiones WebSocket de los dashboards
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.RWMutex
}

var defaultHub *Hub

func init() {
	defaultHub = &Hub{
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		clients:    make(map[*websocket.Conn]bool),
	}
	go defaultHub.run()
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("🔌 Dashboard conectado. Total clientes: %d", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("🔌 Dashboard desconectado. Total clientes: %d", total)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					log.Printf("Error enviando mensaje al dashboard: %v", err)
					client.Close()
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// HandleConn maneja una conexión WebSocket de Fiber hasta que el cliente corta.
func HandleConn(conn *websocket.Conn) {
	defaultHub.register <- conn

	defer func() {
		defaultHub.unregister <- conn
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// event es el sobre que viaja por el feed
type event struct {
	Type      string            `json:"type"`
	Complaint *models.Complaint `json:"complaint"`
}

func publish(eventType string, complaint *models.Complaint) {
	defaultHub.mu.RLock()
	empty := len(defaultHub.clients) == 0
	defaultHub.mu.RUnlock()
	if empty {
		return // No hay clientes conectados
	}

	data, err := json.Marshal(event{Type: eventType, Complaint: complaint})
	if err != nil {
		log.Printf("Error al serializar evento del feed: %v", err)
		return
	}

	select {
	case defaultHub.broadcast <- data:
	default:
		// Canal lleno, saltar mensaje
	}
}

// PublishNewComplaint anuncia un reclamo recién registrado.
func PublishNewComplaint(complaint *models.Complaint) {
	publish("complaint_created", complaint)
}

// PublishStatusChange anuncia un cambio de estado de un reclamo.
func PublishStatusChange(complaint *models.Complaint) {
	publish("complaint_status_changed", complaint)
}
