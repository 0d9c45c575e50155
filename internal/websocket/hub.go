package websocket

import (
	"encoding/json"
	"sync"

	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
)

// TallyUpdate is pushed to every watcher of a battle when its vote counts
// or status change.
type TallyUpdate struct {
	Type     string      `json:"type"` // tally or status
	BattleID uint        `json:"battle_id"`
	Payload  interface{} `json:"payload"`
}

// Client is one WebSocket subscriber watching a single battle.
type Client struct {
	Hub      *Hub
	Conn     *Conn
	UserID   uint
	BattleID uint
	Send     chan []byte
}

// Hub fans battle updates out to subscribed clients. Rooms are keyed by
// battle ID; a client belongs to exactly one room.
type Hub struct {
	rooms map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *roomMessage

	mu sync.RWMutex
}

type roomMessage struct {
	battleID uint
	message  []byte
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *roomMessage, 1024),
	}
}

// Run processes register, unregister and broadcast events. Call it once
// from a goroutine at startup.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.BattleID]; !ok {
				h.rooms[client.BattleID] = make(map[*Client]bool)
			}
			h.rooms[client.BattleID][client] = true
			watchers := len(h.rooms[client.BattleID])
			h.mu.Unlock()

			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":   client.UserID,
				"battle_id": client.BattleID,
				"watchers":  watchers,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.BattleID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(h.rooms, client.BattleID)
					}
				}
			}
			h.mu.Unlock()

			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id":   client.UserID,
				"battle_id": client.BattleID,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.rooms[message.battleID] {
				select {
				case client.Send <- message.message:
				default:
					// Send buffer full; drop the client asynchronously so
					// the broadcast loop never blocks.
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id":   client.UserID,
						"battle_id": client.BattleID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to its battle room.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastTally pushes an update to everyone watching a battle.
func (h *Hub) BroadcastTally(battleID uint, update TallyUpdate) {
	message, err := json.Marshal(update)
	if err != nil {
		logger.Error("Failed to marshal tally update", err, map[string]interface{}{
			"battle_id": battleID,
		})
		return
	}

	h.broadcast <- &roomMessage{
		battleID: battleID,
		message:  message,
	}
}

// Watchers reports how many clients are subscribed to a battle.
func (h *Hub) Watchers(battleID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[battleID])
}
