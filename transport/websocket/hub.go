package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gbr5/bloqueio-server/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Clients are served from arbitrary origins; the session token,
		// not the origin, is the authorization boundary.
		return true
	},
}

// Message is one WebSocket frame sent to room subscribers.
type Message struct {
	RoomCode string                `json:"room_code"`
	Event    string                `json:"event"`
	Snapshot *service.RoomSnapshot `json:"snapshot,omitempty"`
}

// Client is one connected subscriber.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	roomCode string
}

// Hub maintains the set of active clients per room and broadcasts
// snapshots to them.
type Hub struct {
	// Registered clients by room code.
	rooms map[string]map[*Client]bool

	// Outbound snapshots queued by the service.
	broadcast chan *Message

	// Register requests from clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client
}

// NewHub creates a hub; call Run in a goroutine before serving clients.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades an HTTP request into a room subscription.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, roomCode string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, 256),
		roomCode: roomCode,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastRoom queues a snapshot for every subscriber of the room. It
// is the service.Broadcaster hook and safe to call from any goroutine.
func (h *Hub) BroadcastRoom(roomCode string, snapshot *service.RoomSnapshot) {
	h.broadcast <- &Message{
		RoomCode: roomCode,
		Event:    "state_update",
		Snapshot: snapshot,
	}
}

// registerClient adds a client to its room.
func (h *Hub) registerClient(client *Client) {
	if h.rooms[client.roomCode] == nil {
		h.rooms[client.roomCode] = make(map[*Client]bool)
	}
	h.rooms[client.roomCode][client] = true

	log.Printf("Client registered for room %s (total clients: %d)",
		client.roomCode, len(h.rooms[client.roomCode]))
}

// unregisterClient removes a client from its room.
func (h *Hub) unregisterClient(client *Client) {
	if clients, ok := h.rooms[client.roomCode]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.send)

			// Clean up empty rooms.
			if len(clients) == 0 {
				delete(h.rooms, client.roomCode)
			}

			log.Printf("Client unregistered from room %s (remaining clients: %d)",
				client.roomCode, len(clients))
		}
	}
}

// broadcastMessage fans a message out to every client in its room.
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal broadcast message: %v", err)
		return
	}

	if clients, ok := h.rooms[message.RoomCode]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				// Client's send channel is full, drop it.
				h.unregisterClient(client)
			}
		}
	}
}

// readPump drains the connection so pings/pongs flow; inbound frames
// carry no commands — all writes go through the REST API.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps queued messages to the connection and keeps it alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Fold queued messages into the same frame.
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
