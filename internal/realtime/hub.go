package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event is the wire shape of every server->client message.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub is the process-wide connection registry: the live mapping from room
// name to the set of connected clients. It is constructed once at startup
// and injected wherever it is needed; there is no package-level instance.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool
	rooms   map[string]map[*Client]bool
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		rooms:   make(map[string]map[*Client]bool),
		logger:  logger,
	}
}

// Register attaches a new connection with an empty room set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	connectionsGauge.Inc()
	h.logger.Debug("client registered",
		zap.String("clientID", c.ID.String()),
		zap.String("userID", c.UserID.String()),
	)
}

// Deregister removes the connection from every room it joined and closes
// its send channel. Called exactly once per connection, from ReadPump's
// deferred cleanup, so an abnormal network drop deregisters the same way a
// clean close does. A second call is a no-op.
func (h *Hub) Deregister(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for room := range c.rooms {
		h.removeFromRoomLocked(c, room)
	}
	close(c.Send)
	h.mu.Unlock()
	connectionsGauge.Dec()
	h.logger.Debug("client unregistered",
		zap.String("clientID", c.ID.String()),
		zap.String("userID", c.UserID.String()),
	)
}

// Join adds the connection to a room. Idempotent; joining twice is a no-op.
// The connection becomes a delivery target for the room immediately.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
	c.rooms[room] = true
}

// Leave removes the connection from a room. Leaving a room the connection
// never joined is a no-op.
func (h *Hub) Leave(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeFromRoomLocked(c, room)
}

func (h *Hub) removeFromRoomLocked(c *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

// membersOf returns a snapshot of the room's members. Internal to the
// package; publishers go through the emit methods.
func (h *Hub) membersOf(room string) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := make([]*Client, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		members = append(members, c)
	}
	return members
}

// EmitToRoom sends an event to every current member of a room. Delivery is
// fire-and-forget; a member deregistering concurrently may simply miss the
// event.
func (h *Hub) EmitToRoom(room string, event Event) {
	h.emit(h.membersOf(room), event)
}

// EmitAll sends an event to every open connection.
func (h *Hub) EmitAll(event Event) {
	h.mu.RLock()
	all := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		all = append(all, c)
	}
	h.mu.RUnlock()
	h.emit(all, event)
}

// EmitTo sends an event to a single client.
func (h *Hub) EmitTo(c *Client, event Event) {
	h.emit([]*Client{c}, event)
}

func (h *Hub) emit(targets []*Client, event Event) {
	if len(targets) == 0 {
		return
	}
	msg, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.String("event", event.Type), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range targets {
		if !h.clients[c] {
			continue
		}
		select {
		case c.Send <- msg:
			messagesTotal.WithLabelValues(event.Type).Inc()
		default:
			// Buffer full; the client is dead or hopelessly behind. The
			// durable store covers what it misses.
			h.logger.Debug("dropping event for slow client", zap.String("clientID", c.ID.String()))
		}
	}
}
