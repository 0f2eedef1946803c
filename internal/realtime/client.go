package realtime

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RoomAuthorizer answers whether the authenticated user may join a
// course or group room. domain.Directory satisfies it.
type RoomAuthorizer interface {
	IsGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error)
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}

// Client is one live websocket session. UserID comes from the validated
// token at upgrade time, never from the client's own messages.
type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte

	// joined room set, guarded by the hub's mutex
	rooms map[string]bool
}

func NewClient(userID uuid.UUID, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
		rooms:  make(map[string]bool),
	}
}

// Inbound client->server message shapes.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	UserID   string `json:"userId"`
	CourseID string `json:"courseId"`
	GroupID  string `json:"groupId"`
}

// ReadPump consumes join messages until the connection drops, then
// deregisters. Each join is idempotent, so a reconnecting client can
// replay its joins blindly.
func (c *Client) ReadPump(hub *Hub, auth RoomAuthorizer, logger *zap.Logger) {
	defer func() {
		hub.Deregister(c)
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("websocket closed unexpectedly", zap.String("clientID", c.ID.String()), zap.Error(err))
			}
			break
		}
		c.handleMessage(hub, auth, raw, logger)
	}
}

func (c *Client) handleMessage(hub *Hub, auth RoomAuthorizer, raw []byte, logger *zap.Logger) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.reject(hub, "malformed message")
		return
	}

	var p joinPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.reject(hub, "malformed payload")
			return
		}
	}

	ctx := context.Background()

	switch msg.Type {
	case "join_user_room":
		// A connection may only claim its own user room.
		userID, err := uuid.Parse(p.UserID)
		if err != nil || userID != c.UserID {
			c.reject(hub, "cannot join another user's room")
			return
		}
		hub.Join(c, UserRoom(userID))

	case "join_course_room":
		courseID, err := uuid.Parse(p.CourseID)
		if err != nil {
			c.reject(hub, "invalid course id")
			return
		}
		enrolled, err := auth.IsEnrolled(ctx, c.UserID, courseID)
		if err != nil {
			logger.Error("enrollment check failed", zap.String("userID", c.UserID.String()), zap.Error(err))
			c.reject(hub, "could not verify enrollment")
			return
		}
		if !enrolled {
			c.reject(hub, "not enrolled in course")
			return
		}
		hub.Join(c, CourseRoom(courseID))

	case "join_group_room":
		groupID, err := uuid.Parse(p.GroupID)
		if err != nil {
			c.reject(hub, "invalid group id")
			return
		}
		member, err := auth.IsGroupMember(ctx, c.UserID, groupID)
		if err != nil {
			logger.Error("group membership check failed", zap.String("userID", c.UserID.String()), zap.Error(err))
			c.reject(hub, "could not verify group membership")
			return
		}
		if !member {
			c.reject(hub, "not a member of group")
			return
		}
		hub.Join(c, GroupRoom(groupID))

	case "join_support":
		hub.Join(c, SupportRoom)
		hub.EmitTo(c, Event{
			Type:    "support_joined",
			Payload: map[string]string{"message": "support connection established"},
		})

	case "leave_support":
		hub.Leave(c, SupportRoom)

	default:
		c.reject(hub, "unknown message type")
	}
}

func (c *Client) reject(hub *Hub, reason string) {
	hub.EmitTo(c, Event{
		Type:    "error",
		Payload: map[string]string{"message": reason},
	})
}

// WritePump drains the send channel onto the wire, folding queued messages
// into one websocket frame when the client falls behind.
func (c *Client) WritePump() {
	defer func() {
		c.Conn.Close()
	}()

	for message := range c.Send {
		w, err := c.Conn.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)

		n := len(c.Send)
		for i := 0; i < n; i++ {
			w.Write([]byte{'\n'})
			w.Write(<-c.Send)
		}

		if err := w.Close(); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
