package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnhub/backend/internal/domain"
)

func decodePayload(t *testing.T, ev Event) notificationPayload {
	t.Helper()
	raw, err := json.Marshal(ev.Payload)
	require.NoError(t, err)
	var p notificationPayload
	require.NoError(t, json.Unmarshal(raw, &p))
	return p
}

func TestPublishToUserRoom(t *testing.T) {
	hub := NewHub(zap.NewNop())
	pub := NewPublisher(hub, zap.NewNop())

	userID := uuid.New()
	joined := newTestClient()
	bystander := newTestClient()
	hub.Register(joined)
	hub.Register(bystander)
	hub.Join(joined, UserRoom(userID))

	pub.Publish(&domain.NotificationEvent{
		UserIDs:   []uuid.UUID{userID},
		Title:     "T",
		Message:   "M",
		Type:      domain.TypeInfo,
		EmittedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})

	ev := recvEvent(t, joined)
	assert.Equal(t, EventNewNotification, ev.Type)
	p := decodePayload(t, ev)
	assert.Equal(t, "T", p.Title)
	assert.Equal(t, "M", p.Message)
	assert.Equal(t, domain.TypeInfo, p.Type)
	assert.Equal(t, "2026-03-01T12:00:00Z", p.Timestamp)

	// No global fallback when a room matched.
	assertNoEvent(t, bystander)
}

func TestPublishAllMatchingDimensions(t *testing.T) {
	hub := NewHub(zap.NewNop())
	pub := NewPublisher(hub, zap.NewNop())

	userID := uuid.New()
	courseID := uuid.New()
	inUserRoom := newTestClient()
	inCourseRoom := newTestClient()
	hub.Register(inUserRoom)
	hub.Register(inCourseRoom)
	hub.Join(inUserRoom, UserRoom(userID))
	hub.Join(inCourseRoom, CourseRoom(courseID))

	pub.Publish(&domain.NotificationEvent{
		UserIDs:  []uuid.UUID{userID},
		CourseID: &courseID,
		Title:    "T",
		Message:  "M",
	})

	assert.Equal(t, EventNewNotification, recvEvent(t, inUserRoom).Type)
	assert.Equal(t, EventCourseNotification, recvEvent(t, inCourseRoom).Type)
}

func TestPublishGroupRoom(t *testing.T) {
	hub := NewHub(zap.NewNop())
	pub := NewPublisher(hub, zap.NewNop())

	groupID := uuid.New()
	member := newTestClient()
	hub.Register(member)
	hub.Join(member, GroupRoom(groupID))

	pub.Publish(&domain.NotificationEvent{GroupID: &groupID, Title: "T", Message: "M"})

	assert.Equal(t, EventGroupNotification, recvEvent(t, member).Type)
}

func TestPublishBroadcastGoesGlobal(t *testing.T) {
	hub := NewHub(zap.NewNop())
	pub := NewPublisher(hub, zap.NewNop())

	a := newTestClient()
	b := newTestClient()
	hub.Register(a)
	hub.Register(b)

	pub.Publish(&domain.NotificationEvent{Broadcast: true, Title: "T", Message: "M"})

	assert.Equal(t, EventGlobalNotification, recvEvent(t, a).Type)
	assert.Equal(t, EventGlobalNotification, recvEvent(t, b).Type)
}

func TestPublishWithoutHubIsNoop(t *testing.T) {
	pub := NewPublisher(nil, zap.NewNop())
	pub.Publish(&domain.NotificationEvent{Broadcast: true, Title: "T", Message: "M"})

	var nilPub *Publisher
	nilPub.Publish(&domain.NotificationEvent{Broadcast: true, Title: "T", Message: "M"})
}

func TestPublishFillsTimestampWhenUnset(t *testing.T) {
	hub := NewHub(zap.NewNop())
	pub := NewPublisher(hub, zap.NewNop())

	c := newTestClient()
	hub.Register(c)

	pub.Publish(&domain.NotificationEvent{Broadcast: true, Title: "T", Message: "M"})

	p := decodePayload(t, recvEvent(t, c))
	parsed, err := time.Parse(time.RFC3339, p.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, 5*time.Second)
}
