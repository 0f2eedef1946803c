package realtime

import (
	"time"

	"go.uber.org/zap"

	"github.com/learnhub/backend/internal/domain"
)

// Push event names, per addressing dimension.
const (
	EventNewNotification    = "new_notification"
	EventCourseNotification = "new_course_notification"
	EventGroupNotification  = "new_group_notification"
	EventGlobalNotification = "global_notification"
)

type notificationPayload struct {
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Type      string  `json:"type"`
	Link      *string `json:"link,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// Publisher pushes already-persisted notification events to live
// connections. Fire-and-forget: no retries, no acknowledgements. Clients
// that are offline catch up from the durable store.
type Publisher struct {
	hub    *Hub
	logger *zap.Logger
}

func NewPublisher(hub *Hub, logger *zap.Logger) *Publisher {
	return &Publisher{hub: hub, logger: logger}
}

// Publish fans the event out to every room implied by its targets. All
// matching dimensions are emitted; the global push happens only when no
// dimension matched.
func (p *Publisher) Publish(ev *domain.NotificationEvent) {
	if p == nil || p.hub == nil {
		return
	}

	emitted := ev.EmittedAt
	if emitted.IsZero() {
		emitted = time.Now()
	}
	payload := notificationPayload{
		Title:     ev.Title,
		Message:   ev.Message,
		Type:      ev.Type,
		Link:      ev.Link,
		Timestamp: emitted.UTC().Format(time.RFC3339),
	}

	matched := false
	for _, userID := range ev.UserIDs {
		p.hub.EmitToRoom(UserRoom(userID), Event{Type: EventNewNotification, Payload: payload})
		matched = true
	}
	if ev.CourseID != nil {
		p.hub.EmitToRoom(CourseRoom(*ev.CourseID), Event{Type: EventCourseNotification, Payload: payload})
		matched = true
	}
	if ev.GroupID != nil {
		p.hub.EmitToRoom(GroupRoom(*ev.GroupID), Event{Type: EventGroupNotification, Payload: payload})
		matched = true
	}
	if !matched {
		p.hub.EmitAll(Event{Type: EventGlobalNotification, Payload: payload})
	}

	p.logger.Debug("published notification event", zap.String("type", ev.Type), zap.Bool("roomTargeted", matched))
}
