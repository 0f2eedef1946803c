package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NotificationEvent is the transient value producers hand to the delivery
// service. It is never stored; the durable record is one Notification row
// per resolved recipient.
type NotificationEvent struct {
	// Target selectors. All that are set apply.
	UserIDs   []uuid.UUID
	CourseID  *uuid.UUID
	GroupID   *uuid.UUID
	Broadcast bool

	Title     string
	Message   string
	Type      string
	Link      *string
	EmittedAt time.Time
}

// HasTarget reports whether at least one addressing dimension is set.
func (e *NotificationEvent) HasTarget() bool {
	return len(e.UserIDs) > 0 || e.CourseID != nil || e.GroupID != nil || e.Broadcast
}

// Validate rejects the event before any side effect takes place.
func (e *NotificationEvent) Validate() error {
	if !e.HasTarget() {
		return ErrNoTarget
	}
	if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Message) == "" {
		return ErrEmptyContent
	}
	return nil
}
