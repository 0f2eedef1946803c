package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher is the live-push side of delivery. Implementations must
// be fire-and-forget; Publish never reports failure because durability
// does not depend on it.
type EventPublisher interface {
	Publish(ev *NotificationEvent)
}

// UnreadCache is an optional read-through cache for unread badge counts.
type UnreadCache interface {
	Get(ctx context.Context, userID uuid.UUID) (int, bool)
	Set(ctx context.Context, userID uuid.UUID, count int)
	Invalidate(ctx context.Context, userIDs ...uuid.UUID)
}

// NotificationService is the single entry point for notification delivery
// and reads. Every producer goes through Deliver, which enforces
// persist-before-push: the durable rows are written first, and only then
// is the event handed to the publisher.
type NotificationService struct {
	repo      NotificationRepository
	directory Directory
	publisher EventPublisher
	unread    UnreadCache
	logger    *zap.Logger
}

func NewNotificationService(repo NotificationRepository, directory Directory, publisher EventPublisher, unread UnreadCache, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		directory: directory,
		publisher: publisher,
		unread:    unread,
		logger:    logger,
	}
}

// Deliver validates the event, resolves its recipients, persists one row
// per recipient, and pushes to the matching rooms. It returns the number
// of recipients persisted.
//
// If persistence fails the whole call fails and nothing is pushed; a
// pushed-but-unrecorded notification would vanish on refresh. A missing or
// empty realtime layer is not an error.
func (s *NotificationService) Deliver(ctx context.Context, ev *NotificationEvent) (int, error) {
	if err := ev.Validate(); err != nil {
		return 0, err
	}
	ev.Type = NormalizeType(ev.Type)
	if ev.EmittedAt.IsZero() {
		ev.EmittedAt = time.Now().UTC()
	}

	recipients, err := s.resolveRecipients(ctx, ev)
	if err != nil {
		return 0, fmt.Errorf("resolve recipients: %w", err)
	}

	count, err := s.repo.CreateForUsers(ctx, recipients, ev.Title, ev.Message, ev.Type, ev.Link)
	if err != nil {
		return 0, fmt.Errorf("persist notifications: %w", err)
	}

	if s.unread != nil {
		s.unread.Invalidate(ctx, recipients...)
	}

	if s.publisher == nil {
		s.logger.Debug("realtime layer not initialized, skipping push")
		return count, nil
	}
	s.publisher.Publish(ev)

	return count, nil
}

// resolveRecipients flattens the event's targets into a deduplicated user
// id list. Broadcast resolves to every user so the durable record exists
// for offline backfill even though the live push uses the global room.
func (s *NotificationService) resolveRecipients(ctx context.Context, ev *NotificationEvent) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var recipients []uuid.UUID
	add := func(ids []uuid.UUID) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				recipients = append(recipients, id)
			}
		}
	}

	add(ev.UserIDs)

	if ev.GroupID != nil {
		ids, err := s.directory.GroupMemberIDs(ctx, *ev.GroupID)
		if err != nil {
			return nil, fmt.Errorf("group members: %w", err)
		}
		add(ids)
	}
	if ev.CourseID != nil {
		ids, err := s.directory.ApprovedEnrolleeIDs(ctx, *ev.CourseID)
		if err != nil {
			return nil, fmt.Errorf("course enrollees: %w", err)
		}
		add(ids)
	}
	if ev.Broadcast {
		ids, err := s.directory.AllUserIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("all users: %w", err)
		}
		add(ids)
	}

	return recipients, nil
}

// List returns a page of the user's notifications, newest first, along
// with the current unread count.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return s.repo.ListForUser(ctx, userID, pageSize, (page-1)*pageSize)
}

// MarkRead flips one notification to read. The repository enforces
// ownership; ErrNotOwner surfaces to the caller untouched.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		return err
	}
	if s.unread != nil {
		s.unread.Invalidate(ctx, userID)
	}
	return nil
}

// MarkAllRead flips every unread notification for the user. Calling it
// again is a no-op.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.unread != nil {
		s.unread.Invalidate(ctx, userID)
	}
	return n, nil
}

// CountUnread returns the badge count, served from cache when warm.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	if s.unread != nil {
		if count, ok := s.unread.Get(ctx, userID); ok {
			return count, nil
		}
	}
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.unread != nil {
		s.unread.Set(ctx, userID, count)
	}
	return count, nil
}
