package domain

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory implementations of the core interfaces, used by tests across
// packages.

type MockRepository struct {
	mu   sync.Mutex
	rows []*Notification
	seq  int

	// FailCreate makes every create call fail, for failure-injection tests.
	FailCreate error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) CreateForUser(ctx context.Context, userID uuid.UUID, title, message, typ string, link *string) (*Notification, error) {
	if m.FailCreate != nil {
		return nil, m.FailCreate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(userID, title, message, typ, link), nil
}

func (m *MockRepository) CreateForUsers(ctx context.Context, userIDs []uuid.UUID, title, message, typ string, link *string) (int, error) {
	if m.FailCreate != nil {
		return 0, m.FailCreate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, userID := range userIDs {
		m.insertLocked(userID, title, message, typ, link)
	}
	return len(userIDs), nil
}

func (m *MockRepository) insertLocked(userID uuid.UUID, title, message, typ string, link *string) *Notification {
	m.seq++
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		Link:      link,
		CreatedAt: time.Now().Add(time.Duration(m.seq) * time.Microsecond),
	}
	m.rows = append(m.rows, n)
	return n
}

func (m *MockRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var mine []*Notification
	unread := 0
	for _, n := range m.rows {
		if n.UserID != userID {
			continue
		}
		mine = append(mine, n)
		if !n.IsRead {
			unread++
		}
	}
	sort.Slice(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })

	if offset >= len(mine) {
		return nil, unread, nil
	}
	end := offset + limit
	if end > len(mine) {
		end = len(mine)
	}
	return mine[offset:end], unread, nil
}

func (m *MockRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.rows {
		if n.ID != notificationID {
			continue
		}
		if n.UserID != userID {
			return ErrNotOwner
		}
		if !n.IsRead {
			now := time.Now()
			n.IsRead = true
			n.ReadAt = &now
		}
		return nil
	}
	return ErrNotificationNotFound
}

func (m *MockRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	now := time.Now()
	for _, n := range m.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			updated++
		}
	}
	return updated, nil
}

func (m *MockRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

// All returns a snapshot of every stored row.
func (m *MockRepository) All() []*Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Notification, len(m.rows))
	copy(out, m.rows)
	return out
}

type MockDirectory struct {
	Users       []uuid.UUID
	Groups      map[uuid.UUID][]uuid.UUID
	Enrollments map[uuid.UUID][]uuid.UUID
}

func (d *MockDirectory) GroupMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	return d.Groups[groupID], nil
}

func (d *MockDirectory) ApprovedEnrolleeIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	return d.Enrollments[courseID], nil
}

func (d *MockDirectory) AllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return d.Users, nil
}

func (d *MockDirectory) IsGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	return contains(d.Groups[groupID], userID), nil
}

func (d *MockDirectory) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	return contains(d.Enrollments[courseID], userID), nil
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type MockPublisher struct {
	mu     sync.Mutex
	Events []*NotificationEvent
}

func (p *MockPublisher) Publish(ev *NotificationEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, ev)
}

// Published returns a snapshot of the events seen so far.
func (p *MockPublisher) Published() []*NotificationEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*NotificationEvent, len(p.Events))
	copy(out, p.Events)
	return out
}
