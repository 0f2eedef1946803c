package domain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotOwner             = errors.New("notification does not belong to user")
	ErrNoTarget             = errors.New("notification event has no target")
	ErrEmptyContent         = errors.New("notification title and message are required")
)

// Notification type taxonomy. Legacy call sites still send lowercase
// variants ("order_paid", "course_update"); NormalizeType upper-cases the
// known names and passes everything else through unchanged.
const (
	TypeInfo         = "INFO"
	TypeSuccess      = "SUCCESS"
	TypeWarning      = "WARNING"
	TypeError        = "ERROR"
	TypeAnnouncement = "ANNOUNCEMENT"
	TypePayment      = "PAYMENT"
	TypeEnrollment   = "ENROLLMENT"
	TypeAssignment   = "ASSIGNMENT"
	TypeCertificate  = "CERTIFICATE"
	TypeSupport      = "SUPPORT"
	TypeSystem       = "SYSTEM"
)

var knownTypes = map[string]bool{
	TypeInfo: true, TypeSuccess: true, TypeWarning: true, TypeError: true,
	TypeAnnouncement: true, TypePayment: true, TypeEnrollment: true,
	TypeAssignment: true, TypeCertificate: true, TypeSupport: true,
	TypeSystem: true,
}

// NormalizeType maps case-insensitive spellings of the known types onto
// their canonical form. Unknown strings are returned as-is so legacy
// producers keep working; an empty type defaults to INFO.
func NormalizeType(t string) string {
	if t == "" {
		return TypeInfo
	}
	if upper := strings.ToUpper(t); knownTypes[upper] {
		return upper
	}
	return t
}

type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	Link      *string    `json:"link,omitempty"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type NotificationRepository interface {
	// CreateForUser inserts one unread notification row.
	CreateForUser(ctx context.Context, userID uuid.UUID, title, message, typ string, link *string) (*Notification, error)
	// CreateForUsers inserts one unread row per user id in a single batch and
	// returns the number of rows written. Partial success is acceptable; the
	// count reflects what actually landed.
	CreateForUsers(ctx context.Context, userIDs []uuid.UUID, title, message, typ string, link *string) (int, error)
	// ListForUser returns notifications newest-first with the user's current
	// unread count.
	ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, int, error)
	// MarkRead flips the read flag; ErrNotOwner when the row exists but
	// belongs to someone else, ErrNotificationNotFound when it doesn't exist.
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// Directory resolves addressing dimensions to concrete user ids. Group
// membership, enrollment, and the user table live outside the notification
// core; this is its only view of them.
type Directory interface {
	GroupMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error)
	ApprovedEnrolleeIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	AllUserIDs(ctx context.Context) ([]uuid.UUID, error)
	IsGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error)
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
}
