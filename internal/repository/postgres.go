package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/learnhub/backend/internal/domain"
)

// PostgresRepository implements domain.NotificationRepository and
// domain.Directory using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const notificationColumns = `id, user_id, title, message, type, link, is_read, read_at, created_at`

// CreateForUser inserts one unread notification row.
func (r *PostgresRepository) CreateForUser(ctx context.Context, userID uuid.UUID, title, message, typ string, link *string) (*domain.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, title, message, type, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + notificationColumns

	row := r.db.QueryRow(ctx, query, userID, title, message, typ, link)
	n, err := scanNotification(row)
	if err != nil {
		return nil, err
	}
	notificationsPersisted.Inc()
	return n, nil
}

// CreateForUsers inserts one unread row per user id in a single batch.
// Inserts are independent; a failing row does not abort the rest, and the
// returned count reflects the rows that actually landed.
func (r *PostgresRepository) CreateForUsers(ctx context.Context, userIDs []uuid.UUID, title, message, typ string, link *string) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, userID := range userIDs {
		batch.Queue(
			`INSERT INTO notifications (user_id, title, message, type, link) VALUES ($1, $2, $3, $4, $5)`,
			userID, title, message, typ, link,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	count := 0
	var firstErr error
	for range userIDs {
		if _, err := results.Exec(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		count++
	}
	if count == 0 && firstErr != nil {
		return 0, firstErr
	}

	notificationsPersisted.Add(float64(count))
	return count, nil
}

// ListForUser returns a page of notifications newest-first plus the user's
// current unread count.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Notification, int, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	unread, err := r.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	return notifications, unread, nil
}

// MarkRead sets the read flag and timestamp after verifying ownership.
func (r *PostgresRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE id = $1 AND user_id = $2 AND is_read = FALSE`,
		notificationID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Nothing updated: distinguish missing, foreign, and already-read rows.
	var ownerID uuid.UUID
	err = r.db.QueryRow(ctx, `SELECT user_id FROM notifications WHERE id = $1`, notificationID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotificationNotFound
		}
		return err
	}
	if ownerID != userID {
		return domain.ErrNotOwner
	}
	return nil // already read; idempotent
}

// MarkAllRead flips every unread row for the user and returns how many.
func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = NOW() WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountUnread returns the badge count.
func (r *PostgresRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	).Scan(&count)
	return count, err
}

// GroupMemberIDs returns the user ids belonging to a group.
func (r *PostgresRepository) GroupMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, `SELECT user_id FROM group_members WHERE group_id = $1`, groupID)
}

// ApprovedEnrolleeIDs returns the user ids with an approved enrollment in
// a course.
func (r *PostgresRepository) ApprovedEnrolleeIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, `SELECT user_id FROM enrollments WHERE course_id = $1 AND status = 'approved'`, courseID)
}

// AllUserIDs returns every active user id; used to materialize broadcasts.
func (r *PostgresRepository) AllUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return r.queryIDs(ctx, `SELECT id FROM users WHERE is_active = TRUE`)
}

// IsGroupMember checks group membership for room-join authorization.
func (r *PostgresRepository) IsGroupMember(ctx context.Context, userID, groupID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)`,
		groupID, userID,
	).Scan(&exists)
	return exists, err
}

// IsEnrolled checks for an approved enrollment for room-join authorization.
func (r *PostgresRepository) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM enrollments WHERE course_id = $1 AND user_id = $2 AND status = 'approved')`,
		courseID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *PostgresRepository) queryIDs(ctx context.Context, query string, args ...interface{}) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Title,
		&n.Message,
		&n.Type,
		&n.Link,
		&n.IsRead,
		&n.ReadAt,
		&n.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}
