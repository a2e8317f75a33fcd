package notifications

import (
	"context"
	"database/sql"
	"time"
)

type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) Create(ctx context.Context, n Notification) (Notification, error) {
	// The no-op update makes RETURNING yield the existing row on a redelivery.
	const query = `
INSERT INTO notifications (user_id, kind, title, body, job_id, application_id, dedup_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (dedup_key) DO UPDATE SET dedup_key = EXCLUDED.dedup_key
RETURNING id, created_at, read_at`
	var readAt sql.NullTime
	err := s.DB.QueryRowContext(ctx, query,
		n.UserID,
		n.Kind,
		n.Title,
		n.Body,
		nullInt(n.JobID),
		nullInt(n.ApplicationID),
		nullString(n.DedupKey),
	).Scan(&n.ID, &n.CreatedAt, &readAt)
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}
	return n, err
}

func (s *PGStore) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
SELECT id, user_id, kind, title, body, job_id, application_id, read_at, created_at
FROM notifications
WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	query += `
ORDER BY created_at DESC, id DESC
LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			n      Notification
			jobID  sql.NullInt64
			appID  sql.NullInt64
			readAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Body, &jobID, &appID, &readAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if jobID.Valid {
			n.JobID = &jobID.Int64
		}
		if appID.Valid {
			n.ApplicationID = &appID.Int64
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PGStore) MarkRead(ctx context.Context, userID, id int64, at time.Time) error {
	const query = `
UPDATE notifications
SET read_at = COALESCE(read_at, $3)
WHERE id = $1 AND user_id = $2`
	res, err := s.DB.ExecContext(ctx, query, id, userID, at.UTC())
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

var _ Store = (*PGStore)(nil)
