package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard-backend/internal/shared/storage/db"
)

// OneActiveIndex is the partial unique index that allows one active row per pair.
const OneActiveIndex = "applications_one_active_idx"

const selectColumns = `id, job_id, job_seeker_id, resume_id, match_score, status, is_bookmark, created_at, updated_at`

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *PGRepo) HasActive(ctx context.Context, jobSeekerID, jobID int64) (bool, error) {
	return hasActive(ctx, r.DB, jobSeekerID, jobID)
}

func (r *PGRepo) Latest(ctx context.Context, jobSeekerID, jobID int64) (Application, error) {
	return latest(ctx, r.DB, jobSeekerID, jobID)
}

func (r *PGRepo) Get(ctx context.Context, applicationID int64) (Application, error) {
	app, err := scanApplication(r.DB.QueryRowContext(ctx, `
SELECT `+selectColumns+`
FROM applications
WHERE id = $1`, applicationID))
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	return app, err
}

// SubmitForPair locks the job seeker row so concurrent submissions for the same seeker
// run one at a time; the partial unique index still backs the rule.
func (r *PGRepo) SubmitForPair(ctx context.Context, jobSeekerID, jobID, resumeID int64, now time.Time) (Application, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Application{}, false, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT id FROM job_seekers WHERE id = $1 FOR UPDATE`, jobSeekerID); err != nil {
		return Application{}, false, err
	}

	active, err := hasActive(ctx, tx, jobSeekerID, jobID)
	if err != nil {
		return Application{}, false, err
	}
	if active {
		return Application{}, false, ErrConflict
	}

	var (
		app      Application
		promoted bool
	)
	current, err := latest(ctx, tx, jobSeekerID, jobID)
	switch {
	case err == nil && current.Status == StatusUnknown:
		app, err = scanApplication(tx.QueryRowContext(ctx, `
UPDATE applications
SET resume_id = $2, match_score = NULL, status = 'received', updated_at = $3
WHERE id = $1 AND status = 'unknown'
RETURNING `+selectColumns, current.ID, resumeID, now))
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, false, ErrInvalidState
		}
		promoted = true
	case err == nil || errors.Is(err, ErrNotFound):
		app, err = insert(ctx, tx, Application{
			JobID:       jobID,
			JobSeekerID: jobSeekerID,
			ResumeID:    &resumeID,
			Status:      StatusReceived,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	if err != nil {
		return Application{}, false, mapWriteError(err)
	}
	if err := tx.Commit(); err != nil {
		return Application{}, false, mapWriteError(err)
	}
	return app, promoted, nil
}

func (r *PGRepo) InsertBookmark(ctx context.Context, app Application) (Application, error) {
	out, err := insert(ctx, r.DB, app)
	if err != nil {
		return Application{}, mapWriteError(err)
	}
	return out, nil
}

func (r *PGRepo) TransitionStatus(ctx context.Context, applicationID int64, from []Status, to Status, now time.Time) (Application, error) {
	if len(from) == 0 {
		return Application{}, ErrInvalidState
	}
	in, args := statusList(4, from)
	query := `
UPDATE applications
SET status = $2, updated_at = $3
WHERE id = $1 AND status IN (` + in + `)
RETURNING ` + selectColumns
	app, err := scanApplication(r.DB.QueryRowContext(ctx, query, append([]any{applicationID, string(to), now}, args...)...))
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.Get(ctx, applicationID); getErr != nil {
			return Application{}, getErr
		}
		return Application{}, ErrInvalidState
	}
	if err != nil {
		return Application{}, mapWriteError(err)
	}
	return app, nil
}

func (r *PGRepo) SetBookmark(ctx context.Context, jobSeekerID, jobID int64, value bool, now time.Time) error {
	const query = `
UPDATE applications
SET is_bookmark = $3, updated_at = $4
WHERE job_seeker_id = $1 AND job_id = $2`
	_, err := r.DB.ExecContext(ctx, query, jobSeekerID, jobID, value, now)
	return err
}

func (r *PGRepo) ListByJobSeeker(ctx context.Context, jobSeekerID int64, statuses []Status) ([]Application, error) {
	query := `
SELECT ` + selectColumns + `
FROM applications
WHERE job_seeker_id = $1`
	args := []any{jobSeekerID}
	if len(statuses) > 0 {
		in, statusArgs := statusList(2, statuses)
		query += ` AND status IN (` + in + `)`
		args = append(args, statusArgs...)
	}
	query += `
ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, args...)
}

func (r *PGRepo) ListByJob(ctx context.Context, jobID int64) ([]Application, error) {
	const query = `
SELECT ` + selectColumns + `
FROM applications
WHERE job_id = $1 AND status <> 'unknown'
ORDER BY created_at DESC, id DESC`
	return r.list(ctx, query, jobID)
}

func (r *PGRepo) SetMatchScore(ctx context.Context, applicationID int64, score float64, now time.Time) error {
	const query = `
UPDATE applications
SET match_score = $2, updated_at = $3
WHERE id = $1`
	return expectOneRow(r.DB.ExecContext(ctx, query, applicationID, score, now))
}

func (r *PGRepo) Delete(ctx context.Context, applicationID int64) error {
	return expectOneRow(r.DB.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, applicationID))
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Application, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

func hasActive(ctx context.Context, q queryer, jobSeekerID, jobID int64) (bool, error) {
	const query = `
SELECT EXISTS (
  SELECT 1 FROM applications
  WHERE job_seeker_id = $1 AND job_id = $2 AND status IN ('received', 'shortlisted')
)`
	var exists bool
	err := q.QueryRowContext(ctx, query, jobSeekerID, jobID).Scan(&exists)
	return exists, err
}

func latest(ctx context.Context, q queryer, jobSeekerID, jobID int64) (Application, error) {
	app, err := scanApplication(q.QueryRowContext(ctx, `
SELECT `+selectColumns+`
FROM applications
WHERE job_seeker_id = $1 AND job_id = $2
ORDER BY created_at DESC, id DESC
LIMIT 1`, jobSeekerID, jobID))
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, ErrNotFound
	}
	return app, err
}

func insert(ctx context.Context, q queryer, app Application) (Application, error) {
	const query = `
INSERT INTO applications (job_id, job_seeker_id, resume_id, match_score, status, is_bookmark, created_at, updated_at)
VALUES ($1, $2, $3, NULL, $4, $5, $6, $7)
RETURNING ` + selectColumns
	return scanApplication(q.QueryRowContext(ctx, query,
		app.JobID,
		app.JobSeekerID,
		nullInt(app.ResumeID),
		string(app.Status),
		app.IsBookmark,
		app.CreatedAt,
		app.UpdatedAt,
	))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var (
		app      Application
		resumeID sql.NullInt64
		score    sql.NullFloat64
		status   string
	)
	if err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.JobSeekerID,
		&resumeID,
		&score,
		&status,
		&app.IsBookmark,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return Application{}, err
	}
	app.Status = Status(status)
	if resumeID.Valid {
		app.ResumeID = &resumeID.Int64
	}
	if score.Valid {
		app.MatchScore = &score.Float64
	}
	return app, nil
}

// statusList renders "$n, $n+1, ..." for an IN clause starting at placeholder n.
func statusList(start int, statuses []Status) (string, []any) {
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, s := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", start+i)
		args[i] = string(s)
	}
	return strings.Join(placeholders, ", "), args
}

func mapWriteError(err error) error {
	if db.IsUniqueViolation(err, OneActiveIndex) {
		return ErrConflict
	}
	return err
}

func expectOneRow(res sql.Result, err error) error {
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

var _ Repo = (*PGRepo)(nil)
