package users

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (auth_subject, email, full_name, picture_url, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, COALESCE(NULLIF($5, ''), 'job_seeker'), now(), now())
ON CONFLICT (auth_subject) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  picture_url = EXCLUDED.picture_url,
  updated_at = now()
RETURNING id, auth_subject, email, full_name, picture_url, role, created_at, updated_at`
	var out User
	err := r.DB.QueryRowContext(ctx, query,
		user.AuthSubject,
		user.Email,
		user.FullName,
		user.PictureURL,
		user.Role,
	).Scan(
		&out.ID,
		&out.AuthSubject,
		&out.Email,
		&out.FullName,
		&out.PictureURL,
		&out.Role,
		&out.CreatedAt,
		&out.UpdatedAt,
	)
	return out, err
}

func (r *PGRepo) GetByID(ctx context.Context, userID int64) (User, error) {
	const query = `
SELECT id, auth_subject, email, full_name, picture_url, role, created_at, updated_at
FROM users
WHERE id = $1`
	var user User
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.AuthSubject,
		&user.Email,
		&user.FullName,
		&user.PictureURL,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *PGRepo) EnsureJobSeeker(ctx context.Context, userID int64) (JobSeeker, error) {
	const query = `
INSERT INTO job_seekers (user_id) VALUES ($1)
ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
RETURNING id, user_id, profile_resume_id, created_at`
	return scanJobSeeker(r.DB.QueryRowContext(ctx, query, userID))
}

func (r *PGRepo) GetJobSeeker(ctx context.Context, jobSeekerID int64) (JobSeeker, error) {
	const query = `
SELECT id, user_id, profile_resume_id, created_at
FROM job_seekers
WHERE id = $1`
	return scanJobSeeker(r.DB.QueryRowContext(ctx, query, jobSeekerID))
}

func (r *PGRepo) SetProfileResume(ctx context.Context, jobSeekerID, resumeID int64) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE job_seekers SET profile_resume_id = $1 WHERE id = $2`, resumeID, jobSeekerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanJobSeeker(row *sql.Row) (JobSeeker, error) {
	var js JobSeeker
	var profile sql.NullInt64
	if err := row.Scan(&js.ID, &js.UserID, &profile, &js.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return JobSeeker{}, ErrNotFound
		}
		return JobSeeker{}, err
	}
	if profile.Valid {
		id := profile.Int64
		js.ProfileResumeID = &id
	}
	return js, nil
}

var _ Repo = (*PGRepo)(nil)
