package jobs

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

const jobColumns = `id, recruiter_id, company_id, title, description, location, is_open, created_at`

func scanJob(scan func(dest ...any) error) (Job, error) {
	var j Job
	err := scan(&j.ID, &j.RecruiterID, &j.CompanyID, &j.Title, &j.Description, &j.Location, &j.IsOpen, &j.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return j, err
}

func (r *PGRepo) GetJob(ctx context.Context, jobID int64) (Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	return scanJob(r.DB.QueryRowContext(ctx, query, jobID).Scan)
}

func (r *PGRepo) ListOpen(ctx context.Context, limit, offset int) ([]Job, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE is_open ORDER BY id DESC LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Job{}
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateJob(ctx context.Context, job Job) (Job, error) {
	query := `
INSERT INTO jobs (recruiter_id, company_id, title, description, location, is_open)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + jobColumns
	return scanJob(r.DB.QueryRowContext(ctx, query,
		job.RecruiterID,
		job.CompanyID,
		job.Title,
		job.Description,
		job.Location,
		job.IsOpen,
	).Scan)
}

func (r *PGRepo) GetRecruiter(ctx context.Context, recruiterID int64) (Recruiter, error) {
	var rec Recruiter
	err := r.DB.QueryRowContext(ctx, `SELECT id, user_id, company_id FROM recruiters WHERE id = $1`, recruiterID).
		Scan(&rec.ID, &rec.UserID, &rec.CompanyID)
	if errors.Is(err, sql.ErrNoRows) {
		return Recruiter{}, ErrNotFound
	}
	return rec, err
}

func (r *PGRepo) RecruiterByUserID(ctx context.Context, userID int64) (Recruiter, error) {
	var rec Recruiter
	err := r.DB.QueryRowContext(ctx, `SELECT id, user_id, company_id FROM recruiters WHERE user_id = $1`, userID).
		Scan(&rec.ID, &rec.UserID, &rec.CompanyID)
	if errors.Is(err, sql.ErrNoRows) {
		return Recruiter{}, ErrNotFound
	}
	return rec, err
}

func (r *PGRepo) GetCompany(ctx context.Context, companyID int64) (Company, error) {
	var c Company
	err := r.DB.QueryRowContext(ctx, `SELECT id, name FROM companies WHERE id = $1`, companyID).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Company{}, ErrNotFound
	}
	return c, err
}

var _ Repo = (*PGRepo)(nil)
