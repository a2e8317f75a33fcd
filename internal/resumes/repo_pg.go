package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, job_seeker_id, file_name, mime_type, size_bytes, sha256, storage_key, skills, experience, education, raw_text, created_at`

func (r *PGRepo) Create(ctx context.Context, in Resume) (Resume, error) {
	skills, experience, education, err := encodeExtracted(in.Extracted)
	if err != nil {
		return Resume{}, err
	}
	query := `
INSERT INTO resumes (job_seeker_id, file_name, mime_type, size_bytes, sha256, storage_key, skills, experience, education, raw_text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + resumeColumns
	return scanResume(r.DB.QueryRowContext(ctx, query,
		in.JobSeekerID,
		in.FileName,
		in.MimeType,
		in.SizeBytes,
		in.SHA256,
		in.StorageKey,
		skills,
		experience,
		education,
		in.RawText,
	).Scan)
}

func (r *PGRepo) Get(ctx context.Context, resumeID int64) (Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = $1`
	return scanResume(r.DB.QueryRowContext(ctx, query, resumeID).Scan)
}

func (r *PGRepo) ListByJobSeeker(ctx context.Context, jobSeekerID int64) ([]Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE job_seeker_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, jobSeekerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resume{}
	for rows.Next() {
		res, err := scanResume(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanResume(scan func(dest ...any) error) (Resume, error) {
	var (
		res                           Resume
		skills, experience, education []byte
	)
	err := scan(
		&res.ID,
		&res.JobSeekerID,
		&res.FileName,
		&res.MimeType,
		&res.SizeBytes,
		&res.SHA256,
		&res.StorageKey,
		&skills,
		&experience,
		&education,
		&res.RawText,
		&res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	if err := json.Unmarshal(skills, &res.Extracted.Skills); err != nil {
		return Resume{}, fmt.Errorf("decode skills: %w", err)
	}
	if err := json.Unmarshal(experience, &res.Extracted.Experience); err != nil {
		return Resume{}, fmt.Errorf("decode experience: %w", err)
	}
	if err := json.Unmarshal(education, &res.Extracted.Education); err != nil {
		return Resume{}, fmt.Errorf("decode education: %w", err)
	}
	return res, nil
}

func encodeExtracted(d ExtractedData) (skills, experience, education []byte, err error) {
	if d.Skills == nil {
		d.Skills = []string{}
	}
	if d.Experience == nil {
		d.Experience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if skills, err = json.Marshal(d.Skills); err != nil {
		return nil, nil, nil, err
	}
	if experience, err = json.Marshal(d.Experience); err != nil {
		return nil, nil, nil, err
	}
	if education, err = json.Marshal(d.Education); err != nil {
		return nil, nil, nil, err
	}
	return skills, experience, education, nil
}

var _ Repo = (*PGRepo)(nil)
