package jobs

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

type Repo interface {
	GetJob(ctx context.Context, jobID int64) (Job, error)
	ListOpen(ctx context.Context, limit, offset int) ([]Job, error)
	CreateJob(ctx context.Context, job Job) (Job, error)
	GetRecruiter(ctx context.Context, recruiterID int64) (Recruiter, error)
	RecruiterByUserID(ctx context.Context, userID int64) (Recruiter, error)
	GetCompany(ctx context.Context, companyID int64) (Company, error)
}
