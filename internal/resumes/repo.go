package resumes

import "context"

type Repo interface {
	Create(ctx context.Context, r Resume) (Resume, error)
	Get(ctx context.Context, resumeID int64) (Resume, error)
	ListByJobSeeker(ctx context.Context, jobSeekerID int64) ([]Resume, error)
}
