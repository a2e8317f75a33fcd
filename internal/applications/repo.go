package applications

import (
	"context"
	"time"
)

// Repo persists application rows.
type Repo interface {
	HasActive(ctx context.Context, jobSeekerID, jobID int64) (bool, error)
	// Latest returns the most recent row for the pair or ErrNotFound.
	Latest(ctx context.Context, jobSeekerID, jobID int64) (Application, error)
	Get(ctx context.Context, applicationID int64) (Application, error)
	// SubmitForPair applies the merge rule atomically: promote a bookmark-only latest row,
	// otherwise insert a new received row. It returns ErrConflict when an active row exists.
	SubmitForPair(ctx context.Context, jobSeekerID, jobID, resumeID int64, now time.Time) (Application, bool, error)
	InsertBookmark(ctx context.Context, app Application) (Application, error)
	// TransitionStatus moves a row from one of from to to, or returns ErrInvalidState if the row moved first.
	TransitionStatus(ctx context.Context, applicationID int64, from []Status, to Status, now time.Time) (Application, error)
	SetBookmark(ctx context.Context, jobSeekerID, jobID int64, value bool, now time.Time) error
	ListByJobSeeker(ctx context.Context, jobSeekerID int64, statuses []Status) ([]Application, error)
	ListByJob(ctx context.Context, jobID int64) ([]Application, error)
	SetMatchScore(ctx context.Context, applicationID int64, score float64, now time.Time) error
	Delete(ctx context.Context, applicationID int64) error
}
