package applications

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryRepo keeps rows in insertion order; the newest row of a pair is the last one.
type MemoryRepo struct {
	mu     sync.RWMutex
	rows   []Application
	nextID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) HasActive(ctx context.Context, jobSeekerID, jobID int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasActiveLocked(jobSeekerID, jobID), nil
}

func (r *MemoryRepo) Latest(ctx context.Context, jobSeekerID, jobID int64) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.latestLocked(jobSeekerID, jobID)
	if idx < 0 {
		return Application{}, ErrNotFound
	}
	return clone(r.rows[idx]), nil
}

func (r *MemoryRepo) Get(ctx context.Context, applicationID int64) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.indexLocked(applicationID)
	if idx < 0 {
		return Application{}, ErrNotFound
	}
	return clone(r.rows[idx]), nil
}

func (r *MemoryRepo) SubmitForPair(ctx context.Context, jobSeekerID, jobID, resumeID int64, now time.Time) (Application, bool, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hasActiveLocked(jobSeekerID, jobID) {
		return Application{}, false, ErrConflict
	}
	rid := resumeID
	if idx := r.latestLocked(jobSeekerID, jobID); idx >= 0 && r.rows[idx].Status == StatusUnknown {
		row := &r.rows[idx]
		row.ResumeID = &rid
		row.MatchScore = nil
		row.Status = StatusReceived
		row.UpdatedAt = now
		return clone(*row), true, nil
	}
	app := r.insertLocked(Application{
		JobID:       jobID,
		JobSeekerID: jobSeekerID,
		ResumeID:    &rid,
		Status:      StatusReceived,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	return app, false, nil
}

func (r *MemoryRepo) InsertBookmark(ctx context.Context, app Application) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if app.Status.Active() && r.hasActiveLocked(app.JobSeekerID, app.JobID) {
		return Application{}, ErrConflict
	}
	return r.insertLocked(app), nil
}

func (r *MemoryRepo) TransitionStatus(ctx context.Context, applicationID int64, from []Status, to Status, now time.Time) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(applicationID)
	if idx < 0 {
		return Application{}, ErrNotFound
	}
	row := &r.rows[idx]
	if !slices.Contains(from, row.Status) {
		return Application{}, ErrInvalidState
	}
	if to.Active() && !row.Status.Active() && r.hasActiveLocked(row.JobSeekerID, row.JobID) {
		return Application{}, ErrConflict
	}
	row.Status = to
	row.UpdatedAt = now
	return clone(*row), nil
}

func (r *MemoryRepo) SetBookmark(ctx context.Context, jobSeekerID, jobID int64, value bool, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].JobSeekerID == jobSeekerID && r.rows[i].JobID == jobID {
			r.rows[i].IsBookmark = value
			r.rows[i].UpdatedAt = now
		}
	}
	return nil
}

func (r *MemoryRepo) ListByJobSeeker(ctx context.Context, jobSeekerID int64, statuses []Status) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Application
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		if row.JobSeekerID != jobSeekerID {
			continue
		}
		if len(statuses) > 0 && !slices.Contains(statuses, row.Status) {
			continue
		}
		out = append(out, clone(row))
	}
	return out, nil
}

func (r *MemoryRepo) ListByJob(ctx context.Context, jobID int64) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Application
	for i := len(r.rows) - 1; i >= 0; i-- {
		row := r.rows[i]
		if row.JobID == jobID && row.Status != StatusUnknown {
			out = append(out, clone(row))
		}
	}
	return out, nil
}

func (r *MemoryRepo) SetMatchScore(ctx context.Context, applicationID int64, score float64, now time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(applicationID)
	if idx < 0 {
		return ErrNotFound
	}
	s := score
	r.rows[idx].MatchScore = &s
	r.rows[idx].UpdatedAt = now
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, applicationID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.indexLocked(applicationID)
	if idx < 0 {
		return ErrNotFound
	}
	r.rows = slices.Delete(r.rows, idx, idx+1)
	return nil
}

func (r *MemoryRepo) insertLocked(app Application) Application {
	r.nextID++
	app.ID = r.nextID
	r.rows = append(r.rows, app)
	return clone(app)
}

func (r *MemoryRepo) hasActiveLocked(jobSeekerID, jobID int64) bool {
	for _, row := range r.rows {
		if row.JobSeekerID == jobSeekerID && row.JobID == jobID && row.Status.Active() {
			return true
		}
	}
	return false
}

func (r *MemoryRepo) latestLocked(jobSeekerID, jobID int64) int {
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].JobSeekerID == jobSeekerID && r.rows[i].JobID == jobID {
			return i
		}
	}
	return -1
}

func (r *MemoryRepo) indexLocked(applicationID int64) int {
	for i := range r.rows {
		if r.rows[i].ID == applicationID {
			return i
		}
	}
	return -1
}

// clone detaches pointer fields so callers cannot mutate stored rows.
func clone(app Application) Application {
	if app.ResumeID != nil {
		v := *app.ResumeID
		app.ResumeID = &v
	}
	if app.MatchScore != nil {
		v := *app.MatchScore
		app.MatchScore = &v
	}
	return app
}

var _ Repo = (*MemoryRepo)(nil)
