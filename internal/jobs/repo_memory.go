package jobs

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo keeps postings in process; AddCompany/AddRecruiter seed dev data.
type MemoryRepo struct {
	mu         sync.RWMutex
	jobs       map[int64]Job
	recruiters map[int64]Recruiter
	companies  map[int64]Company
	nextJob    int64
	nextRec    int64
	nextComp   int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		jobs:       make(map[int64]Job),
		recruiters: make(map[int64]Recruiter),
		companies:  make(map[int64]Company),
	}
}

func (r *MemoryRepo) AddCompany(name string) Company {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextComp++
	c := Company{ID: r.nextComp, Name: name}
	r.companies[c.ID] = c
	return c
}

func (r *MemoryRepo) AddRecruiter(userID, companyID int64) Recruiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextRec++
	rec := Recruiter{ID: r.nextRec, UserID: userID, CompanyID: companyID}
	r.recruiters[rec.ID] = rec
	return rec
}

func (r *MemoryRepo) GetJob(ctx context.Context, jobID int64) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryRepo) ListOpen(ctx context.Context, limit, offset int) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Job, 0, len(r.jobs))
	for _, j := range r.jobs {
		if j.IsOpen {
			out = append(out, j)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return []Job{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) CreateJob(ctx context.Context, job Job) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextJob++
	job.ID = r.nextJob
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	r.jobs[job.ID] = job
	return job, nil
}

func (r *MemoryRepo) GetRecruiter(ctx context.Context, recruiterID int64) (Recruiter, error) {
	if err := ctx.Err(); err != nil {
		return Recruiter{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.recruiters[recruiterID]
	if !ok {
		return Recruiter{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepo) RecruiterByUserID(ctx context.Context, userID int64) (Recruiter, error) {
	if err := ctx.Err(); err != nil {
		return Recruiter{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.recruiters {
		if rec.UserID == userID {
			return rec, nil
		}
	}
	return Recruiter{}, ErrNotFound
}

func (r *MemoryRepo) GetCompany(ctx context.Context, companyID int64) (Company, error) {
	if err := ctx.Err(); err != nil {
		return Company{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.companies[companyID]
	if !ok {
		return Company{}, ErrNotFound
	}
	return c, nil
}

var _ Repo = (*MemoryRepo)(nil)
