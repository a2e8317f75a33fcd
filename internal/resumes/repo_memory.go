package resumes

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	rows   []Resume
	nextID int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (m *MemoryRepo) Create(ctx context.Context, r Resume) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.rows = append(m.rows, r)
	return r, nil
}

func (m *MemoryRepo) Get(ctx context.Context, resumeID int64) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.rows {
		if r.ID == resumeID {
			return r, nil
		}
	}
	return Resume{}, ErrNotFound
}

// ListByJobSeeker returns newest first.
func (m *MemoryRepo) ListByJobSeeker(ctx context.Context, jobSeekerID int64) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Resume{}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].JobSeekerID == jobSeekerID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
