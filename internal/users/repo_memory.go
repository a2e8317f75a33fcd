package users

import (
	"context"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu         sync.RWMutex
	users      map[int64]User
	bySubject  map[string]int64
	seekers    map[int64]JobSeeker
	seekerOf   map[int64]int64 // userID -> jobSeekerID
	nextUser   int64
	nextSeeker int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		users:     make(map[int64]User),
		bySubject: make(map[string]int64),
		seekers:   make(map[int64]JobSeeker),
		seekerOf:  make(map[int64]int64),
	}
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if id, ok := r.bySubject[user.AuthSubject]; ok {
		existing := r.users[id]
		user.ID = id
		user.CreatedAt = existing.CreatedAt
		if user.Role == "" {
			user.Role = existing.Role
		}
	} else {
		r.nextUser++
		user.ID = r.nextUser
		user.CreatedAt = now
		r.bySubject[user.AuthSubject] = user.ID
	}
	user.UpdatedAt = now
	r.users[user.ID] = user
	return user, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID int64) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) EnsureJobSeeker(ctx context.Context, userID int64) (JobSeeker, error) {
	if err := ctx.Err(); err != nil {
		return JobSeeker{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return JobSeeker{}, ErrNotFound
	}
	if id, ok := r.seekerOf[userID]; ok {
		return r.seekers[id], nil
	}
	r.nextSeeker++
	js := JobSeeker{ID: r.nextSeeker, UserID: userID, CreatedAt: time.Now().UTC()}
	r.seekers[js.ID] = js
	r.seekerOf[userID] = js.ID
	return js, nil
}

func (r *MemoryRepo) GetJobSeeker(ctx context.Context, jobSeekerID int64) (JobSeeker, error) {
	if err := ctx.Err(); err != nil {
		return JobSeeker{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	js, ok := r.seekers[jobSeekerID]
	if !ok {
		return JobSeeker{}, ErrNotFound
	}
	return js, nil
}

func (r *MemoryRepo) SetProfileResume(ctx context.Context, jobSeekerID, resumeID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	js, ok := r.seekers[jobSeekerID]
	if !ok {
		return ErrNotFound
	}
	id := resumeID
	js.ProfileResumeID = &id
	r.seekers[jobSeekerID] = js
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
