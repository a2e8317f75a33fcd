package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

type Repo interface {
	// Upsert creates or refreshes a user keyed by AuthSubject and returns the stored row.
	Upsert(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, userID int64) (User, error)
	EnsureJobSeeker(ctx context.Context, userID int64) (JobSeeker, error)
	GetJobSeeker(ctx context.Context, jobSeekerID int64) (JobSeeker, error)
	SetProfileResume(ctx context.Context, jobSeekerID, resumeID int64) error
}
