package users

import (
	"context"
	"errors"
	"strings"
)

const roleJobSeeker = "job_seeker"

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// UpsertFromAuth persists the OAuth identity. Job seekers also get an applicant profile;
// the returned JobSeeker is zero for other roles.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) (User, JobSeeker, error) {
	if s == nil || s.Repo == nil {
		return User{}, JobSeeker{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(user.AuthSubject) == "" || strings.TrimSpace(user.Email) == "" {
		return User{}, JobSeeker{}, errors.New("auth subject and email are required")
	}
	stored, err := s.Repo.Upsert(ctx, user)
	if err != nil {
		return User{}, JobSeeker{}, err
	}
	if stored.Role != "" && stored.Role != roleJobSeeker {
		return stored, JobSeeker{}, nil
	}
	js, err := s.Repo.EnsureJobSeeker(ctx, stored.ID)
	if err != nil {
		return User{}, JobSeeker{}, err
	}
	return stored, js, nil
}

func (s *Service) GetByID(ctx context.Context, userID int64) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if userID <= 0 {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) GetJobSeeker(ctx context.Context, jobSeekerID int64) (JobSeeker, error) {
	if s == nil || s.Repo == nil {
		return JobSeeker{}, errors.New("users service not configured")
	}
	return s.Repo.GetJobSeeker(ctx, jobSeekerID)
}

// GetUser satisfies lookups that only need contact details.
func (s *Service) GetUser(ctx context.Context, userID int64) (User, error) {
	return s.GetByID(ctx, userID)
}

func (s *Service) SetProfileResume(ctx context.Context, jobSeekerID, resumeID int64) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	return s.Repo.SetProfileResume(ctx, jobSeekerID, resumeID)
}
