package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"jobboard-backend/internal/shared/telemetry"
	"jobboard-backend/internal/viewcache"
)

var (
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)

const defaultPageSize = 50

// ViewerStates reports a job seeker's state per job id.
type ViewerStates interface {
	ViewerStates(ctx context.Context, jobSeekerID int64) (map[int64]ViewerState, error)
}

type Service struct {
	Repo     Repo
	Viewer   ViewerStates
	Cache    viewcache.Cache
	CacheTTL time.Duration
}

type CreateJobInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=20000"`
	Location    string `json:"location" validate:"max=200"`
}

var validate = validator.New()

// List returns open jobs merged with the viewer's state. jobSeekerID 0 means anonymous.
// The first page of open jobs is cached once for every viewer; viewer states are
// cached per job seeker and merged after the read.
func (s *Service) List(ctx context.Context, jobSeekerID int64, limit, offset int) ([]Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	page, err := s.openJobs(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	states, err := s.cachedStates(ctx, jobSeekerID)
	if err != nil {
		return nil, err
	}

	out := make([]Listing, 0, len(page))
	for _, l := range page {
		if jobSeekerID > 0 {
			state := states[l.ID]
			l.Viewer = &state
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Service) openJobs(ctx context.Context, limit, offset int) ([]Listing, error) {
	cacheable := offset == 0 && limit == defaultPageSize
	key := viewcache.OpenJobsKey()
	if cacheable {
		var cached []Listing
		if ok := s.cacheGet(ctx, key, &cached); ok {
			return cached, nil
		}
	}
	jobs, err := s.Repo.ListOpen(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	companies := map[int64]string{}
	out := make([]Listing, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, s.listing(ctx, job, companies, nil, 0))
	}
	if cacheable {
		s.cacheSet(ctx, key, out)
	}
	return out, nil
}

func (s *Service) cachedStates(ctx context.Context, jobSeekerID int64) (map[int64]ViewerState, error) {
	if jobSeekerID <= 0 {
		return map[int64]ViewerState{}, nil
	}
	key := viewcache.JobListKey(jobSeekerID)
	var cached map[int64]ViewerState
	if ok := s.cacheGet(ctx, key, &cached); ok && cached != nil {
		return cached, nil
	}
	states, err := s.states(ctx, jobSeekerID)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, key, states)
	return states, nil
}

// Get returns one job merged with the viewer's state.
func (s *Service) Get(ctx context.Context, jobSeekerID, jobID int64) (Listing, error) {
	key := viewcache.JobDetailKey(jobSeekerID, jobID)
	var cached Listing
	if ok := s.cacheGet(ctx, key, &cached); ok {
		return cached, nil
	}
	job, err := s.Repo.GetJob(ctx, jobID)
	if err != nil {
		return Listing{}, err
	}
	states, err := s.states(ctx, jobSeekerID)
	if err != nil {
		return Listing{}, err
	}
	out := s.listing(ctx, job, map[int64]string{}, states, jobSeekerID)
	s.cacheSet(ctx, key, out)
	return out, nil
}

// Create posts a job for the recruiter's company.
func (s *Service) Create(ctx context.Context, recruiterID int64, in CreateJobInput) (Job, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validate.Struct(in); err != nil {
		return Job{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	rec, err := s.Repo.GetRecruiter(ctx, recruiterID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Job{}, ErrForbidden
		}
		return Job{}, err
	}
	job, err := s.Repo.CreateJob(ctx, Job{
		RecruiterID: rec.ID,
		CompanyID:   rec.CompanyID,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		IsOpen:      true,
	})
	if err != nil {
		return Job{}, err
	}
	if s.Cache != nil {
		key := viewcache.OpenJobsKey()
		if err := s.Cache.Delete(ctx, key); err != nil {
			telemetry.Warn("viewcache.invalidate.failed", map[string]any{
				"request_id": telemetry.RequestIDFromContext(ctx),
				"keys":       []string{key},
				"error":      err.Error(),
			})
		}
	}
	return job, nil
}

func (s *Service) listing(ctx context.Context, job Job, companies map[int64]string, states map[int64]ViewerState, jobSeekerID int64) Listing {
	name, ok := companies[job.CompanyID]
	if !ok {
		if c, err := s.Repo.GetCompany(ctx, job.CompanyID); err == nil {
			name = c.Name
		}
		companies[job.CompanyID] = name
	}
	l := Listing{Job: job, CompanyName: name}
	if jobSeekerID > 0 {
		state := states[job.ID]
		l.Viewer = &state
	}
	return l
}

func (s *Service) states(ctx context.Context, jobSeekerID int64) (map[int64]ViewerState, error) {
	if jobSeekerID <= 0 || s.Viewer == nil {
		return map[int64]ViewerState{}, nil
	}
	return s.Viewer.ViewerStates(ctx, jobSeekerID)
}

func (s *Service) cacheGet(ctx context.Context, key string, dst any) bool {
	if s.Cache == nil {
		return false
	}
	ok, err := s.Cache.Get(ctx, key, dst)
	if err != nil {
		telemetry.Warn("viewcache.get.failed", map[string]any{"key": key, "error": err.Error()})
		return false
	}
	return ok
}

func (s *Service) cacheSet(ctx context.Context, key string, value any) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, key, value, s.CacheTTL); err != nil {
		telemetry.Warn("viewcache.set.failed", map[string]any{"key": key, "error": err.Error()})
	}
}
