package applications

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/notifications"
	"jobboard-backend/internal/resumes"
	"jobboard-backend/internal/shared/metrics"
	"jobboard-backend/internal/shared/telemetry"
	"jobboard-backend/internal/users"
)

const (
	defaultRankTimeout   = 5 * time.Second
	defaultNotifyTimeout = 5 * time.Second
)

// ResumeSource resolves resume ownership and creates resumes from uploads.
type ResumeSource interface {
	Owner(ctx context.Context, resumeID int64) (int64, error)
	CreateFromUpload(ctx context.Context, jobSeekerID int64, in resumes.UploadInput) (resumes.Resume, error)
}

// JobDirectory looks up jobs and who posted them.
type JobDirectory interface {
	GetJob(ctx context.Context, jobID int64) (jobs.Job, error)
	GetRecruiter(ctx context.Context, recruiterID int64) (jobs.Recruiter, error)
	GetCompany(ctx context.Context, companyID int64) (jobs.Company, error)
}

// People resolves job seekers and user accounts.
type People interface {
	GetUser(ctx context.Context, userID int64) (users.User, error)
	GetJobSeeker(ctx context.Context, jobSeekerID int64) (users.JobSeeker, error)
}

// Ranker requests an asynchronous match score for an application.
type Ranker interface {
	RequestScore(ctx context.Context, applicationID int64) error
}

// Service owns the application lifecycle.
type Service struct {
	Repo     Repo
	Resumes  ResumeSource
	Jobs     JobDirectory
	People   People
	Ranker   Ranker
	Notifier notifications.Notifier

	RankTimeout   time.Duration
	NotifyTimeout time.Duration
	Now           func() time.Time

	wg sync.WaitGroup
}

// HasActiveApplication reports whether the pair has a received or shortlisted row.
func (s *Service) HasActiveApplication(ctx context.Context, jobSeekerID, jobID int64) (bool, error) {
	if jobSeekerID <= 0 || jobID <= 0 {
		return false, ErrValidation
	}
	return s.Repo.HasActive(ctx, jobSeekerID, jobID)
}

// Submit applies to a job. A bookmark-only row for the pair is promoted in place,
// otherwise a new row is inserted. Ranking and notifications run after the write and
// never fail the submission.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (Application, error) {
	started := time.Now()
	if in.JobSeekerID <= 0 || in.JobID <= 0 {
		return Application{}, fmt.Errorf("%w: job seeker and job are required", ErrValidation)
	}
	if (in.ExistingResumeID == nil) == (in.Upload == nil) {
		return Application{}, fmt.Errorf("%w: provide exactly one of an existing resume or an upload", ErrValidation)
	}

	job, err := s.Jobs.GetJob(ctx, in.JobID)
	if err != nil {
		return Application{}, mapLookupError(err)
	}

	active, err := s.Repo.HasActive(ctx, in.JobSeekerID, in.JobID)
	if err != nil {
		return Application{}, err
	}
	if active {
		metrics.IncApplicationConflict()
		return Application{}, ErrConflict
	}

	resumeID, err := s.resolveResume(ctx, in)
	if err != nil {
		return Application{}, err
	}

	app, promoted, err := s.Repo.SubmitForPair(ctx, in.JobSeekerID, in.JobID, resumeID, s.now())
	if err != nil {
		if errors.Is(err, ErrConflict) {
			metrics.IncApplicationConflict()
		}
		return Application{}, err
	}

	metrics.IncApplicationSubmitted(promoted)
	metrics.ObserveSubmitDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("application.submitted", map[string]any{
		"request_id":     telemetry.RequestIDFromContext(ctx),
		"application_id": app.ID,
		"job_id":         app.JobID,
		"job_seeker_id":  app.JobSeekerID,
		"resume_id":      resumeID,
		"promoted":       promoted,
	})

	s.afterSubmit(ctx, app, job)
	return app, nil
}

func (s *Service) resolveResume(ctx context.Context, in SubmitInput) (int64, error) {
	if in.ExistingResumeID != nil {
		owner, err := s.Resumes.Owner(ctx, *in.ExistingResumeID)
		if err != nil {
			return 0, mapLookupError(err)
		}
		if owner != in.JobSeekerID {
			return 0, ErrForbidden
		}
		return *in.ExistingResumeID, nil
	}
	created, err := s.Resumes.CreateFromUpload(ctx, in.JobSeekerID, *in.Upload)
	if err != nil {
		return 0, fmt.Errorf("create resume: %w", err)
	}
	return created.ID, nil
}

// Withdraw moves the job seeker's own non-terminal application to withdrawn.
// Rows owned by someone else are reported as not found.
func (s *Service) Withdraw(ctx context.Context, applicationID, jobSeekerID int64) (Application, error) {
	app, err := s.Repo.Get(ctx, applicationID)
	if err != nil {
		return Application{}, err
	}
	if app.JobSeekerID != jobSeekerID {
		return Application{}, ErrNotFound
	}
	if app.Status.Terminal() {
		return Application{}, ErrInvalidState
	}
	updated, err := s.Repo.TransitionStatus(ctx, app.ID, []Status{app.Status}, StatusWithdrawn, s.now())
	if err != nil {
		return Application{}, err
	}
	metrics.IncApplicationWithdrawn()
	telemetry.Info("application.withdrawn", map[string]any{
		"request_id":        telemetry.RequestIDFromContext(ctx),
		"application_id":    updated.ID,
		"job_id":            updated.JobID,
		"job_seeker_id":     updated.JobSeekerID,
		"status_transition": string(app.Status) + "->" + string(StatusWithdrawn),
	})
	return updated, nil
}

// ToggleBookmark flips the bookmark flag on every row of the pair, or creates a
// bookmark-only row when the pair has none. It returns the resulting flag.
func (s *Service) ToggleBookmark(ctx context.Context, jobSeekerID, jobID int64) (bool, error) {
	if jobSeekerID <= 0 || jobID <= 0 {
		return false, ErrValidation
	}
	now := s.now()
	latest, err := s.Repo.Latest(ctx, jobSeekerID, jobID)
	if err == nil {
		value := !latest.IsBookmark
		if err := s.Repo.SetBookmark(ctx, jobSeekerID, jobID, value, now); err != nil {
			return false, err
		}
		metrics.IncBookmarkToggled()
		return value, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}

	if _, err := s.Jobs.GetJob(ctx, jobID); err != nil {
		return false, mapLookupError(err)
	}
	var resumeID *int64
	if s.People != nil {
		js, err := s.People.GetJobSeeker(ctx, jobSeekerID)
		switch {
		case err == nil:
			resumeID = js.ProfileResumeID
		case !errors.Is(err, users.ErrNotFound):
			return false, err
		}
	}
	if _, err := s.Repo.InsertBookmark(ctx, Application{
		JobID:       jobID,
		JobSeekerID: jobSeekerID,
		ResumeID:    resumeID,
		Status:      StatusUnknown,
		IsBookmark:  true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}); err != nil {
		return false, err
	}
	metrics.IncBookmarkToggled()
	return true, nil
}

// ListMine returns every row of the job seeker, newest first, optionally filtered by status.
func (s *Service) ListMine(ctx context.Context, jobSeekerID int64, statuses []Status) ([]Application, error) {
	if jobSeekerID <= 0 {
		return nil, ErrValidation
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, st)
		}
	}
	out, err := s.Repo.ListByJobSeeker(ctx, jobSeekerID, statuses)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Application{}
	}
	return out, nil
}

// UpdateStatus lets the recruiter who owns the job shortlist or reject an application.
func (s *Service) UpdateStatus(ctx context.Context, applicationID, recruiterID int64, status Status) (Application, error) {
	var from []Status
	switch status {
	case StatusShortlisted:
		from = []Status{StatusReceived}
	case StatusRejected:
		from = []Status{StatusReceived, StatusShortlisted}
	default:
		return Application{}, fmt.Errorf("%w: status must be shortlisted or rejected", ErrValidation)
	}

	app, err := s.Repo.Get(ctx, applicationID)
	if err != nil {
		return Application{}, err
	}
	job, err := s.ownedJob(ctx, app.JobID, recruiterID)
	if err != nil {
		return Application{}, err
	}
	if app.Status.Terminal() || app.Status == StatusUnknown || app.Status == status {
		return Application{}, ErrInvalidState
	}
	updated, err := s.Repo.TransitionStatus(ctx, app.ID, from, status, s.now())
	if err != nil {
		return Application{}, err
	}
	telemetry.Info("application.status_changed", map[string]any{
		"request_id":        telemetry.RequestIDFromContext(ctx),
		"application_id":    updated.ID,
		"job_id":            updated.JobID,
		"recruiter_id":      recruiterID,
		"status_transition": string(app.Status) + "->" + string(status),
	})
	s.afterStatusChange(ctx, updated, job)
	return updated, nil
}

// ListForJob lists real applications (not bookmark-only rows) for the recruiter's job.
func (s *Service) ListForJob(ctx context.Context, jobID, recruiterID int64) ([]Application, error) {
	if _, err := s.ownedJob(ctx, jobID, recruiterID); err != nil {
		return nil, err
	}
	out, err := s.Repo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Application{}
	}
	return out, nil
}

// RecordMatchScore stores the score computed by the ranking service and returns the updated row.
func (s *Service) RecordMatchScore(ctx context.Context, applicationID int64, score float64) (Application, error) {
	if applicationID <= 0 || math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return Application{}, fmt.Errorf("%w: invalid match score", ErrValidation)
	}
	if err := s.Repo.SetMatchScore(ctx, applicationID, score, s.now()); err != nil {
		return Application{}, err
	}
	return s.Repo.Get(ctx, applicationID)
}

// Delete removes a row. Administrative only.
func (s *Service) Delete(ctx context.Context, applicationID int64) error {
	if applicationID <= 0 {
		return ErrValidation
	}
	if err := s.Repo.Delete(ctx, applicationID); err != nil {
		return err
	}
	telemetry.Warn("application.deleted", map[string]any{
		"request_id":     telemetry.RequestIDFromContext(ctx),
		"application_id": applicationID,
	})
	return nil
}

// ViewerStates summarizes the job seeker's latest row per job for job listings.
func (s *Service) ViewerStates(ctx context.Context, jobSeekerID int64) (map[int64]jobs.ViewerState, error) {
	rows, err := s.Repo.ListByJobSeeker(ctx, jobSeekerID, nil)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]jobs.ViewerState, len(rows))
	for _, row := range rows {
		state, seen := out[row.JobID]
		if !seen {
			id := row.ID
			state = jobs.ViewerState{ApplicationID: &id, Status: string(row.Status), IsBookmark: row.IsBookmark}
		}
		if row.Status.Active() {
			state.HasActive = true
		}
		out[row.JobID] = state
	}
	return out, nil
}

// Wait blocks until in-flight side effects finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) ownedJob(ctx context.Context, jobID, recruiterID int64) (jobs.Job, error) {
	job, err := s.Jobs.GetJob(ctx, jobID)
	if err != nil {
		return jobs.Job{}, mapLookupError(err)
	}
	if recruiterID <= 0 || job.RecruiterID != recruiterID {
		return jobs.Job{}, ErrForbidden
	}
	return job, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func mapLookupError(err error) error {
	switch {
	case errors.Is(err, jobs.ErrNotFound), errors.Is(err, resumes.ErrNotFound), errors.Is(err, users.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}

var _ jobs.ViewerStates = (*Service)(nil)
