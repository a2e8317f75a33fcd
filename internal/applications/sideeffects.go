package applications

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/notifications"
	"jobboard-backend/internal/shared/metrics"
	"jobboard-backend/internal/shared/telemetry"
)

const (
	sideEffectRanking      = "ranking"
	sideEffectNotification = "notification"
)

// afterSubmit runs ranking and notification dispatch concurrently. Each one gets its own
// timeout and a failure in one does not cancel the other.
func (s *Service) afterSubmit(ctx context.Context, app Application, job jobs.Job) {
	bg := telemetry.Detach(ctx)
	s.goSideEffect(bg, app, func() {
		var g errgroup.Group
		g.Go(func() error { return s.requestRanking(bg, app) })
		g.Go(func() error { return s.notifySubmitted(bg, app, job) })
		_ = g.Wait()
	})
}

func (s *Service) afterStatusChange(ctx context.Context, app Application, job jobs.Job) {
	bg := telemetry.Detach(ctx)
	s.goSideEffect(bg, app, func() {
		_ = s.notifyStatusChanged(bg, app, job)
	})
}

func (s *Service) goSideEffect(ctx context.Context, app Application, fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				telemetry.Error("application.side_effect.panic", map[string]any{
					"request_id":     telemetry.RequestIDFromContext(ctx),
					"application_id": app.ID,
					"panic":          fmt.Sprint(r),
				})
			}
		}()
		fn()
	}()
}

func (s *Service) requestRanking(ctx context.Context, app Application) error {
	if s.Ranker == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, orDefault(s.RankTimeout, defaultRankTimeout))
	defer cancel()

	if err := s.Ranker.RequestScore(ctx, app.ID); err != nil {
		err = fmt.Errorf("%w: ranking application %d: %w", ErrUpstreamDegraded, app.ID, err)
		s.logDegraded(ctx, sideEffectRanking, app, err)
		return err
	}
	return nil
}

func (s *Service) notifySubmitted(ctx context.Context, app Application, job jobs.Job) error {
	if s.Notifier == nil || s.People == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, orDefault(s.NotifyTimeout, defaultNotifyTimeout))
	defer cancel()

	subject := notifications.Subject{JobID: job.ID, JobTitle: job.Title, ApplicationID: app.ID, Date: app.UpdatedAt}
	var errs []error

	recruiter, err := s.Jobs.GetRecruiter(ctx, job.RecruiterID)
	if err != nil {
		errs = append(errs, fmt.Errorf("recruiter %d: %w", job.RecruiterID, err))
	} else if company, err := s.Jobs.GetCompany(ctx, recruiter.CompanyID); err != nil {
		errs = append(errs, fmt.Errorf("company %d: %w", recruiter.CompanyID, err))
	} else {
		subject.CompanyName = company.Name
	}

	applicantName := ""
	seeker, err := s.seekerRecipient(ctx, app.JobSeekerID)
	if err != nil {
		errs = append(errs, err)
	} else {
		applicantName = seeker.Name
		if err := s.Notifier.Notify(ctx, notifications.ApplicationSubmitted(seeker, subject)); err != nil {
			errs = append(errs, fmt.Errorf("notify job seeker: %w", err))
		}
	}

	if recruiter.UserID > 0 {
		user, err := s.People.GetUser(ctx, recruiter.UserID)
		if err != nil {
			errs = append(errs, fmt.Errorf("recruiter user %d: %w", recruiter.UserID, err))
		} else {
			to := notifications.Recipient{UserID: user.ID, Email: user.Email, Name: user.FullName}
			if err := s.Notifier.Notify(ctx, notifications.NewApplicant(to, applicantName, subject)); err != nil {
				errs = append(errs, fmt.Errorf("notify recruiter: %w", err))
			}
		}
	}

	if len(errs) == 0 {
		return nil
	}
	err = fmt.Errorf("%w: notify application %d: %w", ErrUpstreamDegraded, app.ID, errors.Join(errs...))
	s.logDegraded(ctx, sideEffectNotification, app, err)
	return err
}

func (s *Service) notifyStatusChanged(ctx context.Context, app Application, job jobs.Job) error {
	if s.Notifier == nil || s.People == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, orDefault(s.NotifyTimeout, defaultNotifyTimeout))
	defer cancel()

	seeker, err := s.seekerRecipient(ctx, app.JobSeekerID)
	if err == nil {
		subject := notifications.Subject{JobID: job.ID, JobTitle: job.Title, ApplicationID: app.ID, Date: app.UpdatedAt}
		err = s.Notifier.Notify(ctx, notifications.StatusChanged(seeker, string(app.Status), subject))
	}
	if err != nil {
		err = fmt.Errorf("%w: notify status change %d: %w", ErrUpstreamDegraded, app.ID, err)
		s.logDegraded(ctx, sideEffectNotification, app, err)
		return err
	}
	return nil
}

func (s *Service) seekerRecipient(ctx context.Context, jobSeekerID int64) (notifications.Recipient, error) {
	js, err := s.People.GetJobSeeker(ctx, jobSeekerID)
	if err != nil {
		return notifications.Recipient{}, fmt.Errorf("job seeker %d: %w", jobSeekerID, err)
	}
	user, err := s.People.GetUser(ctx, js.UserID)
	if err != nil {
		return notifications.Recipient{}, fmt.Errorf("job seeker user %d: %w", js.UserID, err)
	}
	return notifications.Recipient{UserID: user.ID, Email: user.Email, Name: user.FullName}, nil
}

func (s *Service) logDegraded(ctx context.Context, kind string, app Application, err error) {
	metrics.IncSideEffectFailure(kind)
	telemetry.Warn("application.side_effect.failed", map[string]any{
		"request_id":     telemetry.RequestIDFromContext(ctx),
		"side_effect":    kind,
		"application_id": app.ID,
		"job_id":         app.JobID,
		"job_seeker_id":  app.JobSeekerID,
		"error":          err.Error(),
	})
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}
