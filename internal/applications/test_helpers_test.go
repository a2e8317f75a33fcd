package applications

import (
	"context"
	"errors"
	"sync"
	"time"

	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/notifications"
	"jobboard-backend/internal/resumes"
	"jobboard-backend/internal/users"
)

type stubJobs struct {
	jobs       map[int64]jobs.Job
	recruiters map[int64]jobs.Recruiter
	companies  map[int64]jobs.Company
}

func (s *stubJobs) GetJob(ctx context.Context, jobID int64) (jobs.Job, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return jobs.Job{}, jobs.ErrNotFound
	}
	return job, nil
}

func (s *stubJobs) GetRecruiter(ctx context.Context, recruiterID int64) (jobs.Recruiter, error) {
	rec, ok := s.recruiters[recruiterID]
	if !ok {
		return jobs.Recruiter{}, jobs.ErrNotFound
	}
	return rec, nil
}

func (s *stubJobs) GetCompany(ctx context.Context, companyID int64) (jobs.Company, error) {
	c, ok := s.companies[companyID]
	if !ok {
		return jobs.Company{}, jobs.ErrNotFound
	}
	return c, nil
}

type stubPeople struct {
	users   map[int64]users.User
	seekers map[int64]users.JobSeeker
}

func (s *stubPeople) GetUser(ctx context.Context, userID int64) (users.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (s *stubPeople) GetJobSeeker(ctx context.Context, jobSeekerID int64) (users.JobSeeker, error) {
	js, ok := s.seekers[jobSeekerID]
	if !ok {
		return users.JobSeeker{}, users.ErrNotFound
	}
	return js, nil
}

type stubResumes struct {
	mu      sync.Mutex
	owners  map[int64]int64
	nextID  int64
	uploads int
	err     error
}

func (s *stubResumes) Owner(ctx context.Context, resumeID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owners[resumeID]
	if !ok {
		return 0, resumes.ErrNotFound
	}
	return owner, nil
}

func (s *stubResumes) CreateFromUpload(ctx context.Context, jobSeekerID int64, in resumes.UploadInput) (resumes.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return resumes.Resume{}, s.err
	}
	s.uploads++
	s.nextID++
	s.owners[s.nextID] = jobSeekerID
	return resumes.Resume{ID: s.nextID, JobSeekerID: jobSeekerID, FileName: in.FileName}, nil
}

type stubRanker struct {
	mu    sync.Mutex
	calls []int64
	err   error
}

func (s *stubRanker) RequestScore(ctx context.Context, applicationID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, applicationID)
	return s.err
}

func (s *stubRanker) Calls() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.calls...)
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notifications.Notification
	err  error
}

func (r *recordingNotifier) Notify(ctx context.Context, n notifications.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) Sent() []notifications.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notifications.Notification(nil), r.sent...)
}

var errUpstream = errors.New("upstream unavailable")

type fixture struct {
	svc       *Service
	repo      *MemoryRepo
	jobs      *stubJobs
	people    *stubPeople
	resumes   *stubResumes
	ranker    *stubRanker
	notifier  *recordingNotifier
	clockTick time.Time
}

// newFixture seeds job seeker 42 (user 3, resume 9), a second seeker 43 (user 4, resume 10),
// recruiter 5 (user 100) at company 1 owning job 7, and recruiter 6 (user 101) with no jobs.
func newFixture() *fixture {
	f := &fixture{
		repo: NewMemoryRepo(),
		jobs: &stubJobs{
			jobs: map[int64]jobs.Job{
				7: {ID: 7, RecruiterID: 5, CompanyID: 1, Title: "Go Engineer", IsOpen: true},
			},
			recruiters: map[int64]jobs.Recruiter{
				5: {ID: 5, UserID: 100, CompanyID: 1},
				6: {ID: 6, UserID: 101, CompanyID: 1},
			},
			companies: map[int64]jobs.Company{1: {ID: 1, Name: "Acme"}},
		},
		people: &stubPeople{
			users: map[int64]users.User{
				3:   {ID: 3, Email: "ana@example.test", FullName: "Ana Applicant"},
				4:   {ID: 4, FullName: "Ben Builder"},
				100: {ID: 100, Email: "rita@example.test", FullName: "Rita Recruiter"},
			},
			seekers: map[int64]users.JobSeeker{
				42: {ID: 42, UserID: 3},
				43: {ID: 43, UserID: 4},
			},
		},
		resumes:   &stubResumes{owners: map[int64]int64{9: 42, 10: 43}, nextID: 100},
		ranker:    &stubRanker{},
		notifier:  &recordingNotifier{},
		clockTick: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	f.svc = &Service{
		Repo:          f.repo,
		Resumes:       f.resumes,
		Jobs:          f.jobs,
		People:        f.people,
		Ranker:        f.ranker,
		Notifier:      f.notifier,
		RankTimeout:   time.Second,
		NotifyTimeout: time.Second,
		Now:           f.now,
	}
	return f
}

// now advances one second per call so rows get distinct timestamps.
func (f *fixture) now() time.Time {
	f.clockTick = f.clockTick.Add(time.Second)
	return f.clockTick
}

func resumeRef(id int64) *int64 {
	return &id
}

func fixedTime() time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
}
