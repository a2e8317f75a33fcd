package applications

import (
	"fmt"
	"strings"
	"time"

	"jobboard-backend/internal/resumes"
)

// Status is the lifecycle state of an application row.
type Status string

const (
	StatusUnknown     Status = "unknown"
	StatusReceived    Status = "received"
	StatusShortlisted Status = "shortlisted"
	StatusRejected    Status = "rejected"
	StatusWithdrawn   Status = "withdrawn"
)

// Active reports whether the status counts toward the one-active-application rule.
func (s Status) Active() bool {
	return s == StatusReceived || s == StatusShortlisted
}

// Terminal reports whether no transition out of the status is allowed.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusWithdrawn
}

func (s Status) Valid() bool {
	switch s {
	case StatusUnknown, StatusReceived, StatusShortlisted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// ParseStatuses splits a comma-separated filter such as "received,shortlisted".
func ParseStatuses(raw string) ([]Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []Status
	seen := map[Status]bool{}
	for _, part := range strings.Split(raw, ",") {
		s := Status(strings.ToLower(strings.TrimSpace(part)))
		if s == "" {
			continue
		}
		if !s.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, part)
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, nil
}

// Application is one row of the job seeker / job relationship. A pair may have many
// historical rows but at most one active one.
type Application struct {
	ID          int64     `json:"applicationId"`
	JobID       int64     `json:"jobId"`
	JobSeekerID int64     `json:"jobSeekerId"`
	ResumeID    *int64    `json:"resumeId,omitempty"`
	MatchScore  *float64  `json:"matchScore,omitempty"`
	Status      Status    `json:"status"`
	IsBookmark  bool      `json:"isBookmark"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SubmitInput carries exactly one resume source: ExistingResumeID or Upload.
type SubmitInput struct {
	JobSeekerID      int64
	JobID            int64
	ExistingResumeID *int64
	Upload           *resumes.UploadInput
}
