package applications

import "time"

// ApplicationSummary is the outward-facing representation of an application row.
type ApplicationSummary struct {
	ApplicationID int64     `json:"applicationId"`
	JobID         int64     `json:"jobId"`
	JobSeekerID   int64     `json:"jobSeekerId"`
	ResumeID      *int64    `json:"resumeId,omitempty"`
	MatchScore    *float64  `json:"matchScore,omitempty"`
	Status        Status    `json:"status"`
	IsBookmark    bool      `json:"isBookmark"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func toSummary(app Application) ApplicationSummary {
	return ApplicationSummary{
		ApplicationID: app.ID,
		JobID:         app.JobID,
		JobSeekerID:   app.JobSeekerID,
		ResumeID:      app.ResumeID,
		MatchScore:    app.MatchScore,
		Status:        app.Status,
		IsBookmark:    app.IsBookmark,
		CreatedAt:     app.CreatedAt,
		UpdatedAt:     app.UpdatedAt,
	}
}

func toSummaries(apps []Application) []ApplicationSummary {
	out := make([]ApplicationSummary, 0, len(apps))
	for _, app := range apps {
		out = append(out, toSummary(app))
	}
	return out
}

type submitRequest struct {
	ExistingResumeID *int64 `json:"existingResumeId" validate:"required,gt=0"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=shortlisted rejected"`
}

type matchScoreRequest struct {
	MatchScore *float64 `json:"matchScore" validate:"required"`
}
