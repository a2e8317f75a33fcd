package jobs

import "time"

type Job struct {
	ID          int64     `json:"id"`
	RecruiterID int64     `json:"recruiterId"`
	CompanyID   int64     `json:"companyId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	IsOpen      bool      `json:"isOpen"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Recruiter struct {
	ID        int64 `json:"id"`
	UserID    int64 `json:"userId"`
	CompanyID int64 `json:"companyId"`
}

type Company struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ViewerState is the viewer's relationship to a job, derived from their application rows.
type ViewerState struct {
	ApplicationID *int64 `json:"applicationId,omitempty"`
	Status        string `json:"status,omitempty"`
	IsBookmark    bool   `json:"isBookmark"`
	HasActive     bool   `json:"hasActive"`
}

// Listing is a job as shown to a particular viewer.
type Listing struct {
	Job
	CompanyName string       `json:"companyName"`
	Viewer      *ViewerState `json:"viewer,omitempty"`
}
