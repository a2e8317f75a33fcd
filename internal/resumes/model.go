package resumes

import "time"

// Resume is an uploaded CV owned by a job seeker.
type Resume struct {
	ID          int64         `json:"id"`
	JobSeekerID int64         `json:"jobSeekerId"`
	FileName    string        `json:"fileName"`
	MimeType    string        `json:"mimeType"`
	SizeBytes   int64         `json:"sizeBytes"`
	SHA256      string        `json:"sha256"`
	StorageKey  string        `json:"-"`
	Extracted   ExtractedData `json:"extracted"`
	RawText     string        `json:"-"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// ExtractedData is the structured content parsed from a resume by the client-side parser.
type ExtractedData struct {
	Skills     []string     `json:"skills" validate:"dive,required,max=100"`
	Experience []Experience `json:"experience" validate:"dive"`
	Education  []Education  `json:"education" validate:"dive"`
}

type Experience struct {
	Title       string `json:"title" validate:"required,max=200"`
	Company     string `json:"company" validate:"max=200"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
	Description string `json:"description,omitempty" validate:"max=5000"`
}

type Education struct {
	Institution string `json:"institution" validate:"required,max=200"`
	Degree      string `json:"degree,omitempty" validate:"max=200"`
	Field       string `json:"field,omitempty" validate:"max=200"`
	Year        int    `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
}
