package users

import "time"

type User struct {
	ID          int64     `json:"id"`
	AuthSubject string    `json:"-"`
	Email       string    `json:"email"`
	FullName    string    `json:"fullName"`
	PictureURL  string    `json:"pictureUrl"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// JobSeeker is the applicant profile attached to a user.
type JobSeeker struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"userId"`
	ProfileResumeID *int64    `json:"profileResumeId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
