package notifications

import (
	"fmt"
	"strings"
	"time"
)

// Notification kinds.
const (
	KindApplicationSubmitted = "application_submitted"
	KindNewApplicant         = "new_applicant"
	KindStatusChanged        = "application_status_changed"
)

// Notification is a single inbox entry for a user.
type Notification struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"userId"`
	Kind           string     `json:"kind"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	JobID          *int64     `json:"jobId,omitempty"`
	ApplicationID  *int64     `json:"applicationId,omitempty"`
	// RecipientEmail travels with queued messages; the inbox does not store it.
	RecipientEmail string     `json:"recipientEmail,omitempty"`
	DedupKey       string     `json:"-"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Recipient identifies the user a notification is addressed to.
type Recipient struct {
	UserID int64
	Email  string
	Name   string
}

// Subject describes the job an event is about.
type Subject struct {
	JobID         int64
	JobTitle      string
	CompanyName   string
	ApplicationID int64
	// Date is when the event happened; zero leaves it out of the body.
	Date time.Time
}

// ApplicationSubmitted confirms a submission to the job seeker.
func ApplicationSubmitted(to Recipient, s Subject) Notification {
	return Notification{
		UserID:         to.UserID,
		Kind:           KindApplicationSubmitted,
		Title:          "Application submitted",
		Body:           fmt.Sprintf("Your application for %s at %s was received%s.", s.JobTitle, companyOrDefault(s.CompanyName), onDate(s.Date)),
		JobID:          ptr(s.JobID),
		ApplicationID:  ptr(s.ApplicationID),
		RecipientEmail: to.Email,
	}
}

// NewApplicant tells the recruiter that applicant applied to their job.
func NewApplicant(to Recipient, applicant string, s Subject) Notification {
	name := strings.TrimSpace(applicant)
	if name == "" {
		name = "A candidate"
	}
	return Notification{
		UserID:         to.UserID,
		Kind:           KindNewApplicant,
		Title:          "New applicant",
		Body:           fmt.Sprintf("%s applied to %s%s.", name, s.JobTitle, onDate(s.Date)),
		JobID:          ptr(s.JobID),
		ApplicationID:  ptr(s.ApplicationID),
		RecipientEmail: to.Email,
	}
}

// StatusChanged tells the job seeker a recruiter moved their application.
func StatusChanged(to Recipient, status string, s Subject) Notification {
	return Notification{
		UserID:         to.UserID,
		Kind:           KindStatusChanged,
		Title:          "Application updated",
		Body:           fmt.Sprintf("Your application for %s is now %s%s.", s.JobTitle, status, onDate(s.Date)),
		JobID:          ptr(s.JobID),
		ApplicationID:  ptr(s.ApplicationID),
		RecipientEmail: to.Email,
	}
}

func onDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return " on " + t.UTC().Format("Jan 2, 2006")
}

func companyOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return "the company"
	}
	return name
}

func ptr(v int64) *int64 {
	if v <= 0 {
		return nil
	}
	return &v
}
