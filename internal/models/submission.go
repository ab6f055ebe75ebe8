// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// SubmissionStatus tracks how far the team has followed up on a contact
// submission. Any status may follow any other.
type SubmissionStatus string

const (
	SubmissionNew        SubmissionStatus = "new"
	SubmissionContacted  SubmissionStatus = "contacted"
	SubmissionInProgress SubmissionStatus = "in_progress"
	SubmissionCompleted  SubmissionStatus = "completed"
)

// Valid reports whether s is a known submission status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionNew, SubmissionContacted, SubmissionInProgress, SubmissionCompleted:
		return true
	}
	return false
}

// ContactSubmission is a message sent through the public contact form.
type ContactSubmission struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Company     string           `json:"company,omitempty"`
	Phone       string           `json:"phone,omitempty"`
	ProjectType string           `json:"project_type,omitempty"`
	Budget      string           `json:"budget,omitempty"`
	Timeline    string           `json:"timeline,omitempty"`
	Message     string           `json:"message"`
	Status      SubmissionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ApplicationStatus is the hiring pipeline stage of a job application.
type ApplicationStatus string

const (
	ApplicationNew       ApplicationStatus = "new"
	ApplicationReviewed  ApplicationStatus = "reviewed"
	ApplicationInterview ApplicationStatus = "interview"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationHired     ApplicationStatus = "hired"
)

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationNew, ApplicationReviewed, ApplicationInterview, ApplicationRejected, ApplicationHired:
		return true
	}
	return false
}

// JobApplication is a candidate's application to a job post. JobID refers
// to a record in the job-posts collection.
type JobApplication struct {
	ID             string            `json:"id"`
	JobID          string            `json:"job_id"`
	FirstName      string            `json:"first_name"`
	LastName       string            `json:"last_name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone,omitempty"`
	Location       string            `json:"location,omitempty"`
	Experience     string            `json:"experience,omitempty"`
	CurrentRole    string            `json:"current_role,omitempty"`
	ExpectedSalary string            `json:"expected_salary,omitempty"`
	AvailableFrom  string            `json:"available_from,omitempty"`
	CoverLetter    string            `json:"cover_letter"`
	LinkedInURL    string            `json:"linkedin_url,omitempty"`
	PortfolioURL   string            `json:"portfolio_url,omitempty"`
	CVURL          string            `json:"cv_url,omitempty"`
	Status         ApplicationStatus `json:"status"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
