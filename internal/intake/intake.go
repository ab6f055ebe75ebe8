// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package intake validates and stores the public contact and job
// application forms, then announces each stored submission.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"devflink/internal/errs"
	"devflink/internal/models"
	"devflink/internal/notify"
	"devflink/internal/store"
)

// Field limits, counted in characters.
const (
	maxShort   = 200
	maxURL     = 2_000
	maxMessage = 10_000
)

// ContactForm is the public contact form as submitted.
type ContactForm struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company"`
	Phone       string `json:"phone"`
	ProjectType string `json:"project_type"`
	Budget      string `json:"budget"`
	Timeline    string `json:"timeline"`
	Message     string `json:"message"`
}

// ApplicationForm is the public job application form as submitted.
type ApplicationForm struct {
	JobID          string `json:"job_id"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Location       string `json:"location"`
	Experience     string `json:"experience"`
	CurrentRole    string `json:"current_role"`
	ExpectedSalary string `json:"expected_salary"`
	AvailableFrom  string `json:"available_from"`
	CoverLetter    string `json:"cover_letter"`
	LinkedInURL    string `json:"linkedin_url"`
	PortfolioURL   string `json:"portfolio_url"`
	CVURL          string `json:"cv_url"`
}

// Intake accepts form submissions.
type Intake struct {
	contacts     *store.SubmissionStore
	applications *store.ApplicationStore
	jobs         *store.JobStore
	publisher    notify.Publisher
}

// New creates an Intake. A nil publisher discards events.
func New(contacts *store.SubmissionStore, applications *store.ApplicationStore, jobs *store.JobStore, publisher notify.Publisher) *Intake {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Intake{
		contacts:     contacts,
		applications: applications,
		jobs:         jobs,
		publisher:    publisher,
	}
}

// Submit validates and stores a contact form. Nothing is written when
// validation fails.
func (in *Intake) Submit(ctx context.Context, f ContactForm) (*models.ContactSubmission, error) {
	f = f.trimmed()

	if err := errs.Missing(missing(
		"name", f.Name,
		"email", f.Email,
		"message", f.Message,
	)...); err != nil {
		return nil, err
	}
	if err := checkEmail(f.Email); err != nil {
		return nil, err
	}
	if err := checkLengths([]limit{
		{"name", f.Name, maxShort},
		{"company", f.Company, maxShort},
		{"phone", f.Phone, maxShort},
		{"project_type", f.ProjectType, maxShort},
		{"budget", f.Budget, maxShort},
		{"timeline", f.Timeline, maxShort},
		{"message", f.Message, maxMessage},
	}); err != nil {
		return nil, err
	}

	sub, err := in.contacts.Create(ctx, &models.ContactSubmission{
		Name:        f.Name,
		Email:       f.Email,
		Company:     f.Company,
		Phone:       f.Phone,
		ProjectType: f.ProjectType,
		Budget:      f.Budget,
		Timeline:    f.Timeline,
		Message:     f.Message,
		Status:      models.SubmissionNew,
	})
	if err != nil {
		return nil, fmt.Errorf("store contact submission: %w", err)
	}

	in.announce(ctx, notify.ContactCreated, sub.ID, sub)
	return sub, nil
}

// Apply validates and stores a job application. The job must exist and
// be published.
func (in *Intake) Apply(ctx context.Context, f ApplicationForm) (*models.JobApplication, error) {
	f = f.trimmed()

	if err := errs.Missing(missing(
		"job_id", f.JobID,
		"first_name", f.FirstName,
		"last_name", f.LastName,
		"email", f.Email,
		"cover_letter", f.CoverLetter,
	)...); err != nil {
		return nil, err
	}
	if err := checkEmail(f.Email); err != nil {
		return nil, err
	}
	if err := checkLengths([]limit{
		{"first_name", f.FirstName, maxShort},
		{"last_name", f.LastName, maxShort},
		{"phone", f.Phone, maxShort},
		{"location", f.Location, maxShort},
		{"experience", f.Experience, maxShort},
		{"current_role", f.CurrentRole, maxShort},
		{"expected_salary", f.ExpectedSalary, maxShort},
		{"available_from", f.AvailableFrom, maxShort},
		{"linkedin_url", f.LinkedInURL, maxURL},
		{"portfolio_url", f.PortfolioURL, maxURL},
		{"cv_url", f.CVURL, maxURL},
		{"cover_letter", f.CoverLetter, maxMessage},
	}); err != nil {
		return nil, err
	}

	job, err := in.jobs.Find(ctx, f.JobID)
	if err != nil {
		return nil, fmt.Errorf("look up job: %w", err)
	}
	if job == nil || !job.Published {
		return nil, fmt.Errorf("job %s: %w", f.JobID, errs.ErrNotFound)
	}

	app, err := in.applications.Create(ctx, &models.JobApplication{
		JobID:          job.ID,
		FirstName:      f.FirstName,
		LastName:       f.LastName,
		Email:          f.Email,
		Phone:          f.Phone,
		Location:       f.Location,
		Experience:     f.Experience,
		CurrentRole:    f.CurrentRole,
		ExpectedSalary: f.ExpectedSalary,
		AvailableFrom:  f.AvailableFrom,
		CoverLetter:    f.CoverLetter,
		LinkedInURL:    f.LinkedInURL,
		PortfolioURL:   f.PortfolioURL,
		CVURL:          f.CVURL,
		Status:         models.ApplicationNew,
	})
	if err != nil {
		return nil, fmt.Errorf("store application: %w", err)
	}

	in.announce(ctx, notify.ApplicationCreated, app.ID, struct {
		*models.JobApplication
		JobTitle string `json:"job_title"`
	}{app, job.Title})
	return app, nil
}

// announce publishes an event for a stored record. The record is already
// saved, so failures are logged and not returned.
func (in *Intake) announce(ctx context.Context, eventType, id string, v any) {
	ev, err := notify.NewEvent(eventType, v)
	if err == nil {
		err = in.publisher.Publish(ctx, ev)
	}
	if err != nil {
		slog.Error("publish submission event failed", "event", eventType, "id", id, "error", err)
	}
}

func (f ContactForm) trimmed() ContactForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Company = strings.TrimSpace(f.Company)
	f.Phone = strings.TrimSpace(f.Phone)
	f.ProjectType = strings.TrimSpace(f.ProjectType)
	f.Budget = strings.TrimSpace(f.Budget)
	f.Timeline = strings.TrimSpace(f.Timeline)
	f.Message = strings.TrimSpace(f.Message)
	return f
}

func (f ApplicationForm) trimmed() ApplicationForm {
	for _, p := range []*string{
		&f.JobID, &f.FirstName, &f.LastName, &f.Email, &f.Phone, &f.Location,
		&f.Experience, &f.CurrentRole, &f.ExpectedSalary, &f.AvailableFrom,
		&f.CoverLetter, &f.LinkedInURL, &f.PortfolioURL, &f.CVURL,
	} {
		*p = strings.TrimSpace(*p)
	}
	return f
}

// missing takes name/value pairs and returns the names whose value is
// empty, in order.
func missing(pairs ...string) []string {
	var out []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			out = append(out, pairs[i])
		}
	}
	return out
}

type limit struct {
	field string
	value string
	max   int
}

func checkLengths(limits []limit) error {
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return errs.Invalid(l.field, fmt.Sprintf("%s is too long (max %d characters)", l.field, l.max))
		}
	}
	return nil
}

func checkEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return errs.Invalid("email", "email must be a valid address")
	}
	return nil
}
