// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strings"
	"time"

	"devflink/internal/errs"
	"devflink/internal/models"
	"devflink/internal/respond"
)

// cvLinkExpiry is how long a presigned CV download link stays valid.
const cvLinkExpiry = 15 * time.Minute

type statusRequest struct {
	Status string `json:"status"`
}

// --- Contact submissions ---

// ListSubmissions returns contact submissions, optionally narrowed by the
// status query parameter.
func (a *Admin) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	status := models.SubmissionStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		respond.Error(w, r, errs.Invalid("status", "status must be one of new, contacted, in_progress, completed"))
		return
	}

	subs, err := a.submissions.List(r.Context(), status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, subs)
}

// UpdateSubmissionStatus moves a submission to another status.
func (a *Admin) UpdateSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	sub, err := a.submissions.UpdateStatus(r.Context(), urlParam(r, "id"), models.SubmissionStatus(req.Status))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if sub == nil {
		notFound(w, "Submission")
		return
	}
	respond.JSON(w, http.StatusOK, sub)
}

// DeleteSubmission removes a contact submission.
func (a *Admin) DeleteSubmission(w http.ResponseWriter, r *http.Request) {
	ok, err := a.submissions.Delete(r.Context(), urlParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if !ok {
		notFound(w, "Submission")
		return
	}
	deleted(w, "Submission")
}

// --- Job applications ---

// ListApplications returns job applications, optionally narrowed by the
// job_id and status query parameters.
func (a *Admin) ListApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := models.ApplicationStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		respond.Error(w, r, errs.Invalid("status", "status must be one of new, reviewed, interview, rejected, hired"))
		return
	}

	apps, err := a.applications.List(r.Context(), q.Get("job_id"), status)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, apps)
}

// UpdateApplicationStatus moves an application along the hiring pipeline.
func (a *Admin) UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	app, err := a.applications.UpdateStatus(r.Context(), urlParam(r, "id"), models.ApplicationStatus(req.Status))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if app == nil {
		notFound(w, "Application")
		return
	}
	respond.JSON(w, http.StatusOK, app)
}

// DeleteApplication removes a job application. The CV object is kept.
func (a *Admin) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	ok, err := a.applications.Delete(r.Context(), urlParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if !ok {
		notFound(w, "Application")
		return
	}
	deleted(w, "Application")
}

// ApplicationCV redirects to the applicant's CV: a short-lived presigned
// link for uploaded files, or the link itself when the applicant gave an
// external URL.
func (a *Admin) ApplicationCV(w http.ResponseWriter, r *http.Request) {
	app, err := a.applications.Find(r.Context(), urlParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if app == nil {
		notFound(w, "Application")
		return
	}
	if app.CVURL == "" {
		notFound(w, "CV")
		return
	}

	if strings.HasPrefix(app.CVURL, "https://") || strings.HasPrefix(app.CVURL, "http://") {
		http.Redirect(w, r, app.CVURL, http.StatusFound)
		return
	}
	if a.storage == nil {
		storageUnavailable(w)
		return
	}

	link, err := a.storage.PresignedURL(r.Context(), app.CVURL, cvLinkExpiry)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	http.Redirect(w, r, link, http.StatusFound)
}
