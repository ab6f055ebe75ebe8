// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"devflink/internal/intake"
	"devflink/internal/respond"
	"devflink/internal/storage"
)

// pdfMagic opens every PDF file.
var pdfMagic = []byte("%PDF-")

// Forms handles the public contact and careers forms.
type Forms struct {
	intake  *intake.Intake
	storage *storage.Client
}

// NewForms creates a new Forms handler group. storageClient may be nil if
// S3 is not configured, in which case CV uploads answer 503.
func NewForms(in *intake.Intake, storageClient *storage.Client) *Forms {
	return &Forms{intake: in, storage: storageClient}
}

// Contact accepts the contact form.
func (f *Forms) Contact(w http.ResponseWriter, r *http.Request) {
	var form intake.ContactForm
	if err := respond.Decode(w, r, &form); err != nil {
		respond.Error(w, r, err)
		return
	}

	sub, err := f.intake.Submit(r.Context(), form)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]string{
		"message": "Thank you for your message. We will get back to you soon.",
		"id":      sub.ID,
	})
}

// Apply accepts a job application.
func (f *Forms) Apply(w http.ResponseWriter, r *http.Request) {
	var form intake.ApplicationForm
	if err := respond.Decode(w, r, &form); err != nil {
		respond.Error(w, r, err)
		return
	}

	app, err := f.intake.Apply(r.Context(), form)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]string{
		"message": "Your application has been received.",
		"id":      app.ID,
	})
}

// UploadCV stores a PDF CV in the private bucket and returns the key to
// send back as cv_url with the application.
func (f *Forms) UploadCV(w http.ResponseWriter, r *http.Request) {
	if f.storage == nil {
		storageUnavailable(w)
		return
	}

	data, ok := readUpload(w, r, "file")
	if !ok {
		return
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		respond.JSON(w, http.StatusBadRequest, map[string]any{
			"error":  "CV must be a PDF file",
			"fields": []string{"file"},
		})
		return
	}

	key := storage.ObjectKey(storage.CVPrefix, ".pdf", time.Now())
	if err := f.storage.UploadPrivate(r.Context(), key, "application/pdf", bytes.NewReader(data), int64(len(data))); err != nil {
		respond.Error(w, r, err)
		return
	}

	slog.Info("cv uploaded", "key", key, "size", len(data))
	respond.JSON(w, http.StatusCreated, map[string]string{"cv_url": key})
}

// readUpload reads the named multipart file into memory, enforcing
// maxUploadSize. On failure it has already written the response.
func readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.ErrorMessage(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10 MB.")
			return nil, false
		}
		respond.ErrorMessage(w, http.StatusBadRequest, "Expected a multipart/form-data upload")
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(field)
	if err != nil {
		respond.JSON(w, http.StatusBadRequest, map[string]any{
			"error":  "No file provided",
			"fields": []string{field},
		})
		return nil, false
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		respond.ErrorMessage(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10 MB.")
		return nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		respond.Error(w, r, err)
		return nil, false
	}
	if len(data) > maxUploadSize {
		respond.ErrorMessage(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10 MB.")
		return nil, false
	}
	return data, true
}
