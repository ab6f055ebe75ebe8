// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Dev Flink site API.
// Handlers are grouped by concern (public, forms, auth, admin) and receive
// their dependencies through the handler struct.
package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"devflink/internal/respond"
)

// maxUploadSize caps media and CV uploads (10 MB).
const maxUploadSize = 10 << 20

// notFound writes a 404 naming the missing kind of record.
func notFound(w http.ResponseWriter, what string) {
	respond.ErrorMessage(w, http.StatusNotFound, what+" not found")
}

// deleted writes the confirmation body shared by every DELETE endpoint.
func deleted(w http.ResponseWriter, what string) {
	respond.Message(w, http.StatusOK, what+" deleted successfully")
}

// storageUnavailable answers uploads when no bucket is configured.
func storageUnavailable(w http.ResponseWriter) {
	respond.ErrorMessage(w, http.StatusServiceUnavailable, "Object storage is not configured")
}

func urlParam(r *http.Request, key string) string {
	return strings.TrimSpace(chi.URLParam(r, key))
}
