// Package respond writes JSON responses and maps domain errors to HTTP
// status codes.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"devflink/internal/errs"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response failed", "error", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// ErrorMessage writes {"error": msg}.
func ErrorMessage(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// Error writes err with the status errs.StatusCode assigns it. Validation
// errors carry their field list; unexpected errors are logged and reported
// with a generic message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.StatusCode(err)

	var (
		ve *errs.ValidationError
		ce *errs.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		body := map[string]any{"error": ve.Message}
		if len(ve.Fields) > 0 {
			body["fields"] = ve.Fields
		}
		JSON(w, status, body)
	case status == http.StatusNotFound:
		ErrorMessage(w, status, "Not found")
	case status == http.StatusUnauthorized:
		ErrorMessage(w, status, "Unauthorized")
	case errors.As(err, &ce):
		JSON(w, status, map[string]any{
			"error":  "A record with the same " + ce.Field + " already exists",
			"fields": []string{ce.Field},
		})
	case status == http.StatusConflict:
		ErrorMessage(w, status, "A record with the same value already exists")
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		ErrorMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Decode reads a JSON body into dst. Malformed or oversized bodies become
// validation errors.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return errs.Invalid("body", fmt.Sprintf("request body must not exceed %d bytes", tooLarge.Limit))
		case errors.Is(err, io.EOF):
			return errs.Invalid("body", "request body must not be empty")
		default:
			return errs.Invalid("body", "request body must be valid JSON")
		}
	}
	return nil
}
