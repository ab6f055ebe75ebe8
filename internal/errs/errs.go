// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package errs defines the error taxonomy shared by the stores, services
// and HTTP handlers, and the mapping from those errors to status codes.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("resource conflict")
)

// ValidationError reports input rejected before any storage access.
// Fields names every offending field, in input order.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Missing returns a ValidationError for absent required fields, or nil
// when fields is empty.
func Missing(fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{
		Fields:  fields,
		Message: "missing required fields: " + strings.Join(fields, ", "),
	}
}

// Invalid returns a ValidationError for a single malformed field.
func Invalid(field, message string) error {
	return &ValidationError{
		Fields:  []string{field},
		Message: message,
	}
}

// ConflictError reports a unique field already taken by another record.
// It matches ErrConflict under errors.Is.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	if e.Value == "" {
		return e.Field + " already in use"
	}
	return fmt.Sprintf("%s %q already in use", e.Field, e.Value)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Conflict returns a ConflictError for field. value may be empty when the
// backend does not report it.
func Conflict(field, value string) error {
	return &ConflictError{Field: field, Value: value}
}

// PersistenceError wraps a failed file or database operation on a collection.
type PersistenceError struct {
	Op         string
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Persistence wraps err as a PersistenceError. A nil err stays nil.
func Persistence(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Collection: collection, Err: err}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StatusCode maps an error from the taxonomy to an HTTP status.
// Anything unrecognised is an internal error.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
