// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides the persistence layer for the site's collections.
// CollectionStore is the backend contract, implemented by the flat-file
// store (filestore) and the PostgreSQL store (pgstore). The typed stores in
// this package (PostStore, JobStore, ...) sit on top of whichever backend
// was selected at start-up.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Collection names a homogeneous set of records.
type Collection string

const (
	Users        Collection = "users"
	BlogPosts    Collection = "blog-posts"
	JobPosts     Collection = "job-posts"
	Applications Collection = "applications"
	Contacts     Collection = "contacts"
)

// Collections returns every collection the site persists.
func Collections() []Collection {
	return []Collection{Users, BlogPosts, JobPosts, Applications, Contacts}
}

// Valid reports whether c is one of the known collections.
func (c Collection) Valid() bool {
	for _, known := range Collections() {
		if c == known {
			return true
		}
	}
	return false
}

// Keys maintained by the backend on every record.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Record is a persisted entity in JSON object form.
type Record map[string]any

// Fields is a partial set of record fields, used for create/update payloads
// and for equality filters.
type Fields map[string]any

// CollectionStore is the persistence contract shared by both backends.
// Lists are ordered by creation time, newest first.
type CollectionStore interface {
	// List returns records whose top-level fields equal every entry in
	// where. A nil or empty where returns the whole collection.
	List(ctx context.Context, c Collection, where Fields) ([]Record, error)

	// Find returns the record with the given id, or nil if there is none.
	Find(ctx context.Context, c Collection, id string) (Record, error)

	// Create stores a new record built from fields, assigning its id and
	// timestamps, and returns it.
	Create(ctx context.Context, c Collection, fields Fields) (Record, error)

	// Update merges fields over the record with the given id and refreshes
	// its updated_at. It returns nil, without writing, if the id is unknown.
	Update(ctx context.Context, c Collection, id string, fields Fields) (Record, error)

	// Delete removes the record with the given id. It reports false,
	// without writing, if the id is unknown.
	Delete(ctx context.Context, c Collection, id string) (bool, error)
}

// ID returns the record's id, or "" if it has none.
func (r Record) ID() string {
	id, _ := r[FieldID].(string)
	return id
}

// CreatedAt returns the record's creation time. Freshly created records
// hold a time.Time; records decoded from JSON hold an RFC 3339 string.
func (r Record) CreatedAt() time.Time {
	return timeField(r[FieldCreatedAt])
}

// Matches reports whether every entry in where equals the record's value
// for that key. Values are compared by their JSON encoding so that a Go
// bool or string matches the decoded form read back from storage.
func (r Record) Matches(where Fields) bool {
	for key, want := range where {
		got, ok := r[key]
		if !ok {
			return false
		}
		if !sameJSON(got, want) {
			return false
		}
	}
	return true
}

// Without returns a copy of f with the given keys removed.
func (f Fields) Without(keys ...string) Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// SortNewestFirst orders records by created_at descending. Records created
// at the same instant keep their relative order.
func SortNewestFirst(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt().After(records[j].CreatedAt())
	})
}

// ToFields converts a model value to Fields via its JSON encoding,
// dropping the backend-maintained keys.
func ToFields(v any) (Fields, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	var f Fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return f.Without(FieldID, FieldCreatedAt, FieldUpdatedAt), nil
}

func timeField(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}
		}
		return parsed
	}
	return time.Time{}
}

func sameJSON(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}
