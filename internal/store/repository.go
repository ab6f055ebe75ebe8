// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Repository adapts a CollectionStore to one model type. Records are
// converted to and from T through their JSON encoding.
type Repository[T any] struct {
	backend    CollectionStore
	collection Collection
}

// NewRepository returns a Repository for collection c on backend.
func NewRepository[T any](backend CollectionStore, c Collection) *Repository[T] {
	return &Repository[T]{backend: backend, collection: c}
}

// List returns every record matching where, newest first.
func (r *Repository[T]) List(ctx context.Context, where Fields) ([]T, error) {
	records, err := r.backend.List(ctx, r.collection, where)
	if err != nil {
		return nil, err
	}

	items := make([]T, 0, len(records))
	for _, rec := range records {
		item, err := decode[T](rec)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", r.collection, err)
		}
		items = append(items, *item)
	}
	return items, nil
}

// Find returns the record with the given id, or nil if not found.
func (r *Repository[T]) Find(ctx context.Context, id string) (*T, error) {
	rec, err := r.backend.Find(ctx, r.collection, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return decode[T](rec)
}

// FindOne returns the newest record matching where, or nil if none does.
func (r *Repository[T]) FindOne(ctx context.Context, where Fields) (*T, error) {
	records, err := r.backend.List(ctx, r.collection, where)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return decode[T](records[0])
}

// Count returns the number of records in the collection.
func (r *Repository[T]) Count(ctx context.Context) (int, error) {
	records, err := r.backend.List(ctx, r.collection, nil)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Create stores v as a new record and returns the stored value, with its
// id and timestamps filled in.
func (r *Repository[T]) Create(ctx context.Context, v *T) (*T, error) {
	fields, err := ToFields(v)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", r.collection, err)
	}
	rec, err := r.backend.Create(ctx, r.collection, fields)
	if err != nil {
		return nil, err
	}
	return decode[T](rec)
}

// Update merges fields into the record with the given id. It returns nil
// if the id is unknown.
func (r *Repository[T]) Update(ctx context.Context, id string, fields Fields) (*T, error) {
	rec, err := r.backend.Update(ctx, r.collection, id, fields.Without(FieldID, FieldCreatedAt, FieldUpdatedAt))
	if err != nil || rec == nil {
		return nil, err
	}
	return decode[T](rec)
}

// Delete removes the record with the given id, reporting whether it existed.
func (r *Repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	return r.backend.Delete(ctx, r.collection, id)
}

func decode[T any](rec Record) (*T, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	v := new(T)
	if err := json.Unmarshal(b, v); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", rec.ID(), err)
	}
	return v, nil
}
