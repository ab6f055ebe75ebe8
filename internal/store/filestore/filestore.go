// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package filestore implements store.CollectionStore on flat JSON files:
// one file per collection holding the whole collection as an array.
//
// Every write reads the full array, mutates it in memory and replaces the
// file atomically. Writers within one process are serialised per
// collection, so concurrent admin requests cannot lose each other's
// updates. Separate processes sharing a data directory are not
// coordinated; the last rename wins.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"devflink/internal/errs"
	"devflink/internal/fsutil"
	"devflink/internal/store"
)

const filePerm = 0o600

// Store is a file-backed CollectionStore rooted at a data directory.
type Store struct {
	dir string
	now func() time.Time

	mu    sync.Mutex
	locks map[store.Collection]*sync.Mutex
}

// New returns a Store that keeps its files under dir. Nothing is created
// until the first write or an explicit Init.
func New(dir string) *Store {
	return &Store{
		dir:   dir,
		now:   time.Now,
		locks: make(map[store.Collection]*sync.Mutex),
	}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Init creates the data directory and an empty array file for every
// collection that does not have one yet. Existing files are left alone.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errs.Persistence("init", s.dir, err)
	}
	for _, c := range store.Collections() {
		path := s.path(c)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return errs.Persistence("init", string(c), err)
		}
		if err := fsutil.WriteFile(path, []byte("[]\n"), filePerm); err != nil {
			return errs.Persistence("init", string(c), err)
		}
	}
	return nil
}

// List returns records matching where, newest first.
func (s *Store) List(ctx context.Context, c store.Collection, where store.Fields) ([]store.Record, error) {
	if err := check(ctx, c); err != nil {
		return nil, err
	}

	records, err := s.read(c)
	if err != nil {
		return nil, errs.Persistence("list", string(c), err)
	}

	out := make([]store.Record, 0, len(records))
	for _, rec := range records {
		if rec.Matches(where) {
			out = append(out, rec)
		}
	}
	store.SortNewestFirst(out)
	return out, nil
}

// Find returns the record with the given id, or nil.
func (s *Store) Find(ctx context.Context, c store.Collection, id string) (store.Record, error) {
	if err := check(ctx, c); err != nil {
		return nil, err
	}

	records, err := s.read(c)
	if err != nil {
		return nil, errs.Persistence("find", string(c), err)
	}
	if i := indexOf(records, id); i >= 0 {
		return records[i], nil
	}
	return nil, nil
}

// Create appends a new record with a fresh UUID and timestamps.
func (s *Store) Create(ctx context.Context, c store.Collection, fields store.Fields) (store.Record, error) {
	if err := check(ctx, c); err != nil {
		return nil, err
	}

	lock := s.lock(c)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.read(c)
	if err != nil {
		return nil, errs.Persistence("create", string(c), err)
	}

	now := s.now().UTC()
	rec := store.Record{}
	for k, v := range fields.Without(store.FieldID, store.FieldCreatedAt, store.FieldUpdatedAt) {
		rec[k] = v
	}
	rec[store.FieldID] = uuid.NewString()
	rec[store.FieldCreatedAt] = now
	rec[store.FieldUpdatedAt] = now

	records = append(records, rec)
	if err := s.write(c, records); err != nil {
		return nil, errs.Persistence("create", string(c), err)
	}
	return rec, nil
}

// Update merges fields over an existing record. Unknown ids return nil
// and leave the file untouched.
func (s *Store) Update(ctx context.Context, c store.Collection, id string, fields store.Fields) (store.Record, error) {
	if err := check(ctx, c); err != nil {
		return nil, err
	}

	lock := s.lock(c)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.read(c)
	if err != nil {
		return nil, errs.Persistence("update", string(c), err)
	}

	i := indexOf(records, id)
	if i < 0 {
		return nil, nil
	}

	rec := records[i]
	for k, v := range fields.Without(store.FieldID, store.FieldCreatedAt, store.FieldUpdatedAt) {
		rec[k] = v
	}
	rec[store.FieldUpdatedAt] = s.now().UTC()

	if err := s.write(c, records); err != nil {
		return nil, errs.Persistence("update", string(c), err)
	}
	return rec, nil
}

// Delete removes a record. Unknown ids report false and leave the file
// untouched.
func (s *Store) Delete(ctx context.Context, c store.Collection, id string) (bool, error) {
	if err := check(ctx, c); err != nil {
		return false, err
	}

	lock := s.lock(c)
	lock.Lock()
	defer lock.Unlock()

	records, err := s.read(c)
	if err != nil {
		return false, errs.Persistence("delete", string(c), err)
	}

	i := indexOf(records, id)
	if i < 0 {
		return false, nil
	}

	records = append(records[:i], records[i+1:]...)
	if err := s.write(c, records); err != nil {
		return false, errs.Persistence("delete", string(c), err)
	}
	return true, nil
}

func (s *Store) path(c store.Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

// lock returns the write mutex for collection c.
func (s *Store) lock(c store.Collection) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[c]
	if !ok {
		l = &sync.Mutex{}
		s.locks[c] = l
	}
	return l
}

// read loads the whole collection. A missing or empty file is an empty
// collection.
func (s *Store) read(c store.Collection) ([]store.Record, error) {
	data, err := os.ReadFile(s.path(c))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []store.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path(c), err)
	}
	return records, nil
}

func (s *Store) write(c store.Collection, records []store.Record) error {
	if records == nil {
		records = []store.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", c, err)
	}
	return fsutil.WriteFile(s.path(c), append(data, '\n'), filePerm)
}

func check(ctx context.Context, c store.Collection) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.Valid() {
		return fmt.Errorf("unknown collection %q", c)
	}
	return nil
}

func indexOf(records []store.Record, id string) int {
	for i, rec := range records {
		if rec.ID() == id {
			return i
		}
	}
	return -1
}

var _ store.CollectionStore = (*Store)(nil)
