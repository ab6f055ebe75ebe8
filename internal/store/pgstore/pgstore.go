// Package pgstore implements store.CollectionStore on PostgreSQL. Every
// collection shares the records table: one row per record with the
// payload in a JSONB column and the identity and timestamps in their own
// columns. Each operation is a single statement, so concurrent writers
// are serialised by the database.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"devflink/internal/errs"
	"devflink/internal/store"
)

const uniqueViolation = "23505"

// Store is a PostgreSQL-backed CollectionStore.
type Store struct {
	db *sql.DB
}

// New creates a Store on an open pool. The records table must already
// exist (see database.Migrate).
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// List returns records whose payload contains every entry of where,
// newest first.
func (s *Store) List(ctx context.Context, c store.Collection, where store.Fields) ([]store.Record, error) {
	if err := check(c); err != nil {
		return nil, err
	}

	filter, err := encode(where)
	if err != nil {
		return nil, errs.Persistence("list", string(c), err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, created_at, updated_at FROM records
		 WHERE collection = $1 AND data @> $2::jsonb
		 ORDER BY created_at DESC`,
		string(c), filter,
	)
	if err != nil {
		return nil, errs.Persistence("list", string(c), err)
	}
	defer rows.Close()

	records := []store.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errs.Persistence("list", string(c), err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Persistence("list", string(c), err)
	}
	return records, nil
}

// Find returns the record with the given id, or nil. Ids that are not
// UUIDs cannot exist and return nil without a query.
func (s *Store) Find(ctx context.Context, c store.Collection, id string) (store.Record, error) {
	if err := check(c); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, data, created_at, updated_at FROM records
		 WHERE collection = $1 AND id = $2`,
		string(c), id,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Persistence("find", string(c), err)
	}
	return rec, nil
}

// Create inserts a new record with a fresh UUID.
func (s *Store) Create(ctx context.Context, c store.Collection, fields store.Fields) (store.Record, error) {
	if err := check(c); err != nil {
		return nil, err
	}

	data, err := encode(fields.Without(store.FieldID, store.FieldCreatedAt, store.FieldUpdatedAt))
	if err != nil {
		return nil, errs.Persistence("create", string(c), err)
	}

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO records (collection, id, data)
		 VALUES ($1, $2, $3::jsonb)
		 RETURNING id, data, created_at, updated_at`,
		string(c), uuid.New(), data,
	)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, errs.Persistence("create", string(c), conflict(err))
	}
	return rec, nil
}

// Update merges fields into the stored payload. Unknown ids return nil.
func (s *Store) Update(ctx context.Context, c store.Collection, id string, fields store.Fields) (store.Record, error) {
	if err := check(c); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	patch, err := encode(fields.Without(store.FieldID, store.FieldCreatedAt, store.FieldUpdatedAt))
	if err != nil {
		return nil, errs.Persistence("update", string(c), err)
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE records SET data = data || $3::jsonb, updated_at = now()
		 WHERE collection = $1 AND id = $2
		 RETURNING id, data, created_at, updated_at`,
		string(c), id, patch,
	)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Persistence("update", string(c), conflict(err))
	}
	return rec, nil
}

// Delete removes a record and reports whether it existed.
func (s *Store) Delete(ctx context.Context, c store.Collection, id string) (bool, error) {
	if err := check(c); err != nil {
		return false, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE collection = $1 AND id = $2`,
		string(c), id,
	)
	if err != nil {
		return false, errs.Persistence("delete", string(c), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errs.Persistence("delete", string(c), err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (store.Record, error) {
	var (
		id                   string
		data                 []byte
		createdAt, updatedAt time.Time
	)
	if err := row.Scan(&id, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	rec := store.Record{}
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	rec[store.FieldID] = id
	rec[store.FieldCreatedAt] = createdAt.UTC()
	rec[store.FieldUpdatedAt] = updatedAt.UTC()
	return rec, nil
}

func encode(f store.Fields) ([]byte, error) {
	if f == nil {
		f = store.Fields{}
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode fields: %w", err)
	}
	return b, nil
}

// uniqueFields names the field each unique index guards.
var uniqueFields = map[string]string{
	"idx_records_user_email": "email",
	"idx_records_post_slug":  "slug",
}

// conflict maps a unique-index violation to an errs.ConflictError.
func conflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		field, ok := uniqueFields[pgErr.ConstraintName]
		if !ok {
			field = pgErr.ConstraintName
		}
		return errs.Conflict(field, "")
	}
	return err
}

func check(c store.Collection) error {
	if !c.Valid() {
		return fmt.Errorf("unknown collection %q", c)
	}
	return nil
}

var _ store.CollectionStore = (*Store)(nil)
