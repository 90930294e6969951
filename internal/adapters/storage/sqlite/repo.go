package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hylla/taskcollab/internal/app"
	_ "modernc.org/sqlite"
)

// driverName is the name modernc.org/sqlite registers with database/sql.
const driverName = "sqlite"

// fieldNamePattern restricts predicate and order fields to plain identifiers.
var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Repository stores JSON documents grouped by collection.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens a throwaway shared-cache database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	return newRepository(db)
}

func newRepository(db *sql.DB) (*Repository, error) {
	// sqlite allows one writer at a time.
	db.SetMaxOpenConns(1)
	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the document table and its indexes.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY(collection, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_project ON documents(collection, json_extract(data_json, '$.project_id'));`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// Create stores a document under a generated id.
func (r *Repository) Create(ctx context.Context, collection string, fields app.Fields) (string, error) {
	id := uuid.NewString()
	data, err := encodeFields(fields)
	if err != nil {
		return "", err
	}
	now := ts(r.now())
	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO documents(collection, id, data_json, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?)
	`, collection, id, data, now, now); err != nil {
		return "", err
	}
	return id, nil
}

// Set creates or replaces the document with id.
func (r *Repository) Set(ctx context.Context, collection, id string, fields app.Fields) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("document id is required")
	}
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}
	now := ts(r.now())
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO documents(collection, id, data_json, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data_json = excluded.data_json,
			updated_at = excluded.updated_at
	`, collection, id, data, now, now)
	return err
}

// Get returns one document or app.ErrNotFound.
func (r *Repository) Get(ctx context.Context, collection, id string) (app.Record, error) {
	return getDocument(ctx, r.db, collection, id)
}

// Query returns the documents of a collection matching q.
func (r *Repository) Query(ctx context.Context, collection string, q app.Query) ([]app.Record, error) {
	where, args, err := whereClause(collection, q.Where)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(q.OrderBy)
	if err != nil {
		return nil, err
	}
	stmt := `SELECT id, data_json FROM documents WHERE ` + where + ` ORDER BY ` + order
	if q.Limit > 0 {
		stmt += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]app.Record, 0)
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Update merges fields into an existing document.
func (r *Repository) Update(ctx context.Context, collection, id string, fields app.Fields) error {
	return r.BulkUpdate(ctx, collection, []app.RecordUpdate{{ID: id, Fields: fields}})
}

// Delete removes one document.
func (r *Repository) Delete(ctx context.Context, collection, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return err
	}
	return translateNoRows(res)
}

// BulkUpdate merges every update in one transaction. A missing document aborts the batch.
func (r *Repository) BulkUpdate(ctx context.Context, collection string, updates []app.RecordUpdate) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := ts(r.now())
	for _, u := range updates {
		rec, err := getDocument(ctx, tx, collection, u.ID)
		if err != nil {
			return fmt.Errorf("update %s %q: %w", collection, u.ID, err)
		}
		for k, v := range u.Fields {
			rec.Fields[k] = v
		}
		data, err := encodeFields(rec.Fields)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE documents SET data_json = ?, updated_at = ? WHERE collection = ? AND id = ?
		`, data, now, collection, u.ID); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// BulkDelete removes the listed documents in one transaction. Missing ids are skipped.
func (r *Repository) BulkDelete(ctx context.Context, collection string, ids []string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, id := range ids {
		if _, err = tx.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// DeleteByQuery removes every matching document and returns how many were removed.
func (r *Repository) DeleteByQuery(ctx context.Context, collection string, where []app.Predicate) (int, error) {
	clause, args, err := whereClause(collection, where)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE `+clause, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// queryRower is satisfied by *sql.DB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func getDocument(ctx context.Context, q queryRower, collection, id string) (app.Record, error) {
	row := q.QueryRowContext(ctx, `SELECT id, data_json FROM documents WHERE collection = ? AND id = ?`, collection, id)
	rec, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return app.Record{}, app.ErrNotFound
	}
	return rec, err
}

func scanDocument(s scanner) (app.Record, error) {
	var (
		id   string
		data string
	)
	if err := s.Scan(&id, &data); err != nil {
		return app.Record{}, err
	}
	fields := app.Fields{}
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return app.Record{}, fmt.Errorf("decode document %q: %w", id, err)
	}
	return app.Record{ID: id, Fields: fields}, nil
}

func encodeFields(fields app.Fields) (string, error) {
	if fields == nil {
		fields = app.Fields{}
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(data), nil
}

// whereClause renders predicates as SQL over json_extract. Null comparisons
// support only == and !=.
func whereClause(collection string, preds []app.Predicate) (string, []any, error) {
	parts := []string{"collection = ?"}
	args := []any{collection}
	for _, p := range preds {
		if !fieldNamePattern.MatchString(p.Field) {
			return "", nil, fmt.Errorf("%w: field %q", app.ErrInvalidQuery, p.Field)
		}
		if !p.Op.Valid() {
			return "", nil, fmt.Errorf("%w: operator %q", app.ErrInvalidQuery, p.Op)
		}
		expr := "json_extract(data_json, '$." + p.Field + "')"
		if p.Value == nil {
			switch p.Op {
			case app.OpEq:
				parts = append(parts, expr+" IS NULL")
			case app.OpNe:
				parts = append(parts, expr+" IS NOT NULL")
			default:
				return "", nil, fmt.Errorf("%w: %s against null", app.ErrInvalidQuery, p.Op)
			}
			continue
		}
		value := sqlValue(p.Value)
		switch p.Op {
		case app.OpEq:
			parts = append(parts, expr+" = ?")
		case app.OpNe:
			parts = append(parts, "("+expr+" IS NULL OR "+expr+" != ?)")
		default:
			parts = append(parts, expr+" "+string(p.Op)+" ?")
		}
		args = append(args, value)
	}
	return strings.Join(parts, " AND "), args, nil
}

func orderClause(orders []app.Order) (string, error) {
	parts := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		if !fieldNamePattern.MatchString(o.Field) {
			return "", fmt.Errorf("%w: order field %q", app.ErrInvalidQuery, o.Field)
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, "json_extract(data_json, '$."+o.Field+"') "+dir)
	}
	parts = append(parts, "created_at ASC", "id ASC")
	return strings.Join(parts, ", "), nil
}

// sqlValue maps a Go value to what json_extract yields for the same JSON value.
func sqlValue(v any) any {
	switch t := v.(type) {
	case bool:
		if t {
			return 1
		}
		return 0
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}

// translateNoRows reports app.ErrNotFound when a write touched nothing.
func translateNoRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return app.ErrNotFound
	}
	return nil
}

// ts formats t as sortable RFC3339Nano UTC text.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
