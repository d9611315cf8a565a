// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mnemo-dev/mnemo/internal/store"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

// Compile-time interface check.
var _ store.EntryStore = (*EntryStore)(nil)

// EntryStore implements store.EntryStore backed by SQLite. Memory entries
// live in one table; recall events append to a companion log used for
// importance tracking.
type EntryStore struct {
	db *sql.DB
}

// NewEntryStore opens (or creates) a SQLite database at dbPath and
// initialises the entries and recall_logs tables.
func NewEntryStore(dbPath string) (*EntryStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "pinging sqlite db: %w", err)
	}

	if err := migrateEntries(db); err != nil {
		_ = db.Close()
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "migrating entry tables: %w", err)
	}

	return &EntryStore{db: db}, nil
}

func migrateEntries(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS entries (
	id         TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	type       TEXT NOT NULL,
	subject    TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '[]',
	agent_id   TEXT NOT NULL DEFAULT '',
	source     TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_subject ON entries(subject);
CREATE INDEX IF NOT EXISTS idx_entries_type ON entries(type);

CREATE TABLE IF NOT EXISTS recall_logs (
	entry_id    TEXT NOT NULL,
	recalled_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_recall_logs_entry ON recall_logs(entry_id);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (s *EntryStore) Close() error {
	return s.db.Close()
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// PutEntry inserts or replaces an entry by id.
func (s *EntryStore) PutEntry(ctx context.Context, entry *store.Entry) error {
	if entry.ID == "" {
		return mnemoerr.New(mnemoerr.CodeStoreEntryInvalid, "entry id is required")
	}

	tagsJSON, err := json.Marshal(entry.Tags)
	if err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "marshalling tags: %w", err)
	}

	const q = `INSERT INTO entries (id, content, type, subject, tags, agent_id, source, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	content = excluded.content,
	type = excluded.type,
	subject = excluded.subject,
	tags = excluded.tags,
	agent_id = excluded.agent_id,
	source = excluded.source,
	updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, q,
		entry.ID, entry.Content, entry.Type, entry.Subject, string(tagsJSON),
		entry.AgentID, entry.Source, formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return mnemoerr.Wrap(err, mnemoerr.CodeStoreDatabaseFailure, "putting entry",
			mnemoerr.FieldEntryID(entry.ID))
	}
	return nil
}

const entryColumns = `id, content, type, subject, tags, agent_id, source, created_at, updated_at`

func scanEntry(scan func(dest ...any) error) (*store.Entry, error) {
	var (
		e                    store.Entry
		tagsStr              string
		createdAt, updatedAt string
	)
	if err := scan(&e.ID, &e.Content, &e.Type, &e.Subject, &tagsStr,
		&e.AgentID, &e.Source, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tagsStr), &e.Tags); err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "unmarshalling tags for entry %s: %w", e.ID, err)
	}

	var err error
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "parsing entry %s created_at: %w", e.ID, err)
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "parsing entry %s updated_at: %w", e.ID, err)
	}

	return &e, nil
}

// GetEntry retrieves a single entry by id.
func (s *EntryStore) GetEntry(ctx context.Context, id string) (*store.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE id = ?`, id)

	entry, err := scanEntry(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, mnemoerr.New(mnemoerr.CodeStoreEntryNotFound, "entry not found",
				mnemoerr.FieldEntryID(id))
		}
		return nil, mnemoerr.Wrap(err, mnemoerr.CodeStoreDatabaseFailure, "getting entry",
			mnemoerr.FieldEntryID(id))
	}
	return entry, nil
}

// ListEntries returns entries newest first, filtered per opts.
func (s *EntryStore) ListEntries(ctx context.Context, opts store.ListOpts) ([]*store.Entry, error) {
	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(`SELECT ` + entryColumns + ` FROM entries WHERE 1=1`)

	if opts.Subject != "" {
		qb.WriteString(` AND subject = ?`)
		args = append(args, opts.Subject)
	}
	if opts.Type != "" {
		qb.WriteString(` AND type = ?`)
		args = append(args, opts.Type)
	}
	if opts.Tag != "" {
		// Tags are a JSON array; match via json_each.
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(entries.tags) WHERE json_each.value = ?)`)
		args = append(args, opts.Tag)
	}

	qb.WriteString(` ORDER BY created_at DESC`)

	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	qb.WriteString(` LIMIT ? OFFSET ?`)
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "listing entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectEntries(rows)
}

func collectEntries(rows *sql.Rows) ([]*store.Entry, error) {
	var entries []*store.Entry
	for rows.Next() {
		entry, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "scanning entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "iterating entries: %w", err)
	}
	return entries, nil
}

// DeleteEntry removes an entry and its recall log rows.
func (s *EntryStore) DeleteEntry(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return mnemoerr.Wrap(err, mnemoerr.CodeStoreDatabaseFailure, "deleting entry",
			mnemoerr.FieldEntryID(id))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "reading delete result: %w", err)
	}
	if n == 0 {
		return mnemoerr.New(mnemoerr.CodeStoreEntryNotFound, "entry not found",
			mnemoerr.FieldEntryID(id))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recall_logs WHERE entry_id = ?`, id); err != nil {
		return mnemoerr.Wrap(err, mnemoerr.CodeStoreDatabaseFailure, "deleting recall logs",
			mnemoerr.FieldEntryID(id))
	}

	if err := tx.Commit(); err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "committing entry delete: %w", err)
	}
	return nil
}

// CountEntries returns the total number of stored entries.
func (s *EntryStore) CountEntries(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "counting entries: %w", err)
	}
	return n, nil
}

// SearchKeyword performs a case-insensitive substring match on content.
func (s *EntryStore) SearchKeyword(ctx context.Context, text string, limit int, subject string) ([]*store.Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	var (
		qb   strings.Builder
		args []any
	)

	qb.WriteString(`SELECT ` + entryColumns + ` FROM entries WHERE content LIKE ? ESCAPE '\'`)
	args = append(args, "%"+escapeLike(text)+"%")

	if subject != "" {
		qb.WriteString(` AND subject = ?`)
		args = append(args, subject)
	}

	qb.WriteString(` ORDER BY created_at DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "keyword search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectEntries(rows)
}

// escapeLike escapes LIKE metacharacters so user text matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// LogRecall appends one recall event per entry id.
func (s *EntryStore) LogRecall(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(time.Now())
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `INSERT INTO recall_logs (entry_id, recalled_at) VALUES (?, ?)`, id, now); err != nil {
			return mnemoerr.Wrap(err, mnemoerr.CodeStoreDatabaseFailure, "logging recall",
				mnemoerr.FieldEntryID(id))
		}
	}

	if err := tx.Commit(); err != nil {
		return mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "committing recall log: %w", err)
	}
	return nil
}

// RecallCounts returns recall frequencies for the given entries. Entries
// never recalled are omitted.
func (s *EntryStore) RecallCounts(ctx context.Context, ids []string) ([]store.RecallCount, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	q := `SELECT entry_id, COUNT(*) FROM recall_logs WHERE entry_id IN (` + placeholders + `) GROUP BY entry_id`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "counting recalls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var counts []store.RecallCount
	for rows.Next() {
		var rc store.RecallCount
		if err := rows.Scan(&rc.EntryID, &rc.Count); err != nil {
			return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "scanning recall count: %w", err)
		}
		counts = append(counts, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, mnemoerr.Errorf(mnemoerr.CodeStoreDatabaseFailure, "iterating recall counts: %w", err)
	}

	return counts, nil
}
