// Copyright (c) 2025 HYPR. PTE. LTD.
//
// Business Source License 1.1
// See LICENSE file in the project root for details.

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/volantvm/bridgectl/internal/db"
)

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

type journal struct {
	exec *sql.DB
}

var _ db.Journal = (*journal)(nil)

// Record appends entry and fills in its ID and timestamp.
func (j *journal) Record(ctx context.Context, entry *db.Entry) (int64, error) {
	if entry == nil {
		return 0, fmt.Errorf("journal: nil entry")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	res, err := j.exec.ExecContext(
		ctx,
		`INSERT INTO journal (op, bridge, interface, success, error, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Op,
		entry.Bridge,
		nullableString(entry.Interface),
		boolToInt(entry.Success),
		nullableString(entry.Error),
		entry.CreatedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("journal: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("journal: last insert id: %w", err)
	}
	entry.ID = id
	return id, nil
}

// List returns up to limit entries, newest first.
func (j *journal) List(ctx context.Context, limit int) ([]db.Entry, error) {
	if limit <= 0 {
		limit = db.DefaultListLimit
	}
	rows, err := j.exec.QueryContext(
		ctx,
		`SELECT id, op, bridge, interface, success, error, created_at FROM journal ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("journal: list: %w", err)
	}
	defer rows.Close()

	entries := []db.Entry{}
	for rows.Next() {
		var (
			entry     db.Entry
			intf      sql.NullString
			success   int
			errText   sql.NullString
			createdAt any
		)
		if err := rows.Scan(&entry.ID, &entry.Op, &entry.Bridge, &intf, &success, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		entry.Interface = intf.String
		entry.Success = success != 0
		entry.Error = errText.String
		if entry.CreatedAt, err = parseTimeField(createdAt); err != nil {
			return nil, fmt.Errorf("journal: entry %d: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func parseTimeField(value any) (time.Time, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, fmt.Errorf("time field nil")
	case time.Time:
		return v, nil
	case string:
		return parseTimestamp(v)
	case []byte:
		return parseTimestamp(string(v))
	}
	return time.Time{}, fmt.Errorf("unsupported time value %T", value)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
