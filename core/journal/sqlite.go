package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS decisions (
    id TEXT PRIMARY KEY,
    timeslot INTEGER NOT NULL,
    strategy TEXT,
    kind TEXT,
    utility REAL,
    record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS decisions_timeslot ON decisions (timeslot);`

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO decisions (id, timeslot, strategy, kind, utility, record) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timeslot, rec.Strategy, rec.Action.Kind.String(), rec.Utility, string(b))
	return err
}

// Query returns records matching q ordered by timeslot.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var args []any
	query := `SELECT record FROM decisions WHERE 1=1`
	if q.From > 0 {
		query += ` AND timeslot >= ?`
		args = append(args, q.From)
	}
	if q.To > 0 {
		query += ` AND timeslot <= ?`
		args = append(args, q.To)
	}
	if q.Kind != nil {
		query += ` AND kind = ?`
		args = append(args, q.Kind.String())
	}
	if q.Strategy != "" {
		query += ` AND strategy = ?`
		args = append(args, q.Strategy)
	}
	query += ` ORDER BY timeslot`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var r Record
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
