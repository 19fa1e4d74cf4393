package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/shanchengnb/fire-egine-dispatch/core/model"
)

// SQLiteStore persists dispatch records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS dispatch_records (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        ts INTEGER,
        vehicle_id INTEGER,
        risk_level TEXT,
        failed INTEGER,
        record TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec model.DispatchRecord) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	var vid any
	if rec.VehicleID != nil {
		vid = *rec.VehicleID
	}
	failed := 0
	if rec.Failed() {
		failed = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO dispatch_records (ts, vehicle_id, risk_level, failed, record) VALUES (?, ?, ?, ?, ?)`,
		rec.Timestamp, vid, rec.RiskLevel, failed, string(b))
	return err
}

// Query returns records matching q.
func (s *SQLiteStore) Query(ctx context.Context, q LogQuery) ([]model.DispatchRecord, error) {
	query := `SELECT record FROM dispatch_records WHERE 1=1`
	var args []any
	if q.Start != 0 {
		query += ` AND ts >= ?`
		args = append(args, q.Start)
	}
	if q.End != 0 {
		query += ` AND ts <= ?`
		args = append(args, q.End)
	}
	if q.VehicleID != nil {
		query += ` AND vehicle_id = ?`
		args = append(args, *q.VehicleID)
	}
	if q.RiskLevel != "" {
		query += ` AND risk_level = ?`
		args = append(args, q.RiskLevel)
	}
	if q.FailedOnly {
		query += ` AND failed = 1`
	}
	query += ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var res []model.DispatchRecord
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var r model.DispatchRecord
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			continue
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
