// Package store persists the hourly observation table in SQLite. The table
// is keyed by UTC timestamp, so a fall-back duplicate hour from a local-time
// source collapses into a single row on upsert.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sunledger/sunledger/core/model"
)

// SQLiteStore persists meter readings to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// New opens or creates the database at path and ensures the schema.
func New(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS readings (
        ts INTEGER PRIMARY KEY,
        generation_kwh REAL,
        consumption_kwh REAL
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Upsert writes the observations, replacing any existing row for the same
// hour. Re-fetching an overlapping window is therefore idempotent.
func (s *SQLiteStore) Upsert(ctx context.Context, obs []model.Observation) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO readings (ts, generation_kwh, consumption_kwh) VALUES (?, ?, ?)
         ON CONFLICT(ts) DO UPDATE SET
             generation_kwh = excluded.generation_kwh,
             consumption_kwh = excluded.consumption_kwh`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, o := range obs {
		if o.Timestamp.IsZero() {
			_ = tx.Rollback()
			return &model.InputDataError{Reason: "reading with zero timestamp"}
		}
		if _, err := stmt.ExecContext(ctx, o.Timestamp.UTC().Unix(),
			nullable(o.GenerationKWh), nullable(o.ConsumptionKWh)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Load returns the observations in [from, to] ordered by timestamp. Solar
// geometry is not stored; callers annotate the rows after loading.
func (s *SQLiteStore) Load(ctx context.Context, from, to time.Time) ([]model.Observation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ts, generation_kwh, consumption_kwh FROM readings
         WHERE ts >= ? AND ts <= ? ORDER BY ts`,
		from.UTC().Unix(), to.UTC().Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []model.Observation
	for rows.Next() {
		var ts int64
		var gen, cons sql.NullFloat64
		if err := rows.Scan(&ts, &gen, &cons); err != nil {
			return nil, err
		}
		res = append(res, model.Observation{
			Timestamp:      time.Unix(ts, 0).UTC(),
			GenerationKWh:  fromNullable(gen),
			ConsumptionKWh: fromNullable(cons),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Span returns the first and last stored timestamps and the row count.
func (s *SQLiteStore) Span(ctx context.Context) (first, last time.Time, count int, err error) {
	var minTS, maxTS sql.NullInt64
	row := s.db.QueryRowContext(ctx, `SELECT MIN(ts), MAX(ts), COUNT(*) FROM readings`)
	if err = row.Scan(&minTS, &maxTS, &count); err != nil {
		return
	}
	if count == 0 {
		err = &model.NoDataError{What: "stored readings"}
		return
	}
	first = time.Unix(minTS.Int64, 0).UTC()
	last = time.Unix(maxTS.Int64, 0).UTC()
	return
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
