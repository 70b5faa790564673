// Package skuddb reads punch events straight from a SKUD controller MySQL
// database, as an alternative to an uploaded XLSX export.
package skuddb

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"go-skud-reconciliation-ui/internal/config"
	"go-skud-reconciliation-ui/internal/shifts"
)

// Store is a MySQL-backed punch source.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// NewStore opens and pings the SKUD database.
func NewStore(cfg config.Config) (*Store, error) {
	db, err := sql.Open("mysql", cfg.SKUDMySQLDSN())
	if err != nil {
		return nil, err
	}

	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SKUDDBConnTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, queryTimeout: cfg.SKUDDBQueryTimeout}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks connectivity and returns the round-trip time.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	start := time.Now()
	if err := s.db.PingContext(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// ListPunches returns punches in [from-1d, to+1d], the same one-day buffer
// the XLSX parser applies so night shifts stay pairable across the bounds.
func (s *Store) ListPunches(ctx context.Context, from, to time.Time) ([]shifts.Punch, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
SELECT employee_id, punch_time
FROM punches
WHERE punch_time >= ?
  AND punch_time < ?
ORDER BY employee_id, punch_time;
`, from.AddDate(0, 0, -1), to.AddDate(0, 0, 2))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []shifts.Punch
	for rows.Next() {
		var (
			empID string
			ts    time.Time
		)
		if err := rows.Scan(&empID, &ts); err != nil {
			return nil, err
		}
		out = append(out, shifts.Punch{EmployeeID: empID, Time: ts})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
