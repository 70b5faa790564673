// Package directory keeps an app-owned employee directory in SQLite. It
// backfills names and job titles for employees that show up in SKUD data
// but are missing from the tabell (typical for broken-shift records).
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Employee is one directory entry.
type Employee struct {
	EmployeeID string     `json:"employee_id"`
	Name       string     `json:"name"`
	JobTitle   string     `json:"job_title"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Store manages the employee directory in SQLite.
type Store struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS employees (
  employee_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  job_title TEXT NOT NULL DEFAULT '',
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) List(ctx context.Context, limit int) ([]Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT employee_id, name, job_title, updated_at
FROM employees
ORDER BY employee_id
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Employee, 0, limit)
	for rows.Next() {
		var (
			item      Employee
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&item.EmployeeID, &item.Name, &item.JobTitle, &updatedAt); err != nil {
			return nil, err
		}
		if updatedAt.Valid {
			t := updatedAt.Time.UTC()
			item.UpdatedAt = &t
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Lookup returns directory entries for the given ids. Unknown ids are simply
// absent from the result map.
func (s *Store) Lookup(ctx context.Context, ids []string) (map[string]Employee, error) {
	out := make(map[string]Employee, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, strings.TrimSpace(id))
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
SELECT employee_id, name, job_title
FROM employees
WHERE employee_id IN (%s);
`, placeholders), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item Employee
		if err := rows.Scan(&item.EmployeeID, &item.Name, &item.JobTitle); err != nil {
			return nil, err
		}
		out[item.EmployeeID] = item
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Upsert(ctx context.Context, emp Employee) error {
	emp.EmployeeID = strings.TrimSpace(emp.EmployeeID)
	emp.Name = strings.TrimSpace(emp.Name)
	emp.JobTitle = strings.TrimSpace(emp.JobTitle)
	if emp.EmployeeID == "" {
		return fmt.Errorf("employee_id is required")
	}
	if emp.Name == "" {
		return fmt.Errorf("name is required")
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO employees (employee_id, name, job_title, updated_at)
VALUES (?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(employee_id) DO UPDATE SET
  name = excluded.name,
  job_title = excluded.job_title,
  updated_at = CURRENT_TIMESTAMP;
`, emp.EmployeeID, emp.Name, emp.JobTitle)
	return err
}

func (s *Store) Delete(ctx context.Context, employeeID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE employee_id = ?`, strings.TrimSpace(employeeID))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
