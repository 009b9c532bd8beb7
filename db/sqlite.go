package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
	"github.com/techagentng/healthtrack/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists the store in a single SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dsn, runs migrations and
// seeds empty tables.
// Example DSN: "file:healthtrack.db?_pragma=busy_timeout(5000)"
func NewSQLiteStore(dsn string, seed models.Seed) (*SQLiteStore, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer keeps id assignment serial
	sqldb.SetMaxOpenConns(1)
	if err := sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: sqldb}
	ctx := context.Background()
	if err := s.migrate(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}
	if err := s.seed(ctx, seed); err != nil {
		sqldb.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			avatar TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id INTEGER NOT NULL,
			title TEXT NOT NULL,
			date TEXT NOT NULL DEFAULT '',
			hospital TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			preview TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS reports_id ON reports(id)`,
		`CREATE TABLE IF NOT EXISTS hospitals (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			rating REAL NOT NULL DEFAULT 0
		)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) seed(ctx context.Context, seed models.Seed) error {
	var users int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&users); err != nil {
		return errors.Wrap(err, "count users")
	}
	if users > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin seed")
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	u := seed.User
	if u.ID == 0 {
		u.ID = 1
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO users(id, name, phone, avatar) VALUES(?, ?, ?, ?)`,
		u.ID, u.Name, u.Phone, u.Avatar); err != nil {
		return errors.Wrap(err, "seed user")
	}
	// seed lists newest first; insert oldest first so seq follows age
	for i := len(seed.Reports) - 1; i >= 0; i-- {
		r := seed.Reports[i]
		if _, err := tx.ExecContext(ctx, `INSERT INTO reports(id, title, date, hospital, type, preview) VALUES(?, ?, ?, ?, ?, ?)`,
			r.ID, r.Title, r.Date, r.Hospital, string(r.Type), r.Preview); err != nil {
			return errors.Wrap(err, "seed report")
		}
	}
	for _, h := range seed.Hospitals {
		if _, err := tx.ExecContext(ctx, `INSERT INTO hospitals(id, name, address, rating) VALUES(?, ?, ?, ?)`,
			h.ID, h.Name, h.Address, h.Rating); err != nil {
			return errors.Wrap(err, "seed hospital")
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) User(ctx context.Context) (models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, `SELECT id, name, phone, avatar FROM users ORDER BY id LIMIT 1`).
		Scan(&u.ID, &u.Name, &u.Phone, &u.Avatar)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, errors.Wrap(err, "select user")
	}
	return u, nil
}

func (s *SQLiteStore) SetPhone(ctx context.Context, phone string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET phone = ? WHERE id = (SELECT MIN(id) FROM users)`, phone)
	if err != nil {
		return errors.Wrap(err, "update phone")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *SQLiteStore) Reports(ctx context.Context) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, id, title, date, hospital, type, preview FROM reports ORDER BY seq DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "select reports")
	}
	defer rows.Close()

	var out []models.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "iterate reports")
}

func (s *SQLiteStore) Report(ctx context.Context, id int) (models.Report, error) {
	row := s.db.QueryRowContext(ctx, `SELECT seq, id, title, date, hospital, type, preview FROM reports WHERE id = ? ORDER BY seq DESC LIMIT 1`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Report{}, ErrReportNotFound
	}
	return r, err
}

func (s *SQLiteStore) AddReport(ctx context.Context, r *models.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin add report")
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if r.ID == 0 {
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) + 1 FROM reports`).Scan(&r.ID); err != nil {
			return errors.Wrap(err, "next report id")
		}
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO reports(id, title, date, hospital, type, preview) VALUES(?, ?, ?, ?, ?, ?)`,
		r.ID, r.Title, r.Date, r.Hospital, string(r.Type), r.Preview)
	if err != nil {
		return errors.Wrap(err, "insert report")
	}
	if seq, err := res.LastInsertId(); err == nil {
		r.Seq = seq
	}
	return errors.Wrap(tx.Commit(), "commit report")
}

func (s *SQLiteStore) Hospitals(ctx context.Context) ([]models.Hospital, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, address, rating FROM hospitals ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "select hospitals")
	}
	defer rows.Close()

	var out []models.Hospital
	for rows.Next() {
		var h models.Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Address, &h.Rating); err != nil {
			return nil, errors.Wrap(err, "scan hospital")
		}
		out = append(out, h)
	}
	return out, errors.Wrap(rows.Err(), "iterate hospitals")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (models.Report, error) {
	var (
		r  models.Report
		tp string
	)
	if err := row.Scan(&r.Seq, &r.ID, &r.Title, &r.Date, &r.Hospital, &tp, &r.Preview); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Report{}, err
		}
		return models.Report{}, errors.Wrap(err, "scan report")
	}
	r.Type = models.ReportType(tp)
	return r, nil
}
