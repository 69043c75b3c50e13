package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// SQLiteStore keeps developers in a local SQLite file. Rows list in insertion order.
type SQLiteStore struct {
	sqlDB *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// a single writer keeps concurrent creates from tripping SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	statements, err := migrationStatements("sqlite")
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	for _, statement := range statements {
		if _, err := sqlDB.Exec(statement); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("run sqlite migration: %w", err)
		}
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

func (s *SQLiteStore) SaveDeveloper(ctx context.Context, developer Developer) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`insert into developers (id, nome, email, date_of_birth) values (?, ?, ?, ?)`,
		developer.Id, developer.Nome, developer.Email, developer.DateOfBirth)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert developer: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindDevelopers(ctx context.Context) ([]Developer, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`select id, nome, email, date_of_birth from developers order by rowid`)
	if err != nil {
		return nil, fmt.Errorf("find developers: %w", err)
	}
	defer rows.Close()

	developers := []Developer{}
	for rows.Next() {
		var developer Developer
		if err := rows.Scan(&developer.Id, &developer.Nome, &developer.Email, &developer.DateOfBirth); err != nil {
			return nil, fmt.Errorf("scan developer: %w", err)
		}
		developers = append(developers, developer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate developers: %w", err)
	}
	return developers, nil
}

func (s *SQLiteStore) GetDeveloperById(ctx context.Context, id string) (*Developer, error) {
	var developer Developer
	err := s.sqlDB.QueryRowContext(ctx,
		`select id, nome, email, date_of_birth from developers where id = ?`, id).
		Scan(&developer.Id, &developer.Nome, &developer.Email, &developer.DateOfBirth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get developer %s: %w", id, err)
	}
	return &developer, nil
}

func (s *SQLiteStore) UpdateDeveloper(ctx context.Context, developer Developer) error {
	res, err := s.sqlDB.ExecContext(ctx,
		`update developers set nome = ?, email = ?, date_of_birth = ? where id = ?`,
		developer.Nome, developer.Email, developer.DateOfBirth, developer.Id)
	if err != nil {
		return fmt.Errorf("update developer %s: %w", developer.Id, err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) DeleteDeveloper(ctx context.Context, id string) error {
	res, err := s.sqlDB.ExecContext(ctx, `delete from developers where id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete developer %s: %w", id, err)
	}
	return requireAffected(res)
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PgStore)(nil)
)
