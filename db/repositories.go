package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

// PgStore keeps developers in PostgreSQL.
type PgStore struct {
	conn PgxIface
}

func NewPgStore(conn PgxIface) *PgStore {
	return &PgStore{conn: conn}
}

// EnsureSchema runs the embedded postgres migrations.
func (s *PgStore) EnsureSchema(ctx context.Context) error {
	statements, err := migrationStatements("postgres")
	if err != nil {
		return err
	}
	for _, statement := range statements {
		if _, err := s.conn.Exec(ctx, statement); err != nil {
			return fmt.Errorf("run postgres migration: %w", err)
		}
	}
	return nil
}

func (s *PgStore) GetDeveloperById(ctx context.Context, id string) (*Developer, error) {
	sql := "select id, nome, email, date_of_birth from developers where id = $1"

	var developer Developer

	err := s.conn.QueryRow(ctx, sql, id).Scan(
		&developer.Id,
		&developer.Nome,
		&developer.Email,
		&developer.DateOfBirth)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get developer %s: %w", id, err)
	}

	return &developer, nil
}

func (s *PgStore) FindDevelopers(ctx context.Context) ([]Developer, error) {
	sql := `select id, nome, email, date_of_birth
		from developers
		order by created_at, id`

	rows, err := s.conn.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("find developers: %w", err)
	}
	defer rows.Close()

	developers := []Developer{}

	for rows.Next() {
		var developer Developer

		if err := rows.Scan(
			&developer.Id,
			&developer.Nome,
			&developer.Email,
			&developer.DateOfBirth); err != nil {
			return nil, fmt.Errorf("scan developer: %w", err)
		}

		developers = append(developers, developer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate developers: %w", err)
	}

	return developers, nil
}

func (s *PgStore) SaveDeveloper(ctx context.Context, developer Developer) error {
	sql := `insert into developers (id, nome, email, date_of_birth) values ($1, $2, $3, $4)`

	exec, err := s.conn.Exec(ctx, sql, developer.Id, developer.Nome, developer.Email, developer.DateOfBirth)
	if err != nil {
		log.WithError(err).WithField("developer_id", developer.Id).Error("error executing insert")

		var pgerr *pgconn.PgError
		if errors.As(err, &pgerr) && pgerr.Code == "23505" {
			return ErrDuplicateID
		}
		return fmt.Errorf("insert developer: %w", err)
	}

	log.WithField("developer_id", developer.Id).Debugf("executed insert with result %s", exec)

	return nil
}

func (s *PgStore) UpdateDeveloper(ctx context.Context, developer Developer) error {
	sql := `update developers set nome = $2, email = $3, date_of_birth = $4 where id = $1`

	exec, err := s.conn.Exec(ctx, sql, developer.Id, developer.Nome, developer.Email, developer.DateOfBirth)
	if err != nil {
		return fmt.Errorf("update developer %s: %w", developer.Id, err)
	}
	if exec.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PgStore) DeleteDeveloper(ctx context.Context, id string) error {
	exec, err := s.conn.Exec(ctx, `delete from developers where id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete developer %s: %w", id, err)
	}
	if exec.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PgStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *PgStore) Close() error {
	s.conn.Close()
	return nil
}
