package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/dbx"
	"github.com/dmitrijs2005/authgate/internal/server/migrations"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const uniqueViolation = "23505"

// PostgresDirectory stores users and contacts in PostgreSQL. Emails are
// unique case-insensitively, so CreateUser is a create-if-absent.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// OpenPostgres connects with the pgx driver and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresDirectory, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	d := NewPostgresDirectory(db)
	if err := d.RunMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return d, nil
}

// RunMigrations applies the embedded goose migrations.
func (d *PostgresDirectory) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, d.db, ".")
}

func (d *PostgresDirectory) Close() error {
	return d.db.Close()
}

func (d *PostgresDirectory) ListUsers(ctx context.Context) ([]UserRecord, error) {
	query :=
		`SELECT id, name, email, password_hash FROM users
		 ORDER BY created_at, id
		 `

	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var users []UserRecord
	for rows.Next() {
		var u UserRecord
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

func (d *PostgresDirectory) CreateUser(ctx context.Context, u NewUser) (*UserRecord, error) {
	rec := &UserRecord{Name: u.Name, Email: u.Email, PasswordHash: u.PasswordHash}

	err := dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))`, u.Email,
		).Scan(&exists); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if exists {
			return common.ErrAlreadyExists
		}

		query :=
			`INSERT INTO users (name, email, password_hash)
			 VALUES ($1, $2, $3)
			 RETURNING id
			 `
		if err := tx.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash).Scan(&rec.ID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return common.ErrAlreadyExists
			}
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Contacts returns {"contacts": [...]} built from the contacts table.
func (d *PostgresDirectory) Contacts(ctx context.Context) (json.RawMessage, error) {
	query :=
		`SELECT json_build_object('contacts', COALESCE(json_agg(c ORDER BY c.id), '[]'::json))
		 FROM contacts c
		 `

	var payload []byte
	if err := d.db.QueryRowContext(ctx, query).Scan(&payload); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return json.RawMessage(payload), nil
}
