package identity

import (
	"context"
	"database/sql"
	"errors"

	"cloudconnect/pkg/utils"
)

// PostgresRepo persists users in the users table.
//
// Assumed schema:
//
//	users (
//	  id UUID PRIMARY KEY,
//	  name TEXT NOT NULL,
//	  email TEXT NOT NULL UNIQUE,
//	  password_hash TEXT NOT NULL,
//	  role TEXT NOT NULL,
//	  status TEXT NOT NULL,
//	  availability TEXT NOT NULL DEFAULT '',
//	  sip_extension TEXT NOT NULL DEFAULT '',
//	  sip_password TEXT NOT NULL DEFAULT '',
//	  department TEXT NOT NULL DEFAULT '',
//	  avatar TEXT NOT NULL DEFAULT '',
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

const userColumns = `id, name, email, password_hash, role, status, availability, sip_extension, sip_password, department, avatar, created_at, updated_at`

func (r *PostgresRepo) Create(ctx context.Context, u User) error {
	const q = `
INSERT INTO users (` + userColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`
	_, err := r.db.ExecContext(ctx, q,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Status,
		u.Availability,
		u.SIPExtension,
		u.SIPPassword,
		u.Department,
		u.Avatar,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil && utils.IsUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
WHERE email = $1
`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *PostgresRepo) List(ctx context.Context) ([]User, error) {
	const q = `
SELECT ` + userColumns + `
FROM users
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Update(ctx context.Context, u User) error {
	const q = `
UPDATE users
SET name = $2,
    email = $3,
    password_hash = $4,
    role = $5,
    status = $6,
    availability = $7,
    sip_extension = $8,
    sip_password = $9,
    department = $10,
    avatar = $11,
    updated_at = $12
WHERE id = $1
`
	res, err := r.db.ExecContext(ctx, q,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.Role,
		u.Status,
		u.Availability,
		u.SIPExtension,
		u.SIPPassword,
		u.Department,
		u.Avatar,
		u.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.Role,
		&u.Status,
		&u.Availability,
		&u.SIPExtension,
		&u.SIPPassword,
		&u.Department,
		&u.Avatar,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}
