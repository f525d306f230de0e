package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"retailbilling-backend/internal/db"
	"retailbilling-backend/internal/domain"
)

type UserRepository struct {
	DB *db.Postgres
}

type CreateUserParams struct {
	Username     string
	PasswordHash string
	Email        string
	FullName     string
	Role         domain.UserRole
}

const userColumns = `id, username, password_hash, email, full_name, role, status, last_login, created_at, updated_at`

// CreateIfMissing inserts the user unless the username is taken. created is false when
// the account already existed.
func (r UserRepository) CreateIfMissing(ctx context.Context, p CreateUserParams) (created bool, err error) {
	ct, err := r.DB.Pool.Exec(ctx, `
		INSERT INTO users (username, password_hash, email, full_name, role, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,'ACTIVE', now(), now())
		ON CONFLICT (username) DO NOTHING
	`, p.Username, p.PasswordHash, p.Email, p.FullName, string(p.Role))
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	return scanUserOrNotFound(row)
}

func (r UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.DB.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
	return scanUserOrNotFound(row)
}

func (r UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.DB.Pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// TouchLastLogin stamps the login time.
func (r UserRepository) TouchLastLogin(ctx context.Context, id int64) error {
	ct, err := r.DB.Pool.Exec(ctx, `UPDATE users SET last_login=now(), updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUserOrNotFound(row pgx.Row) (*domain.User, error) {
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row interface {
	Scan(dest ...any) error
}) (*domain.User, error) {
	var (
		u      domain.User
		role   string
		status string
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Email,
		&u.FullName,
		&role,
		&status,
		&u.LastLogin,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.Role = domain.UserRole(role)
	u.Status = domain.UserStatus(status)
	return &u, nil
}

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// IsDuplicate detects unique constraint violation.
func IsDuplicate(err error) bool {
	return db.IsUniqueViolation(err)
}
