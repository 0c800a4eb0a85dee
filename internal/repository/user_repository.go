package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/greenloop/ewaste-pickup/internal/model"
)

// UserRepo persists user accounts in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,address,reset_code,reset_code_expires,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u       model.User
		role    string
		address sql.NullString
		code    sql.NullString
		expires sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role,
		&address, &code, &expires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if address.Valid {
		a := address.String
		u.Address = &a
	}
	if code.Valid {
		c := code.String
		u.ResetCode = &c
	}
	if expires.Valid {
		t := expires.Time
		u.ResetCodeExpires = &t
	}
	return u, nil
}

// Create inserts a user with a pre-hashed password and returns its ID.
// Emails are normalized to lowercase; a duplicate-key failure on the
// unique email index is reported as ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, name, email, passwordHash string, role model.Role, address *string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role, address) VALUES (?,?,?,?,?)",
		name, email, passwordHash, string(role), address)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all users ordered by id. The admin user listing is
// plain pass-through persistence; no pagination is applied here.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,name,email,role,address FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	users := make([]model.User, 0)
	for rows.Next() {
		var (
			u       model.User
			role    string
			address sql.NullString
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &role, &address); err != nil {
			return nil, err
		}
		u.Role = model.Role(role)
		if address.Valid {
			a := address.String
			u.Address = &a
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateRole changes a user's role. Role values are validated by the
// handler; sql.ErrNoRows is returned when the user does not exist.
func (r *UserRepo) UpdateRole(ctx context.Context, id uint64, role model.Role) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=? WHERE id=?", string(role), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish missing user from a no-op same-role update.
		var exists uint64
		err := r.DB.QueryRowContext(ctx, "SELECT id FROM users WHERE id=? LIMIT 1", id).Scan(&exists)
		if err != nil {
			return err
		}
	}
	return nil
}

// SetResetCode stores a hashed one-time reset code and its expiry.
// Both columns are written together so the pair is always consistent.
func (r *UserRepo) SetResetCode(ctx context.Context, id uint64, codeHash string, expires time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_code=?, reset_code_expires=? WHERE id=?",
		codeHash, expires, id)
	return err
}

// ClearResetCode removes any stored reset code. Called when a code is
// consumed or found expired, making codes single-use.
func (r *UserRepo) ClearResetCode(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET reset_code=NULL, reset_code_expires=NULL WHERE id=?", id)
	return err
}

// UpdatePassword replaces the password hash and clears the reset code
// in the same statement, so a consumed code can never authorize a
// second reset.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, passwordHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET password_hash=?, reset_code=NULL, reset_code_expires=NULL WHERE id=?",
		passwordHash, id)
	return err
}
