package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/smarthostel/backend/internal/model"
)

const userColumns = "id,name,email,phone,password_hash,avatar_public_id,avatar_url,role,is_active,hostel_request_status,hostel_id,created_at,updated_at"

// UserRepo persists Identity records in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts an inactive user row and returns its ID. The unique index
// on email is the commit-time uniqueness check; a duplicate-key failure is
// mapped to ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, password_hash, avatar_public_id, avatar_url, role, is_active, hostel_request_status) VALUES (?,?,?,?,?,?,?,?,?)",
		u.Name, normalizeEmail(u.Email), u.Phone, u.PasswordHash,
		u.AvatarPublicID, u.AvatarURL, u.Role, u.IsActive, u.HostelRequestStatus)
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

// FindByEmail fetches a user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		normalizeEmail(email)))
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// Activate flips is_active on the given user. The WHERE clause guards
// against re-activating: zero rows affected means the account was already
// active (or gone), and the caller decides which by re-reading the row.
func (r *UserRepo) Activate(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET is_active=1, updated_at=NOW() WHERE id=? AND is_active=0", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u        model.User
		hostelID sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash,
		&u.AvatarPublicID, &u.AvatarURL, &u.Role, &u.IsActive,
		&u.HostelRequestStatus, &hostelID, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if hostelID.Valid {
		v := uint64(hostelID.Int64)
		u.HostelID = &v
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
