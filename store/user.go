package store

import (
	"context"
	"database/sql"
	"errors"

	"avado-backend/models"
)

// UserStore persists accounts.
type UserStore struct {
	DB *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{DB: db}
}

// GetByID loads a user by id.
func (s *UserStore) GetByID(ctx context.Context, id int64) (models.User, error) {
	return scanUser(s.DB.QueryRowContext(ctx, `
		SELECT id, email, COALESCE(phone,''), password, role, created_at
		FROM users WHERE id=$1`, id))
}

// Exists reports whether a user row with the given id is present. The
// identity resolver uses this so a stale token for a deleted account falls
// back to guest.
func (s *UserStore) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}

// GetByLogin looks a user up by email or phone; login accepts either.
func (s *UserStore) GetByLogin(ctx context.Context, login string) (models.User, error) {
	return scanUser(s.DB.QueryRowContext(ctx, `
		SELECT id, email, COALESCE(phone,''), password, role, created_at
		FROM users WHERE email=$1 OR phone=$1`, login))
}

// EmailTaken reports whether an account already uses the email.
func (s *UserStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

// Create inserts an account and returns its id.
func (s *UserStore) Create(ctx context.Context, email, phone, passwordHash string) (int64, error) {
	return createUser(ctx, s.DB, email, phone, passwordHash)
}

// UpdateAccount applies a partial update; empty fields are left unchanged.
func (s *UserStore) UpdateAccount(ctx context.Context, id int64, email, phone, passwordHash string) (models.User, error) {
	return scanUser(s.DB.QueryRowContext(ctx, `
		UPDATE users SET
			email    = COALESCE(NULLIF($1,''), email),
			phone    = COALESCE(NULLIF($2,''), phone),
			password = COALESCE(NULLIF($3,''), password)
		WHERE id=$4
		RETURNING id, email, COALESCE(phone,''), password, role, created_at`,
		email, phone, passwordHash, id))
}

// FindIDByPhoneTx and CreateTx are the transactional variants used by the
// checkout orchestrator when converting a guest into an account.
func FindIDByPhoneTx(ctx context.Context, q Querier, phone string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM users WHERE phone=$1`, phone).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

func CreateTx(ctx context.Context, q Querier, email, phone, passwordHash string) (int64, error) {
	return createUser(ctx, q, email, phone, passwordHash)
}

func createUser(ctx context.Context, q Querier, email, phone, passwordHash string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
		INSERT INTO users (email, phone, password, role)
		VALUES ($1, NULLIF($2,''), $3, 'customer')
		RETURNING id`, email, phone, passwordHash).Scan(&id)
	return id, err
}

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Phone, &u.Password, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	return u, err
}
