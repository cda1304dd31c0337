package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/yanqian/taskhub/internal/domain/auth"
	"github.com/yanqian/taskhub/internal/infra/sqlite"
)

// SQLiteRepository persists users in a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new repository over an opened database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a new user row.
func (r *SQLiteRepository) Create(ctx context.Context, name, email, passwordHash string) (auth.User, error) {
	now := time.Now().UTC().Format(sqlite.TimeLayout)
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, name, email, password_hash, created_at, updated_at
	`, name, email, passwordHash, now, now)
	user, err := scanSQLiteUser(row)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return auth.User{}, auth.ErrEmailExists
		}
		return auth.User{}, err
	}
	return user, nil
}

// GetByEmail fetches a user by email.
func (r *SQLiteRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	return r.getOne(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE email = ?
	`, email)
}

// GetByID fetches by primary key.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	return r.getOne(ctx, `
		SELECT id, name, email, password_hash, created_at, updated_at
		FROM users
		WHERE id = ?
	`, id)
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, arg any) (auth.User, bool, error) {
	user, err := scanSQLiteUser(r.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, false, nil
	}
	if err != nil {
		return auth.User{}, false, err
	}
	return user, true, nil
}

func scanSQLiteUser(row rowScanner) (auth.User, error) {
	var user auth.User
	var created, updated string
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &created, &updated); err != nil {
		return auth.User{}, err
	}
	var err error
	if user.CreatedAt, err = time.Parse(sqlite.TimeLayout, created); err != nil {
		return auth.User{}, err
	}
	if user.UpdatedAt, err = time.Parse(sqlite.TimeLayout, updated); err != nil {
		return auth.User{}, err
	}
	return user, nil
}

var _ auth.Repository = (*SQLiteRepository)(nil)
