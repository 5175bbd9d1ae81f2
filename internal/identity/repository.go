package identity

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courseboard/courseboard/internal/platform/db"
	"github.com/courseboard/courseboard/internal/shared"
)

// Repository defines persistence operations for the identity store.
type Repository interface {
	Create(ctx context.Context, username, passwordHash string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	SetSuperuser(ctx context.Context, id int64, superuser bool) error
	DeleteCascade(ctx context.Context, id int64) error
	RecordSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSessionRecord(ctx context.Context, id string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, username, password_hash, is_superuser, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsSuperuser, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user. Username uniqueness is enforced by the
// storage constraint; a violation surfaces as ErrUsernameTaken.
func (r *PGRepository) Create(ctx context.Context, username, passwordHash string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, is_superuser) VALUES ($1, $2, FALSE) RETURNING `+userColumns,
		username, passwordHash)
	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return user, nil
}

// GetByUsername fetches a user by exact, case-sensitive username.
func (r *PGRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// GetByID fetches a user by surrogate key.
func (r *PGRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// List returns all users ordered by id.
func (r *PGRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.IsSuperuser, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetSuperuser toggles the superuser flag.
func (r *PGRepository) SetSuperuser(ctx context.Context, id int64, superuser bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_superuser = $2, updated_at = now() WHERE id = $1`, id, superuser)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteCascade removes the user and every assignment it owns in one
// transaction, so no assignment can reference a nonexistent user.
func (r *PGRepository) DeleteCascade(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_course_roles WHERE user_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// RecordSession persists a login session row for auditing. Live session
// state lives in Redis; these rows only track who logged in when.
func (r *PGRepository) RecordSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at, ip, ua) VALUES ($1, $2, now(), $3, NULLIF($4, ''), NULLIF($5, ''))`,
		id, userID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSessionRecord removes a session row on logout.
func (r *PGRepository) DeleteSessionRecord(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

var _ Repository = (*PGRepository)(nil)
