package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courseboard/courseboard/internal/platform/db"
	"github.com/courseboard/courseboard/internal/shared"
)

// Repository defines persistence operations for the role catalog.
type Repository interface {
	Create(ctx context.Context, name string) (*Role, error)
	Get(ctx context.Context, id int64) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	DeleteUnreferenced(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Create inserts a new role; duplicate names surface as ErrRoleNameTaken.
func (r *PGRepository) Create(ctx context.Context, name string) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name) VALUES ($1) RETURNING id, name, created_at, updated_at`,
		name).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrRoleNameTaken
		}
		return nil, err
	}
	return &role, nil
}

// Get fetches a role by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM roles WHERE id = $1`, id).
		Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// List returns all roles ordered by id ascending.
func (r *PGRepository) List(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// DeleteUnreferenced deletes the role only while no assignment references
// it; the reference check and the delete share a transaction so a
// concurrent set-role cannot slip between them.
func (r *PGRepository) DeleteUnreferenced(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var referenced bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM user_course_roles WHERE role_id = $1)`, id).Scan(&referenced); err != nil {
			return err
		}
		if referenced {
			return ErrRoleInUse
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ Repository = (*PGRepository)(nil)
