package courses

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courseboard/courseboard/internal/platform/db"
	"github.com/courseboard/courseboard/internal/shared"
)

// Repository defines persistence operations for the course catalog.
type Repository interface {
	Create(ctx context.Context, name string) (*Course, error)
	Get(ctx context.Context, id int64) (*Course, error)
	List(ctx context.Context) ([]Course, error)
	Rename(ctx context.Context, id int64, name string) (*Course, error)
	DeleteCascade(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func nameCollision(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts a new course; duplicate names surface as ErrCourseNameTaken.
func (r *PGRepository) Create(ctx context.Context, name string) (*Course, error) {
	var course Course
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (name) VALUES ($1) RETURNING id, name, created_at, updated_at`,
		name).Scan(&course.ID, &course.Name, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if nameCollision(err) {
			return nil, ErrCourseNameTaken
		}
		return nil, err
	}
	return &course, nil
}

// Get fetches a course by id.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Course, error) {
	var course Course
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM courses WHERE id = $1`, id).
		Scan(&course.ID, &course.Name, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

// List returns all courses ordered by id ascending.
func (r *PGRepository) List(ctx context.Context) ([]Course, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at, updated_at FROM courses ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Course
	for rows.Next() {
		var course Course
		if err := rows.Scan(&course.ID, &course.Name, &course.CreatedAt, &course.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, course)
	}
	return list, rows.Err()
}

// Rename updates the course name in place.
func (r *PGRepository) Rename(ctx context.Context, id int64, name string) (*Course, error) {
	var course Course
	err := r.pool.QueryRow(ctx,
		`UPDATE courses SET name = $2, updated_at = now() WHERE id = $1 RETURNING id, name, created_at, updated_at`,
		id, name).Scan(&course.ID, &course.Name, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		if nameCollision(err) {
			return nil, ErrCourseNameTaken
		}
		return nil, err
	}
	return &course, nil
}

// DeleteCascade removes the course and every assignment referencing it in
// one transaction, so no assignment can outlive its course.
func (r *PGRepository) DeleteCascade(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_course_roles WHERE course_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
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
