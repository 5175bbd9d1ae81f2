package enrollment

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/courseboard/courseboard/internal/platform/db"
	"github.com/courseboard/courseboard/internal/shared"
)

// TxRepository exposes the ledger mutations that must share a transaction.
type TxRepository interface {
	Get(ctx context.Context, userID, courseID int64) (*Assignment, error)
	Insert(ctx context.Context, userID, courseID, roleID int64) (*Assignment, error)
	UpdateRole(ctx context.Context, id, roleID int64) error
}

// Repository defines persistence operations for the assignment ledger.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, userID, courseID int64) (*Assignment, error)
	Delete(ctx context.Context, userID, courseID int64) error
	ListByCourseAndRole(ctx context.Context, courseID, roleID int64) ([]RosterEntry, error)
	ListByUser(ctx context.Context, userID int64) ([]CourseRole, error)
	CountDangling(ctx context.Context) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx runs fn against a transactional view of the ledger.
func (r *PGRepository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func getAssignment(ctx context.Context, q querier, userID, courseID int64) (*Assignment, error) {
	var a Assignment
	err := q.QueryRow(ctx,
		`SELECT id, user_id, course_id, role_id FROM user_course_roles WHERE user_id = $1 AND course_id = $2`,
		userID, courseID).Scan(&a.ID, &a.UserID, &a.CourseID, &a.RoleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// translateConstraint maps storage constraint violations to ledger errors.
func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return ErrDuplicatePair
	case "23503":
		switch {
		case strings.Contains(pgErr.ConstraintName, "role"):
			return ErrRoleNotFound
		case strings.Contains(pgErr.ConstraintName, "course"):
			return ErrCourseNotFound
		case strings.Contains(pgErr.ConstraintName, "user"):
			return ErrUserNotFound
		}
	}
	return err
}

func (t *txRepo) Get(ctx context.Context, userID, courseID int64) (*Assignment, error) {
	return getAssignment(ctx, t.tx, userID, courseID)
}

func (t *txRepo) Insert(ctx context.Context, userID, courseID, roleID int64) (*Assignment, error) {
	var a Assignment
	err := t.tx.QueryRow(ctx,
		`INSERT INTO user_course_roles (user_id, course_id, role_id) VALUES ($1, $2, $3) RETURNING id, user_id, course_id, role_id`,
		userID, courseID, roleID).Scan(&a.ID, &a.UserID, &a.CourseID, &a.RoleID)
	if err != nil {
		return nil, translateConstraint(err)
	}
	return &a, nil
}

func (t *txRepo) UpdateRole(ctx context.Context, id, roleID int64) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE user_course_roles SET role_id = $2 WHERE id = $1`, id, roleID)
	if err != nil {
		return translateConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Get looks up the assignment for a (user, course) pair.
func (r *PGRepository) Get(ctx context.Context, userID, courseID int64) (*Assignment, error) {
	return getAssignment(ctx, r.pool, userID, courseID)
}

// Delete removes the assignment for the pair. Deleting an absent pair is
// a no-op, which makes the operation idempotent.
func (r *PGRepository) Delete(ctx context.Context, userID, courseID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_course_roles WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	return err
}

// ListByCourseAndRole returns the users holding roleID in courseID,
// ordered by username for deterministic rosters.
func (r *PGRepository) ListByCourseAndRole(ctx context.Context, courseID, roleID int64) ([]RosterEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.username
		   FROM user_course_roles ucr
		   JOIN users u ON u.id = ucr.user_id
		  WHERE ucr.course_id = $1 AND ucr.role_id = $2
		  ORDER BY u.username`, courseID, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []RosterEntry{}
	for rows.Next() {
		var e RosterEntry
		if err := rows.Scan(&e.UserID, &e.Username); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListByUser returns the user's assignments joined with course and role
// names for display.
func (r *PGRepository) ListByUser(ctx context.Context, userID int64) ([]CourseRole, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT c.id, c.name, ro.id, ro.name
		   FROM user_course_roles ucr
		   JOIN courses c ON c.id = ucr.course_id
		   JOIN roles ro ON ro.id = ucr.role_id
		  WHERE ucr.user_id = $1
		  ORDER BY c.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []CourseRole{}
	for rows.Next() {
		var cr CourseRole
		if err := rows.Scan(&cr.CourseID, &cr.CourseName, &cr.RoleID, &cr.RoleName); err != nil {
			return nil, err
		}
		list = append(list, cr)
	}
	return list, rows.Err()
}

// CountDangling counts assignments whose course or role reference no
// longer resolves. With the schema constraints in place this should
// always be zero; the background integrity scan calls it as a safety net.
func (r *PGRepository) CountDangling(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		   FROM user_course_roles ucr
		   LEFT JOIN courses c ON c.id = ucr.course_id
		   LEFT JOIN roles ro ON ro.id = ucr.role_id
		  WHERE (ucr.course_id IS NOT NULL AND c.id IS NULL) OR ro.id IS NULL`).Scan(&count)
	return count, err
}

var _ Repository = (*PGRepository)(nil)
