package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gov-collab/portal-api/internal/models"
)

const userColumns = `id, username, password_hash, full_name, email, role, is_active, deleted_at, deleted_by_user_id, created_at, updated_at`

// UserRepository persists portal users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByUsername returns the user with the given username, including
// soft-deleted rows so callers can distinguish the failure mode.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID returns one user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users that are not soft-deleted, newest first.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE deleted_at IS NULL ORDER BY created_at DESC`, userColumns)
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	const query = `
INSERT INTO users (username, password_hash, full_name, email, role, is_active, created_at, updated_at)
VALUES (:username, :password_hash, :full_name, :email, :role, :is_active, :created_at, :updated_at)
RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&user.ID); err != nil {
			return fmt.Errorf("scan created user id: %w", err)
		}
	}
	return nil
}

// Update rewrites the mutable profile fields. The role column is handled by
// UpdateRole so the assignment purge stays transactional.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE users SET full_name = :full_name, email = :email, is_active = :is_active, updated_at = :updated_at
WHERE id = :id AND deleted_at IS NULL`
	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return requireRowAffected(result)
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $1, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, passwordHash, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRowAffected(result)
}

// UpdateRole changes the role and, when the new role no longer carries
// assignments, deletes all section and country grants in the same
// transaction so no orphaned grants survive the role change.
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin role update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	result, err := tx.ExecContext(ctx,
		`UPDATE users SET role = $1, updated_at = $2 WHERE id = $3 AND deleted_at IS NULL`,
		role, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	if err := requireRowAffected(result); err != nil {
		return err
	}

	if !role.IsCollaborator() {
		if _, err := tx.ExecContext(ctx, `DELETE FROM section_assignments WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("purge section assignments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM country_assignments WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("purge country assignments: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit role update: %w", err)
	}
	return nil
}

// Deactivate flips the active flag off without deleting the row.
func (r *UserRepository) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE users SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate user: %w", err)
	}
	return requireRowAffected(result)
}

// SoftDelete stamps the row with deletion time and actor.
func (r *UserRepository) SoftDelete(ctx context.Context, id, actorID int64) error {
	const query = `
UPDATE users SET deleted_at = $1, deleted_by_user_id = $2, is_active = FALSE, updated_at = $1
WHERE id = $3 AND deleted_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), actorID, id)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	return requireRowAffected(result)
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check affected rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
