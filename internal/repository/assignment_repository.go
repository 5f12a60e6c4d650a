package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gov-collab/portal-api/internal/models"
)

// AssignmentRepository persists the two collaborator grant relations.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListSectionAssignments returns all section grants joined for display.
func (r *AssignmentRepository) ListSectionAssignments(ctx context.Context) ([]models.SectionAssignmentDetail, error) {
	const query = `
SELECT sa.id, sa.user_id, u.username, u.full_name, sa.section_id, s.label AS section_label, sa.created_at
FROM section_assignments sa
JOIN users u ON u.id = sa.user_id
JOIN sections s ON s.id = sa.section_id
ORDER BY u.full_name ASC, s.order_index ASC`
	var rows []models.SectionAssignmentDetail
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list section assignments: %w", err)
	}
	return rows, nil
}

// SectionIDsForUser returns the user's assigned section id set.
func (r *AssignmentRepository) SectionIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	const query = `SELECT section_id FROM section_assignments WHERE user_id = $1`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list user section ids: %w", err)
	}
	return ids, nil
}

// CountryIDsForUser returns the user's assigned country id set.
func (r *AssignmentRepository) CountryIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	const query = `SELECT country_id FROM country_assignments WHERE user_id = $1`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list user country ids: %w", err)
	}
	return ids, nil
}

// CreateSectionAssignment inserts one grant. A concurrent duplicate insert is
// absorbed by the unique constraint; zero affected rows means the grant
// already existed and is reported to the caller as created=false.
func (r *AssignmentRepository) CreateSectionAssignment(ctx context.Context, userID, sectionID int64) (bool, error) {
	const query = `
INSERT INTO section_assignments (user_id, section_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id, section_id) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query, userID, sectionID, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("create section assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check created assignment rows: %w", err)
	}
	return affected > 0, nil
}

// DeleteSectionAssignment removes one grant by id.
func (r *AssignmentRepository) DeleteSectionAssignment(ctx context.Context, id int64) error {
	const query = `DELETE FROM section_assignments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete section assignment: %w", err)
	}
	return requireRowAffected(result)
}

// ReplaceCountryAssignments swaps the user's full country grant set in one
// transaction, matching the admin screen's bulk save.
func (r *AssignmentRepository) ReplaceCountryAssignments(ctx context.Context, userID int64, countryIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin country assignment replace: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM country_assignments WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear country assignments: %w", err)
	}

	const insert = `
INSERT INTO country_assignments (user_id, country_id)
VALUES ($1, $2)
ON CONFLICT (user_id, country_id) DO NOTHING`
	for _, countryID := range countryIDs {
		if _, err := tx.ExecContext(ctx, insert, userID, countryID); err != nil {
			return fmt.Errorf("insert country assignment %d: %w", countryID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit country assignment replace: %w", err)
	}
	return nil
}
