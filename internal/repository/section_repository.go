package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gov-collab/portal-api/internal/models"
)

const sectionColumns = `id, key, label, order_index, is_active, created_at, updated_at`

// SectionRepository persists the section catalog.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// List returns the catalog ordered for document assembly.
func (r *SectionRepository) List(ctx context.Context) ([]models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections ORDER BY order_index ASC, id ASC`, sectionColumns)
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// ListAssignedToUser returns the active sections a collaborator may author.
func (r *SectionRepository) ListAssignedToUser(ctx context.Context, userID int64) ([]models.Section, error) {
	const query = `
SELECT s.id, s.key, s.label, s.order_index, s.is_active, s.created_at, s.updated_at
FROM sections s
JOIN section_assignments sa ON sa.section_id = s.id
WHERE sa.user_id = $1 AND s.is_active = TRUE
ORDER BY s.order_index ASC, s.id ASC`
	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, userID); err != nil {
		return nil, fmt.Errorf("list assigned sections: %w", err)
	}
	return sections, nil
}

// FindByID returns one section by primary key.
func (r *SectionRepository) FindByID(ctx context.Context, id int64) (*models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE id = $1 LIMIT 1`, sectionColumns)
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// Create inserts a new section.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now
	const query = `
INSERT INTO sections (key, label, order_index, is_active, created_at, updated_at)
VALUES (:key, :label, :order_index, :is_active, :created_at, :updated_at)
RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, section)
	if err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&section.ID); err != nil {
			return fmt.Errorf("scan created section id: %w", err)
		}
	}
	return nil
}

// Update rewrites label, order and active flag.
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE sections SET label = :label, order_index = :order_index, is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, section)
	if err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return requireRowAffected(result)
}

// Deactivate soft-disables the section; historical content stays valid.
func (r *SectionRepository) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE sections SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate section: %w", err)
	}
	return requireRowAffected(result)
}
