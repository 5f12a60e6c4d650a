package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
)

const contentColumns = `id, event_id, country_id, section_id, html_content, status, status_comment, last_updated_by_user_id, last_updated_at`

// ContentRepository persists per-section document content. Rows are created
// lazily on first touch, never at event creation time.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs the repository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// Ensure creates the content row for the triple if it does not exist yet.
// Concurrent first-touch races collapse onto the same row via the unique
// constraint, so Ensure is idempotent.
func (r *ContentRepository) Ensure(ctx context.Context, eventID, countryID, sectionID int64) error {
	const query = `
INSERT INTO tp_content (event_id, country_id, section_id, html_content, status, last_updated_at)
VALUES ($1, $2, $3, '', $4, $5)
ON CONFLICT (event_id, country_id, section_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, eventID, countryID, sectionID, models.SectionDraft, time.Now().UTC()); err != nil {
		return fmt.Errorf("ensure content row: %w", err)
	}
	return nil
}

// Find returns the content row for the triple, or sql.ErrNoRows.
func (r *ContentRepository) Find(ctx context.Context, eventID, countryID, sectionID int64) (*models.ContentItem, error) {
	query := fmt.Sprintf(`
SELECT %s FROM tp_content
WHERE event_id = $1 AND country_id = $2 AND section_id = $3 LIMIT 1`, contentColumns)
	var item models.ContentItem
	if err := r.db.GetContext(ctx, &item, query, eventID, countryID, sectionID); err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveBody overwrites the body without touching the workflow status. Used
// when a reviewer role edits without demoting the section.
func (r *ContentRepository) SaveBody(ctx context.Context, eventID, countryID, sectionID int64, html string, userID int64) error {
	const query = `
UPDATE tp_content
SET html_content = $1, last_updated_by_user_id = $2, last_updated_at = $3
WHERE event_id = $4 AND country_id = $5 AND section_id = $6`
	result, err := r.db.ExecContext(ctx, query, html, userID, time.Now().UTC(), eventID, countryID, sectionID)
	if err != nil {
		return fmt.Errorf("save content body: %w", err)
	}
	return requireRowAffected(result)
}

// SaveBodyWithStatus overwrites the body and forces the status. Collaborator
// saves route here so any prior approval is reset to draft.
func (r *ContentRepository) SaveBodyWithStatus(ctx context.Context, eventID, countryID, sectionID int64, html string, status models.SectionStatus, userID int64) error {
	const query = `
UPDATE tp_content
SET html_content = $1, status = $2, status_comment = NULL, last_updated_by_user_id = $3, last_updated_at = $4
WHERE event_id = $5 AND country_id = $6 AND section_id = $7`
	result, err := r.db.ExecContext(ctx, query, html, status, userID, time.Now().UTC(), eventID, countryID, sectionID)
	if err != nil {
		return fmt.Errorf("save content body with status: %w", err)
	}
	return requireRowAffected(result)
}

// SetStatus moves the section through the workflow. A nil comment clears any
// previous return note.
func (r *ContentRepository) SetStatus(ctx context.Context, eventID, countryID, sectionID int64, status models.SectionStatus, comment *string, userID int64) error {
	const query = `
UPDATE tp_content
SET status = $1, status_comment = $2, last_updated_by_user_id = $3, last_updated_at = $4
WHERE event_id = $5 AND country_id = $6 AND section_id = $7`
	result, err := r.db.ExecContext(ctx, query, status, comment, userID, time.Now().UTC(), eventID, countryID, sectionID)
	if err != nil {
		return fmt.Errorf("set content status: %w", err)
	}
	return requireRowAffected(result)
}

// ApproveAllForEvent stamps every required section of the event's document
// with the given status in one transaction. Rows that were never touched are
// created first so the approval covers the complete required set.
func (r *ContentRepository) ApproveAllForEvent(ctx context.Context, eventID, countryID int64, status models.SectionStatus, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approve all: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	const ensure = `
INSERT INTO tp_content (event_id, country_id, section_id, html_content, status, last_updated_at)
SELECT ers.event_id, $2, ers.section_id, '', $3, $4
FROM event_required_sections ers
WHERE ers.event_id = $1
ON CONFLICT (event_id, country_id, section_id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, ensure, eventID, countryID, models.SectionDraft, now); err != nil {
		return fmt.Errorf("ensure content rows for approve all: %w", err)
	}

	const approve = `
UPDATE tp_content
SET status = $1, status_comment = NULL, last_updated_by_user_id = $2, last_updated_at = $3
WHERE event_id = $4 AND country_id = $5
  AND section_id IN (SELECT section_id FROM event_required_sections WHERE event_id = $4)`
	if _, err := tx.ExecContext(ctx, approve, status, userID, now, eventID, countryID); err != nil {
		return fmt.Errorf("approve all sections: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approve all: %w", err)
	}
	return nil
}

// CountBelowStatusForEvent counts required sections whose content has not yet
// reached supervisor approval. Untouched sections count as below.
func (r *ContentRepository) CountBelowSupervisorApproval(ctx context.Context, eventID, countryID int64) (int, error) {
	const query = `
SELECT COUNT(*)
FROM event_required_sections ers
LEFT JOIN tp_content tc
  ON tc.event_id = ers.event_id AND tc.country_id = $2 AND tc.section_id = ers.section_id
WHERE ers.event_id = $1
  AND (tc.id IS NULL OR tc.status NOT IN ($3, $4))`
	var count int
	if err := r.db.GetContext(ctx, &count, query, eventID, countryID,
		models.SectionApprovedBySupervisor, models.SectionApprovedByChairman); err != nil {
		return 0, fmt.Errorf("count unapproved sections: %w", err)
	}
	return count, nil
}

// GridForEvent returns one row per required section with the current content
// status joined in. Sections with no content row yet surface as draft with an
// empty timestamp.
func (r *ContentRepository) GridForEvent(ctx context.Context, eventID, countryID int64) ([]dto.StatusGridRow, error) {
	const query = `
SELECT s.id AS section_id, s.key AS section_key, s.label AS section_label,
       COALESCE(tc.status, 'draft') AS status,
       COALESCE(tc.status_comment, '') AS status_comment, tc.last_updated_at
FROM event_required_sections ers
JOIN sections s ON s.id = ers.section_id
LEFT JOIN tp_content tc
  ON tc.event_id = ers.event_id AND tc.country_id = $2 AND tc.section_id = ers.section_id
WHERE ers.event_id = $1
ORDER BY s.order_index ASC, s.id ASC`
	var rows []dto.StatusGridRow
	if err := r.db.SelectContext(ctx, &rows, query, eventID, countryID); err != nil {
		return nil, fmt.Errorf("load status grid: %w", err)
	}
	return rows, nil
}
