package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gov-collab/portal-api/internal/models"
)

const documentColumns = `id, event_id, country_id, status, chairman_comment, updated_at`

// DocumentRepository persists the per-document aggregate status rows.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository constructs the repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Ensure creates the aggregate row for the pair if missing, starting at
// in_progress. Safe under concurrent first touches.
func (r *DocumentRepository) Ensure(ctx context.Context, eventID, countryID int64) error {
	const query = `
INSERT INTO document_status (event_id, country_id, status, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (event_id, country_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, eventID, countryID, models.DocInProgress, time.Now().UTC()); err != nil {
		return fmt.Errorf("ensure document status: %w", err)
	}
	return nil
}

// Find returns the aggregate row for the pair, or sql.ErrNoRows.
func (r *DocumentRepository) Find(ctx context.Context, eventID, countryID int64) (*models.DocumentStatus, error) {
	query := fmt.Sprintf(`
SELECT %s FROM document_status
WHERE event_id = $1 AND country_id = $2 LIMIT 1`, documentColumns)
	var doc models.DocumentStatus
	if err := r.db.GetContext(ctx, &doc, query, eventID, countryID); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SetStatus moves the document through the workflow. Passing a nil comment
// clears any previous chairman note.
func (r *DocumentRepository) SetStatus(ctx context.Context, eventID, countryID int64, status models.DocStatus, comment *string) error {
	const query = `
UPDATE document_status
SET status = $1, chairman_comment = $2, updated_at = $3
WHERE event_id = $4 AND country_id = $5`
	result, err := r.db.ExecContext(ctx, query, status, comment, time.Now().UTC(), eventID, countryID)
	if err != nil {
		return fmt.Errorf("set document status: %w", err)
	}
	return requireRowAffected(result)
}

// ApproveDocument marks the document approved and cascades chairman approval
// to every required section in a single transaction. Missing content rows are
// materialized first so the cascade covers the full required set.
func (r *DocumentRepository) ApproveDocument(ctx context.Context, eventID, countryID, userID int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin document approve: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
UPDATE document_status
SET status = $1, chairman_comment = NULL, updated_at = $2
WHERE event_id = $3 AND country_id = $4`,
		models.DocApproved, now, eventID, countryID)
	if err != nil {
		return fmt.Errorf("approve document: %w", err)
	}
	if err := requireRowAffected(result); err != nil {
		return err
	}

	const ensure = `
INSERT INTO tp_content (event_id, country_id, section_id, html_content, status, last_updated_at)
SELECT ers.event_id, $2, ers.section_id, '', $3, $4
FROM event_required_sections ers
WHERE ers.event_id = $1
ON CONFLICT (event_id, country_id, section_id) DO NOTHING`
	if _, err := tx.ExecContext(ctx, ensure, eventID, countryID, models.SectionDraft, now); err != nil {
		return fmt.Errorf("ensure content rows for cascade: %w", err)
	}

	const cascade = `
UPDATE tp_content
SET status = $1, status_comment = NULL, last_updated_by_user_id = $2, last_updated_at = $3
WHERE event_id = $4 AND country_id = $5
  AND section_id IN (SELECT section_id FROM event_required_sections WHERE event_id = $4)`
	if _, err := tx.ExecContext(ctx, cascade, models.SectionApprovedByChairman, userID, now, eventID, countryID); err != nil {
		return fmt.Errorf("cascade section approval: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document approve: %w", err)
	}
	return nil
}

// ListApprovedForCountry returns approved documents for the library view,
// optionally filtered by country, most recently approved first.
func (r *DocumentRepository) ListApprovedForCountry(ctx context.Context, countryID *int64) ([]models.DocumentStatus, error) {
	query := fmt.Sprintf(`SELECT %s FROM document_status WHERE status = $1`, documentColumns)
	args := []interface{}{models.DocApproved}
	if countryID != nil {
		query += ` AND country_id = $2`
		args = append(args, *countryID)
	}
	query += ` ORDER BY updated_at DESC`
	var docs []models.DocumentStatus
	if err := r.db.SelectContext(ctx, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list approved documents: %w", err)
	}
	return docs, nil
}
