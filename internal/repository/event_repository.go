package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gov-collab/portal-api/internal/models"
)

const eventColumns = `e.id, e.country_id, c.name_en AS country_name_en, e.title, e.occasion, e.deadline_date,
       e.created_by_user_id, e.is_active, e.ended_at, e.ended_by_user_id, e.created_at, e.updated_at`

// EventRepository persists events and their required-section sets.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events, optionally restricted to active ones.
func (r *EventRepository) List(ctx context.Context, activeOnly bool) ([]models.Event, error) {
	query := fmt.Sprintf(`
SELECT %s FROM events e
JOIN countries c ON c.id = e.country_id`, eventColumns)
	if activeOnly {
		query += ` WHERE e.is_active = TRUE AND e.ended_at IS NULL`
	}
	query += ` ORDER BY e.deadline_date ASC NULLS LAST, e.id ASC`
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListUpcoming returns active, not-ended events with a deadline today or
// later, soonest first.
func (r *EventRepository) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	query := fmt.Sprintf(`
SELECT %s FROM events e
JOIN countries c ON c.id = e.country_id
WHERE e.is_active = TRUE AND e.ended_at IS NULL
  AND (e.deadline_date IS NULL OR e.deadline_date >= CURRENT_DATE)
ORDER BY e.deadline_date ASC NULLS LAST, e.id ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list upcoming events: %w", err)
	}
	return events, nil
}

// ListUpcomingForAssignments applies the collaborator visibility rule in SQL:
// the event's country must be in the user's country set and at least one of
// its required sections must be in the user's section set.
func (r *EventRepository) ListUpcomingForAssignments(ctx context.Context, countryIDs, sectionIDs []int64) ([]models.Event, error) {
	if len(countryIDs) == 0 || len(sectionIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
SELECT %s FROM events e
JOIN countries c ON c.id = e.country_id
WHERE e.is_active = TRUE AND e.ended_at IS NULL
  AND (e.deadline_date IS NULL OR e.deadline_date >= CURRENT_DATE)
  AND e.country_id IN (?)
  AND EXISTS (
    SELECT 1 FROM event_required_sections ers
    WHERE ers.event_id = e.id AND ers.section_id IN (?)
  )
ORDER BY e.deadline_date ASC NULLS LAST, e.id ASC`, eventColumns)
	query, args, err := sqlx.In(query, countryIDs, sectionIDs)
	if err != nil {
		return nil, fmt.Errorf("expand visibility query: %w", err)
	}
	query = r.db.Rebind(query)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list visible events: %w", err)
	}
	return events, nil
}

// FindByID returns one event with its country name joined.
func (r *EventRepository) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	query := fmt.Sprintf(`
SELECT %s FROM events e
JOIN countries c ON c.id = e.country_id
WHERE e.id = $1 LIMIT 1`, eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// RequiredSections returns the event's required sections in assembly order,
// order_index ascending with id as the tiebreak.
func (r *EventRepository) RequiredSections(ctx context.Context, eventID int64) ([]models.RequiredSection, error) {
	const query = `
SELECT ers.id, ers.event_id, ers.section_id, s.key AS section_key, s.label, s.order_index
FROM event_required_sections ers
JOIN sections s ON s.id = ers.section_id
WHERE ers.event_id = $1
ORDER BY s.order_index ASC, s.id ASC`
	var sections []models.RequiredSection
	if err := r.db.SelectContext(ctx, &sections, query, eventID); err != nil {
		return nil, fmt.Errorf("list required sections: %w", err)
	}
	return sections, nil
}

// Create inserts the event and its required-section rows atomically so a
// partial failure never leaves an event without required sections.
func (r *EventRepository) Create(ctx context.Context, event *models.Event, sectionIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin event create: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	const insert = `
INSERT INTO events (country_id, title, occasion, deadline_date, created_by_user_id, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, TRUE, $6, $6)
RETURNING id`
	if err := tx.GetContext(ctx, &event.ID, insert,
		event.CountryID, event.Title, event.Occasion, event.DeadlineDate, event.CreatedByUserID, now); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if err := insertRequiredSections(ctx, tx, event.ID, sectionIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit event create: %w", err)
	}
	return nil
}

// Update rewrites the event row and replaces its required-section set in one
// transaction.
func (r *EventRepository) Update(ctx context.Context, event *models.Event, sectionIDs []int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin event update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx, `
UPDATE events SET country_id = $1, title = $2, occasion = $3, deadline_date = $4, updated_at = $5
WHERE id = $6 AND ended_at IS NULL`,
		event.CountryID, event.Title, event.Occasion, event.DeadlineDate, now, event.ID)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if err := requireRowAffected(result); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_required_sections WHERE event_id = $1`, event.ID); err != nil {
		return fmt.Errorf("clear required sections: %w", err)
	}
	if err := insertRequiredSections(ctx, tx, event.ID, sectionIDs); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit event update: %w", err)
	}
	return nil
}

// End stamps the one-way terminal marker. Already-ended events are left
// untouched so the first actor's stamp survives.
func (r *EventRepository) End(ctx context.Context, id, actorID int64) error {
	const query = `
UPDATE events SET ended_at = $1, ended_by_user_id = $2, updated_at = $1
WHERE id = $3 AND ended_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), actorID, id)
	if err != nil {
		return fmt.Errorf("end event: %w", err)
	}
	return requireRowAffected(result)
}

func insertRequiredSections(ctx context.Context, tx *sqlx.Tx, eventID int64, sectionIDs []int64) error {
	const insert = `
INSERT INTO event_required_sections (event_id, section_id, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (event_id, section_id) DO NOTHING`
	now := time.Now().UTC()
	for _, sectionID := range sectionIDs {
		if _, err := tx.ExecContext(ctx, insert, eventID, sectionID, now); err != nil {
			return fmt.Errorf("insert required section %d: %w", sectionID, err)
		}
	}
	return nil
}
