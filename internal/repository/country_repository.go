package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gov-collab/portal-api/internal/models"
)

const countryColumns = `id, name_en, code, is_active, created_at, updated_at`

// CountryRepository persists the country reference data.
type CountryRepository struct {
	db *sqlx.DB
}

// NewCountryRepository constructs the repository.
func NewCountryRepository(db *sqlx.DB) *CountryRepository {
	return &CountryRepository{db: db}
}

// List returns all countries alphabetically.
func (r *CountryRepository) List(ctx context.Context) ([]models.Country, error) {
	query := fmt.Sprintf(`SELECT %s FROM countries ORDER BY name_en ASC`, countryColumns)
	var countries []models.Country
	if err := r.db.SelectContext(ctx, &countries, query); err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	return countries, nil
}

// FindByID returns one country by primary key.
func (r *CountryRepository) FindByID(ctx context.Context, id int64) (*models.Country, error) {
	query := fmt.Sprintf(`SELECT %s FROM countries WHERE id = $1 LIMIT 1`, countryColumns)
	var country models.Country
	if err := r.db.GetContext(ctx, &country, query, id); err != nil {
		return nil, err
	}
	return &country, nil
}

// Create inserts a new country.
func (r *CountryRepository) Create(ctx context.Context, country *models.Country) error {
	now := time.Now().UTC()
	country.CreatedAt = now
	country.UpdatedAt = now
	const query = `
INSERT INTO countries (name_en, code, is_active, created_at, updated_at)
VALUES (:name_en, :code, :is_active, :created_at, :updated_at)
RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, country)
	if err != nil {
		return fmt.Errorf("create country: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&country.ID); err != nil {
			return fmt.Errorf("scan created country id: %w", err)
		}
	}
	return nil
}

// Update rewrites the mutable fields.
func (r *CountryRepository) Update(ctx context.Context, country *models.Country) error {
	country.UpdatedAt = time.Now().UTC()
	const query = `
UPDATE countries SET name_en = :name_en, code = :code, is_active = :is_active, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, country)
	if err != nil {
		return fmt.Errorf("update country: %w", err)
	}
	return requireRowAffected(result)
}

// Deactivate soft-disables the country.
func (r *CountryRepository) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE countries SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate country: %w", err)
	}
	return requireRowAffected(result)
}
