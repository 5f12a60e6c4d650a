package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

type sectionRepository interface {
	List(ctx context.Context) ([]models.Section, error)
	ListAssignedToUser(ctx context.Context, userID int64) ([]models.Section, error)
	FindByID(ctx context.Context, id int64) (*models.Section, error)
	Create(ctx context.Context, section *models.Section) error
	Update(ctx context.Context, section *models.Section) error
	Deactivate(ctx context.Context, id int64) error
}

type countryRepository interface {
	List(ctx context.Context) ([]models.Country, error)
	FindByID(ctx context.Context, id int64) (*models.Country, error)
	Create(ctx context.Context, country *models.Country) error
	Update(ctx context.Context, country *models.Country) error
	Deactivate(ctx context.Context, id int64) error
}

// CatalogService manages the two reference catalogs, sections and countries.
type CatalogService struct {
	sections  sectionRepository
	countries countryRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService instance.
func NewCatalogService(sections sectionRepository, countries countryRepository, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CatalogService{sections: sections, countries: countries, validator: validate, logger: logger}
}

// ListSections returns the ordered section catalog. Collaborators see only
// their assigned sections.
func (s *CatalogService) ListSections(ctx context.Context, claims *models.JWTClaims) ([]models.Section, error) {
	var (
		sections []models.Section
		err      error
	)
	if claims.Role.IsCollaborator() {
		sections, err = s.sections.ListAssignedToUser(ctx, claims.UserID)
	} else {
		sections, err = s.sections.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}

// CreateSection adds a catalog entry.
func (s *CatalogService) CreateSection(ctx context.Context, req dto.CreateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section := &models.Section{Key: req.Key, Label: req.Label, OrderIndex: req.OrderIndex, Active: true}
	if err := s.sections.Create(ctx, section); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, appErrors.Clone(appErrors.ErrConflict, "section key already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
	}
	return section, nil
}

// UpdateSection edits label, ordering and active flag. The key is immutable.
func (s *CatalogService) UpdateSection(ctx context.Context, id int64, req dto.UpdateSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section, err := s.sections.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	section.Label = req.Label
	section.OrderIndex = req.OrderIndex
	section.Active = req.IsActive
	if err := s.sections.Update(ctx, section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	return section, nil
}

// DeactivateSection disables a section. Historical content keeps pointing at
// it.
func (s *CatalogService) DeactivateSection(ctx context.Context, id int64) error {
	if err := s.sections.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate section")
	}
	return nil
}

// ListCountries returns the country catalog alphabetically.
func (s *CatalogService) ListCountries(ctx context.Context) ([]models.Country, error) {
	countries, err := s.countries.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list countries")
	}
	return countries, nil
}

// CreateCountry adds a country.
func (s *CatalogService) CreateCountry(ctx context.Context, req dto.CreateCountryRequest) (*models.Country, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid country payload")
	}
	country := &models.Country{NameEN: req.NameEN, Code: req.Code, Active: true}
	if err := s.countries.Create(ctx, country); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, appErrors.Clone(appErrors.ErrConflict, "country already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create country")
	}
	return country, nil
}

// UpdateCountry edits a country.
func (s *CatalogService) UpdateCountry(ctx context.Context, id int64, req dto.UpdateCountryRequest) (*models.Country, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid country payload")
	}
	country, err := s.countries.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "country not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load country")
	}
	country.NameEN = req.NameEN
	country.Code = req.Code
	country.Active = req.IsActive
	if err := s.countries.Update(ctx, country); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update country")
	}
	return country, nil
}

// DeactivateCountry disables a country.
func (s *CatalogService) DeactivateCountry(ctx context.Context, id int64) error {
	if err := s.countries.Deactivate(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "country not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate country")
	}
	return nil
}
