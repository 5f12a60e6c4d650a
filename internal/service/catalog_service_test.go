package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

type mockSectionRepo struct {
	all         []models.Section
	assigned    []models.Section
	found       *models.Section
	findErr     error
	createErr   error
	updated     *models.Section
	deactivated bool
	mineCalled  bool
}

func (m *mockSectionRepo) List(ctx context.Context) ([]models.Section, error) {
	return m.all, nil
}

func (m *mockSectionRepo) ListAssignedToUser(ctx context.Context, userID int64) ([]models.Section, error) {
	m.mineCalled = true
	return m.assigned, nil
}

func (m *mockSectionRepo) FindByID(ctx context.Context, id int64) (*models.Section, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.found, nil
}

func (m *mockSectionRepo) Create(ctx context.Context, section *models.Section) error {
	if m.createErr != nil {
		return m.createErr
	}
	section.ID = 1
	return nil
}

func (m *mockSectionRepo) Update(ctx context.Context, section *models.Section) error {
	m.updated = section
	return nil
}

func (m *mockSectionRepo) Deactivate(ctx context.Context, id int64) error {
	m.deactivated = true
	return nil
}

type mockCountryRepo struct {
	all   []models.Country
	found *models.Country
}

func (m *mockCountryRepo) List(ctx context.Context) ([]models.Country, error) {
	return m.all, nil
}

func (m *mockCountryRepo) FindByID(ctx context.Context, id int64) (*models.Country, error) {
	if m.found == nil {
		return nil, sql.ErrNoRows
	}
	return m.found, nil
}

func (m *mockCountryRepo) Create(ctx context.Context, country *models.Country) error {
	country.ID = 1
	return nil
}

func (m *mockCountryRepo) Update(ctx context.Context, country *models.Country) error {
	return nil
}

func (m *mockCountryRepo) Deactivate(ctx context.Context, id int64) error {
	return nil
}

func TestListSectionsScopesCollaborators(t *testing.T) {
	sections := &mockSectionRepo{
		all:      []models.Section{{ID: 1}, {ID: 2}, {ID: 3}},
		assigned: []models.Section{{ID: 2}},
	}
	svc := NewCatalogService(sections, &mockCountryRepo{}, nil, nil)

	mine, err := svc.ListSections(context.Background(), &models.JWTClaims{UserID: 7, Role: models.RoleCollaborator})
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.True(t, sections.mineCalled)

	all, err := svc.ListSections(context.Background(), &models.JWTClaims{UserID: 8, Role: models.RoleSupervisor})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUpdateSectionKeepsKey(t *testing.T) {
	sections := &mockSectionRepo{found: &models.Section{ID: 4, Key: "political", Label: "Old", OrderIndex: 1, Active: true}}
	svc := NewCatalogService(sections, &mockCountryRepo{}, nil, nil)

	updated, err := svc.UpdateSection(context.Background(), 4, dto.UpdateSectionRequest{
		Label: "Political Relations", OrderIndex: 2, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "political", updated.Key)
	assert.Equal(t, "Political Relations", updated.Label)
	require.NotNil(t, sections.updated)
}

func TestUpdateSectionMissing(t *testing.T) {
	sections := &mockSectionRepo{findErr: sql.ErrNoRows}
	svc := NewCatalogService(sections, &mockCountryRepo{}, nil, nil)

	_, err := svc.UpdateSection(context.Background(), 99, dto.UpdateSectionRequest{Label: "X", IsActive: true})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCreateCountryValidatesCode(t *testing.T) {
	svc := NewCatalogService(&mockSectionRepo{}, &mockCountryRepo{}, nil, nil)

	_, err := svc.CreateCountry(context.Background(), dto.CreateCountryRequest{NameEN: "France", Code: "FRA"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)

	country, err := svc.CreateCountry(context.Background(), dto.CreateCountryRequest{NameEN: "France", Code: "FR"})
	require.NoError(t, err)
	assert.True(t, country.Active)
}

func TestUpdateCountryMissing(t *testing.T) {
	svc := NewCatalogService(&mockSectionRepo{}, &mockCountryRepo{}, nil, nil)

	_, err := svc.UpdateCountry(context.Background(), 12, dto.UpdateCountryRequest{NameEN: "France", Code: "FR", IsActive: true})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
