package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

type mockAssignmentRepo struct {
	details      []models.SectionAssignmentDetail
	sectionIDs   []int64
	countryIDs   []int64
	created      bool
	grantCalled  bool
	deleted      bool
	replacedWith []int64
}

func (m *mockAssignmentRepo) ListSectionAssignments(ctx context.Context) ([]models.SectionAssignmentDetail, error) {
	return m.details, nil
}

func (m *mockAssignmentRepo) SectionIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	return m.sectionIDs, nil
}

func (m *mockAssignmentRepo) CountryIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	return m.countryIDs, nil
}

func (m *mockAssignmentRepo) CreateSectionAssignment(ctx context.Context, userID, sectionID int64) (bool, error) {
	m.grantCalled = true
	return m.created, nil
}

func (m *mockAssignmentRepo) DeleteSectionAssignment(ctx context.Context, id int64) error {
	m.deleted = true
	return nil
}

func (m *mockAssignmentRepo) ReplaceCountryAssignments(ctx context.Context, userID int64, countryIDs []int64) error {
	m.replacedWith = countryIDs
	return nil
}

func TestGrantSectionToNonCollaboratorRejected(t *testing.T) {
	repo := &mockAssignmentRepo{}
	users := &mockUserReader{user: &models.User{ID: 7, Role: models.RoleSupervisor, Active: true}}
	svc := NewAssignmentService(repo, users, nil, nil)

	err := svc.GrantSection(context.Background(), dto.CreateSectionAssignmentRequest{UserID: 7, SectionID: 10})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.False(t, repo.grantCalled)
}

func TestGrantSectionDuplicateIsNoOp(t *testing.T) {
	repo := &mockAssignmentRepo{created: false}
	users := &mockUserReader{user: &models.User{ID: 7, Role: models.RoleCollaborator, Active: true}}
	svc := NewAssignmentService(repo, users, nil, nil)

	err := svc.GrantSection(context.Background(), dto.CreateSectionAssignmentRequest{UserID: 7, SectionID: 10})
	require.NoError(t, err)
	assert.True(t, repo.grantCalled)
}

func TestReplaceCountriesEmptyListClears(t *testing.T) {
	repo := &mockAssignmentRepo{}
	users := &mockUserReader{user: &models.User{ID: 7, Role: models.RoleSuperCollaborator, Active: true}}
	svc := NewAssignmentService(repo, users, nil, nil)

	err := svc.ReplaceCountries(context.Background(), dto.ReplaceCountryAssignmentsRequest{UserID: 7})
	require.NoError(t, err)
	assert.Empty(t, repo.replacedWith)
}

func TestReplaceCountriesForNonCollaboratorRejected(t *testing.T) {
	repo := &mockAssignmentRepo{}
	users := &mockUserReader{user: &models.User{ID: 7, Role: models.RoleViewer, Active: true}}
	svc := NewAssignmentService(repo, users, nil, nil)

	err := svc.ReplaceCountries(context.Background(), dto.ReplaceCountryAssignmentsRequest{
		UserID: 7, CountryIDs: []int64{4},
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Nil(t, repo.replacedWith)
}
