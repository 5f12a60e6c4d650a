package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

type mockEventReader struct {
	event    *models.Event
	required []models.RequiredSection
	err      error
}

func (m *mockEventReader) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventReader) RequiredSections(ctx context.Context, eventID int64) ([]models.RequiredSection, error) {
	return m.required, nil
}

type mockContentRepo struct {
	item          *models.ContentItem
	ensured       int
	savedHTML     string
	savedStatus   *models.SectionStatus
	setStatus     *models.SectionStatus
	setComment    *string
	approveAllAs  *models.SectionStatus
	grid          []dto.StatusGridRow
}

func (m *mockContentRepo) Ensure(ctx context.Context, eventID, countryID, sectionID int64) error {
	m.ensured++
	return nil
}

func (m *mockContentRepo) Find(ctx context.Context, eventID, countryID, sectionID int64) (*models.ContentItem, error) {
	return m.item, nil
}

func (m *mockContentRepo) SaveBody(ctx context.Context, eventID, countryID, sectionID int64, html string, userID int64) error {
	m.savedHTML = html
	return nil
}

func (m *mockContentRepo) SaveBodyWithStatus(ctx context.Context, eventID, countryID, sectionID int64, html string, status models.SectionStatus, userID int64) error {
	m.savedHTML = html
	m.savedStatus = &status
	return nil
}

func (m *mockContentRepo) SetStatus(ctx context.Context, eventID, countryID, sectionID int64, status models.SectionStatus, comment *string, userID int64) error {
	m.setStatus = &status
	m.setComment = comment
	return nil
}

func (m *mockContentRepo) ApproveAllForEvent(ctx context.Context, eventID, countryID int64, status models.SectionStatus, userID int64) error {
	m.approveAllAs = &status
	return nil
}

func (m *mockContentRepo) GridForEvent(ctx context.Context, eventID, countryID int64) ([]dto.StatusGridRow, error) {
	return m.grid, nil
}

type mockUserReader struct {
	user *models.User
}

func (m *mockUserReader) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return m.user, nil
}

func newContentFixture(role models.Role, scoped *mockAssignmentSets) (*ContentService, *mockContentRepo, *models.JWTClaims) {
	events := &mockEventReader{
		event:    &models.Event{ID: 1, CountryID: 4, Title: "State Visit", CountryNameEN: "Japan", Active: true},
		required: requiredSet(10, 11),
	}
	content := &mockContentRepo{item: &models.ContentItem{
		EventID: 1, CountryID: 4, SectionID: 10,
		HTMLContent: "<p>draft</p>", Status: models.SectionDraft, LastUpdatedAt: time.Now(),
	}}
	if scoped == nil {
		scoped = &mockAssignmentSets{countryIDs: []int64{4}, sectionIDs: []int64{10, 11}}
	}
	access := NewAccessService(scoped, nil)
	users := &mockUserReader{user: &models.User{ID: 7, FullName: "John Doe"}}
	svc := NewContentService(events, content, users, access, nil, nil)
	return svc, content, &models.JWTClaims{UserID: 7, Role: role}
}

func TestGetCreatesRowLazily(t *testing.T) {
	svc, content, claims := newContentFixture(models.RoleCollaborator, nil)

	view, err := svc.Get(context.Background(), claims, 1, nil, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, content.ensured)
	assert.Equal(t, int64(4), view.CountryID)
	assert.Equal(t, models.SectionDraft, view.Status)
}

func TestGetOutsideAssignmentsForbidden(t *testing.T) {
	svc, _, claims := newContentFixture(models.RoleCollaborator,
		&mockAssignmentSets{countryIDs: []int64{4}, sectionIDs: []int64{11}})

	_, err := svc.Get(context.Background(), claims, 1, nil, 10)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestCollaboratorSaveResetsToDraft(t *testing.T) {
	svc, content, claims := newContentFixture(models.RoleCollaborator, nil)

	err := svc.Save(context.Background(), claims, dto.SaveContentRequest{
		EventID: 1, SectionID: 10, HTMLContent: "<p>v2</p>",
	})
	require.NoError(t, err)
	require.NotNil(t, content.savedStatus)
	assert.Equal(t, models.SectionDraft, *content.savedStatus)
}

func TestSupervisorSaveKeepsStatus(t *testing.T) {
	svc, content, claims := newContentFixture(models.RoleSupervisor, nil)

	err := svc.Save(context.Background(), claims, dto.SaveContentRequest{
		EventID: 1, SectionID: 10, HTMLContent: "<p>touched up</p>",
	})
	require.NoError(t, err)
	assert.Nil(t, content.savedStatus)
	assert.Equal(t, "<p>touched up</p>", content.savedHTML)
}

func TestViewerCannotSave(t *testing.T) {
	svc, _, claims := newContentFixture(models.RoleViewer, nil)

	err := svc.Save(context.Background(), claims, dto.SaveContentRequest{
		EventID: 1, SectionID: 10, HTMLContent: "<p>nope</p>",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestSaveOnEndedEventRejected(t *testing.T) {
	svc, _, claims := newContentFixture(models.RoleCollaborator, nil)
	endedAt := time.Now()
	svc.events.(*mockEventReader).event.EndedAt = &endedAt

	err := svc.Save(context.Background(), claims, dto.SaveContentRequest{
		EventID: 1, SectionID: 10, HTMLContent: "<p>late</p>",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrEventEnded.Code, appErr.Code)
}

func TestReturnRequiresComment(t *testing.T) {
	svc, _, claims := newContentFixture(models.RoleSupervisor, nil)

	err := svc.Return(context.Background(), claims, dto.ReturnSectionRequest{
		EventID: 1, SectionID: 10, Comment: "   ",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestReturnCarriesComment(t *testing.T) {
	svc, content, claims := newContentFixture(models.RoleSupervisor, nil)

	err := svc.Return(context.Background(), claims, dto.ReturnSectionRequest{
		EventID: 1, SectionID: 10, Comment: "needs the latest trade figures",
	})
	require.NoError(t, err)
	require.NotNil(t, content.setStatus)
	assert.Equal(t, models.SectionReturned, *content.setStatus)
	require.NotNil(t, content.setComment)
	assert.Equal(t, "needs the latest trade figures", *content.setComment)
}

func TestSubmitIsCollaboratorOnly(t *testing.T) {
	svc, _, claims := newContentFixture(models.RoleSupervisor, nil)

	err := svc.Submit(context.Background(), claims, dto.SectionActionRequest{EventID: 1, SectionID: 10})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestChairmanApprovesFromAnyState(t *testing.T) {
	svc, content, claims := newContentFixture(models.RoleChairman, nil)

	err := svc.ApproveByChairman(context.Background(), claims, dto.SectionActionRequest{EventID: 1, SectionID: 10})
	require.NoError(t, err)
	require.NotNil(t, content.setStatus)
	assert.Equal(t, models.SectionApprovedByChairman, *content.setStatus)
}

func TestApproveAllStampsPerRole(t *testing.T) {
	svc, content, claims := newContentFixture(models.RoleSupervisor, nil)
	err := svc.ApproveAll(context.Background(), claims, dto.DocumentActionRequest{EventID: 1})
	require.NoError(t, err)
	require.NotNil(t, content.approveAllAs)
	assert.Equal(t, models.SectionApprovedBySupervisor, *content.approveAllAs)

	svc, content, claims = newContentFixture(models.RoleChairman, nil)
	err = svc.ApproveAll(context.Background(), claims, dto.DocumentActionRequest{EventID: 1})
	require.NoError(t, err)
	require.NotNil(t, content.approveAllAs)
	assert.Equal(t, models.SectionApprovedByChairman, *content.approveAllAs)
}

func TestStatusGridVisibleToScopedCollaborator(t *testing.T) {
	svc, content, claims := newContentFixture(models.RoleCollaborator, nil)
	content.grid = []dto.StatusGridRow{{SectionID: 10, Status: models.SectionSubmitted}}

	grid, err := svc.StatusGrid(context.Background(), claims, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), grid.CountryID)
	require.Len(t, grid.Sections, 1)
}

func TestStatusGridCacheInvalidatedByWorkflowWrites(t *testing.T) {
	svc, content, claims := newContentFixture(models.RoleSupervisor, nil)
	content.grid = []dto.StatusGridRow{{SectionID: 10, Status: models.SectionSubmitted}}
	cache := newMockCacheStore()
	svc.EnableGridCache(cache, time.Minute)

	_, err := svc.StatusGrid(context.Background(), claims, 1, nil)
	require.NoError(t, err)
	require.Contains(t, cache.setKeys, "grid:1:4")

	err = svc.ApproveBySupervisor(context.Background(), claims, dto.SectionActionRequest{EventID: 1, SectionID: 10})
	require.NoError(t, err)
	assert.Contains(t, cache.deleted, "grid:1:*")
	assert.Empty(t, cache.entries)
}
