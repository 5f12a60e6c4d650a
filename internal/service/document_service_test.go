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

type mockDocumentRepo struct {
	doc        *models.DocumentStatus
	setStatus  *models.DocStatus
	setComment *string
	approved   bool
}

func (m *mockDocumentRepo) Ensure(ctx context.Context, eventID, countryID int64) error {
	if m.doc == nil {
		m.doc = &models.DocumentStatus{EventID: eventID, CountryID: countryID, Status: models.DocInProgress}
	}
	return nil
}

func (m *mockDocumentRepo) Find(ctx context.Context, eventID, countryID int64) (*models.DocumentStatus, error) {
	return m.doc, nil
}

func (m *mockDocumentRepo) SetStatus(ctx context.Context, eventID, countryID int64, status models.DocStatus, comment *string) error {
	m.setStatus = &status
	m.setComment = comment
	return nil
}

func (m *mockDocumentRepo) ApproveDocument(ctx context.Context, eventID, countryID, userID int64) error {
	m.approved = true
	return nil
}

type mockSectionCounter struct {
	pending int
}

func (m *mockSectionCounter) CountBelowSupervisorApproval(ctx context.Context, eventID, countryID int64) (int, error) {
	return m.pending, nil
}

func newDocumentFixture(role models.Role, pending int) (*DocumentService, *mockDocumentRepo, *models.JWTClaims) {
	events := &mockEventReader{event: &models.Event{ID: 1, CountryID: 4, Title: "State Visit", Active: true}}
	docs := &mockDocumentRepo{}
	svc := NewDocumentService(events, docs, &mockSectionCounter{pending: pending}, nil, nil)
	return svc, docs, &models.JWTClaims{UserID: 7, Role: role}
}

func TestStatusCreatesRowLazily(t *testing.T) {
	svc, docs, _ := newDocumentFixture(models.RoleSupervisor, 0)

	doc, err := svc.Status(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, models.DocInProgress, doc.Status)
	assert.Equal(t, int64(4), docs.doc.CountryID)
}

func TestSubmitToChairmanBlockedByPendingSections(t *testing.T) {
	svc, docs, claims := newDocumentFixture(models.RoleSupervisor, 2)

	err := svc.SubmitToChairman(context.Background(), claims, dto.DocumentActionRequest{EventID: 1})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Nil(t, docs.setStatus)
}

func TestSubmitToChairmanWhenAllSectionsApproved(t *testing.T) {
	svc, docs, claims := newDocumentFixture(models.RoleSupervisor, 0)

	err := svc.SubmitToChairman(context.Background(), claims, dto.DocumentActionRequest{EventID: 1})
	require.NoError(t, err)
	require.NotNil(t, docs.setStatus)
	assert.Equal(t, models.DocSubmittedToChairman, *docs.setStatus)
}

func TestSubmitToChairmanRoleGate(t *testing.T) {
	svc, _, claims := newDocumentFixture(models.RoleCollaborator, 0)

	err := svc.SubmitToChairman(context.Background(), claims, dto.DocumentActionRequest{EventID: 1})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestApproveCascades(t *testing.T) {
	svc, docs, claims := newDocumentFixture(models.RoleChairman, 0)

	err := svc.Approve(context.Background(), claims, dto.DocumentActionRequest{EventID: 1})
	require.NoError(t, err)
	assert.True(t, docs.approved)
}

func TestApproveRoleGate(t *testing.T) {
	svc, docs, claims := newDocumentFixture(models.RoleSupervisor, 0)

	err := svc.Approve(context.Background(), claims, dto.DocumentActionRequest{EventID: 1})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.False(t, docs.approved)
}

func TestDocumentReturnRequiresComment(t *testing.T) {
	svc, _, claims := newDocumentFixture(models.RoleChairman, 0)

	err := svc.Return(context.Background(), claims, dto.ReturnDocumentRequest{EventID: 1, Comment: ""})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDocumentReturnCarriesComment(t *testing.T) {
	svc, docs, claims := newDocumentFixture(models.RoleChairman, 0)

	err := svc.Return(context.Background(), claims, dto.ReturnDocumentRequest{
		EventID: 1, Comment: "tighten the economic section",
	})
	require.NoError(t, err)
	require.NotNil(t, docs.setStatus)
	assert.Equal(t, models.DocReturned, *docs.setStatus)
	require.NotNil(t, docs.setComment)
	assert.Equal(t, "tighten the economic section", *docs.setComment)
}

func TestDocumentActionsRejectedAfterEventEnds(t *testing.T) {
	svc, _, claims := newDocumentFixture(models.RoleChairman, 0)
	endedAt := time.Now()
	svc.events.(*mockEventReader).event.EndedAt = &endedAt

	err := svc.Approve(context.Background(), claims, dto.DocumentActionRequest{EventID: 1})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrEventEnded.Code, appErr.Code)
}
