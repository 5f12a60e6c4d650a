package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gov-collab/portal-api/internal/dto"
	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

type mockCacheStore struct {
	entries map[string][]byte
	setKeys []string
	deleted []string
}

func newMockCacheStore() *mockCacheStore {
	return &mockCacheStore{entries: map[string][]byte{}}
}

func (m *mockCacheStore) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.setKeys = append(m.setKeys, key)
	return nil
}

func (m *mockCacheStore) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	for key := range m.entries {
		if ok, _ := path.Match(pattern, key); ok {
			delete(m.entries, key)
		}
	}
	return nil
}

type mockEventRepo struct {
	events        []models.Event
	visible       []models.Event
	event         *models.Event
	required      []models.RequiredSection
	findErr       error
	endErr        error
	created       *models.Event
	visibleCalled bool
	upcomingCalls int
}

func (m *mockEventRepo) List(ctx context.Context, activeOnly bool) ([]models.Event, error) {
	return m.events, nil
}

func (m *mockEventRepo) ListUpcoming(ctx context.Context) ([]models.Event, error) {
	m.upcomingCalls++
	return m.events, nil
}

func (m *mockEventRepo) ListUpcomingForAssignments(ctx context.Context, countryIDs, sectionIDs []int64) ([]models.Event, error) {
	m.visibleCalled = true
	if len(countryIDs) == 0 || len(sectionIDs) == 0 {
		return nil, nil
	}
	return m.visible, nil
}

func (m *mockEventRepo) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.event, nil
}

func (m *mockEventRepo) RequiredSections(ctx context.Context, eventID int64) ([]models.RequiredSection, error) {
	return m.required, nil
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event, sectionIDs []int64) error {
	event.ID = 42
	m.created = event
	return nil
}

func (m *mockEventRepo) Update(ctx context.Context, event *models.Event, sectionIDs []int64) error {
	return nil
}

func (m *mockEventRepo) End(ctx context.Context, id, actorID int64) error {
	return m.endErr
}

func newEventFixture(scoped *mockAssignmentSets) (*EventService, *mockEventRepo) {
	repo := &mockEventRepo{
		events:   []models.Event{{ID: 1, CountryID: 4, Title: "State Visit"}},
		visible:  []models.Event{{ID: 2, CountryID: 4, Title: "Scoped Visit"}},
		event:    &models.Event{ID: 1, CountryID: 4, Title: "State Visit", Active: true},
		required: requiredSet(10, 11),
	}
	if scoped == nil {
		scoped = &mockAssignmentSets{countryIDs: []int64{4}, sectionIDs: []int64{10}}
	}
	return NewEventService(repo, NewAccessService(scoped, nil), nil, nil), repo
}

func TestListGlobalRoleSeesEverything(t *testing.T) {
	svc, repo := newEventFixture(nil)

	events, err := svc.List(context.Background(), &models.JWTClaims{UserID: 1, Role: models.RoleMinister}, false)
	require.NoError(t, err)
	assert.Len(t, events, 1)
	assert.False(t, repo.visibleCalled)
}

func TestListCollaboratorIsScoped(t *testing.T) {
	svc, repo := newEventFixture(nil)

	events, err := svc.List(context.Background(), collaboratorClaims(), false)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Scoped Visit", events[0].Title)
	assert.True(t, repo.visibleCalled)
}

func TestUpcomingForCollaboratorWithNoGrantsIsEmpty(t *testing.T) {
	svc, _ := newEventFixture(&mockAssignmentSets{})

	events, err := svc.UpcomingForCaller(context.Background(), collaboratorClaims())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestGetForbiddenOutsideScope(t *testing.T) {
	svc, _ := newEventFixture(&mockAssignmentSets{countryIDs: []int64{5}, sectionIDs: []int64{10}})

	_, err := svc.Get(context.Background(), collaboratorClaims(), 1)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestCreateEventRequiresSections(t *testing.T) {
	svc, _ := newEventFixture(nil)
	claims := &models.JWTClaims{UserID: 9, Role: models.RoleAdmin}

	_, err := svc.Create(context.Background(), claims, dto.CreateEventRequest{
		CountryID: 4, Title: "No Sections",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCreateEventStampsCreator(t *testing.T) {
	svc, repo := newEventFixture(nil)
	claims := &models.JWTClaims{UserID: 9, Role: models.RoleAdmin}

	event, err := svc.Create(context.Background(), claims, dto.CreateEventRequest{
		CountryID: 4, Title: "State Visit", SectionIDs: []int64{10, 11},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), event.ID)
	require.NotNil(t, repo.created.CreatedByUserID)
	assert.Equal(t, int64(9), *repo.created.CreatedByUserID)
}

func TestUpdateEndedEventRejected(t *testing.T) {
	svc, repo := newEventFixture(nil)
	endedAt := time.Now()
	repo.event.EndedAt = &endedAt
	claims := &models.JWTClaims{UserID: 9, Role: models.RoleAdmin}

	_, err := svc.Update(context.Background(), claims, 1, dto.UpdateEventRequest{
		CountryID: 4, Title: "Late Edit", SectionIDs: []int64{10},
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrEventEnded.Code, appErr.Code)
}

func TestUpcomingServedFromCache(t *testing.T) {
	svc, repo := newEventFixture(nil)
	cache := newMockCacheStore()
	svc.EnableListCache(cache, time.Minute)

	first, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := svc.Upcoming(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].Title, second[0].Title)
	assert.Equal(t, 1, repo.upcomingCalls)
}

func TestEndInvalidatesUpcomingCache(t *testing.T) {
	svc, repo := newEventFixture(nil)
	cache := newMockCacheStore()
	svc.EnableListCache(cache, time.Minute)
	claims := &models.JWTClaims{UserID: 9, Role: models.RoleAdmin}

	_, err := svc.Upcoming(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.End(context.Background(), claims, 1))
	assert.Contains(t, cache.deleted, "events:upcoming")

	_, err = svc.Upcoming(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.upcomingCalls)
}

func TestEndTwiceReportsConflict(t *testing.T) {
	svc, repo := newEventFixture(nil)
	repo.endErr = sql.ErrNoRows
	claims := &models.JWTClaims{UserID: 9, Role: models.RoleAdmin}

	err := svc.End(context.Background(), claims, 1)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrEventEnded.Code, appErr.Code)
}
