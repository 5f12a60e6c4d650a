package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gov-collab/portal-api/internal/models"
)

func eventRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "country_id", "country_name_en", "title", "occasion", "deadline_date",
		"created_by_user_id", "is_active", "ended_at", "ended_by_user_id", "created_at", "updated_at"}).
		AddRow(int64(1), int64(4), "Japan", "State Visit", "Official visit", now, int64(9), true, nil, nil, now, now)
}

func TestListUpcomingForAssignmentsEmptySetShortCircuits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	events, err := repo.ListUpcomingForAssignments(context.Background(), nil, []int64{1})
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = repo.ListUpcomingForAssignments(context.Background(), []int64{1}, nil)
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUpcomingForAssignments(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery("SELECT e.id, (.+) FROM events e").
		WithArgs(int64(4), int64(10), int64(11)).
		WillReturnRows(eventRows(time.Now()))

	events, err := repo.ListUpcomingForAssignments(context.Background(), []int64{4}, []int64{10, 11})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Japan", events[0].CountryNameEN)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEventWithRequiredSections(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO events").
		WithArgs(int64(4), "State Visit", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec("INSERT INTO event_required_sections").
		WithArgs(int64(42), int64(10), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO event_required_sections").
		WithArgs(int64(42), int64(11), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	creator := int64(9)
	event := &models.Event{CountryID: 4, Title: "State Visit", CreatedByUserID: &creator}
	err := repo.Create(context.Background(), event, []int64{10, 11})
	require.NoError(t, err)
	assert.Equal(t, int64(42), event.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEndEventOnlyOnce(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec("UPDATE events SET ended_at").
		WithArgs(sqlmock.AnyArg(), int64(9), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.End(context.Background(), 1, 9)
	assert.Error(t, err)
}
