package repository

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gov-collab/portal-api/internal/models"
)

func TestEnsureDocumentDefaultsInProgress(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec("INSERT INTO document_status").
		WithArgs(int64(1), int64(2), models.DocInProgress, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Ensure(context.Background(), 1, 2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveDocumentCascadesSections(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE document_status").
		WithArgs(models.DocApproved, sqlmock.AnyArg(), int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO tp_content").
		WithArgs(int64(1), int64(2), models.SectionDraft, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE tp_content").
		WithArgs(models.SectionApprovedByChairman, int64(5), sqlmock.AnyArg(), int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectCommit()

	err := repo.ApproveDocument(context.Background(), 1, 2, 5)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveDocumentRollsBackWhenMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE document_status").
		WithArgs(models.DocApproved, sqlmock.AnyArg(), int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.ApproveDocument(context.Background(), 1, 2, 5)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDocumentStatusWithComment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	comment := "rework the intro section"
	mock.ExpectExec("UPDATE document_status").
		WithArgs(models.DocReturned, &comment, sqlmock.AnyArg(), int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetStatus(context.Background(), 1, 2, models.DocReturned, &comment)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
