package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

func newMockRepo(t *testing.T) (Store, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLiteRepository(db), mock
}

func TestSQLiteRepository_Get_NoRowsIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, owner_id, title, created_at, updated_at FROM conversations").
		WithArgs("c1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "created_at", "updated_at"}))

	_, err := repo.Get(context.Background(), "u1", "c1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepository_Append_RollsBackWhenConversationMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	conv := &model.Conversation{ID: "c1", OwnerID: "u1", Messages: []model.Entry{}}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE conversations SET updated_at").
		WithArgs(sqlmock.AnyArg(), "c1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Append(context.Background(), conv, model.Entry{Role: model.RoleUser, Content: "hi", CreatedAt: model.Now()})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, conv.Messages, "working copy must not change on failure")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepository_Append_InsertFailureLeavesCopyUntouched(t *testing.T) {
	repo, mock := newMockRepo(t)
	conv := &model.Conversation{ID: "c1", OwnerID: "u1", Messages: []model.Entry{}}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE conversations SET updated_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare("INSERT INTO entries").
		ExpectExec().
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := repo.Append(context.Background(), conv, model.Entry{Role: model.RoleUser, Content: "hi", CreatedAt: model.Now()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, conv.Messages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepository_List_PropagatesQueryErrors(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, title, updated_at FROM conversations").
		WithArgs("u1").
		WillReturnError(errors.New("connection reset"))

	_, err := repo.List(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
