package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-portal-api/internal/access"
	"github.com/noah-isme/dept-portal-api/internal/models"
	"github.com/noah-isme/dept-portal-api/internal/query"
)

const (
	announcementID = "5b0f2a64-6f0c-4d7e-9b1a-2c3d4e5f6a7b"
	feedbackID     = "9e8d7c6b-5a49-4f3e-8d2c-1b0a9f8e7d6c"
)

var announcementRowColumns = []string{"id", "title", "content", "author_id", "target_batch_id", "type", "status", "file_url", "feedback", "created_at", "updated_at"}

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

type recordingObserver struct {
	labels []string
}

func (o *recordingObserver) ObserveDBQuery(label string, _ time.Duration) {
	o.labels = append(o.labels, label)
}

func TestAnnouncementListExpandsLegacyStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	observer := &recordingObserver{}
	repo := NewAnnouncementRepository(db, observer)

	now := time.Now()
	rows := sqlmock.NewRows(announcementRowColumns).
		AddRow("a1", "Exam", "Hall 3", "u1", nil, "NOTICE", "PENDING", nil, nil, now, now).
		AddRow("a2", "Trip", "Bus at 8", "u2", "b1", "ANNOUNCEMENT", "APPROVED", "http://files/x.pdf", nil, now, now)

	filter := query.In{Field: access.FieldStatus, Values: []string{"PENDING_APPROVAL"}}
	mock.ExpectQuery(regexp.QuoteMeta("FROM announcements WHERE status IN ($1, $2) ORDER BY created_at DESC LIMIT 10")).
		WithArgs("PENDING_APPROVAL", "PENDING").
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), filter, 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.StatusPendingApproval, items[0].Status)
	assert.Nil(t, items[0].TargetBatchID)
	require.NotNil(t, items[1].TargetBatchID)
	assert.Equal(t, "b1", *items[1].TargetBatchID)
	assert.Equal(t, []string{"announcements.list"}, observer.labels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementListWithoutLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM announcements WHERE (author_id = $1 OR target_batch_id IS NULL) ORDER BY created_at DESC")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(announcementRowColumns))

	items, err := repo.List(context.Background(), query.Or{
		query.Eq{Field: access.FieldAuthorID, Value: "u1"},
		query.IsNull{Field: access.FieldTargetBatchID},
	}, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementListRejectsUnknownField(t *testing.T) {
	db, _, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, nil)

	_, err := repo.List(context.Background(), query.Eq{Field: "password", Value: "x"}, 0)
	assert.Error(t, err)
}

func TestAnnouncementGetByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM announcements WHERE id = $1")).
		WithArgs(announcementID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), announcementID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementCreateAssignsIdentity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, nil)

	mock.ExpectExec("INSERT INTO announcements").WillReturnResult(sqlmock.NewResult(1, 1))

	item := &models.Announcement{Title: "Exam", Content: "Hall 3", AuthorID: "u1", Type: models.AnnouncementTypeNotice, Status: models.StatusPendingApproval}
	require.NoError(t, repo.Create(context.Background(), item))
	assert.NotEmpty(t, item.ID)
	assert.False(t, item.CreatedAt.IsZero())
	assert.Equal(t, item.CreatedAt, item.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementUpdateStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, nil)

	mock.ExpectExec("UPDATE announcements SET status").WillReturnResult(sqlmock.NewResult(0, 1))
	comment := "looks good"
	item := &models.Announcement{ID: announcementID, Status: models.StatusApproved, Feedback: &comment, UpdatedAt: time.Now()}
	require.NoError(t, repo.UpdateStatus(context.Background(), item))

	mock.ExpectExec("UPDATE announcements SET status").WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(context.Background(), item)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, nil)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM announcements WHERE id = $1")).
		WithArgs(announcementID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), announcementID))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM announcements WHERE id = $1")).
		WithArgs(announcementID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), announcementID), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementMalformedIDIsNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, nil)
	ctx := context.Background()

	for _, id := range []string{"abc", "", "urn:uuid:" + announcementID} {
		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, sql.ErrNoRows, id)
		assert.ErrorIs(t, repo.Delete(ctx, id), sql.ErrNoRows, id)
		assert.ErrorIs(t, repo.UpdateStatus(ctx, &models.Announcement{ID: id, Status: models.StatusApproved}), sql.ErrNoRows, id)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementListDropsMalformedIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnnouncementRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM announcements WHERE id = $1 ORDER BY created_at DESC")).
		WithArgs(announcementID).
		WillReturnRows(sqlmock.NewRows(announcementRowColumns))
	_, err := repo.List(context.Background(), query.In{Field: "id", Values: []string{"abc", announcementID}}, 0)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM announcements WHERE FALSE ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows(announcementRowColumns))
	items, err := repo.List(context.Background(), query.Eq{Field: "id", Value: "abc"}, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
