package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-portal-api/internal/models"
)

func TestDirectoryUsersByIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "full_name", "email", "role"}).
		AddRow("u1", "Dr. Rahman", "rahman@dept.edu", "CHAIRMAN")
	mock.ExpectQuery("FROM users WHERE id::text = ANY").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	users, err := repo.UsersByIDs(context.Background(), []string{"u1", "ghost"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleChairman, users["u1"].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectoryBatchesByIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "session"}).AddRow("b1", "CSE-21", "2021-22")
	mock.ExpectQuery("FROM batches WHERE id::text = ANY").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	batches, err := repo.BatchesByIDs(context.Background(), []string{"b1"})
	require.NoError(t, err)
	assert.Equal(t, "CSE-21", batches["b1"].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDirectorySkipsEmptyLookup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDirectoryRepository(db)

	users, err := repo.UsersByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
