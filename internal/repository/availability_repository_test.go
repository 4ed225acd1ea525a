package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotaworks/rota-api/internal/models"
)

func TestAvailabilityRepositoryListByEmployee(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	rows := sqlmock.NewRows([]string{"id", "employee_id", "weekday", "hour", "kind", "created_at", "updated_at"}).
		AddRow("a1", "e1", 0, 8, "PREFERRED", time.Now(), time.Now()).
		AddRow("a2", "e1", 0, 9, "AVAILABLE", time.Now(), time.Now())
	mock.ExpectQuery(`SELECT (.+) FROM availability WHERE employee_id = \$1 ORDER BY weekday, hour`).
		WithArgs("e1").
		WillReturnRows(rows)

	records, err := repo.ListByEmployee(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.AvailabilityPreferred, records[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryReplaceForEmployee(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM availability").
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO availability").
		WithArgs(sqlmock.AnyArg(), "e1", 0, 8, "FIXED", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO availability").
		WithArgs(sqlmock.AnyArg(), "e1", 0, 9, "FIXED", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	records := []models.AvailabilityRecord{
		{Weekday: 0, Hour: 8, Kind: models.AvailabilityFixed},
		{Weekday: 0, Hour: 9, Kind: models.AvailabilityFixed},
	}
	require.NoError(t, repo.ReplaceForEmployee(context.Background(), "e1", records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryReplaceForEmployeeClears(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM availability").
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceForEmployee(context.Background(), "e1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
