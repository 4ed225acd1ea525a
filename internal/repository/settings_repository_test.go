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

func TestSettingsRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	payload := `{"weekdays":[{"open":true,"opening_time":"08:00","closing_time":"20:00"},{"open":true,"opening_time":"08:00","closing_time":"20:00"},{"open":true,"opening_time":"08:00","closing_time":"20:00"},{"open":true,"opening_time":"08:00","closing_time":"20:00"},{"open":true,"opening_time":"08:00","closing_time":"20:00"},{"open":true,"opening_time":"08:00","closing_time":"18:00"},{"open":false,"opening_time":"","closing_time":""}],"special_days":{"2024-12-24":{"closed":false,"opening_time":"08:00","closing_time":"14:00","note":"Christmas Eve"}},"shift_types":[{"id":"m","name":"Morning","start_time":"08:00","end_time":"14:00"}]}`
	rows := sqlmock.NewRows([]string{"id", "payload", "version", "updated_at"}).
		AddRow("s1", []byte(payload), 4, time.Now())
	mock.ExpectQuery("SELECT id, payload, version, updated_at FROM store_settings").
		WillReturnRows(rows)

	settings, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, settings.Version)
	assert.True(t, settings.Weekdays[0].Open)
	assert.False(t, settings.Weekdays[6].Open)
	assert.Equal(t, "14:00", settings.SpecialDays["2024-12-24"].ClosingTime)
	require.Len(t, settings.ShiftTypes, 1)
	assert.Equal(t, "Morning", settings.ShiftTypes[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositorySaveBumpsVersion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(version\), 0\) \+ 1 FROM store_settings`).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(5))
	mock.ExpectExec("INSERT INTO store_settings").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	settings := &models.StoreSettings{SpecialDays: map[string]models.SpecialDay{}}
	require.NoError(t, repo.Save(context.Background(), settings))
	assert.Equal(t, 5, settings.Version)
	assert.NotEmpty(t, settings.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
