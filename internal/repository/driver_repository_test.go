package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetline/fleetline-api/internal/models"
)

func newDriverRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDriverRepositoryList(t *testing.T) {
	db, mock, cleanup := newDriverRepoMock(t)
	defer cleanup()
	repo := NewDriverRepository(db)

	rows := sqlmock.NewRows([]string{"id", "full_name", "license_number", "phone", "email", "active", "created_at", "updated_at"}).
		AddRow("d1", "Driver A", "LIC-001", nil, nil, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, full_name, license_number, phone, email, active, created_at, updated_at FROM drivers WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM drivers WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.DriverFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepositoryCreateAndDeactivate(t *testing.T) {
	db, mock, cleanup := newDriverRepoMock(t)
	defer cleanup()
	repo := NewDriverRepository(db)

	mock.ExpectExec("INSERT INTO drivers").
		WithArgs(sqlmock.AnyArg(), "Driver A", "LIC-001", sqlmock.AnyArg(), sqlmock.AnyArg(), true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	driver := &models.Driver{FullName: "Driver A", LicenseNumber: "LIC-001", Active: true}
	require.NoError(t, repo.Create(context.Background(), driver))
	assert.NotEmpty(t, driver.ID)

	mock.ExpectExec("UPDATE drivers SET active = FALSE").
		WithArgs("id-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "id-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDriverRepositoryExistsByLicense(t *testing.T) {
	db, mock, cleanup := newDriverRepoMock(t)
	defer cleanup()
	repo := NewDriverRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM drivers WHERE license_number = $1 LIMIT 1")).
		WithArgs("LIC-001").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByLicense(context.Background(), "LIC-001", "")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM drivers WHERE license_number = $1 AND id <> $2 LIMIT 1")).
		WithArgs("LIC-002", "d1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByLicense(context.Background(), "LIC-002", "d1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
