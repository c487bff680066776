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

func newInstanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestScheduleInstanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newInstanceRepoMock(t)
	defer cleanup()
	repo := NewScheduleInstanceRepository(db)

	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO schedule_instances").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "created_at"}).
			AddRow("existing-id", models.InstanceStatusConfirmed, createdAt))

	instance := &models.ScheduleInstance{
		RouteScheduleID: "rs-1",
		OccurrenceDate:  time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StandbyDate:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StandbyTime:     "20:00",
		DepartureDate:   time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		DepartureTime:   "06:00",
		Status:          models.InstanceStatusScheduled,
	}
	require.NoError(t, repo.Upsert(context.Background(), instance))

	// The conflict path keeps the stored row's identity and lifecycle status.
	assert.Equal(t, "existing-id", instance.ID)
	assert.Equal(t, models.InstanceStatusConfirmed, instance.Status)
	assert.Equal(t, createdAt, instance.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleInstanceRepositoryExists(t *testing.T) {
	db, mock, cleanup := newInstanceRepoMock(t)
	defer cleanup()
	repo := NewScheduleInstanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schedule_instances WHERE route_schedule_id = $1 AND occurrence_date = $2")).
		WithArgs("rs-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "rs-1", date)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleInstanceRepositoryUpdateStatusNoRows(t *testing.T) {
	db, mock, cleanup := newInstanceRepoMock(t)
	defer cleanup()
	repo := NewScheduleInstanceRepository(db)

	mock.ExpectExec("UPDATE schedule_instances SET status").
		WithArgs("missing", models.InstanceStatusCancelled, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.InstanceStatusCancelled)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rows")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleInstanceRepositoryListByStatusesAndDates(t *testing.T) {
	db, mock, cleanup := newInstanceRepoMock(t)
	defer cleanup()
	repo := NewScheduleInstanceRepository(db)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "route_schedule_id", "occurrence_date", "standby_date", "standby_time",
		"departure_date", "departure_time", "driver_id", "vehicle_id", "status",
		"is_override", "override_fields", "override_reason", "notes", "created_at", "updated_at",
	}).AddRow("i1", "rs-1", from, from, "08:00", from, "10:00", nil, nil, models.InstanceStatusScheduled, false, nil, nil, nil, time.Now(), time.Now())

	mock.ExpectQuery("SELECT (.+) FROM schedule_instances WHERE status IN").
		WithArgs(models.InstanceStatusScheduled, models.InstanceStatusConfirmed, from, to).
		WillReturnRows(rows)

	instances, err := repo.ListByStatusesAndDates(context.Background(), []string{models.InstanceStatusScheduled, models.InstanceStatusConfirmed}, from, to)
	require.NoError(t, err)
	assert.Len(t, instances, 1)
	assert.NoError(t, mock.ExpectationsWereMet())

	// An empty status set never touches the database.
	instances, err = repo.ListByStatusesAndDates(context.Background(), nil, from, to)
	require.NoError(t, err)
	assert.Nil(t, instances)
}
