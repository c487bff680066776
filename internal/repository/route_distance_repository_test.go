package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetline/fleetline-api/internal/models"
)

func newDistanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRouteDistanceRepositoryFindFresh(t *testing.T) {
	db, mock, cleanup := newDistanceRepoMock(t)
	defer cleanup()
	repo := NewRouteDistanceRepository(db)

	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "from_lat", "from_lng", "to_lat", "to_lng", "distance_km", "duration_minutes", "traffic_factor", "calculated_at"}).
		AddRow("dist-1", -6.2088, 106.8456, -6.9147, 107.6098, 151.2, 182.5, 1.3, time.Now())
	mock.ExpectQuery("SELECT id, from_lat, from_lng, to_lat, to_lng").
		WithArgs(-6.2088, 106.8456, -6.9147, 107.6098, cutoff).
		WillReturnRows(rows)

	distance, err := repo.FindFresh(context.Background(), -6.2088, 106.8456, -6.9147, 107.6098, cutoff)
	require.NoError(t, err)
	require.NotNil(t, distance)
	assert.Equal(t, 151.2, distance.DistanceKm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteDistanceRepositoryFindFreshMiss(t *testing.T) {
	db, mock, cleanup := newDistanceRepoMock(t)
	defer cleanup()
	repo := NewRouteDistanceRepository(db)

	mock.ExpectQuery("SELECT id, from_lat, from_lng, to_lat, to_lng").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	distance, err := repo.FindFresh(context.Background(), 1, 2, 3, 4, time.Now())
	require.NoError(t, err)
	assert.Nil(t, distance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteDistanceRepositoryUpsertAndPrune(t *testing.T) {
	db, mock, cleanup := newDistanceRepoMock(t)
	defer cleanup()
	repo := NewRouteDistanceRepository(db)

	mock.ExpectExec("INSERT INTO route_distances").
		WillReturnResult(sqlmock.NewResult(1, 1))

	entry := &models.RouteDistance{FromLat: 1, FromLng: 2, ToLat: 3, ToLng: 4, DistanceKm: 10, DurationMinutes: 15, TrafficFactor: 1.1}
	require.NoError(t, repo.Upsert(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CalculatedAt.IsZero())

	mock.ExpectExec("DELETE FROM route_distances WHERE calculated_at").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.PruneOlderThan(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
