package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fleetline/fleetline-api/internal/models"
)

// RouteDistanceRepository is the persistent cache for mapping-API results,
// keyed by the rounded origin/destination coordinate pair.
type RouteDistanceRepository struct {
	db *sqlx.DB
}

// NewRouteDistanceRepository constructs a RouteDistanceRepository.
func NewRouteDistanceRepository(db *sqlx.DB) *RouteDistanceRepository {
	return &RouteDistanceRepository{db: db}
}

// FindFresh returns the cached entry for the coordinate pair when it was
// calculated after the freshness cutoff, or nil on a miss.
func (r *RouteDistanceRepository) FindFresh(ctx context.Context, fromLat, fromLng, toLat, toLng float64, calculatedAfter time.Time) (*models.RouteDistance, error) {
	const query = `SELECT id, from_lat, from_lng, to_lat, to_lng, distance_km, duration_minutes, traffic_factor, calculated_at
		FROM route_distances
		WHERE from_lat = $1 AND from_lng = $2 AND to_lat = $3 AND to_lng = $4 AND calculated_at >= $5`
	var distance models.RouteDistance
	if err := r.db.GetContext(ctx, &distance, query, fromLat, fromLng, toLat, toLng, calculatedAfter); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("find route distance: %w", err)
	}
	return &distance, nil
}

// Upsert stores a freshly computed result, replacing any previous entry for
// the same coordinate pair.
func (r *RouteDistanceRepository) Upsert(ctx context.Context, distance *models.RouteDistance) error {
	if distance.ID == "" {
		distance.ID = uuid.NewString()
	}
	if distance.CalculatedAt.IsZero() {
		distance.CalculatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO route_distances (id, from_lat, from_lng, to_lat, to_lng, distance_km, duration_minutes, traffic_factor, calculated_at)
		VALUES (:id, :from_lat, :from_lng, :to_lat, :to_lng, :distance_km, :duration_minutes, :traffic_factor, :calculated_at)
		ON CONFLICT (from_lat, from_lng, to_lat, to_lng) DO UPDATE SET
			distance_km = EXCLUDED.distance_km,
			duration_minutes = EXCLUDED.duration_minutes,
			traffic_factor = EXCLUDED.traffic_factor,
			calculated_at = EXCLUDED.calculated_at`
	if _, err := r.db.NamedExecContext(ctx, query, distance); err != nil {
		return fmt.Errorf("upsert route distance: %w", err)
	}
	return nil
}

// PruneOlderThan removes entries calculated before the cutoff and returns the
// number of rows deleted.
func (r *RouteDistanceRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM route_distances WHERE calculated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune route distances: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune route distances: %w", err)
	}
	return affected, nil
}
