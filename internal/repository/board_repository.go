package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fleetline/fleetline-api/internal/dto"
)

// BoardRepository reads the schedule_board materialized view, the denormalized
// join of templates, instances and resource names used by the scheduling UIs.
type BoardRepository struct {
	db *sqlx.DB
}

// NewBoardRepository constructs a BoardRepository.
func NewBoardRepository(db *sqlx.DB) *BoardRepository {
	return &BoardRepository{db: db}
}

// ListRange returns board rows whose occurrence date falls inside [from, to].
func (r *BoardRepository) ListRange(ctx context.Context, from, to time.Time) ([]dto.BoardRow, error) {
	const query = `SELECT instance_id, route_schedule_id, route_id, route_code, route_name, occurrence_date, standby_date, standby_time, departure_date, departure_time, driver_id, driver_name, vehicle_id, vehicle_plate, status, priority, is_override, is_cross_day_departure, updated_at
		FROM schedule_board
		WHERE occurrence_date >= $1 AND occurrence_date <= $2
		ORDER BY occurrence_date ASC, departure_time ASC, route_code ASC`
	var rows []dto.BoardRow
	if err := r.db.SelectContext(ctx, &rows, query, from, to); err != nil {
		return nil, fmt.Errorf("list schedule board: %w", err)
	}
	return rows, nil
}

// Refresh rebuilds the materialized view after resolver or generator writes.
func (r *BoardRepository) Refresh(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `REFRESH MATERIALIZED VIEW CONCURRENTLY schedule_board`); err != nil {
		return fmt.Errorf("refresh schedule board: %w", err)
	}
	return nil
}
