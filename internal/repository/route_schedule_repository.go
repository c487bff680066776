package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/fleetline/fleetline-api/internal/models"
)

// RouteScheduleRepository manages persistence for recurring schedule templates.
type RouteScheduleRepository struct {
	db *sqlx.DB
}

// NewRouteScheduleRepository constructs a RouteScheduleRepository.
func NewRouteScheduleRepository(db *sqlx.DB) *RouteScheduleRepository {
	return &RouteScheduleRepository{db: db}
}

const routeScheduleColumns = "id, route_id, weekdays, start_date, end_date, default_standby_time, default_departure_time, default_driver_id, default_vehicle_id, priority, status, created_at, updated_at"

// List returns templates matching filters along with total count.
func (r *RouteScheduleRepository) List(ctx context.Context, filter models.RouteScheduleFilter) ([]models.RouteSchedule, int, error) {
	base := "FROM route_schedules WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.RouteID != "" {
		conditions = append(conditions, fmt.Sprintf("route_id = $%d", len(args)+1))
		args = append(args, filter.RouteID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Status))
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("(end_date IS NULL OR end_date >= $%d)", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "start_date"
	}
	allowedSorts := map[string]string{
		"start_date": "start_date",
		"priority":   "priority",
		"status":     "status",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "start_date"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", routeScheduleColumns, base, column, order, size, offset)
	var schedules []models.RouteSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list route schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count route schedules: %w", err)
	}

	return schedules, total, nil
}

// FindByID loads a template by id.
func (r *RouteScheduleRepository) FindByID(ctx context.Context, id string) (*models.RouteSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM route_schedules WHERE id = $1", routeScheduleColumns)
	var schedule models.RouteSchedule
	if err := r.db.GetContext(ctx, &schedule, query, id); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListActiveOverlapping returns ACTIVE templates whose validity window
// intersects [from, to], optionally restricted to a set of ids.
func (r *RouteScheduleRepository) ListActiveOverlapping(ctx context.Context, from, to time.Time, ids []string) ([]models.RouteSchedule, error) {
	query := fmt.Sprintf("SELECT %s FROM route_schedules WHERE status = $1 AND start_date <= $2 AND (end_date IS NULL OR end_date >= $3)", routeScheduleColumns)
	args := []interface{}{models.ScheduleStatusActive, to, from}
	if len(ids) > 0 {
		query += " AND id = ANY($4)"
		args = append(args, pq.Array(ids))
	}
	query += " ORDER BY priority DESC, start_date ASC"

	var schedules []models.RouteSchedule
	if err := r.db.SelectContext(ctx, &schedules, query, args...); err != nil {
		return nil, fmt.Errorf("list active route schedules: %w", err)
	}
	return schedules, nil
}

// Create inserts a new template record.
func (r *RouteScheduleRepository) Create(ctx context.Context, schedule *models.RouteSchedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if schedule.CreatedAt.IsZero() {
		schedule.CreatedAt = now
	}
	schedule.UpdatedAt = now

	const query = `INSERT INTO route_schedules (id, route_id, weekdays, start_date, end_date, default_standby_time, default_departure_time, default_driver_id, default_vehicle_id, priority, status, created_at, updated_at)
		VALUES (:id, :route_id, :weekdays, :start_date, :end_date, :default_standby_time, :default_departure_time, :default_driver_id, :default_vehicle_id, :priority, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("create route schedule: %w", err)
	}
	return nil
}

// Update modifies an existing template record.
func (r *RouteScheduleRepository) Update(ctx context.Context, schedule *models.RouteSchedule) error {
	schedule.UpdatedAt = time.Now().UTC()
	const query = `UPDATE route_schedules SET route_id = :route_id, weekdays = :weekdays, start_date = :start_date, end_date = :end_date, default_standby_time = :default_standby_time, default_departure_time = :default_departure_time, default_driver_id = :default_driver_id, default_vehicle_id = :default_vehicle_id, priority = :priority, status = :status, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, schedule); err != nil {
		return fmt.Errorf("update route schedule: %w", err)
	}
	return nil
}

// Deactivate soft-disables a template. Templates are never hard-deleted while
// instances reference them.
func (r *RouteScheduleRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE route_schedules SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ScheduleStatusInactive, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate route schedule: %w", err)
	}
	return nil
}
