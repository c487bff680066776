package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fleetline/fleetline-api/internal/models"
)

// ScheduleInstanceRepository manages persistence for materialized occurrences.
type ScheduleInstanceRepository struct {
	db *sqlx.DB
}

// NewScheduleInstanceRepository constructs a ScheduleInstanceRepository.
func NewScheduleInstanceRepository(db *sqlx.DB) *ScheduleInstanceRepository {
	return &ScheduleInstanceRepository{db: db}
}

const instanceColumns = "id, route_schedule_id, occurrence_date, standby_date, standby_time, departure_date, departure_time, driver_id, vehicle_id, status, is_override, override_fields, override_reason, notes, created_at, updated_at"

// List returns instances matching filters along with total count.
func (r *ScheduleInstanceRepository) List(ctx context.Context, filter models.ScheduleInstanceFilter) ([]models.ScheduleInstance, int, error) {
	base := "FROM schedule_instances WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.RouteScheduleID != "" {
		conditions = append(conditions, fmt.Sprintf("route_schedule_id = $%d", len(args)+1))
		args = append(args, filter.RouteScheduleID)
	}
	if filter.DriverID != "" {
		conditions = append(conditions, fmt.Sprintf("driver_id = $%d", len(args)+1))
		args = append(args, filter.DriverID)
	}
	if filter.VehicleID != "" {
		conditions = append(conditions, fmt.Sprintf("vehicle_id = $%d", len(args)+1))
		args = append(args, filter.VehicleID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.Status))
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("occurrence_date >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("occurrence_date <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "occurrence_date"
	}
	allowedSorts := map[string]string{
		"occurrence_date": "occurrence_date",
		"departure_date":  "departure_date",
		"status":          "status",
		"created_at":      "created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "occurrence_date"
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
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", instanceColumns, base, column, order, size, offset)
	var instances []models.ScheduleInstance
	if err := r.db.SelectContext(ctx, &instances, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule instances: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule instances: %w", err)
	}

	return instances, total, nil
}

// FindByID loads an instance by id.
func (r *ScheduleInstanceRepository) FindByID(ctx context.Context, id string) (*models.ScheduleInstance, error) {
	query := fmt.Sprintf("SELECT %s FROM schedule_instances WHERE id = $1", instanceColumns)
	var instance models.ScheduleInstance
	if err := r.db.GetContext(ctx, &instance, query, id); err != nil {
		return nil, err
	}
	return &instance, nil
}

// Exists reports whether an instance already exists for the template/date pair.
func (r *ScheduleInstanceRepository) Exists(ctx context.Context, routeScheduleID string, occurrenceDate time.Time) (bool, error) {
	const query = `SELECT COUNT(*) FROM schedule_instances WHERE route_schedule_id = $1 AND occurrence_date = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, routeScheduleID, occurrenceDate); err != nil {
		return false, fmt.Errorf("check schedule instance: %w", err)
	}
	return count > 0, nil
}

// Upsert inserts the resolved instance or, when a row already exists for
// (route_schedule_id, occurrence_date), updates it in place preserving its
// identity. The store's conflict resolution keeps the operation atomic under
// concurrent resolutions of the same pair.
func (r *ScheduleInstanceRepository) Upsert(ctx context.Context, instance *models.ScheduleInstance) error {
	if instance.ID == "" {
		instance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if instance.CreatedAt.IsZero() {
		instance.CreatedAt = now
	}
	instance.UpdatedAt = now

	const query = `INSERT INTO schedule_instances (id, route_schedule_id, occurrence_date, standby_date, standby_time, departure_date, departure_time, driver_id, vehicle_id, status, is_override, override_fields, override_reason, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (route_schedule_id, occurrence_date) DO UPDATE SET
			standby_date = EXCLUDED.standby_date,
			standby_time = EXCLUDED.standby_time,
			departure_date = EXCLUDED.departure_date,
			departure_time = EXCLUDED.departure_time,
			driver_id = EXCLUDED.driver_id,
			vehicle_id = EXCLUDED.vehicle_id,
			is_override = EXCLUDED.is_override,
			override_fields = EXCLUDED.override_fields,
			override_reason = EXCLUDED.override_reason,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING id, status, created_at`
	row := r.db.QueryRowxContext(ctx, query,
		instance.ID,
		instance.RouteScheduleID,
		instance.OccurrenceDate,
		instance.StandbyDate,
		instance.StandbyTime,
		instance.DepartureDate,
		instance.DepartureTime,
		instance.DriverID,
		instance.VehicleID,
		instance.Status,
		instance.IsOverride,
		instance.OverrideFields,
		instance.OverrideReason,
		instance.Notes,
		instance.CreatedAt,
		instance.UpdatedAt,
	)
	if err := row.Scan(&instance.ID, &instance.Status, &instance.CreatedAt); err != nil {
		return fmt.Errorf("upsert schedule instance: %w", err)
	}
	return nil
}

// UpdateStatus moves an instance through its lifecycle.
func (r *ScheduleInstanceRepository) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `UPDATE schedule_instances SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update schedule instance status: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update schedule instance status: no rows for %s", id)
	}
	return nil
}

// ListByStatusesAndDates returns instances in any of the given statuses with an
// occurrence date inside [from, to]. Feeds the conflict detector and notifier.
func (r *ScheduleInstanceRepository) ListByStatusesAndDates(ctx context.Context, statuses []string, from, to time.Time) ([]models.ScheduleInstance, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]interface{}, 0, len(statuses)+2)
	for i, s := range statuses {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args = append(args, s)
	}
	args = append(args, from, to)

	query := fmt.Sprintf("SELECT %s FROM schedule_instances WHERE status IN (%s) AND occurrence_date >= $%d AND occurrence_date <= $%d ORDER BY occurrence_date ASC, departure_time ASC",
		instanceColumns, strings.Join(placeholders, ", "), len(statuses)+1, len(statuses)+2)

	var instances []models.ScheduleInstance
	if err := r.db.SelectContext(ctx, &instances, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule instances by status: %w", err)
	}
	return instances, nil
}
