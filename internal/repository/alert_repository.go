package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fleetline/fleetline-api/internal/models"
)

// AlertRepository manages persistence for departure alerts.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository constructs an AlertRepository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert record.
func (r *AlertRepository) Create(ctx context.Context, alert *models.DepartureAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO departure_alerts (id, schedule_instance_id, severity, hours_until, message, channels, created_at)
		VALUES (:id, :schedule_instance_id, :severity, :hours_until, :message, :channels, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, alert); err != nil {
		return fmt.Errorf("create departure alert: %w", err)
	}
	return nil
}

// ListByInstance returns alerts for one schedule instance, newest first.
func (r *AlertRepository) ListByInstance(ctx context.Context, instanceID string) ([]models.DepartureAlert, error) {
	const query = `SELECT id, schedule_instance_id, severity, hours_until, message, channels, created_at FROM departure_alerts WHERE schedule_instance_id = $1 ORDER BY created_at DESC`
	var alerts []models.DepartureAlert
	if err := r.db.SelectContext(ctx, &alerts, query, instanceID); err != nil {
		return nil, fmt.Errorf("list departure alerts: %w", err)
	}
	return alerts, nil
}

// ExistsRecent reports whether an alert was already created for the instance
// inside the dedupe window, so repeated notifier runs stay idempotent.
func (r *AlertRepository) ExistsRecent(ctx context.Context, instanceID string, since time.Time) (bool, error) {
	const query = `SELECT COUNT(*) FROM departure_alerts WHERE schedule_instance_id = $1 AND created_at >= $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, instanceID, since); err != nil {
		return false, fmt.Errorf("check recent departure alert: %w", err)
	}
	return count > 0, nil
}
