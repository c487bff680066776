package models

import (
	"time"

	"github.com/lib/pq"
)

// ScheduleInstance statuses.
const (
	InstanceStatusScheduled  = "SCHEDULED"
	InstanceStatusConfirmed  = "CONFIRMED"
	InstanceStatusInProgress = "IN_PROGRESS"
	InstanceStatusCompleted  = "COMPLETED"
	InstanceStatusCancelled  = "CANCELLED"
)

// Overridable field names recorded in OverrideFields.
const (
	FieldStandbyTime   = "standby_time"
	FieldDepartureTime = "departure_time"
	FieldDriver        = "driver_id"
	FieldVehicle       = "vehicle_id"
)

// ScheduleInstance is the materialized occurrence of a RouteSchedule for one
// calendar date. At most one row exists per (route_schedule_id, occurrence_date).
type ScheduleInstance struct {
	ID              string         `db:"id" json:"id"`
	RouteScheduleID string         `db:"route_schedule_id" json:"route_schedule_id"`
	OccurrenceDate  time.Time      `db:"occurrence_date" json:"occurrence_date"`
	StandbyDate     time.Time      `db:"standby_date" json:"standby_date"`
	StandbyTime     string         `db:"standby_time" json:"standby_time"`
	DepartureDate   time.Time      `db:"departure_date" json:"departure_date"`
	DepartureTime   string         `db:"departure_time" json:"departure_time"`
	DriverID        *string        `db:"driver_id" json:"driver_id,omitempty"`
	VehicleID       *string        `db:"vehicle_id" json:"vehicle_id,omitempty"`
	Status          string         `db:"status" json:"status"`
	IsOverride      bool           `db:"is_override" json:"is_override"`
	OverrideFields  pq.StringArray `db:"override_fields" json:"override_fields"`
	OverrideReason  *string        `db:"override_reason" json:"override_reason,omitempty"`
	Notes           *string        `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// IsCrossDay reports whether the resolved departure falls on the day after standby.
func (i *ScheduleInstance) IsCrossDay() bool {
	return i.DepartureDate.After(i.StandbyDate)
}

// ScheduleInstanceFilter describes query params for listing instances.
type ScheduleInstanceFilter struct {
	RouteScheduleID string
	DriverID        string
	VehicleID       string
	Status          string
	From            *time.Time
	To              *time.Time
	Page            int
	PageSize        int
	SortBy          string
	SortOrder       string
}

// Conflict types and severities reported by the conflict detector.
const (
	ConflictTypeDriver  = "DRIVER_OVERLAP"
	ConflictTypeVehicle = "VEHICLE_OVERLAP"

	SeverityHigh   = "HIGH"
	SeverityMedium = "MEDIUM"
)

// ResourceConflict describes one double-booked driver or vehicle on one
// departure date. Conflicts are reported as data, never as errors.
type ResourceConflict struct {
	ConflictDate time.Time `json:"conflict_date"`
	ConflictType string    `json:"conflict_type"`
	ResourceID   string    `json:"resource_id"`
	InstanceIDs  []string  `json:"instance_ids"`
	Severity     string    `json:"severity"`
}
