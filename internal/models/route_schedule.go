package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// RouteSchedule statuses.
const (
	ScheduleStatusDraft    = "DRAFT"
	ScheduleStatusActive   = "ACTIVE"
	ScheduleStatusInactive = "INACTIVE"
)

// Canonical weekday names used in recurrence sets.
var WeekdayNames = map[time.Weekday]string{
	time.Monday:    "MONDAY",
	time.Tuesday:   "TUESDAY",
	time.Wednesday: "WEDNESDAY",
	time.Thursday:  "THURSDAY",
	time.Friday:    "FRIDAY",
	time.Saturday:  "SATURDAY",
	time.Sunday:    "SUNDAY",
}

// RouteSchedule is the recurring template daily instances derive from.
// Templates are soft-deactivated, never deleted, while instances reference them.
type RouteSchedule struct {
	ID               string         `db:"id" json:"id"`
	RouteID          string         `db:"route_id" json:"route_id"`
	Weekdays         pq.StringArray `db:"weekdays" json:"weekdays"`
	StartDate        time.Time      `db:"start_date" json:"start_date"`
	EndDate          *time.Time     `db:"end_date" json:"end_date,omitempty"`
	DefaultStandby   *string        `db:"default_standby_time" json:"default_standby_time,omitempty"`
	DefaultDeparture *string        `db:"default_departure_time" json:"default_departure_time,omitempty"`
	DefaultDriverID  *string        `db:"default_driver_id" json:"default_driver_id,omitempty"`
	DefaultVehicleID *string        `db:"default_vehicle_id" json:"default_vehicle_id,omitempty"`
	Priority         int            `db:"priority" json:"priority"`
	Status           string         `db:"status" json:"status"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// RouteScheduleFilter describes query params for listing templates.
type RouteScheduleFilter struct {
	RouteID   string
	Status    string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// OccursOn reports whether the template recurs on the given date. An empty
// weekday set means every day; the validity window is [StartDate, EndDate]
// with an open end when EndDate is nil.
func (s *RouteSchedule) OccursOn(date time.Time) bool {
	day := date.Truncate(24 * time.Hour)
	if day.Before(s.StartDate) {
		return false
	}
	if s.EndDate != nil && day.After(*s.EndDate) {
		return false
	}
	if len(s.Weekdays) == 0 {
		return true
	}
	name := WeekdayNames[date.Weekday()]
	for _, w := range s.Weekdays {
		if strings.EqualFold(w, name) {
			return true
		}
	}
	return false
}
