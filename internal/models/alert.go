package models

import (
	"time"

	"github.com/lib/pq"
)

// DepartureAlert records one near-deadline notification for a schedule instance.
type DepartureAlert struct {
	ID                 string         `db:"id" json:"id"`
	ScheduleInstanceID string         `db:"schedule_instance_id" json:"schedule_instance_id"`
	Severity           string         `db:"severity" json:"severity"`
	HoursUntil         float64        `db:"hours_until" json:"hours_until"`
	Message            string         `db:"message" json:"message"`
	Channels           pq.StringArray `db:"channels" json:"channels"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
}
