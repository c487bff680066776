package dto

// ResolveInstanceRequest materializes (or re-resolves) one schedule instance.
// Every overridable field is optional: nil means inherit from the template.
type ResolveInstanceRequest struct {
	OccurrenceDate string  `json:"occurrence_date" validate:"required,datetime=2006-01-02"`
	StandbyDate    *string `json:"standby_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StandbyTime    *string `json:"standby_time,omitempty" validate:"omitempty,datetime=15:04"`
	DepartureTime  *string `json:"departure_time,omitempty" validate:"omitempty,datetime=15:04"`
	DriverID       *string `json:"driver_id,omitempty"`
	VehicleID      *string `json:"vehicle_id,omitempty"`
	Reason         *string `json:"reason,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// GenerateInstancesRequest drives the bulk instance generator.
type GenerateInstancesRequest struct {
	StartDate   string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string   `json:"end_date" validate:"required,datetime=2006-01-02"`
	ScheduleIDs []string `json:"schedule_ids,omitempty"`
}

// GenerateInstancesResult summarises one generator pass. Re-running the same
// range creates zero additional rows.
type GenerateInstancesResult struct {
	Created     int            `json:"created"`
	Skipped     int            `json:"skipped"`
	Failed      int            `json:"failed"`
	PerSchedule map[string]int `json:"per_schedule,omitempty"`
}

// UpdateInstanceStatusRequest moves an instance through its lifecycle.
type UpdateInstanceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=SCHEDULED CONFIRMED IN_PROGRESS COMPLETED CANCELLED"`
}

// NotificationRunRequest triggers one near-deadline scan.
type NotificationRunRequest struct {
	LookaheadHours float64  `json:"lookahead_hours,omitempty" validate:"omitempty,gt=0"`
	Channels       []string `json:"channels,omitempty"`
}

// NotificationRunSummary reports the outcome of one scan.
type NotificationRunSummary struct {
	InstancesFound int    `json:"instances_found"`
	AlertsCreated  int    `json:"alerts_created"`
	Skipped        int    `json:"skipped"`
	RanAt          string `json:"ran_at"`
}
