package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/models"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

type conflictInstanceSource interface {
	ListByStatusesAndDates(ctx context.Context, statuses []string, from, to time.Time) ([]models.ScheduleInstance, error)
}

// ConflictService finds drivers and vehicles booked more than once on the same
// departure date. Conflicts are reported as data for dispatchers to resolve,
// never as errors.
type ConflictService struct {
	instances conflictInstanceSource
	logger    *zap.Logger
}

// NewConflictService constructs a ConflictService.
func NewConflictService(instances conflictInstanceSource, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{instances: instances, logger: logger}
}

type resourceKey struct {
	date       time.Time
	conflict   string
	resourceID string
}

// Detect scans instances departing inside [from, to] and groups them by
// resource and departure date. Trips already underway, completed or cancelled
// never conflict.
func (s *ConflictService) Detect(ctx context.Context, from, to time.Time) ([]models.ResourceConflict, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date before start date")
	}

	// Only planned trips can still be re-dispatched, so only SCHEDULED and
	// CONFIRMED instances count toward double-bookings.
	statuses := []string{
		models.InstanceStatusScheduled,
		models.InstanceStatusConfirmed,
	}
	// Cross-day departures can land on `from` while their occurrence date is
	// the previous day, so the occurrence scan starts one day early.
	instances, err := s.instances.ListByStatusesAndDates(ctx, statuses, from.AddDate(0, 0, -1), to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule instances")
	}

	groups := make(map[resourceKey][]string)
	for _, instance := range instances {
		if instance.DepartureDate.Before(from) || instance.DepartureDate.After(to) {
			continue
		}
		if instance.DriverID != nil && *instance.DriverID != "" {
			key := resourceKey{date: instance.DepartureDate, conflict: models.ConflictTypeDriver, resourceID: *instance.DriverID}
			groups[key] = append(groups[key], instance.ID)
		}
		if instance.VehicleID != nil && *instance.VehicleID != "" {
			key := resourceKey{date: instance.DepartureDate, conflict: models.ConflictTypeVehicle, resourceID: *instance.VehicleID}
			groups[key] = append(groups[key], instance.ID)
		}
	}

	var conflicts []models.ResourceConflict
	for key, instanceIDs := range groups {
		if len(instanceIDs) < 2 {
			continue
		}
		severity := models.SeverityMedium
		if len(instanceIDs) > 3 {
			severity = models.SeverityHigh
		}
		sort.Strings(instanceIDs)
		conflicts = append(conflicts, models.ResourceConflict{
			ConflictDate: key.date,
			ConflictType: key.conflict,
			ResourceID:   key.resourceID,
			InstanceIDs:  instanceIDs,
			Severity:     severity,
		})
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if !conflicts[i].ConflictDate.Equal(conflicts[j].ConflictDate) {
			return conflicts[i].ConflictDate.Before(conflicts[j].ConflictDate)
		}
		if conflicts[i].ConflictType != conflicts[j].ConflictType {
			return conflicts[i].ConflictType < conflicts[j].ConflictType
		}
		return conflicts[i].ResourceID < conflicts[j].ResourceID
	})

	return conflicts, nil
}
