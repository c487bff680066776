package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/internal/models"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

type resolverScheduleLookup interface {
	FindByID(ctx context.Context, id string) (*models.RouteSchedule, error)
}

type instanceStore interface {
	List(ctx context.Context, filter models.ScheduleInstanceFilter) ([]models.ScheduleInstance, int, error)
	FindByID(ctx context.Context, id string) (*models.ScheduleInstance, error)
	Upsert(ctx context.Context, instance *models.ScheduleInstance) error
	UpdateStatus(ctx context.Context, id, status string) error
}

type boardInvalidator interface {
	Invalidate(ctx context.Context, pattern string) error
}

// ResolverService materializes schedule instances by layering per-day overrides
// on top of template defaults.
type ResolverService struct {
	schedules resolverScheduleLookup
	instances instanceStore
	cache     boardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewResolverService constructs a ResolverService.
func NewResolverService(schedules resolverScheduleLookup, instances instanceStore, cache boardInvalidator, validate *validator.Validate, logger *zap.Logger) *ResolverService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolverService{schedules: schedules, instances: instances, cache: cache, validator: validate, logger: logger}
}

// Resolve computes the effective instance for one template and date and upserts
// it. Re-resolving the same pair updates the existing row in place, keeping its
// identity and lifecycle status.
func (s *ResolverService) Resolve(ctx context.Context, scheduleID string, req dto.ResolveInstanceRequest) (*models.ScheduleInstance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resolve payload")
	}

	schedule, err := s.schedules.FindByID(ctx, scheduleID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "route schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load route schedule")
	}

	occurrenceDate, err := time.ParseInLocation(dateLayout, req.OccurrenceDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid occurrence date")
	}

	// Standby defaults to the occurrence date itself unless overridden.
	standbyDate := occurrenceDate
	if req.StandbyDate != nil && strings.TrimSpace(*req.StandbyDate) != "" {
		standbyDate, err = time.ParseInLocation(dateLayout, *req.StandbyDate, time.UTC)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid standby date")
		}
	}

	standbyTime, standbyOverridden := resolveField(req.StandbyTime, schedule.DefaultStandby)
	departureTime, departureOverridden := resolveField(req.DepartureTime, schedule.DefaultDeparture)
	if standbyTime == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingConfiguration, "standby time has no override and no template default")
	}
	if departureTime == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingConfiguration, "departure time has no override and no template default")
	}

	driverID, driverOverridden := resolveOptionalField(req.DriverID, schedule.DefaultDriverID)
	vehicleID, vehicleOverridden := resolveOptionalField(req.VehicleID, schedule.DefaultVehicleID)

	departureDate, err := resolveDepartureDate(standbyDate, standbyTime, departureTime)
	if err != nil {
		return nil, err
	}

	var overrideFields []string
	if standbyOverridden {
		overrideFields = append(overrideFields, models.FieldStandbyTime)
	}
	if departureOverridden {
		overrideFields = append(overrideFields, models.FieldDepartureTime)
	}
	if driverOverridden {
		overrideFields = append(overrideFields, models.FieldDriver)
	}
	if vehicleOverridden {
		overrideFields = append(overrideFields, models.FieldVehicle)
	}

	instance := &models.ScheduleInstance{
		RouteScheduleID: schedule.ID,
		OccurrenceDate:  occurrenceDate,
		StandbyDate:     standbyDate,
		StandbyTime:     standbyTime,
		DepartureDate:   departureDate,
		DepartureTime:   departureTime,
		DriverID:        driverID,
		VehicleID:       vehicleID,
		Status:          models.InstanceStatusScheduled,
		IsOverride:      len(overrideFields) > 0,
		OverrideFields:  pq.StringArray(overrideFields),
		OverrideReason:  normalizeOptional(req.Reason),
		Notes:           normalizeOptional(req.Notes),
	}

	if err := s.instances.Upsert(ctx, instance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist schedule instance")
	}

	s.invalidateBoard(ctx)
	return instance, nil
}

// List returns instances plus pagination data.
func (s *ResolverService) List(ctx context.Context, filter models.ScheduleInstanceFilter) ([]models.ScheduleInstance, *models.Pagination, error) {
	instances, total, err := s.instances.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule instances")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return instances, pagination, nil
}

// Get returns an instance by id.
func (s *ResolverService) Get(ctx context.Context, id string) (*models.ScheduleInstance, error) {
	instance, err := s.instances.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule instance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule instance")
	}
	return instance, nil
}

// UpdateStatus moves an instance through its lifecycle.
func (s *ResolverService) UpdateStatus(ctx context.Context, id string, req dto.UpdateInstanceStatusRequest) (*models.ScheduleInstance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	instance, err := s.instances.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule instance not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule instance")
	}

	status := strings.ToUpper(req.Status)
	if err := s.instances.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update instance status")
	}
	instance.Status = status

	s.invalidateBoard(ctx)
	return instance, nil
}

func (s *ResolverService) invalidateBoard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "board:*"); err != nil {
		s.logger.Warn("board cache invalidation failed", zap.Error(err))
	}
}

// resolveDepartureDate applies the cross-day rule: a departure clock time
// earlier than the standby clock time means the vehicle leaves on the day
// after standby, never before it.
func resolveDepartureDate(standbyDate time.Time, standbyTime, departureTime string) (time.Time, error) {
	standby, err := time.Parse(timeLayout, standbyTime)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid standby time %q", standbyTime))
	}
	departure, err := time.Parse(timeLayout, departureTime)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid departure time %q", departureTime))
	}
	if departure.Before(standby) {
		return standbyDate.AddDate(0, 0, 1), nil
	}
	return standbyDate, nil
}

// resolveField layers an override over a template default. The second return
// reports whether the override changed the effective value.
func resolveField(override, fallback *string) (string, bool) {
	if override != nil && strings.TrimSpace(*override) != "" {
		value := strings.TrimSpace(*override)
		if fallback == nil || value != strings.TrimSpace(*fallback) {
			return value, true
		}
		return value, false
	}
	if fallback != nil {
		return strings.TrimSpace(*fallback), false
	}
	return "", false
}

func resolveOptionalField(override, fallback *string) (*string, bool) {
	if override != nil && strings.TrimSpace(*override) != "" {
		value := strings.TrimSpace(*override)
		if fallback == nil || value != strings.TrimSpace(*fallback) {
			return &value, true
		}
		return &value, false
	}
	return fallback, false
}
