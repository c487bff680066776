package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/internal/models"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

// maxGenerationDays caps one bulk pass to a quarter.
const maxGenerationDays = 92

type generatorScheduleSource interface {
	ListActiveOverlapping(ctx context.Context, from, to time.Time, ids []string) ([]models.RouteSchedule, error)
}

type generatorInstanceStore interface {
	Exists(ctx context.Context, routeScheduleID string, occurrenceDate time.Time) (bool, error)
	Upsert(ctx context.Context, instance *models.ScheduleInstance) error
}

// GeneratorService materializes instances in bulk for a date range. Passes are
// idempotent: dates that already have an instance are skipped untouched.
type GeneratorService struct {
	schedules generatorScheduleSource
	instances generatorInstanceStore
	cache     boardInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGeneratorService constructs a GeneratorService.
func NewGeneratorService(schedules generatorScheduleSource, instances generatorInstanceStore, cache boardInvalidator, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *GeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeneratorService{schedules: schedules, instances: instances, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Generate walks every date in [start, end] for each matching ACTIVE template
// and creates the missing instances from template defaults. A template that
// cannot be materialized (missing default times) is counted as failed and the
// pass continues with the rest.
func (s *GeneratorService) Generate(ctx context.Context, req dto.GenerateInstancesRequest) (*dto.GenerateInstancesResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	startDate, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid start date")
	}
	endDate, err := time.ParseInLocation(dateLayout, req.EndDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end date")
	}
	if endDate.Before(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date before start date")
	}
	if int(endDate.Sub(startDate).Hours()/24) >= maxGenerationDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date range exceeds 92 days")
	}

	schedules, err := s.schedules.ListActiveOverlapping(ctx, startDate, endDate, req.ScheduleIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load route schedules")
	}

	result := &dto.GenerateInstancesResult{PerSchedule: make(map[string]int)}
	for i := range schedules {
		schedule := &schedules[i]
		created, skipped, err := s.generateForSchedule(ctx, schedule, startDate, endDate)
		if err != nil {
			result.Failed++
			s.logger.Warn("schedule generation failed",
				zap.String("route_schedule_id", schedule.ID),
				zap.Error(err))
			continue
		}
		result.Created += created
		result.Skipped += skipped
		if created > 0 {
			result.PerSchedule[schedule.ID] = created
		}
	}

	if result.Created > 0 {
		s.metrics.RecordInstancesGenerated(result.Created)
		if s.cache != nil {
			if err := s.cache.Invalidate(ctx, "board:*"); err != nil {
				s.logger.Warn("board cache invalidation failed", zap.Error(err))
			}
		}
	}

	return result, nil
}

func (s *GeneratorService) generateForSchedule(ctx context.Context, schedule *models.RouteSchedule, startDate, endDate time.Time) (created, skipped int, err error) {
	standbyTime := ""
	if schedule.DefaultStandby != nil {
		standbyTime = *schedule.DefaultStandby
	}
	departureTime := ""
	if schedule.DefaultDeparture != nil {
		departureTime = *schedule.DefaultDeparture
	}
	if standbyTime == "" || departureTime == "" {
		return 0, 0, appErrors.Clone(appErrors.ErrMissingConfiguration, "template has no default standby or departure time")
	}

	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		if !schedule.OccursOn(date) {
			continue
		}

		exists, err := s.instances.Exists(ctx, schedule.ID, date)
		if err != nil {
			return created, skipped, err
		}
		if exists {
			skipped++
			continue
		}

		departureDate, err := resolveDepartureDate(date, standbyTime, departureTime)
		if err != nil {
			return created, skipped, err
		}

		instance := &models.ScheduleInstance{
			RouteScheduleID: schedule.ID,
			OccurrenceDate:  date,
			StandbyDate:     date,
			StandbyTime:     standbyTime,
			DepartureDate:   departureDate,
			DepartureTime:   departureTime,
			DriverID:        schedule.DefaultDriverID,
			VehicleID:       schedule.DefaultVehicleID,
			Status:          models.InstanceStatusScheduled,
		}
		if err := s.instances.Upsert(ctx, instance); err != nil {
			return created, skipped, err
		}
		created++
	}
	return created, skipped, nil
}
