package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/models"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type routeScheduleRepository interface {
	List(ctx context.Context, filter models.RouteScheduleFilter) ([]models.RouteSchedule, int, error)
	FindByID(ctx context.Context, id string) (*models.RouteSchedule, error)
	Create(ctx context.Context, schedule *models.RouteSchedule) error
	Update(ctx context.Context, schedule *models.RouteSchedule) error
	Deactivate(ctx context.Context, id string) error
}

type scheduleRouteLookup interface {
	FindByID(ctx context.Context, id string) (*models.Route, error)
}

// CreateRouteScheduleRequest represents payload for creating templates.
type CreateRouteScheduleRequest struct {
	RouteID          string   `json:"route_id" validate:"required,uuid4"`
	Weekdays         []string `json:"weekdays" validate:"omitempty,dive,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartDate        string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          *string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	DefaultStandby   *string  `json:"default_standby_time" validate:"omitempty,datetime=15:04"`
	DefaultDeparture *string  `json:"default_departure_time" validate:"omitempty,datetime=15:04"`
	DefaultDriverID  *string  `json:"default_driver_id" validate:"omitempty,uuid4"`
	DefaultVehicleID *string  `json:"default_vehicle_id" validate:"omitempty,uuid4"`
	Priority         int      `json:"priority" validate:"gte=0"`
	Status           string   `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
}

// UpdateRouteScheduleRequest represents payload for updating templates.
type UpdateRouteScheduleRequest struct {
	Weekdays         []string `json:"weekdays" validate:"omitempty,dive,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartDate        string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          *string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	DefaultStandby   *string  `json:"default_standby_time" validate:"omitempty,datetime=15:04"`
	DefaultDeparture *string  `json:"default_departure_time" validate:"omitempty,datetime=15:04"`
	DefaultDriverID  *string  `json:"default_driver_id" validate:"omitempty,uuid4"`
	DefaultVehicleID *string  `json:"default_vehicle_id" validate:"omitempty,uuid4"`
	Priority         int      `json:"priority" validate:"gte=0"`
	Status           string   `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
}

// RouteScheduleService orchestrates recurring template operations.
type RouteScheduleService struct {
	repo      routeScheduleRepository
	routes    scheduleRouteLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRouteScheduleService constructs a RouteScheduleService.
func NewRouteScheduleService(repo routeScheduleRepository, routes scheduleRouteLookup, validate *validator.Validate, logger *zap.Logger) *RouteScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteScheduleService{repo: repo, routes: routes, validator: validate, logger: logger}
}

// List returns templates plus pagination data.
func (s *RouteScheduleService) List(ctx context.Context, filter models.RouteScheduleFilter) ([]models.RouteSchedule, *models.Pagination, error) {
	schedules, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list route schedules")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return schedules, pagination, nil
}

// Get returns a template by id.
func (s *RouteScheduleService) Get(ctx context.Context, id string) (*models.RouteSchedule, error) {
	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "route schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load route schedule")
	}
	return schedule, nil
}

// Create registers a new recurring template.
func (s *RouteScheduleService) Create(ctx context.Context, req CreateRouteScheduleRequest) (*models.RouteSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid route schedule payload")
	}

	startDate, endDate, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	if s.routes != nil {
		if _, err := s.routes.FindByID(ctx, req.RouteID); err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrValidation, "route does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check route")
		}
	}

	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status == "" {
		status = models.ScheduleStatusDraft
	}

	schedule := &models.RouteSchedule{
		RouteID:          req.RouteID,
		Weekdays:         pq.StringArray(normalizeWeekdays(req.Weekdays)),
		StartDate:        startDate,
		EndDate:          endDate,
		DefaultStandby:   normalizeOptional(req.DefaultStandby),
		DefaultDeparture: normalizeOptional(req.DefaultDeparture),
		DefaultDriverID:  normalizeOptional(req.DefaultDriverID),
		DefaultVehicleID: normalizeOptional(req.DefaultVehicleID),
		Priority:         req.Priority,
		Status:           status,
	}

	if err := s.repo.Create(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create route schedule")
	}
	return schedule, nil
}

// Update modifies an existing template. The owning route never changes.
func (s *RouteScheduleService) Update(ctx context.Context, id string, req UpdateRouteScheduleRequest) (*models.RouteSchedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid route schedule payload")
	}

	schedule, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "route schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load route schedule")
	}

	startDate, endDate, err := parseWindow(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	schedule.Weekdays = pq.StringArray(normalizeWeekdays(req.Weekdays))
	schedule.StartDate = startDate
	schedule.EndDate = endDate
	schedule.DefaultStandby = normalizeOptional(req.DefaultStandby)
	schedule.DefaultDeparture = normalizeOptional(req.DefaultDeparture)
	schedule.DefaultDriverID = normalizeOptional(req.DefaultDriverID)
	schedule.DefaultVehicleID = normalizeOptional(req.DefaultVehicleID)
	schedule.Priority = req.Priority
	if req.Status != "" {
		schedule.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	}

	if err := s.repo.Update(ctx, schedule); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update route schedule")
	}
	return schedule, nil
}

// Deactivate soft-disables a template. Existing instances keep referencing it.
func (s *RouteScheduleService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "route schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load route schedule")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate route schedule")
	}
	return nil
}

func parseWindow(start string, end *string) (time.Time, *time.Time, error) {
	startDate, err := time.ParseInLocation(dateLayout, start, time.UTC)
	if err != nil {
		return time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "invalid start date")
	}
	if end == nil || strings.TrimSpace(*end) == "" {
		return startDate, nil, nil
	}
	endDate, err := time.ParseInLocation(dateLayout, *end, time.UTC)
	if err != nil {
		return time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "invalid end date")
	}
	if endDate.Before(startDate) {
		return time.Time{}, nil, appErrors.Clone(appErrors.ErrValidation, "end date before start date")
	}
	return startDate, &endDate, nil
}

func normalizeWeekdays(weekdays []string) []string {
	if len(weekdays) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(weekdays))
	result := make([]string, 0, len(weekdays))
	for _, w := range weekdays {
		upper := strings.ToUpper(strings.TrimSpace(w))
		if upper == "" {
			continue
		}
		if _, ok := seen[upper]; ok {
			continue
		}
		seen[upper] = struct{}{}
		result = append(result, upper)
	}
	return result
}
