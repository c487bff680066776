package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/internal/models"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

func strPtr(s string) *string { return &s }

type resolverScheduleMock struct {
	schedules map[string]*models.RouteSchedule
}

func (m *resolverScheduleMock) FindByID(ctx context.Context, id string) (*models.RouteSchedule, error) {
	if schedule, ok := m.schedules[id]; ok {
		return schedule, nil
	}
	return nil, sql.ErrNoRows
}

type instanceStoreMock struct {
	byID          map[string]*models.ScheduleInstance
	upserts       []*models.ScheduleInstance
	statusUpdates map[string]string
}

func newInstanceStoreMock() *instanceStoreMock {
	return &instanceStoreMock{byID: make(map[string]*models.ScheduleInstance), statusUpdates: make(map[string]string)}
}

func (m *instanceStoreMock) List(ctx context.Context, filter models.ScheduleInstanceFilter) ([]models.ScheduleInstance, int, error) {
	var out []models.ScheduleInstance
	for _, instance := range m.byID {
		out = append(out, *instance)
	}
	return out, len(out), nil
}

func (m *instanceStoreMock) FindByID(ctx context.Context, id string) (*models.ScheduleInstance, error) {
	if instance, ok := m.byID[id]; ok {
		copied := *instance
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *instanceStoreMock) Upsert(ctx context.Context, instance *models.ScheduleInstance) error {
	if instance.ID == "" {
		instance.ID = "generated-id"
	}
	m.upserts = append(m.upserts, instance)
	return nil
}

func (m *instanceStoreMock) UpdateStatus(ctx context.Context, id, status string) error {
	m.statusUpdates[id] = status
	return nil
}

type boardCacheMock struct {
	patterns []string
}

func (m *boardCacheMock) Invalidate(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func nightSchedule() *models.RouteSchedule {
	return &models.RouteSchedule{
		ID:               "rs-1",
		RouteID:          "route-1",
		StartDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DefaultStandby:   strPtr("20:00"),
		DefaultDeparture: strPtr("06:00"),
		DefaultDriverID:  strPtr("driver-1"),
		Status:           models.ScheduleStatusActive,
	}
}

func newResolver(schedule *models.RouteSchedule, store *instanceStoreMock, cache *boardCacheMock) *ResolverService {
	schedules := &resolverScheduleMock{schedules: map[string]*models.RouteSchedule{}}
	if schedule != nil {
		schedules.schedules[schedule.ID] = schedule
	}
	return NewResolverService(schedules, store, cache, validator.New(), zap.NewNop())
}

func TestResolverCrossDayDeparture(t *testing.T) {
	store := newInstanceStoreMock()
	cache := &boardCacheMock{}
	svc := newResolver(nightSchedule(), store, cache)

	instance, err := svc.Resolve(context.Background(), "rs-1", dto.ResolveInstanceRequest{OccurrenceDate: "2026-03-02"})
	require.NoError(t, err)

	// Departure 06:00 is earlier than standby 20:00, so the truck leaves the
	// morning after standby.
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), instance.StandbyDate)
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), instance.DepartureDate)
	assert.True(t, instance.IsCrossDay())
	assert.False(t, instance.IsOverride)
	assert.Empty(t, instance.OverrideFields)
	assert.Equal(t, models.InstanceStatusScheduled, instance.Status)
	assert.Equal(t, []string{"board:*"}, cache.patterns)
}

func TestResolverSameDayDeparture(t *testing.T) {
	schedule := nightSchedule()
	schedule.DefaultStandby = strPtr("08:00")
	schedule.DefaultDeparture = strPtr("10:00")
	store := newInstanceStoreMock()
	svc := newResolver(schedule, store, &boardCacheMock{})

	instance, err := svc.Resolve(context.Background(), "rs-1", dto.ResolveInstanceRequest{OccurrenceDate: "2026-03-02"})
	require.NoError(t, err)
	assert.Equal(t, instance.StandbyDate, instance.DepartureDate)
	assert.False(t, instance.IsCrossDay())
}

func TestResolverOverridesMarkFields(t *testing.T) {
	store := newInstanceStoreMock()
	svc := newResolver(nightSchedule(), store, &boardCacheMock{})

	instance, err := svc.Resolve(context.Background(), "rs-1", dto.ResolveInstanceRequest{
		OccurrenceDate: "2026-03-02",
		DepartureTime:  strPtr("21:30"),
		DriverID:       strPtr("driver-2"),
		Reason:         strPtr("driver swap"),
	})
	require.NoError(t, err)

	assert.True(t, instance.IsOverride)
	assert.ElementsMatch(t, []string{models.FieldDepartureTime, models.FieldDriver}, []string(instance.OverrideFields))
	require.NotNil(t, instance.DriverID)
	assert.Equal(t, "driver-2", *instance.DriverID)
	// 21:30 is after standby 20:00, so the override departs on the standby day.
	assert.Equal(t, instance.StandbyDate, instance.DepartureDate)
	require.NotNil(t, instance.OverrideReason)
	assert.Equal(t, "driver swap", *instance.OverrideReason)
}

func TestResolverOverrideEqualToDefaultIsNotOverride(t *testing.T) {
	store := newInstanceStoreMock()
	svc := newResolver(nightSchedule(), store, &boardCacheMock{})

	instance, err := svc.Resolve(context.Background(), "rs-1", dto.ResolveInstanceRequest{
		OccurrenceDate: "2026-03-02",
		StandbyTime:    strPtr("20:00"),
		DriverID:       strPtr("driver-1"),
	})
	require.NoError(t, err)
	assert.False(t, instance.IsOverride)
	assert.Empty(t, instance.OverrideFields)
}

func TestResolverMissingConfiguration(t *testing.T) {
	schedule := nightSchedule()
	schedule.DefaultDeparture = nil
	svc := newResolver(schedule, newInstanceStoreMock(), &boardCacheMock{})

	_, err := svc.Resolve(context.Background(), "rs-1", dto.ResolveInstanceRequest{OccurrenceDate: "2026-03-02"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMissingConfiguration.Code, appErrors.FromError(err).Code)
}

func TestResolverScheduleNotFound(t *testing.T) {
	svc := newResolver(nil, newInstanceStoreMock(), &boardCacheMock{})

	_, err := svc.Resolve(context.Background(), "missing", dto.ResolveInstanceRequest{OccurrenceDate: "2026-03-02"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestResolverStandbyDateOverride(t *testing.T) {
	store := newInstanceStoreMock()
	svc := newResolver(nightSchedule(), store, &boardCacheMock{})

	instance, err := svc.Resolve(context.Background(), "rs-1", dto.ResolveInstanceRequest{
		OccurrenceDate: "2026-03-02",
		StandbyDate:    strPtr("2026-03-01"),
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), instance.OccurrenceDate)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), instance.StandbyDate)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), instance.DepartureDate)
}

func TestResolverUpdateStatus(t *testing.T) {
	store := newInstanceStoreMock()
	store.byID["i1"] = &models.ScheduleInstance{ID: "i1", Status: models.InstanceStatusScheduled}
	cache := &boardCacheMock{}
	svc := newResolver(nightSchedule(), store, cache)

	instance, err := svc.UpdateStatus(context.Background(), "i1", dto.UpdateInstanceStatusRequest{Status: "CONFIRMED"})
	require.NoError(t, err)
	assert.Equal(t, models.InstanceStatusConfirmed, instance.Status)
	assert.Equal(t, models.InstanceStatusConfirmed, store.statusUpdates["i1"])
	assert.Equal(t, []string{"board:*"}, cache.patterns)
}
