package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/internal/models"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

type generatorScheduleMock struct {
	schedules []models.RouteSchedule
}

func (m *generatorScheduleMock) ListActiveOverlapping(ctx context.Context, from, to time.Time, ids []string) ([]models.RouteSchedule, error) {
	return m.schedules, nil
}

type generatorInstancesMock struct {
	existing map[string]bool
	upserts  []*models.ScheduleInstance
}

func newGeneratorInstancesMock() *generatorInstancesMock {
	return &generatorInstancesMock{existing: make(map[string]bool)}
}

func instanceKey(scheduleID string, date time.Time) string {
	return fmt.Sprintf("%s|%s", scheduleID, date.Format("2006-01-02"))
}

func (m *generatorInstancesMock) Exists(ctx context.Context, routeScheduleID string, occurrenceDate time.Time) (bool, error) {
	return m.existing[instanceKey(routeScheduleID, occurrenceDate)], nil
}

func (m *generatorInstancesMock) Upsert(ctx context.Context, instance *models.ScheduleInstance) error {
	m.existing[instanceKey(instance.RouteScheduleID, instance.OccurrenceDate)] = true
	m.upserts = append(m.upserts, instance)
	return nil
}

func weekdaySchedule(id string, weekdays ...string) models.RouteSchedule {
	return models.RouteSchedule{
		ID:               id,
		RouteID:          "route-1",
		Weekdays:         pq.StringArray(weekdays),
		StartDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DefaultStandby:   strPtr("20:00"),
		DefaultDeparture: strPtr("06:00"),
		Status:           models.ScheduleStatusActive,
	}
}

func TestGeneratorCreatesMatchingDates(t *testing.T) {
	schedules := &generatorScheduleMock{schedules: []models.RouteSchedule{weekdaySchedule("rs-1", "MONDAY", "WEDNESDAY")}}
	store := newGeneratorInstancesMock()
	cache := &boardCacheMock{}
	svc := NewGeneratorService(schedules, store, cache, nil, validator.New(), zap.NewNop())

	// 2026-03-02 is a Monday.
	result, err := svc.Generate(context.Background(), dto.GenerateInstancesRequest{StartDate: "2026-03-02", EndDate: "2026-03-08"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 2, result.PerSchedule["rs-1"])
	require.Len(t, store.upserts, 2)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), store.upserts[0].OccurrenceDate)
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), store.upserts[1].OccurrenceDate)
	// Cross-day defaults carry into generated instances.
	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), store.upserts[0].DepartureDate)
	assert.Equal(t, []string{"board:*"}, cache.patterns)
}

func TestGeneratorSecondPassIsIdempotent(t *testing.T) {
	schedules := &generatorScheduleMock{schedules: []models.RouteSchedule{weekdaySchedule("rs-1", "MONDAY", "WEDNESDAY")}}
	store := newGeneratorInstancesMock()
	svc := NewGeneratorService(schedules, store, &boardCacheMock{}, nil, validator.New(), zap.NewNop())

	req := dto.GenerateInstancesRequest{StartDate: "2026-03-02", EndDate: "2026-03-08"}
	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Created)

	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Skipped)
	assert.Len(t, store.upserts, 2)
}

func TestGeneratorIsolatesTemplateFailures(t *testing.T) {
	broken := weekdaySchedule("rs-broken", "MONDAY")
	broken.DefaultDeparture = nil
	schedules := &generatorScheduleMock{schedules: []models.RouteSchedule{broken, weekdaySchedule("rs-ok", "MONDAY")}}
	store := newGeneratorInstancesMock()
	svc := NewGeneratorService(schedules, store, &boardCacheMock{}, nil, validator.New(), zap.NewNop())

	result, err := svc.Generate(context.Background(), dto.GenerateInstancesRequest{StartDate: "2026-03-02", EndDate: "2026-03-02"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.PerSchedule["rs-ok"])
}

func TestGeneratorRejectsOversizedRange(t *testing.T) {
	svc := NewGeneratorService(&generatorScheduleMock{}, newGeneratorInstancesMock(), nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Generate(context.Background(), dto.GenerateInstancesRequest{StartDate: "2026-01-01", EndDate: "2026-06-01"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGeneratorRejectsInvertedRange(t *testing.T) {
	svc := NewGeneratorService(&generatorScheduleMock{}, newGeneratorInstancesMock(), nil, nil, validator.New(), zap.NewNop())

	_, err := svc.Generate(context.Background(), dto.GenerateInstancesRequest{StartDate: "2026-03-08", EndDate: "2026-03-02"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
