package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/models"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

const testRouteID = "7b5dbf4e-9d3c-4f3e-8f0a-2f6f0f5c1a11"

type routeScheduleRepoMock struct {
	items       map[string]*models.RouteSchedule
	deactivated []string
}

func newRouteScheduleRepoMock() *routeScheduleRepoMock {
	return &routeScheduleRepoMock{items: make(map[string]*models.RouteSchedule)}
}

func (m *routeScheduleRepoMock) List(ctx context.Context, filter models.RouteScheduleFilter) ([]models.RouteSchedule, int, error) {
	var out []models.RouteSchedule
	for _, schedule := range m.items {
		out = append(out, *schedule)
	}
	return out, len(out), nil
}

func (m *routeScheduleRepoMock) FindByID(ctx context.Context, id string) (*models.RouteSchedule, error) {
	if schedule, ok := m.items[id]; ok {
		copied := *schedule
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *routeScheduleRepoMock) Create(ctx context.Context, schedule *models.RouteSchedule) error {
	if schedule.ID == "" {
		schedule.ID = "rs-1"
	}
	m.items[schedule.ID] = schedule
	return nil
}

func (m *routeScheduleRepoMock) Update(ctx context.Context, schedule *models.RouteSchedule) error {
	m.items[schedule.ID] = schedule
	return nil
}

func (m *routeScheduleRepoMock) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

type routeLookupMock struct {
	routes map[string]*models.Route
}

func (m *routeLookupMock) FindByID(ctx context.Context, id string) (*models.Route, error) {
	if route, ok := m.routes[id]; ok {
		return route, nil
	}
	return nil, sql.ErrNoRows
}

func knownRoutes() *routeLookupMock {
	return &routeLookupMock{routes: map[string]*models.Route{testRouteID: {ID: testRouteID, Code: "JKT-BDG"}}}
}

func TestRouteScheduleServiceCreate(t *testing.T) {
	repo := newRouteScheduleRepoMock()
	svc := NewRouteScheduleService(repo, knownRoutes(), validator.New(), zap.NewNop())

	schedule, err := svc.Create(context.Background(), CreateRouteScheduleRequest{
		RouteID:          testRouteID,
		Weekdays:         []string{"MONDAY", "MONDAY", "FRIDAY"},
		StartDate:        "2026-03-01",
		DefaultStandby:   strPtr("20:00"),
		DefaultDeparture: strPtr("06:00"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.ScheduleStatusDraft, schedule.Status)
	assert.Equal(t, []string{"MONDAY", "FRIDAY"}, []string(schedule.Weekdays))
	require.NotNil(t, schedule.DefaultStandby)
	assert.Equal(t, "20:00", *schedule.DefaultStandby)
	assert.Nil(t, schedule.EndDate)
}

func TestRouteScheduleServiceCreateUnknownRoute(t *testing.T) {
	svc := NewRouteScheduleService(newRouteScheduleRepoMock(), &routeLookupMock{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateRouteScheduleRequest{
		RouteID:   testRouteID,
		StartDate: "2026-03-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRouteScheduleServiceCreateInvertedWindow(t *testing.T) {
	svc := NewRouteScheduleService(newRouteScheduleRepoMock(), knownRoutes(), validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateRouteScheduleRequest{
		RouteID:   testRouteID,
		StartDate: "2026-03-10",
		EndDate:   strPtr("2026-03-01"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRouteScheduleServiceCreateRejectsBadWeekday(t *testing.T) {
	svc := NewRouteScheduleService(newRouteScheduleRepoMock(), knownRoutes(), validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateRouteScheduleRequest{
		RouteID:   testRouteID,
		Weekdays:  []string{"FUNDAY"},
		StartDate: "2026-03-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRouteScheduleServiceUpdateKeepsRoute(t *testing.T) {
	repo := newRouteScheduleRepoMock()
	repo.items["rs-1"] = &models.RouteSchedule{ID: "rs-1", RouteID: testRouteID, Status: models.ScheduleStatusDraft}
	svc := NewRouteScheduleService(repo, knownRoutes(), validator.New(), zap.NewNop())

	schedule, err := svc.Update(context.Background(), "rs-1", UpdateRouteScheduleRequest{
		StartDate: "2026-03-01",
		Status:    "ACTIVE",
	})
	require.NoError(t, err)
	assert.Equal(t, testRouteID, schedule.RouteID)
	assert.Equal(t, models.ScheduleStatusActive, schedule.Status)
}

func TestRouteScheduleServiceDeactivate(t *testing.T) {
	repo := newRouteScheduleRepoMock()
	repo.items["rs-1"] = &models.RouteSchedule{ID: "rs-1"}
	svc := NewRouteScheduleService(repo, knownRoutes(), validator.New(), zap.NewNop())

	require.NoError(t, svc.Deactivate(context.Background(), "rs-1"))
	assert.Equal(t, []string{"rs-1"}, repo.deactivated)

	err := svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
