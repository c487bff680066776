package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetline/fleetline-api/internal/models"
	"github.com/fleetline/fleetline-api/internal/service"
	"github.com/fleetline/fleetline-api/pkg/config"
)

type schedulerSourceStub struct {
	schedules []models.RouteSchedule
	instances []models.ScheduleInstance
}

func (s *schedulerSourceStub) ListActiveOverlapping(ctx context.Context, from, to time.Time, ids []string) ([]models.RouteSchedule, error) {
	return s.schedules, nil
}

func (s *schedulerSourceStub) ListByStatusesAndDates(ctx context.Context, statuses []string, from, to time.Time) ([]models.ScheduleInstance, error) {
	return s.instances, nil
}

type instanceWriterStub struct {
	upserts int
}

func (s *instanceWriterStub) Exists(ctx context.Context, routeScheduleID string, occurrenceDate time.Time) (bool, error) {
	return false, nil
}

func (s *instanceWriterStub) Upsert(ctx context.Context, instance *models.ScheduleInstance) error {
	s.upserts++
	return nil
}

type alertSinkStub struct{}

func (s *alertSinkStub) Create(ctx context.Context, alert *models.DepartureAlert) error {
	return nil
}

func (s *alertSinkStub) ExistsRecent(ctx context.Context, instanceID string, since time.Time) (bool, error) {
	return false, nil
}

func (s *alertSinkStub) ListByInstance(ctx context.Context, instanceID string) ([]models.DepartureAlert, error) {
	return nil, nil
}

func strPtr(s string) *string { return &s }

func newSchedulerHandler(source *schedulerSourceStub, writer *instanceWriterStub) *SchedulerHandler {
	generator := service.NewGeneratorService(source, writer, nil, nil, nil, nil)
	conflicts := service.NewConflictService(source, nil)
	notifier := service.NewNotifierService(source, &alertSinkStub{}, nil, nil, nil, config.NotifierConfig{}, nil, nil)
	return NewSchedulerHandler(generator, conflicts, notifier)
}

func performRequest(t *testing.T, handlerFunc gin.HandlerFunc, method, path, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Handle(method, path, handlerFunc)

	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSchedulerGenerate(t *testing.T) {
	source := &schedulerSourceStub{schedules: []models.RouteSchedule{{
		ID:               "rs-1",
		StartDate:        time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DefaultStandby:   strPtr("20:00"),
		DefaultDeparture: strPtr("06:00"),
		Status:           models.ScheduleStatusActive,
	}}}
	writer := &instanceWriterStub{}
	h := newSchedulerHandler(source, writer)

	payload := []byte(`{"start_date":"2026-03-02","end_date":"2026-03-03"}`)
	w := performRequest(t, h.Generate, http.MethodPost, "/scheduler/generate", "/scheduler/generate", payload)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"created":2`)
	assert.Equal(t, 2, writer.upserts)
}

func TestSchedulerGenerateInvalidPayload(t *testing.T) {
	h := newSchedulerHandler(&schedulerSourceStub{}, &instanceWriterStub{})

	w := performRequest(t, h.Generate, http.MethodPost, "/scheduler/generate", "/scheduler/generate", []byte(`{"start_date":`))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchedulerConflictsInvertedRange(t *testing.T) {
	h := newSchedulerHandler(&schedulerSourceStub{}, &instanceWriterStub{})

	w := performRequest(t, h.Conflicts, http.MethodGet, "/scheduler/conflicts", "/scheduler/conflicts?from=2026-03-08&to=2026-03-02", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchedulerConflictsEmptyResult(t *testing.T) {
	h := newSchedulerHandler(&schedulerSourceStub{}, &instanceWriterStub{})

	w := performRequest(t, h.Conflicts, http.MethodGet, "/scheduler/conflicts", "/scheduler/conflicts?from=2026-03-02&to=2026-03-08", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestSchedulerRunNotificationsEmptyBody(t *testing.T) {
	h := newSchedulerHandler(&schedulerSourceStub{}, &instanceWriterStub{})

	w := performRequest(t, h.RunNotifications, http.MethodPost, "/scheduler/notifications/run", "/scheduler/notifications/run", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"alerts_created":0`)
}
