package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/internal/models"
	"github.com/fleetline/fleetline-api/pkg/config"
	"github.com/fleetline/fleetline-api/pkg/jobs"
)

type notifierSourceMock struct {
	instances []models.ScheduleInstance
	statuses  []string
}

func (m *notifierSourceMock) ListByStatusesAndDates(ctx context.Context, statuses []string, from, to time.Time) ([]models.ScheduleInstance, error) {
	m.statuses = statuses
	requested := make(map[string]bool, len(statuses))
	for _, status := range statuses {
		requested[status] = true
	}
	var out []models.ScheduleInstance
	for _, instance := range m.instances {
		if requested[instance.Status] {
			out = append(out, instance)
		}
	}
	return out, nil
}

type alertStoreMock struct {
	alerts  []*models.DepartureAlert
	recent  map[string]bool
	failFor map[string]bool
}

func newAlertStoreMock() *alertStoreMock {
	return &alertStoreMock{recent: make(map[string]bool), failFor: make(map[string]bool)}
}

func (m *alertStoreMock) Create(ctx context.Context, alert *models.DepartureAlert) error {
	if m.failFor[alert.ScheduleInstanceID] {
		return errors.New("insert failed")
	}
	alert.ID = "alert-" + alert.ScheduleInstanceID
	m.alerts = append(m.alerts, alert)
	return nil
}

func (m *alertStoreMock) ExistsRecent(ctx context.Context, instanceID string, since time.Time) (bool, error) {
	return m.recent[instanceID], nil
}

func (m *alertStoreMock) ListByInstance(ctx context.Context, instanceID string) ([]models.DepartureAlert, error) {
	var out []models.DepartureAlert
	for _, alert := range m.alerts {
		if alert.ScheduleInstanceID == instanceID {
			out = append(out, *alert)
		}
	}
	return out, nil
}

type auditWriterMock struct {
	entries []*models.AuditLog
}

func (m *auditWriterMock) Create(ctx context.Context, entry *models.AuditLog) error {
	m.entries = append(m.entries, entry)
	return nil
}

type dispatcherMock struct {
	jobs []jobs.Job
}

func (m *dispatcherMock) Enqueue(job jobs.Job) error {
	m.jobs = append(m.jobs, job)
	return nil
}

func departingInstance(id, clock string) models.ScheduleInstance {
	return models.ScheduleInstance{
		ID:            id,
		DepartureDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		DepartureTime: clock,
		Status:        models.InstanceStatusScheduled,
	}
}

func newNotifier(source *notifierSourceMock, alerts *alertStoreMock, audits *auditWriterMock, queue *dispatcherMock) *NotifierService {
	cfg := config.NotifierConfig{Lookahead: 2 * time.Hour, Channels: []string{"email"}}
	svc := NewNotifierService(source, alerts, audits, queue, nil, cfg, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestNotifierSeverityByRemainingTime(t *testing.T) {
	source := &notifierSourceMock{instances: []models.ScheduleInstance{
		departingInstance("i-high", "08:30"),
		departingInstance("i-medium", "09:30"),
	}}
	alerts := newAlertStoreMock()
	queue := &dispatcherMock{}
	svc := newNotifier(source, alerts, &auditWriterMock{}, queue)

	summary, err := svc.Run(context.Background(), nil, dto.NotificationRunRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.InstancesFound)
	assert.Equal(t, 2, summary.AlertsCreated)
	assert.Equal(t, 0, summary.Skipped)
	require.Len(t, alerts.alerts, 2)

	bySeverity := map[string]string{}
	for _, alert := range alerts.alerts {
		bySeverity[alert.ScheduleInstanceID] = alert.Severity
		assert.Equal(t, []string{"email"}, []string(alert.Channels))
	}
	assert.Equal(t, models.SeverityHigh, bySeverity["i-high"])
	assert.Equal(t, models.SeverityMedium, bySeverity["i-medium"])
	assert.Len(t, queue.jobs, 2)
}

func TestNotifierSkipsOutsideWindow(t *testing.T) {
	source := &notifierSourceMock{instances: []models.ScheduleInstance{
		departingInstance("i-past", "07:00"),
		departingInstance("i-far", "11:00"),
	}}
	alerts := newAlertStoreMock()
	svc := newNotifier(source, alerts, &auditWriterMock{}, &dispatcherMock{})

	summary, err := svc.Run(context.Background(), nil, dto.NotificationRunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.InstancesFound)
	assert.Equal(t, 0, summary.AlertsCreated)
	assert.Empty(t, alerts.alerts)
}

func TestNotifierOnlyScansScheduledInstances(t *testing.T) {
	confirmed := departingInstance("i-confirmed", "08:30")
	confirmed.Status = models.InstanceStatusConfirmed
	source := &notifierSourceMock{instances: []models.ScheduleInstance{
		departingInstance("i-scheduled", "08:30"),
		confirmed,
	}}
	alerts := newAlertStoreMock()
	svc := newNotifier(source, alerts, &auditWriterMock{}, &dispatcherMock{})

	summary, err := svc.Run(context.Background(), nil, dto.NotificationRunRequest{})
	require.NoError(t, err)

	// A confirmed departure inside the window never gets an alert.
	assert.Equal(t, []string{models.InstanceStatusScheduled}, source.statuses)
	assert.Equal(t, 1, summary.InstancesFound)
	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, "i-scheduled", alerts.alerts[0].ScheduleInstanceID)
}

func TestNotifierDeduplicatesRecentAlerts(t *testing.T) {
	source := &notifierSourceMock{instances: []models.ScheduleInstance{departingInstance("i1", "09:00")}}
	alerts := newAlertStoreMock()
	alerts.recent["i1"] = true
	svc := newNotifier(source, alerts, &auditWriterMock{}, &dispatcherMock{})

	summary, err := svc.Run(context.Background(), nil, dto.NotificationRunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.InstancesFound)
	assert.Equal(t, 0, summary.AlertsCreated)
	assert.Equal(t, 1, summary.Skipped)
}

func TestNotifierContinuesPastCreateFailure(t *testing.T) {
	source := &notifierSourceMock{instances: []models.ScheduleInstance{
		departingInstance("i-fail", "08:30"),
		departingInstance("i-ok", "09:30"),
	}}
	alerts := newAlertStoreMock()
	alerts.failFor["i-fail"] = true
	svc := newNotifier(source, alerts, &auditWriterMock{}, &dispatcherMock{})

	summary, err := svc.Run(context.Background(), nil, dto.NotificationRunRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AlertsCreated)
	assert.Equal(t, 1, summary.Skipped)
	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, "i-ok", alerts.alerts[0].ScheduleInstanceID)
}

func TestNotifierRequestOverridesAndAudit(t *testing.T) {
	source := &notifierSourceMock{instances: []models.ScheduleInstance{departingInstance("i1", "11:00")}}
	alerts := newAlertStoreMock()
	audits := &auditWriterMock{}
	svc := newNotifier(source, alerts, audits, &dispatcherMock{})

	actor := "dispatcher@fleetline.io"
	summary, err := svc.Run(context.Background(), &actor, dto.NotificationRunRequest{
		LookaheadHours: 4,
		Channels:       []string{"sms"},
	})
	require.NoError(t, err)

	// 11:00 is within the widened four hour lookahead.
	assert.Equal(t, 1, summary.AlertsCreated)
	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, []string{"sms"}, []string(alerts.alerts[0].Channels))

	require.Len(t, audits.entries, 1)
	assert.Equal(t, "notifier.run", audits.entries[0].Action)
	require.NotNil(t, audits.entries[0].Actor)
	assert.Equal(t, actor, *audits.entries[0].Actor)
}

func TestNotifierListAlerts(t *testing.T) {
	alerts := newAlertStoreMock()
	alerts.alerts = append(alerts.alerts, &models.DepartureAlert{ID: "a1", ScheduleInstanceID: "i1"})
	svc := newNotifier(&notifierSourceMock{}, alerts, &auditWriterMock{}, &dispatcherMock{})

	list, err := svc.ListAlerts(context.Background(), "i1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)
}
