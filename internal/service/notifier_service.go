package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/internal/models"
	"github.com/fleetline/fleetline-api/pkg/config"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
	"github.com/fleetline/fleetline-api/pkg/jobs"
)

// highSeverityWindow is the remaining time under which alerts escalate.
const highSeverityWindow = time.Hour

type notifierInstanceSource interface {
	ListByStatusesAndDates(ctx context.Context, statuses []string, from, to time.Time) ([]models.ScheduleInstance, error)
}

type alertStore interface {
	Create(ctx context.Context, alert *models.DepartureAlert) error
	ExistsRecent(ctx context.Context, instanceID string, since time.Time) (bool, error)
	ListByInstance(ctx context.Context, instanceID string) ([]models.DepartureAlert, error)
}

type auditWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

type alertDispatcher interface {
	Enqueue(job jobs.Job) error
}

// NotifierService scans for departures approaching their deadline and raises
// alerts. One alert per instance per scan window; a failure on one alert never
// aborts the rest of the run.
type NotifierService struct {
	instances notifierInstanceSource
	alerts    alertStore
	audits    auditWriter
	queue     alertDispatcher
	metrics   *MetricsService
	cfg       config.NotifierConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewNotifierService constructs a NotifierService.
func NewNotifierService(instances notifierInstanceSource, alerts alertStore, audits auditWriter, queue alertDispatcher, metrics *MetricsService, cfg config.NotifierConfig, validate *validator.Validate, logger *zap.Logger) *NotifierService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Lookahead <= 0 {
		cfg.Lookahead = 2 * time.Hour
	}
	return &NotifierService{
		instances: instances,
		alerts:    alerts,
		audits:    audits,
		queue:     queue,
		metrics:   metrics,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one near-deadline scan. Departures strictly in the future and
// no further out than the lookahead window get an alert: HIGH when an hour or
// less remains, MEDIUM otherwise.
func (s *NotifierService) Run(ctx context.Context, actor *string, req dto.NotificationRunRequest) (*dto.NotificationRunSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}

	lookahead := s.cfg.Lookahead
	if req.LookaheadHours > 0 {
		lookahead = time.Duration(req.LookaheadHours * float64(time.Hour))
	}
	channels := req.Channels
	if len(channels) == 0 {
		channels = s.cfg.Channels
	}

	now := s.now()
	threshold := now.Add(lookahead)

	// Only SCHEDULED departures still need a nudge; confirmed trips already
	// have an acknowledged crew.
	statuses := []string{models.InstanceStatusScheduled}
	// Departure timestamps derive from departure_date plus clock time, so the
	// occurrence scan covers yesterday through the day after the threshold.
	instances, err := s.instances.ListByStatusesAndDates(ctx, statuses, truncateToDay(now).AddDate(0, 0, -1), truncateToDay(threshold).AddDate(0, 0, 1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule instances")
	}

	summary := &dto.NotificationRunSummary{RanAt: now.Format(time.RFC3339)}
	for i := range instances {
		instance := &instances[i]
		departureAt, err := combineDateTime(instance.DepartureDate, instance.DepartureTime)
		if err != nil {
			s.logger.Warn("skipping instance with unparseable departure time",
				zap.String("instance_id", instance.ID),
				zap.String("departure_time", instance.DepartureTime))
			continue
		}
		if !departureAt.After(now) || departureAt.After(threshold) {
			continue
		}
		summary.InstancesFound++

		exists, err := s.alerts.ExistsRecent(ctx, instance.ID, now.Add(-lookahead))
		if err != nil {
			s.logger.Warn("alert dedupe check failed", zap.String("instance_id", instance.ID), zap.Error(err))
			summary.Skipped++
			continue
		}
		if exists {
			summary.Skipped++
			continue
		}

		hoursUntil := departureAt.Sub(now).Hours()
		severity := models.SeverityMedium
		if departureAt.Sub(now) <= highSeverityWindow {
			severity = models.SeverityHigh
		}

		alert := &models.DepartureAlert{
			ScheduleInstanceID: instance.ID,
			Severity:           severity,
			HoursUntil:         hoursUntil,
			Message:            fmt.Sprintf("departure at %s on %s, %.1f hours remaining", instance.DepartureTime, instance.DepartureDate.Format(dateLayout), hoursUntil),
			Channels:           pq.StringArray(channels),
		}
		if err := s.alerts.Create(ctx, alert); err != nil {
			s.logger.Warn("alert creation failed", zap.String("instance_id", instance.ID), zap.Error(err))
			summary.Skipped++
			continue
		}
		summary.AlertsCreated++

		s.dispatch(alert)
	}

	s.metrics.RecordAlertsCreated(summary.AlertsCreated)
	s.writeAudit(ctx, actor, summary, lookahead)
	return summary, nil
}

// ListAlerts returns the alerts raised for one schedule instance.
func (s *NotifierService) ListAlerts(ctx context.Context, instanceID string) ([]models.DepartureAlert, error) {
	alerts, err := s.alerts.ListByInstance(ctx, instanceID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list departure alerts")
	}
	return alerts, nil
}

func (s *NotifierService) dispatch(alert *models.DepartureAlert) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(jobs.Job{ID: alert.ID, Type: "departure_alert", Payload: alert}); err != nil {
		s.logger.Warn("alert dispatch enqueue failed", zap.String("alert_id", alert.ID), zap.Error(err))
	}
}

func (s *NotifierService) writeAudit(ctx context.Context, actor *string, summary *dto.NotificationRunSummary, lookahead time.Duration) {
	if s.audits == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"lookahead":       lookahead.String(),
		"instances_found": summary.InstancesFound,
		"alerts_created":  summary.AlertsCreated,
		"skipped":         summary.Skipped,
	})
	if err != nil {
		return
	}
	entry := &models.AuditLog{
		Actor:    actor,
		Action:   "notifier.run",
		Resource: "departure_alerts",
		Payload:  payload,
	}
	if err := s.audits.Create(ctx, entry); err != nil {
		s.logger.Warn("notifier audit write failed", zap.Error(err))
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func combineDateTime(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse(timeLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC), nil
}
