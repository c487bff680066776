package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/internal/service"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
	"github.com/fleetline/fleetline-api/pkg/response"
)

// SchedulerHandler wires bulk generation, conflict detection and notifier runs
// to HTTP routes.
type SchedulerHandler struct {
	generator *service.GeneratorService
	conflicts *service.ConflictService
	notifier  *service.NotifierService
}

// NewSchedulerHandler constructs a new SchedulerHandler.
func NewSchedulerHandler(generator *service.GeneratorService, conflicts *service.ConflictService, notifier *service.NotifierService) *SchedulerHandler {
	return &SchedulerHandler{generator: generator, conflicts: conflicts, notifier: notifier}
}

// Generate godoc
// @Summary Generate schedule instances for a date range
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateInstancesRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Router /scheduler/generate [post]
func (h *SchedulerHandler) Generate(c *gin.Context) {
	var req dto.GenerateInstancesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Conflicts godoc
// @Summary Detect double-booked drivers and vehicles
// @Tags Scheduler
// @Produce json
// @Param from query string false "Departure window start (YYYY-MM-DD)"
// @Param to query string false "Departure window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /scheduler/conflicts [get]
func (h *SchedulerHandler) Conflicts(c *gin.Context) {
	from, to, err := dateRangeFromQuery(c, 7)
	if err != nil {
		response.Error(c, err)
		return
	}
	conflicts, err := h.conflicts.Detect(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conflicts, nil, map[string]interface{}{
		"from":  from.Format(dateLayout),
		"to":    to.Format(dateLayout),
		"count": len(conflicts),
	})
}

// RunNotifications godoc
// @Summary Run one near-deadline departure scan
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.NotificationRunRequest true "Run payload"
// @Success 200 {object} response.Envelope
// @Router /scheduler/notifications/run [post]
func (h *SchedulerHandler) RunNotifications(c *gin.Context) {
	// An empty body runs the scan with configured defaults.
	var req dto.NotificationRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid notification payload"))
		return
	}
	summary, err := h.notifier.Run(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
