package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/internal/models"
	"github.com/fleetline/fleetline-api/internal/service"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
	"github.com/fleetline/fleetline-api/pkg/response"
)

// ScheduleInstanceHandler wires instance queries and lifecycle to HTTP routes.
type ScheduleInstanceHandler struct {
	resolver *service.ResolverService
	notifier *service.NotifierService
}

// NewScheduleInstanceHandler constructs a new ScheduleInstanceHandler.
func NewScheduleInstanceHandler(resolver *service.ResolverService, notifier *service.NotifierService) *ScheduleInstanceHandler {
	return &ScheduleInstanceHandler{resolver: resolver, notifier: notifier}
}

// List godoc
// @Summary List schedule instances
// @Tags Schedule Instances
// @Produce json
// @Param route_schedule_id query string false "Filter by template"
// @Param driver_id query string false "Filter by driver"
// @Param vehicle_id query string false "Filter by vehicle"
// @Param status query string false "Filter by status"
// @Param from query string false "Occurrence window start (YYYY-MM-DD)"
// @Param to query string false "Occurrence window end (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /schedule-instances [get]
func (h *ScheduleInstanceHandler) List(c *gin.Context) {
	filter := models.ScheduleInstanceFilter{
		RouteScheduleID: strings.TrimSpace(c.Query("route_schedule_id")),
		DriverID:        strings.TrimSpace(c.Query("driver_id")),
		VehicleID:       strings.TrimSpace(c.Query("vehicle_id")),
		Status:          strings.TrimSpace(c.Query("status")),
		SortBy:          c.Query("sort"),
		SortOrder:       c.Query("order"),
	}
	if raw := c.Query("from"); raw != "" {
		if parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC); err == nil {
			filter.From = &parsed
		}
	}
	if raw := c.Query("to"); raw != "" {
		if parsed, err := time.ParseInLocation(dateLayout, raw, time.UTC); err == nil {
			filter.To = &parsed
		}
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	instances, pagination, err := h.resolver.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instances, pagination)
}

// Get godoc
// @Summary Get schedule instance detail
// @Tags Schedule Instances
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} response.Envelope
// @Router /schedule-instances/{id} [get]
func (h *ScheduleInstanceHandler) Get(c *gin.Context) {
	instance, err := h.resolver.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instance, nil)
}

// UpdateStatus godoc
// @Summary Update instance lifecycle status
// @Tags Schedule Instances
// @Accept json
// @Produce json
// @Param id path string true "Instance ID"
// @Param payload body dto.UpdateInstanceStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /schedule-instances/{id}/status [patch]
func (h *ScheduleInstanceHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateInstanceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}
	instance, err := h.resolver.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instance, nil)
}

// ListAlerts godoc
// @Summary List departure alerts for an instance
// @Tags Schedule Instances
// @Produce json
// @Param id path string true "Instance ID"
// @Success 200 {object} response.Envelope
// @Router /schedule-instances/{id}/alerts [get]
func (h *ScheduleInstanceHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.notifier.ListAlerts(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, alerts, nil)
}
