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

// RouteScheduleHandler wires template and resolver services to HTTP routes.
type RouteScheduleHandler struct {
	schedules *service.RouteScheduleService
	resolver  *service.ResolverService
}

// NewRouteScheduleHandler constructs a new RouteScheduleHandler.
func NewRouteScheduleHandler(schedules *service.RouteScheduleService, resolver *service.ResolverService) *RouteScheduleHandler {
	return &RouteScheduleHandler{schedules: schedules, resolver: resolver}
}

// List godoc
// @Summary List route schedules
// @Tags Route Schedules
// @Produce json
// @Param route_id query string false "Filter by route"
// @Param status query string false "Filter by status (DRAFT,ACTIVE,INACTIVE)"
// @Param from query string false "Validity window start (YYYY-MM-DD)"
// @Param to query string false "Validity window end (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /route-schedules [get]
func (h *RouteScheduleHandler) List(c *gin.Context) {
	filter := models.RouteScheduleFilter{
		RouteID:   strings.TrimSpace(c.Query("route_id")),
		Status:    strings.TrimSpace(c.Query("status")),
		SortBy:    c.Query("sort"),
		SortOrder: c.Query("order"),
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
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	schedules, pagination, err := h.schedules.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, pagination)
}

// Get godoc
// @Summary Get route schedule detail
// @Tags Route Schedules
// @Produce json
// @Param id path string true "Route Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /route-schedules/{id} [get]
func (h *RouteScheduleHandler) Get(c *gin.Context) {
	schedule, err := h.schedules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Create godoc
// @Summary Create route schedule
// @Tags Route Schedules
// @Accept json
// @Produce json
// @Param payload body service.CreateRouteScheduleRequest true "Route schedule payload"
// @Success 201 {object} response.Envelope
// @Router /route-schedules [post]
func (h *RouteScheduleHandler) Create(c *gin.Context) {
	var req service.CreateRouteScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid route schedule payload"))
		return
	}
	schedule, err := h.schedules.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, schedule)
}

// Update godoc
// @Summary Update route schedule
// @Tags Route Schedules
// @Accept json
// @Produce json
// @Param id path string true "Route Schedule ID"
// @Param payload body service.UpdateRouteScheduleRequest true "Route schedule payload"
// @Success 200 {object} response.Envelope
// @Router /route-schedules/{id} [put]
func (h *RouteScheduleHandler) Update(c *gin.Context) {
	var req service.UpdateRouteScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid route schedule payload"))
		return
	}
	schedule, err := h.schedules.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}

// Delete godoc
// @Summary Deactivate route schedule
// @Tags Route Schedules
// @Param id path string true "Route Schedule ID"
// @Success 204
// @Router /route-schedules/{id} [delete]
func (h *RouteScheduleHandler) Delete(c *gin.Context) {
	if err := h.schedules.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Resolve godoc
// @Summary Resolve a schedule instance for one date
// @Tags Route Schedules
// @Accept json
// @Produce json
// @Param id path string true "Route Schedule ID"
// @Param payload body dto.ResolveInstanceRequest true "Resolve payload"
// @Success 200 {object} response.Envelope
// @Router /route-schedules/{id}/resolve [post]
func (h *RouteScheduleHandler) Resolve(c *gin.Context) {
	var req dto.ResolveInstanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolve payload"))
		return
	}
	instance, err := h.resolver.Resolve(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, instance, nil)
}
