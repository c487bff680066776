package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/internal/models"
	"github.com/fleetline/fleetline-api/internal/service"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
	"github.com/fleetline/fleetline-api/pkg/response"
)

// RouteHandler wires route and distance services to HTTP routes.
type RouteHandler struct {
	routes    *service.RouteService
	distances *service.DistanceService
}

// NewRouteHandler constructs a new RouteHandler.
func NewRouteHandler(routes *service.RouteService, distances *service.DistanceService) *RouteHandler {
	return &RouteHandler{routes: routes, distances: distances}
}

// List godoc
// @Summary List routes
// @Tags Routes
// @Produce json
// @Param search query string false "Search by code/name"
// @Param customer_id query string false "Filter by customer"
// @Param active query bool false "Filter by active status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /routes [get]
func (h *RouteHandler) List(c *gin.Context) {
	filter := models.RouteFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		CustomerID: strings.TrimSpace(c.Query("customer_id")),
		Active:     boolQuery(c, "active"),
		SortBy:     c.Query("sort"),
		SortOrder:  c.Query("order"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	routes, pagination, err := h.routes.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, routes, pagination)
}

// Get godoc
// @Summary Get route detail
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Success 200 {object} response.Envelope
// @Router /routes/{id} [get]
func (h *RouteHandler) Get(c *gin.Context) {
	route, err := h.routes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, route, nil)
}

// Create godoc
// @Summary Create route
// @Tags Routes
// @Accept json
// @Produce json
// @Param payload body service.CreateRouteRequest true "Route payload"
// @Success 201 {object} response.Envelope
// @Router /routes [post]
func (h *RouteHandler) Create(c *gin.Context) {
	var req service.CreateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid route payload"))
		return
	}
	route, err := h.routes.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, route)
}

// Update godoc
// @Summary Update route
// @Tags Routes
// @Accept json
// @Produce json
// @Param id path string true "Route ID"
// @Param payload body service.UpdateRouteRequest true "Route payload"
// @Success 200 {object} response.Envelope
// @Router /routes/{id} [put]
func (h *RouteHandler) Update(c *gin.Context) {
	var req service.UpdateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid route payload"))
		return
	}
	route, err := h.routes.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, route, nil)
}

// Delete godoc
// @Summary Deactivate route
// @Tags Routes
// @Param id path string true "Route ID"
// @Success 204
// @Router /routes/{id} [delete]
func (h *RouteHandler) Delete(c *gin.Context) {
	if err := h.routes.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetDistance godoc
// @Summary Get route distance profile
// @Tags Routes
// @Produce json
// @Param id path string true "Route ID"
// @Param refresh query bool false "Force recomputation"
// @Success 200 {object} response.Envelope
// @Router /routes/{id}/distance [get]
func (h *RouteHandler) GetDistance(c *gin.Context) {
	refresh := strings.EqualFold(c.Query("refresh"), "true")
	distance, err := h.distances.GetForRoute(c.Request.Context(), c.Param("id"), refresh)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, distance, nil)
}

// BatchDistances godoc
// @Summary Compute distances for several routes
// @Tags Routes
// @Accept json
// @Produce json
// @Param payload body dto.BatchDistancesRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Router /routes/distances/batch [post]
func (h *RouteHandler) BatchDistances(c *gin.Context) {
	var req dto.BatchDistancesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}
	result, err := h.distances.Batch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// PruneDistances godoc
// @Summary Prune stale distance cache entries
// @Tags Routes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /routes/distances/prune [post]
func (h *RouteHandler) PruneDistances(c *gin.Context) {
	removed, err := h.distances.Prune(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}
