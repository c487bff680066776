package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/models"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

type routeRepository interface {
	List(ctx context.Context, filter models.RouteFilter) ([]models.Route, int, error)
	FindByID(ctx context.Context, id string) (*models.Route, error)
	ExistsByCode(ctx context.Context, code, excludeID string) (bool, error)
	Create(ctx context.Context, route *models.Route) error
	Update(ctx context.Context, route *models.Route) error
	Deactivate(ctx context.Context, id string) error
}

type routeCustomerLookup interface {
	FindByID(ctx context.Context, id string) (*models.Customer, error)
}

// CreateRouteRequest represents payload for creating routes.
type CreateRouteRequest struct {
	Code            string  `json:"code" validate:"required,max=30"`
	Name            string  `json:"name" validate:"required,max=200"`
	CustomerID      *string `json:"customer_id" validate:"omitempty,uuid4"`
	OriginName      string  `json:"origin_name" validate:"required,max=200"`
	OriginLat       float64 `json:"origin_lat" validate:"gte=-90,lte=90"`
	OriginLng       float64 `json:"origin_lng" validate:"gte=-180,lte=180"`
	DestinationName string  `json:"destination_name" validate:"required,max=200"`
	DestinationLat  float64 `json:"destination_lat" validate:"gte=-90,lte=90"`
	DestinationLng  float64 `json:"destination_lng" validate:"gte=-180,lte=180"`
}

// UpdateRouteRequest represents payload for updating routes.
type UpdateRouteRequest struct {
	Code            string  `json:"code" validate:"required,max=30"`
	Name            string  `json:"name" validate:"required,max=200"`
	CustomerID      *string `json:"customer_id" validate:"omitempty,uuid4"`
	OriginName      string  `json:"origin_name" validate:"required,max=200"`
	OriginLat       float64 `json:"origin_lat" validate:"gte=-90,lte=90"`
	OriginLng       float64 `json:"origin_lng" validate:"gte=-180,lte=180"`
	DestinationName string  `json:"destination_name" validate:"required,max=200"`
	DestinationLat  float64 `json:"destination_lat" validate:"gte=-90,lte=90"`
	DestinationLng  float64 `json:"destination_lng" validate:"gte=-180,lte=180"`
	Active          *bool   `json:"active"`
}

// RouteService orchestrates route operations.
type RouteService struct {
	repo      routeRepository
	customers routeCustomerLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRouteService constructs a RouteService.
func NewRouteService(repo routeRepository, customers routeCustomerLookup, validate *validator.Validate, logger *zap.Logger) *RouteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RouteService{repo: repo, customers: customers, validator: validate, logger: logger}
}

// List returns routes plus pagination data.
func (s *RouteService) List(ctx context.Context, filter models.RouteFilter) ([]models.Route, *models.Pagination, error) {
	routes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list routes")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return routes, pagination, nil
}

// Get returns a route by id.
func (s *RouteService) Get(ctx context.Context, id string) (*models.Route, error) {
	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "route not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load route")
	}
	return route, nil
}

// Create registers a new route record.
func (s *RouteService) Create(ctx context.Context, req CreateRouteRequest) (*models.Route, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid route payload")
	}
	if err := s.ensureUniqueCode(ctx, req.Code, ""); err != nil {
		return nil, err
	}
	if err := s.ensureCustomerExists(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	route := &models.Route{
		Code:            strings.ToUpper(strings.TrimSpace(req.Code)),
		Name:            strings.TrimSpace(req.Name),
		CustomerID:      normalizeOptional(req.CustomerID),
		OriginName:      strings.TrimSpace(req.OriginName),
		OriginLat:       req.OriginLat,
		OriginLng:       req.OriginLng,
		DestinationName: strings.TrimSpace(req.DestinationName),
		DestinationLat:  req.DestinationLat,
		DestinationLng:  req.DestinationLng,
		Active:          true,
	}

	if err := s.repo.Create(ctx, route); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create route")
	}
	return route, nil
}

// Update modifies an existing route.
func (s *RouteService) Update(ctx context.Context, id string, req UpdateRouteRequest) (*models.Route, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid route payload")
	}

	route, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "route not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load route")
	}

	if err := s.ensureUniqueCode(ctx, req.Code, id); err != nil {
		return nil, err
	}
	if err := s.ensureCustomerExists(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	route.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	route.Name = strings.TrimSpace(req.Name)
	route.CustomerID = normalizeOptional(req.CustomerID)
	route.OriginName = strings.TrimSpace(req.OriginName)
	route.OriginLat = req.OriginLat
	route.OriginLng = req.OriginLng
	route.DestinationName = strings.TrimSpace(req.DestinationName)
	route.DestinationLat = req.DestinationLat
	route.DestinationLng = req.DestinationLng
	if req.Active != nil {
		route.Active = *req.Active
	}

	if err := s.repo.Update(ctx, route); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update route")
	}
	return route, nil
}

// Deactivate marks a route inactive.
func (s *RouteService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "route not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load route")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate route")
	}
	return nil
}

func (s *RouteService) ensureUniqueCode(ctx context.Context, code, excludeID string) error {
	exists, err := s.repo.ExistsByCode(ctx, strings.ToUpper(strings.TrimSpace(code)), excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check route code uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "route code already used")
	}
	return nil
}

func (s *RouteService) ensureCustomerExists(ctx context.Context, customerID *string) error {
	if s.customers == nil || customerID == nil || strings.TrimSpace(*customerID) == "" {
		return nil
	}
	if _, err := s.customers.FindByID(ctx, *customerID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, "customer does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check customer")
	}
	return nil
}
