package service

import (
	"context"
	"database/sql"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/internal/mapping"
	"github.com/fleetline/fleetline-api/internal/models"
	"github.com/fleetline/fleetline-api/pkg/config"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

type distanceCache interface {
	FindFresh(ctx context.Context, fromLat, fromLng, toLat, toLng float64, calculatedAfter time.Time) (*models.RouteDistance, error)
	Upsert(ctx context.Context, distance *models.RouteDistance) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type distanceRouteLookup interface {
	FindByID(ctx context.Context, id string) (*models.Route, error)
}

type matrixProvider interface {
	Distance(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*mapping.Result, error)
}

// DistanceService resolves route distances cache-first against the mapping
// provider. Coordinates are rounded before lookup so nearby points share one
// cache entry.
type DistanceService struct {
	routes    distanceRouteLookup
	cache     distanceCache
	provider  matrixProvider
	cfg       config.MappingConfig
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewDistanceService constructs a DistanceService.
func NewDistanceService(routes distanceRouteLookup, cache distanceCache, provider matrixProvider, cfg config.MappingConfig, validate *validator.Validate, logger *zap.Logger) *DistanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheMaxAge <= 0 {
		cfg.CacheMaxAge = 7 * 24 * time.Hour
	}
	if cfg.RoundDecimals <= 0 {
		cfg.RoundDecimals = 4
	}
	return &DistanceService{
		routes:    routes,
		cache:     cache,
		provider:  provider,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetForRoute returns the distance profile for one route, serving from cache
// when a fresh entry exists and refresh is not forced.
func (s *DistanceService) GetForRoute(ctx context.Context, routeID string, refresh bool) (*dto.DistanceResponse, error) {
	route, err := s.routes.FindByID(ctx, routeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "route not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load route")
	}

	response, err := s.lookup(ctx, route.OriginLat, route.OriginLng, route.DestinationLat, route.DestinationLng, refresh)
	if err != nil {
		return nil, err
	}
	response.RouteID = route.ID
	return response, nil
}

// Batch resolves several routes at once. A failure on one route is reported in
// the result and never aborts the rest.
func (s *DistanceService) Batch(ctx context.Context, req dto.BatchDistancesRequest) (*dto.BatchDistancesResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	result := &dto.BatchDistancesResult{
		Results: make(map[string]dto.DistanceResponse, len(req.RouteIDs)),
		Errors:  make(map[string]string),
	}
	for _, routeID := range req.RouteIDs {
		response, err := s.GetForRoute(ctx, routeID, req.Refresh)
		if err != nil {
			result.Errors[routeID] = appErrors.FromError(err).Message
			continue
		}
		result.Results[routeID] = *response
	}
	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result, nil
}

// Prune drops cache entries older than the configured freshness window and
// returns the number of rows removed.
func (s *DistanceService) Prune(ctx context.Context) (int64, error) {
	removed, err := s.cache.PruneOlderThan(ctx, s.now().Add(-s.cfg.CacheMaxAge))
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prune distance cache")
	}
	return removed, nil
}

func (s *DistanceService) lookup(ctx context.Context, fromLat, fromLng, toLat, toLng float64, refresh bool) (*dto.DistanceResponse, error) {
	fromLat = roundCoordinate(fromLat, s.cfg.RoundDecimals)
	fromLng = roundCoordinate(fromLng, s.cfg.RoundDecimals)
	toLat = roundCoordinate(toLat, s.cfg.RoundDecimals)
	toLng = roundCoordinate(toLng, s.cfg.RoundDecimals)

	if !refresh {
		cached, err := s.cache.FindFresh(ctx, fromLat, fromLng, toLat, toLng, s.now().Add(-s.cfg.CacheMaxAge))
		if err != nil {
			s.logger.Warn("distance cache lookup failed", zap.Error(err))
		} else if cached != nil {
			return &dto.DistanceResponse{
				DistanceKm:      cached.DistanceKm,
				DurationMinutes: cached.DurationMinutes,
				TrafficFactor:   cached.TrafficFactor,
				CalculatedAt:    cached.CalculatedAt,
				FromCache:       true,
			}, nil
		}
	}

	computed, err := s.provider.Distance(ctx, fromLat, fromLng, toLat, toLng)
	if err != nil {
		return nil, err
	}

	entry := &models.RouteDistance{
		FromLat:         fromLat,
		FromLng:         fromLng,
		ToLat:           toLat,
		ToLng:           toLng,
		DistanceKm:      computed.DistanceKm,
		DurationMinutes: computed.DurationMinutes,
		TrafficFactor:   computed.TrafficFactor,
		CalculatedAt:    s.now(),
	}
	// Cache write failures degrade to a recompute next time, never an error.
	if err := s.cache.Upsert(ctx, entry); err != nil {
		s.logger.Warn("distance cache write failed", zap.Error(err))
	}

	return &dto.DistanceResponse{
		DistanceKm:      entry.DistanceKm,
		DurationMinutes: entry.DurationMinutes,
		TrafficFactor:   entry.TrafficFactor,
		CalculatedAt:    entry.CalculatedAt,
		FromCache:       false,
	}, nil
}

func roundCoordinate(value float64, decimals int) float64 {
	factor := math.Pow10(decimals)
	return math.Round(value*factor) / factor
}
