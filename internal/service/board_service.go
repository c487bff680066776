package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/pkg/config"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
	"github.com/fleetline/fleetline-api/pkg/export"
)

type boardSource interface {
	ListRange(ctx context.Context, from, to time.Time) ([]dto.BoardRow, error)
	Refresh(ctx context.Context) error
}

type boardCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// BoardService serves the denormalized schedule board backed by a short-lived
// Redis cache in front of the materialized view.
type BoardService struct {
	repo   boardSource
	cache  boardCache
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	cfg    config.BoardConfig
	logger *zap.Logger
}

// NewBoardService constructs a BoardService.
func NewBoardService(repo boardSource, cache boardCache, cfg config.BoardConfig, logger *zap.Logger) *BoardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 2 * time.Minute
	}
	return &BoardService{
		repo:   repo,
		cache:  cache,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		cfg:    cfg,
		logger: logger,
	}
}

// List returns board rows for [from, to], cache-first.
func (s *BoardService) List(ctx context.Context, from, to time.Time) ([]dto.BoardRow, error) {
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date before start date")
	}

	key := fmt.Sprintf("board:%s:%s", from.Format(dateLayout), to.Format(dateLayout))
	if s.cache != nil {
		var cached []dto.BoardRow
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.logger.Warn("board cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	rows, err := s.repo.ListRange(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule board")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rows, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("board cache write failed", zap.Error(err))
		}
	}
	return rows, nil
}

// Refresh rebuilds the materialized view.
func (s *BoardService) Refresh(ctx context.Context) error {
	if err := s.repo.Refresh(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to refresh schedule board")
	}
	return nil
}

// Export renders the board for [from, to] as csv or pdf.
func (s *BoardService) Export(ctx context.Context, from, to time.Time, format string) ([]byte, string, error) {
	rows, err := s.List(ctx, from, to)
	if err != nil {
		return nil, "", err
	}

	data := boardDataset(rows)
	switch strings.ToLower(format) {
	case "csv":
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return payload, "text/csv", nil
	case "pdf":
		title := fmt.Sprintf("Schedule Board %s to %s", from.Format(dateLayout), to.Format(dateLayout))
		payload, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func boardDataset(rows []dto.BoardRow) export.Dataset {
	headers := []string{"Date", "Route", "Standby", "Departure", "Driver", "Vehicle", "Status", "Override"}
	data := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		driver := ""
		if row.DriverName != nil {
			driver = *row.DriverName
		}
		vehicle := ""
		if row.VehiclePlate != nil {
			vehicle = *row.VehiclePlate
		}
		override := "no"
		if row.IsOverride {
			override = "yes"
		}
		departure := fmt.Sprintf("%s %s", row.DepartureDate.Format(dateLayout), row.DepartureTime)
		if row.IsCrossDayDeparture {
			departure += " (+1d)"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Date":      row.OccurrenceDate.Format(dateLayout),
			"Route":     fmt.Sprintf("%s %s", row.RouteCode, row.RouteName),
			"Standby":   fmt.Sprintf("%s %s", row.StandbyDate.Format(dateLayout), row.StandbyTime),
			"Departure": departure,
			"Driver":    driver,
			"Vehicle":   vehicle,
			"Status":    row.Status,
			"Override":  override,
		})
	}
	return data
}
