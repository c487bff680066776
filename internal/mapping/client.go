package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/pkg/config"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

// Result is one distance computation returned by the matrix provider.
type Result struct {
	DistanceKm      float64
	DurationMinutes float64
	// TrafficFactor is the ratio of trafficked travel time to free-flow time.
	TrafficFactor float64
}

// Client calls the external distance matrix API. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewClient builds a matrix API client from config.
func NewClient(cfg config.MappingConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		logger:     logger,
	}
}

type matrixResponse struct {
	DistanceMeters           float64 `json:"distance_meters"`
	DurationSeconds          float64 `json:"duration_seconds"`
	DurationInTrafficSeconds float64 `json:"duration_in_traffic_seconds"`
}

// Distance fetches distance, travel time and traffic factor between two
// coordinate pairs.
func (c *Client) Distance(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*Result, error) {
	endpoint := fmt.Sprintf("%s/v1/matrix", c.baseURL)

	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", fromLat, fromLng))
	params.Set("destination", fmt.Sprintf("%f,%f", toLat, toLng))
	params.Set("profile", "driving-truck")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExternalService.Code, appErrors.ErrExternalService.Status, "build mapping request")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExternalService.Code, appErrors.ErrExternalService.Status, "mapping API unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("mapping API non-success", zap.Int("status", resp.StatusCode))
		return nil, appErrors.Clone(appErrors.ErrExternalService, fmt.Sprintf("mapping API returned status %d", resp.StatusCode))
	}

	var payload matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrExternalService.Code, appErrors.ErrExternalService.Status, "malformed mapping API payload")
	}
	if payload.DurationSeconds <= 0 {
		return nil, appErrors.Clone(appErrors.ErrExternalService, "mapping API payload missing duration")
	}

	trafficked := payload.DurationInTrafficSeconds
	if trafficked <= 0 {
		trafficked = payload.DurationSeconds
	}

	return &Result{
		DistanceKm:      payload.DistanceMeters / 1000,
		DurationMinutes: trafficked / 60,
		TrafficFactor:   trafficked / payload.DurationSeconds,
	}, nil
}
