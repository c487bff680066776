package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/dto"
	"github.com/fleetline/fleetline-api/pkg/config"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

type boardSourceMock struct {
	rows      []dto.BoardRow
	listCalls int
	refreshed int
}

func (m *boardSourceMock) ListRange(ctx context.Context, from, to time.Time) ([]dto.BoardRow, error) {
	m.listCalls++
	return m.rows, nil
}

func (m *boardSourceMock) Refresh(ctx context.Context) error {
	m.refreshed++
	return nil
}

type boardKVMock struct {
	hit  []dto.BoardRow
	sets map[string]time.Duration
}

func (m *boardKVMock) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if m.hit == nil {
		return false, nil
	}
	*dest.(*[]dto.BoardRow) = m.hit
	return true, nil
}

func (m *boardKVMock) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.sets == nil {
		m.sets = make(map[string]time.Duration)
	}
	m.sets[key] = ttl
	return nil
}

func sampleBoardRow() dto.BoardRow {
	driver := "Budi Santoso"
	plate := "B 9012 XY"
	return dto.BoardRow{
		InstanceID:          "i1",
		RouteCode:           "JKT-BDG",
		RouteName:           "Jakarta to Bandung",
		OccurrenceDate:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StandbyDate:         time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StandbyTime:         "20:00",
		DepartureDate:       time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		DepartureTime:       "06:00",
		DriverName:          &driver,
		VehiclePlate:        &plate,
		Status:              "SCHEDULED",
		IsCrossDayDeparture: true,
	}
}

func boardWindow() (time.Time, time.Time) {
	return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
}

func TestBoardListCachesResult(t *testing.T) {
	source := &boardSourceMock{rows: []dto.BoardRow{sampleBoardRow()}}
	cache := &boardKVMock{}
	svc := NewBoardService(source, cache, config.BoardConfig{CacheTTL: time.Minute}, zap.NewNop())

	from, to := boardWindow()
	rows, err := svc.List(context.Background(), from, to)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, source.listCalls)
	assert.Equal(t, time.Minute, cache.sets["board:2026-03-02:2026-03-08"])
}

func TestBoardListServedFromCache(t *testing.T) {
	source := &boardSourceMock{}
	cache := &boardKVMock{hit: []dto.BoardRow{sampleBoardRow()}}
	svc := NewBoardService(source, cache, config.BoardConfig{}, zap.NewNop())

	from, to := boardWindow()
	rows, err := svc.List(context.Background(), from, to)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Zero(t, source.listCalls)
}

func TestBoardListInvertedRange(t *testing.T) {
	svc := NewBoardService(&boardSourceMock{}, nil, config.BoardConfig{}, zap.NewNop())

	from, to := boardWindow()
	_, err := svc.List(context.Background(), to, from)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBoardRefresh(t *testing.T) {
	source := &boardSourceMock{}
	svc := NewBoardService(source, nil, config.BoardConfig{}, zap.NewNop())

	require.NoError(t, svc.Refresh(context.Background()))
	assert.Equal(t, 1, source.refreshed)
}

func TestBoardExportCSV(t *testing.T) {
	source := &boardSourceMock{rows: []dto.BoardRow{sampleBoardRow()}}
	svc := NewBoardService(source, nil, config.BoardConfig{}, zap.NewNop())

	from, to := boardWindow()
	payload, contentType, err := svc.Export(context.Background(), from, to, "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", contentType)
	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "Date,Route,Standby,Departure,Driver,Vehicle,Status,Override"))
	assert.Contains(t, body, "JKT-BDG Jakarta to Bandung")
	// Cross-day departures are flagged in the rendered cell.
	assert.Contains(t, body, "2026-03-03 06:00 (+1d)")
}

func TestBoardExportPDF(t *testing.T) {
	source := &boardSourceMock{rows: []dto.BoardRow{sampleBoardRow()}}
	svc := NewBoardService(source, nil, config.BoardConfig{}, zap.NewNop())

	from, to := boardWindow()
	payload, contentType, err := svc.Export(context.Background(), from, to, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.NotEmpty(t, payload)
}

func TestBoardExportUnsupportedFormat(t *testing.T) {
	svc := NewBoardService(&boardSourceMock{}, nil, config.BoardConfig{}, zap.NewNop())

	from, to := boardWindow()
	_, _, err := svc.Export(context.Background(), from, to, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
