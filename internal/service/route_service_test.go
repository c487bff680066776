package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetline/fleetline-api/internal/models"
	appErrors "github.com/fleetline/fleetline-api/pkg/errors"
)

const testCustomerID = "3f1c4a6e-8b2d-4c5e-9f7a-1d2e3f4a5b6c"

type routeRepoMock struct {
	items map[string]*models.Route
}

func newRouteRepoMock() *routeRepoMock {
	return &routeRepoMock{items: make(map[string]*models.Route)}
}

func (m *routeRepoMock) List(ctx context.Context, filter models.RouteFilter) ([]models.Route, int, error) {
	var out []models.Route
	for _, route := range m.items {
		out = append(out, *route)
	}
	return out, len(out), nil
}

func (m *routeRepoMock) FindByID(ctx context.Context, id string) (*models.Route, error) {
	if route, ok := m.items[id]; ok {
		copied := *route
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *routeRepoMock) ExistsByCode(ctx context.Context, code, excludeID string) (bool, error) {
	for id, route := range m.items {
		if route.Code == code && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *routeRepoMock) Create(ctx context.Context, route *models.Route) error {
	if route.ID == "" {
		route.ID = "route-1"
	}
	m.items[route.ID] = route
	return nil
}

func (m *routeRepoMock) Update(ctx context.Context, route *models.Route) error {
	m.items[route.ID] = route
	return nil
}

func (m *routeRepoMock) Deactivate(ctx context.Context, id string) error {
	return nil
}

type customerLookupMock struct {
	customers map[string]*models.Customer
}

func (m *customerLookupMock) FindByID(ctx context.Context, id string) (*models.Customer, error) {
	if customer, ok := m.customers[id]; ok {
		return customer, nil
	}
	return nil, sql.ErrNoRows
}

func validRouteRequest() CreateRouteRequest {
	return CreateRouteRequest{
		Code:            "jkt-bdg",
		Name:            "Jakarta to Bandung",
		OriginName:      "Jakarta",
		OriginLat:       -6.2088,
		OriginLng:       106.8456,
		DestinationName: "Bandung",
		DestinationLat:  -6.9147,
		DestinationLng:  107.6098,
	}
}

func TestRouteServiceCreateUppercasesCode(t *testing.T) {
	repo := newRouteRepoMock()
	svc := NewRouteService(repo, &customerLookupMock{}, validator.New(), zap.NewNop())

	route, err := svc.Create(context.Background(), validRouteRequest())
	require.NoError(t, err)
	assert.Equal(t, "JKT-BDG", route.Code)
	assert.True(t, route.Active)
}

func TestRouteServiceCreateDuplicateCode(t *testing.T) {
	repo := newRouteRepoMock()
	repo.items["r1"] = &models.Route{ID: "r1", Code: "JKT-BDG"}
	svc := NewRouteService(repo, &customerLookupMock{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), validRouteRequest())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRouteServiceCreateUnknownCustomer(t *testing.T) {
	svc := NewRouteService(newRouteRepoMock(), &customerLookupMock{}, validator.New(), zap.NewNop())

	req := validRouteRequest()
	req.CustomerID = strPtr(testCustomerID)
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRouteServiceCreateRejectsBadCoordinates(t *testing.T) {
	svc := NewRouteService(newRouteRepoMock(), &customerLookupMock{}, validator.New(), zap.NewNop())

	req := validRouteRequest()
	req.OriginLat = 123.4
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
