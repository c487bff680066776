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

type driverRepoMock struct {
	items       map[string]*models.Driver
	deactivated []string
}

func newDriverRepoMockStore() *driverRepoMock {
	return &driverRepoMock{items: make(map[string]*models.Driver)}
}

func (m *driverRepoMock) List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, int, error) {
	var out []models.Driver
	for _, driver := range m.items {
		out = append(out, *driver)
	}
	return out, len(out), nil
}

func (m *driverRepoMock) FindByID(ctx context.Context, id string) (*models.Driver, error) {
	if driver, ok := m.items[id]; ok {
		copied := *driver
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *driverRepoMock) ExistsByLicense(ctx context.Context, license, excludeID string) (bool, error) {
	for id, driver := range m.items {
		if driver.LicenseNumber == license && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *driverRepoMock) Create(ctx context.Context, driver *models.Driver) error {
	if driver.ID == "" {
		driver.ID = "driver-1"
	}
	m.items[driver.ID] = driver
	return nil
}

func (m *driverRepoMock) Update(ctx context.Context, driver *models.Driver) error {
	m.items[driver.ID] = driver
	return nil
}

func (m *driverRepoMock) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	return nil
}

func TestDriverServiceCreate(t *testing.T) {
	repo := newDriverRepoMockStore()
	svc := NewDriverService(repo, validator.New(), zap.NewNop())

	driver, err := svc.Create(context.Background(), CreateDriverRequest{
		FullName:      "  Budi Santoso ",
		LicenseNumber: "SIM-B2-001",
		Phone:         strPtr("  "),
	})
	require.NoError(t, err)

	assert.Equal(t, "Budi Santoso", driver.FullName)
	assert.True(t, driver.Active)
	assert.Nil(t, driver.Phone)
	assert.Len(t, repo.items, 1)
}

func TestDriverServiceCreateDuplicateLicense(t *testing.T) {
	repo := newDriverRepoMockStore()
	repo.items["d1"] = &models.Driver{ID: "d1", LicenseNumber: "SIM-B2-001"}
	svc := NewDriverService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateDriverRequest{FullName: "Budi", LicenseNumber: "SIM-B2-001"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestDriverServiceCreateInvalidEmail(t *testing.T) {
	svc := NewDriverService(newDriverRepoMockStore(), validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateDriverRequest{
		FullName:      "Budi",
		LicenseNumber: "SIM-B2-001",
		Email:         strPtr("not-an-email"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDriverServiceUpdateNotFound(t *testing.T) {
	svc := NewDriverService(newDriverRepoMockStore(), validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "missing", UpdateDriverRequest{FullName: "Budi", LicenseNumber: "SIM-B2-001"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDriverServiceUpdateTogglesActive(t *testing.T) {
	repo := newDriverRepoMockStore()
	repo.items["d1"] = &models.Driver{ID: "d1", FullName: "Budi", LicenseNumber: "SIM-B2-001", Active: true}
	svc := NewDriverService(repo, validator.New(), zap.NewNop())

	inactive := false
	driver, err := svc.Update(context.Background(), "d1", UpdateDriverRequest{
		FullName:      "Budi Santoso",
		LicenseNumber: "SIM-B2-001",
		Active:        &inactive,
	})
	require.NoError(t, err)
	assert.False(t, driver.Active)
	assert.Equal(t, "Budi Santoso", driver.FullName)
}

func TestDriverServiceDeactivate(t *testing.T) {
	repo := newDriverRepoMockStore()
	repo.items["d1"] = &models.Driver{ID: "d1", Active: true}
	svc := NewDriverService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.Deactivate(context.Background(), "d1"))
	assert.Equal(t, []string{"d1"}, repo.deactivated)

	err := svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
