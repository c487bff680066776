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

type driverRepository interface {
	List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, int, error)
	FindByID(ctx context.Context, id string) (*models.Driver, error)
	ExistsByLicense(ctx context.Context, license, excludeID string) (bool, error)
	Create(ctx context.Context, driver *models.Driver) error
	Update(ctx context.Context, driver *models.Driver) error
	Deactivate(ctx context.Context, id string) error
}

// CreateDriverRequest represents payload for creating drivers.
type CreateDriverRequest struct {
	FullName      string  `json:"full_name" validate:"required"`
	LicenseNumber string  `json:"license_number" validate:"required,max=50"`
	Phone         *string `json:"phone" validate:"omitempty,max=50"`
	Email         *string `json:"email" validate:"omitempty,email"`
}

// UpdateDriverRequest represents payload for updating drivers.
type UpdateDriverRequest struct {
	FullName      string  `json:"full_name" validate:"required"`
	LicenseNumber string  `json:"license_number" validate:"required,max=50"`
	Phone         *string `json:"phone" validate:"omitempty,max=50"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Active        *bool   `json:"active"`
}

// DriverService orchestrates driver operations.
type DriverService struct {
	repo      driverRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDriverService constructs a DriverService.
func NewDriverService(repo driverRepository, validate *validator.Validate, logger *zap.Logger) *DriverService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriverService{repo: repo, validator: validate, logger: logger}
}

// List returns drivers plus pagination data.
func (s *DriverService) List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, *models.Pagination, error) {
	drivers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drivers")
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
	return drivers, pagination, nil
}

// Get returns a driver by id.
func (s *DriverService) Get(ctx context.Context, id string) (*models.Driver, error) {
	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}
	return driver, nil
}

// Create registers a new driver record.
func (s *DriverService) Create(ctx context.Context, req CreateDriverRequest) (*models.Driver, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid driver payload")
	}
	if err := s.ensureUniqueLicense(ctx, req.LicenseNumber, ""); err != nil {
		return nil, err
	}

	driver := &models.Driver{
		FullName:      strings.TrimSpace(req.FullName),
		LicenseNumber: strings.TrimSpace(req.LicenseNumber),
		Active:        true,
	}
	driver.Phone = normalizeOptional(req.Phone)
	driver.Email = normalizeOptional(req.Email)

	if err := s.repo.Create(ctx, driver); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create driver")
	}
	return driver, nil
}

// Update modifies an existing driver.
func (s *DriverService) Update(ctx context.Context, id string, req UpdateDriverRequest) (*models.Driver, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid driver payload")
	}

	driver, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}

	if err := s.ensureUniqueLicense(ctx, req.LicenseNumber, id); err != nil {
		return nil, err
	}

	driver.FullName = strings.TrimSpace(req.FullName)
	driver.LicenseNumber = strings.TrimSpace(req.LicenseNumber)
	driver.Phone = normalizeOptional(req.Phone)
	driver.Email = normalizeOptional(req.Email)
	if req.Active != nil {
		driver.Active = *req.Active
	}

	if err := s.repo.Update(ctx, driver); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update driver")
	}
	return driver, nil
}

// Deactivate marks a driver inactive. Instances keep referencing the driver.
func (s *DriverService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate driver")
	}
	return nil
}

func (s *DriverService) ensureUniqueLicense(ctx context.Context, license, excludeID string) error {
	exists, err := s.repo.ExistsByLicense(ctx, strings.TrimSpace(license), excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check license uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "license number already used")
	}
	return nil
}

func normalizeOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
