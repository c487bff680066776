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

type vehicleRepository interface {
	List(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, int, error)
	FindByID(ctx context.Context, id string) (*models.Vehicle, error)
	ExistsByPlate(ctx context.Context, plate, excludeID string) (bool, error)
	Create(ctx context.Context, vehicle *models.Vehicle) error
	Update(ctx context.Context, vehicle *models.Vehicle) error
	Deactivate(ctx context.Context, id string) error
}

// CreateVehicleRequest represents payload for creating vehicles.
type CreateVehicleRequest struct {
	PlateNumber string `json:"plate_number" validate:"required,max=20"`
	Model       string `json:"model" validate:"required,max=100"`
	CapacityKg  int    `json:"capacity_kg" validate:"required,gt=0"`
}

// UpdateVehicleRequest represents payload for updating vehicles.
type UpdateVehicleRequest struct {
	PlateNumber string `json:"plate_number" validate:"required,max=20"`
	Model       string `json:"model" validate:"required,max=100"`
	CapacityKg  int    `json:"capacity_kg" validate:"required,gt=0"`
	Active      *bool  `json:"active"`
}

// VehicleService orchestrates vehicle operations.
type VehicleService struct {
	repo      vehicleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVehicleService constructs a VehicleService.
func NewVehicleService(repo vehicleRepository, validate *validator.Validate, logger *zap.Logger) *VehicleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VehicleService{repo: repo, validator: validate, logger: logger}
}

// List returns vehicles plus pagination data.
func (s *VehicleService) List(ctx context.Context, filter models.VehicleFilter) ([]models.Vehicle, *models.Pagination, error) {
	vehicles, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vehicles")
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
	return vehicles, pagination, nil
}

// Get returns a vehicle by id.
func (s *VehicleService) Get(ctx context.Context, id string) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	return vehicle, nil
}

// Create registers a new vehicle record.
func (s *VehicleService) Create(ctx context.Context, req CreateVehicleRequest) (*models.Vehicle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle payload")
	}
	if err := s.ensureUniquePlate(ctx, req.PlateNumber, ""); err != nil {
		return nil, err
	}

	vehicle := &models.Vehicle{
		PlateNumber: strings.ToUpper(strings.TrimSpace(req.PlateNumber)),
		Model:       strings.TrimSpace(req.Model),
		CapacityKg:  req.CapacityKg,
		Active:      true,
	}

	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create vehicle")
	}
	return vehicle, nil
}

// Update modifies an existing vehicle.
func (s *VehicleService) Update(ctx context.Context, id string, req UpdateVehicleRequest) (*models.Vehicle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid vehicle payload")
	}

	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}

	if err := s.ensureUniquePlate(ctx, req.PlateNumber, id); err != nil {
		return nil, err
	}

	vehicle.PlateNumber = strings.ToUpper(strings.TrimSpace(req.PlateNumber))
	vehicle.Model = strings.TrimSpace(req.Model)
	vehicle.CapacityKg = req.CapacityKg
	if req.Active != nil {
		vehicle.Active = *req.Active
	}

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update vehicle")
	}
	return vehicle, nil
}

// Deactivate marks a vehicle inactive.
func (s *VehicleService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate vehicle")
	}
	return nil
}

func (s *VehicleService) ensureUniquePlate(ctx context.Context, plate, excludeID string) error {
	exists, err := s.repo.ExistsByPlate(ctx, strings.ToUpper(strings.TrimSpace(plate)), excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check plate uniqueness")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "plate number already used")
	}
	return nil
}
