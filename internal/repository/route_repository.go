package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fleetline/fleetline-api/internal/models"
)

// RouteRepository manages persistence for routes.
type RouteRepository struct {
	db *sqlx.DB
}

// NewRouteRepository constructs a RouteRepository.
func NewRouteRepository(db *sqlx.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

const routeColumns = "id, code, name, customer_id, origin_name, origin_lat, origin_lng, destination_name, destination_lat, destination_lng, active, created_at, updated_at"

// List returns routes matching filters along with total count.
func (r *RouteRepository) List(ctx context.Context, filter models.RouteFilter) ([]models.Route, int, error) {
	base := "FROM routes WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.CustomerID != "" {
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)+1))
		args = append(args, filter.CustomerID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(code) LIKE $%d OR LOWER(name) LIKE $%d OR LOWER(origin_name) LIKE $%d OR LOWER(destination_name) LIKE $%d)", len(args)+1, len(args)+1, len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "code"
	}
	allowedSorts := map[string]string{
		"code":       "code",
		"name":       "name",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "code"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", routeColumns, base, column, order, size, offset)
	var routes []models.Route
	if err := r.db.SelectContext(ctx, &routes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list routes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count routes: %w", err)
	}

	return routes, total, nil
}

// FindByID fetches a route by ID.
func (r *RouteRepository) FindByID(ctx context.Context, id string) (*models.Route, error) {
	query := fmt.Sprintf("SELECT %s FROM routes WHERE id = $1", routeColumns)
	var route models.Route
	if err := r.db.GetContext(ctx, &route, query, id); err != nil {
		return nil, err
	}
	return &route, nil
}

// ExistsByCode checks if another route uses the same code.
func (r *RouteRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM routes WHERE LOWER(code) = LOWER($1)"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check route code: %w", err)
	}
	return true, nil
}

// Create inserts a new route record.
func (r *RouteRepository) Create(ctx context.Context, route *models.Route) error {
	if route.ID == "" {
		route.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if route.CreatedAt.IsZero() {
		route.CreatedAt = now
	}
	route.UpdatedAt = now

	const query = `INSERT INTO routes (id, code, name, customer_id, origin_name, origin_lat, origin_lng, destination_name, destination_lat, destination_lng, active, created_at, updated_at)
		VALUES (:id, :code, :name, :customer_id, :origin_name, :origin_lat, :origin_lng, :destination_name, :destination_lat, :destination_lng, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, route); err != nil {
		return fmt.Errorf("create route: %w", err)
	}
	return nil
}

// Update modifies an existing route record.
func (r *RouteRepository) Update(ctx context.Context, route *models.Route) error {
	route.UpdatedAt = time.Now().UTC()
	const query = `UPDATE routes SET code = :code, name = :name, customer_id = :customer_id, origin_name = :origin_name, origin_lat = :origin_lat, origin_lng = :origin_lng, destination_name = :destination_name, destination_lat = :destination_lat, destination_lng = :destination_lng, active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, route); err != nil {
		return fmt.Errorf("update route: %w", err)
	}
	return nil
}

// Deactivate sets a route's active flag to false.
func (r *RouteRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE routes SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate route: %w", err)
	}
	return nil
}
