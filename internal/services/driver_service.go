package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/database"
	"github.com/isdelr/haulboard-be/internal/models"
)

// DriverServiceProvider defines the interface for driver services.
type DriverServiceProvider interface {
	List(ctx context.Context, scope models.Scope, status models.DriverStatus) ([]models.Driver, error)
	Get(ctx context.Context, scope models.Scope, id string) (models.Driver, error)
	Create(ctx context.Context, ownerID string, input DriverInput) (models.Driver, error)
	Update(ctx context.Context, scope models.Scope, id string, input DriverInput) (models.Driver, error)
	Delete(ctx context.Context, scope models.Scope, id string) error
	CountByStatus(ctx context.Context, scope models.Scope) (map[models.DriverStatus]int, error)
}

// DriverInput carries the editable driver fields.
type DriverInput struct {
	Name          string
	Phone         string
	LicenseNumber string
	Status        models.DriverStatus
}

func (in DriverInput) validate() (DriverInput, error) {
	var err error
	if in.Name, err = requireText("name", in.Name); err != nil {
		return in, err
	}
	if in.LicenseNumber, err = requireText("licenseNumber", in.LicenseNumber); err != nil {
		return in, err
	}
	if in.Status == "" {
		in.Status = models.DriverAvailable
	}
	if !in.Status.Valid() {
		return in, apperr.Validation("status is invalid")
	}
	return in, nil
}

// DriverService manages the drivers owned by carriers and companies.
type DriverService struct {
	db  *database.DB
	now func() time.Time
}

// NewDriverService creates a new DriverService.
func NewDriverService(db *database.DB) *DriverService {
	return &DriverService{db: db, now: time.Now}
}

const driverColumns = "id, owner_id, name, phone, license_number, status, created_at, updated_at"

func (s *DriverService) List(ctx context.Context, scope models.Scope, status models.DriverStatus) ([]models.Driver, error) {
	clause, args := scopeClause(scope, "owner_id")
	if status != "" {
		clause += " AND status = ?"
		args = append(args, string(status))
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+driverColumns+" FROM drivers WHERE 1 = 1"+clause+" ORDER BY name, id", args...)
	if err != nil {
		return nil, apperr.Internal("list drivers", err)
	}
	defer rows.Close()

	drivers := []models.Driver{}
	for rows.Next() {
		driver, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("list drivers", err)
	}
	return drivers, nil
}

func (s *DriverService) Get(ctx context.Context, scope models.Scope, id string) (models.Driver, error) {
	clause, args := scopeClause(scope, "owner_id")
	row := s.db.QueryRowContext(ctx,
		"SELECT "+driverColumns+" FROM drivers WHERE id = ?"+clause, append([]any{id}, args...)...)
	return scanDriver(row)
}

func (s *DriverService) Create(ctx context.Context, ownerID string, input DriverInput) (models.Driver, error) {
	input, err := input.validate()
	if err != nil {
		return models.Driver{}, err
	}

	now := s.now().UTC()
	driver := models.Driver{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Name:          input.Name,
		Phone:         input.Phone,
		LicenseNumber: input.LicenseNumber,
		Status:        input.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO drivers ("+driverColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		driver.ID, driver.OwnerID, driver.Name, driver.Phone, driver.LicenseNumber, string(driver.Status),
		driver.CreatedAt, driver.UpdatedAt)
	if err != nil {
		return models.Driver{}, apperr.Internal("insert driver", err)
	}
	return driver, nil
}

func (s *DriverService) Update(ctx context.Context, scope models.Scope, id string, input DriverInput) (models.Driver, error) {
	input, err := input.validate()
	if err != nil {
		return models.Driver{}, err
	}

	clause, scopeArgs := scopeClause(scope, "owner_id")
	args := append([]any{input.Name, input.Phone, input.LicenseNumber, string(input.Status), s.now().UTC(), id}, scopeArgs...)
	res, err := s.db.ExecContext(ctx,
		"UPDATE drivers SET name = ?, phone = ?, license_number = ?, status = ?, updated_at = ? WHERE id = ?"+clause, args...)
	if err != nil {
		return models.Driver{}, apperr.Internal("update driver", err)
	}
	if err := requireAffected(res, "driver not found"); err != nil {
		return models.Driver{}, err
	}
	return s.Get(ctx, scope, id)
}

// Delete removes a driver. Shipments they were assigned to keep going without a driver.
func (s *DriverService) Delete(ctx context.Context, scope models.Scope, id string) error {
	clause, scopeArgs := scopeClause(scope, "owner_id")
	res, err := s.db.ExecContext(ctx, "DELETE FROM drivers WHERE id = ?"+clause, append([]any{id}, scopeArgs...)...)
	if err != nil {
		return apperr.Internal("delete driver", err)
	}
	return requireAffected(res, "driver not found")
}

func (s *DriverService) CountByStatus(ctx context.Context, scope models.Scope) (map[models.DriverStatus]int, error) {
	clause, args := scopeClause(scope, "owner_id")
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM drivers WHERE 1 = 1"+clause+" GROUP BY status", args...)
	if err != nil {
		return nil, apperr.Internal("count drivers by status", err)
	}
	defer rows.Close()

	counts := map[models.DriverStatus]int{
		models.DriverAvailable: 0,
		models.DriverOnRoute:   0,
		models.DriverOffDuty:   0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, apperr.Internal("scan driver count", err)
		}
		counts[models.DriverStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("count drivers by status", err)
	}
	return counts, nil
}

func scanDriver(scanner interface{ Scan(...any) error }) (models.Driver, error) {
	var driver models.Driver
	var status string
	err := scanner.Scan(&driver.ID, &driver.OwnerID, &driver.Name, &driver.Phone, &driver.LicenseNumber,
		&status, &driver.CreatedAt, &driver.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Driver{}, apperr.NotFound("driver not found")
		}
		return models.Driver{}, apperr.Internal("scan driver", err)
	}
	driver.Status = models.DriverStatus(status)
	return driver, nil
}
