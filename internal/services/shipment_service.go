package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/haulboard-be/internal/apperr"
	"github.com/isdelr/haulboard-be/internal/database"
	"github.com/isdelr/haulboard-be/internal/models"
	"github.com/rs/zerolog/log"
)

// ShipmentServiceProvider defines the interface for shipment services.
type ShipmentServiceProvider interface {
	List(ctx context.Context, scope models.Scope, filter models.ShipmentFilter) (models.ShipmentPage, error)
	Get(ctx context.Context, scope models.Scope, id string) (models.Shipment, error)
	Create(ctx context.Context, ownerID string, input NewShipment) (models.Shipment, error)
	UpdateStatus(ctx context.Context, scope models.Scope, id string, status models.ShipmentStatus) (models.Shipment, error)
	AssignDriver(ctx context.Context, scope models.Scope, id, driverID string) (models.Shipment, error)
	Delete(ctx context.Context, scope models.Scope, id string) error
	CountByStatus(ctx context.Context, scope models.Scope) (map[models.ShipmentStatus]int, error)
}

// NewShipment is the input for booking a shipment.
type NewShipment struct {
	Origin      string
	Destination string
	WeightKg    float64
}

// ShipmentService manages shipments and tells owners when their status changes.
type ShipmentService struct {
	db            *database.DB
	notifications NotificationServiceProvider
	now           func() time.Time
}

// NewShipmentService creates a new ShipmentService.
func NewShipmentService(db *database.DB, notifications NotificationServiceProvider) *ShipmentService {
	return &ShipmentService{db: db, notifications: notifications, now: time.Now}
}

const shipmentColumns = "id, owner_id, tracking_number, origin, destination, weight_kg, status, driver_id, created_at, updated_at"

const trackingAttempts = 3

// scopeClause narrows a query to rows the scope may see.
func scopeClause(scope models.Scope, column string) (string, []any) {
	if scope.All {
		return "", nil
	}
	return " AND " + column + " = ?", []any{scope.UserID}
}

func (s *ShipmentService) List(ctx context.Context, scope models.Scope, filter models.ShipmentFilter) (models.ShipmentPage, error) {
	where := "1 = 1"
	var args []any
	if clause, scopeArgs := scopeClause(scope, "owner_id"); clause != "" {
		where += clause
		args = append(args, scopeArgs...)
	}
	if filter.Status != "" {
		where += " AND status = ?"
		args = append(args, string(filter.Status))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM shipments WHERE "+where, args...).Scan(&total); err != nil {
		return models.ShipmentPage{}, apperr.Internal("count shipments", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+shipmentColumns+" FROM shipments WHERE "+where+" ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		append(args, filter.Limit, (filter.Page-1)*filter.Limit)...)
	if err != nil {
		return models.ShipmentPage{}, apperr.Internal("list shipments", err)
	}
	defer rows.Close()

	shipments := []models.Shipment{}
	for rows.Next() {
		shipment, err := scanShipment(rows)
		if err != nil {
			return models.ShipmentPage{}, err
		}
		shipments = append(shipments, shipment)
	}
	if err := rows.Err(); err != nil {
		return models.ShipmentPage{}, apperr.Internal("list shipments", err)
	}
	return models.ShipmentPage{
		Shipments:  shipments,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (s *ShipmentService) Get(ctx context.Context, scope models.Scope, id string) (models.Shipment, error) {
	clause, args := scopeClause(scope, "owner_id")
	row := s.db.QueryRowContext(ctx,
		"SELECT "+shipmentColumns+" FROM shipments WHERE id = ?"+clause, append([]any{id}, args...)...)
	return scanShipment(row)
}

// Create books a pending shipment with a fresh tracking number.
func (s *ShipmentService) Create(ctx context.Context, ownerID string, input NewShipment) (models.Shipment, error) {
	origin, err := requireText("origin", input.Origin)
	if err != nil {
		return models.Shipment{}, err
	}
	destination, err := requireText("destination", input.Destination)
	if err != nil {
		return models.Shipment{}, err
	}
	if input.WeightKg <= 0 {
		return models.Shipment{}, apperr.Validation("weightKg must be positive")
	}

	now := s.now().UTC()
	shipment := models.Shipment{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Origin:      origin,
		Destination: destination,
		WeightKg:    input.WeightKg,
		Status:      models.ShipmentPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 1; ; attempt++ {
		shipment.TrackingNumber = NewTrackingNumber()
		_, err = s.db.ExecContext(ctx,
			"INSERT INTO shipments ("+shipmentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			shipment.ID, shipment.OwnerID, shipment.TrackingNumber, shipment.Origin, shipment.Destination,
			shipment.WeightKg, string(shipment.Status), shipment.DriverID, shipment.CreatedAt, shipment.UpdatedAt)
		if err == nil {
			return shipment, nil
		}
		if !database.IsUniqueViolation(err) || attempt == trackingAttempts {
			return models.Shipment{}, apperr.Internal("insert shipment", err)
		}
		log.Warn().Str("tracking_number", shipment.TrackingNumber).Msg("Tracking number collision, retrying")
	}
}

// UpdateStatus moves a shipment along its lifecycle and notifies the owner.
func (s *ShipmentService) UpdateStatus(ctx context.Context, scope models.Scope, id string, status models.ShipmentStatus) (models.Shipment, error) {
	if !status.Valid() {
		return models.Shipment{}, apperr.Validation("status is invalid")
	}
	from := predecessors(status)
	if len(from) == 0 {
		return models.Shipment{}, apperr.Validation(fmt.Sprintf("shipments cannot move to %s", status))
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(from)), ", ")
	args := []any{string(status), s.now().UTC(), id}
	for _, st := range from {
		args = append(args, string(st))
	}
	clause, scopeArgs := scopeClause(scope, "owner_id")
	args = append(args, scopeArgs...)

	res, err := s.db.ExecContext(ctx,
		"UPDATE shipments SET status = ?, updated_at = ? WHERE id = ? AND status IN ("+placeholders+")"+clause, args...)
	if err != nil {
		return models.Shipment{}, apperr.Internal("update shipment status", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Shipment{}, apperr.Internal("rows affected", err)
	}

	shipment, err := s.Get(ctx, scope, id)
	if err != nil {
		return models.Shipment{}, err
	}
	if affected == 0 {
		return models.Shipment{}, apperr.Validation(fmt.Sprintf("cannot change status from %s to %s", shipment.Status, status))
	}

	s.notifyOwner(ctx, shipment)
	return shipment, nil
}

// AssignDriver puts a driver visible to the same scope on an open shipment.
func (s *ShipmentService) AssignDriver(ctx context.Context, scope models.Scope, id, driverID string) (models.Shipment, error) {
	driverID = strings.TrimSpace(driverID)
	if driverID == "" {
		return models.Shipment{}, apperr.Validation("driverId is required")
	}

	shipmentClause, shipmentArgs := scopeClause(scope, "owner_id")
	driverClause, driverArgs := scopeClause(scope, "d.owner_id")
	args := []any{driverID, s.now().UTC(), id, string(models.ShipmentPending), string(models.ShipmentInTransit)}
	args = append(args, shipmentArgs...)
	args = append(args, driverID)
	args = append(args, driverArgs...)

	res, err := s.db.ExecContext(ctx,
		"UPDATE shipments SET driver_id = ?, updated_at = ? WHERE id = ? AND status IN (?, ?)"+shipmentClause+
			" AND EXISTS (SELECT 1 FROM drivers d WHERE d.id = ?"+driverClause+")", args...)
	if err != nil {
		return models.Shipment{}, apperr.Internal("assign driver", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Shipment{}, apperr.Internal("rows affected", err)
	}

	shipment, err := s.Get(ctx, scope, id)
	if err != nil {
		return models.Shipment{}, err
	}
	if affected == 0 {
		if shipment.Status != models.ShipmentPending && shipment.Status != models.ShipmentInTransit {
			return models.Shipment{}, apperr.Validation(fmt.Sprintf("cannot assign a driver to a %s shipment", shipment.Status))
		}
		return models.Shipment{}, apperr.NotFound("driver not found")
	}
	return shipment, nil
}

// Delete removes a shipment that has not left pending yet.
func (s *ShipmentService) Delete(ctx context.Context, scope models.Scope, id string) error {
	clause, scopeArgs := scopeClause(scope, "owner_id")
	args := append([]any{id, string(models.ShipmentPending)}, scopeArgs...)
	res, err := s.db.ExecContext(ctx, "DELETE FROM shipments WHERE id = ? AND status = ?"+clause, args...)
	if err != nil {
		return apperr.Internal("delete shipment", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperr.Internal("rows affected", err)
	}
	if affected > 0 {
		return nil
	}

	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}
	return apperr.Conflict("only pending shipments can be deleted")
}

// CountByStatus returns shipment counts keyed by status; missing statuses count zero.
func (s *ShipmentService) CountByStatus(ctx context.Context, scope models.Scope) (map[models.ShipmentStatus]int, error) {
	clause, args := scopeClause(scope, "owner_id")
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM shipments WHERE 1 = 1"+clause+" GROUP BY status", args...)
	if err != nil {
		return nil, apperr.Internal("count shipments by status", err)
	}
	defer rows.Close()

	counts := map[models.ShipmentStatus]int{
		models.ShipmentPending:   0,
		models.ShipmentInTransit: 0,
		models.ShipmentDelivered: 0,
		models.ShipmentCancelled: 0,
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, apperr.Internal("scan shipment count", err)
		}
		counts[models.ShipmentStatus(status)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Internal("count shipments by status", err)
	}
	return counts, nil
}

func (s *ShipmentService) notifyOwner(ctx context.Context, shipment models.Shipment) {
	if s.notifications == nil {
		return
	}
	kind := models.NotificationInfo
	switch shipment.Status {
	case models.ShipmentDelivered:
		kind = models.NotificationSuccess
	case models.ShipmentCancelled:
		kind = models.NotificationWarning
	}
	_, err := s.notifications.Create(ctx, NewNotification{
		UserID:  shipment.OwnerID,
		Title:   "Shipment " + shipment.TrackingNumber,
		Message: fmt.Sprintf("Shipment %s from %s to %s is now %s.", shipment.TrackingNumber, shipment.Origin, shipment.Destination, statusLabel(shipment.Status)),
		Type:    kind,
	})
	if err != nil {
		log.Error().Err(err).Str("shipment_id", shipment.ID).Msg("Failed to notify shipment owner")
	}
}

// NewTrackingNumber returns an identifier of the form TRK-XXXXXXXXXX.
func NewTrackingNumber() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TRK-" + raw[:10]
}

func predecessors(next models.ShipmentStatus) []models.ShipmentStatus {
	var from []models.ShipmentStatus
	for _, st := range []models.ShipmentStatus{models.ShipmentPending, models.ShipmentInTransit, models.ShipmentDelivered, models.ShipmentCancelled} {
		if st.CanTransitionTo(next) {
			from = append(from, st)
		}
	}
	return from
}

func statusLabel(status models.ShipmentStatus) string {
	return strings.ReplaceAll(string(status), "_", " ")
}

func scanShipment(scanner interface{ Scan(...any) error }) (models.Shipment, error) {
	var shipment models.Shipment
	var status string
	var driverID sql.NullString
	err := scanner.Scan(
		&shipment.ID,
		&shipment.OwnerID,
		&shipment.TrackingNumber,
		&shipment.Origin,
		&shipment.Destination,
		&shipment.WeightKg,
		&status,
		&driverID,
		&shipment.CreatedAt,
		&shipment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Shipment{}, apperr.NotFound("shipment not found")
		}
		return models.Shipment{}, apperr.Internal("scan shipment", err)
	}
	shipment.Status = models.ShipmentStatus(status)
	if driverID.Valid {
		shipment.DriverID = &driverID.String
	}
	return shipment, nil
}
