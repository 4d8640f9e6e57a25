package services

import (
	"context"

	"github.com/isdelr/haulboard-be/internal/models"
)

// DashboardServiceProvider defines the interface for the dashboard summary.
type DashboardServiceProvider interface {
	GetStats(ctx context.Context, user models.User) (models.DashboardStats, error)
}

// DashboardService aggregates counts from the other services.
type DashboardService struct {
	shipments     ShipmentServiceProvider
	drivers       DriverServiceProvider
	notifications NotificationServiceProvider
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(shipments ShipmentServiceProvider, drivers DriverServiceProvider, notifications NotificationServiceProvider) *DashboardService {
	return &DashboardService{shipments: shipments, drivers: drivers, notifications: notifications}
}

// GetStats summarises everything the user can see.
func (s *DashboardService) GetStats(ctx context.Context, user models.User) (models.DashboardStats, error) {
	scope := models.ScopeFor(user)

	shipments, err := s.shipments.CountByStatus(ctx, scope)
	if err != nil {
		return models.DashboardStats{}, err
	}
	drivers, err := s.drivers.CountByStatus(ctx, scope)
	if err != nil {
		return models.DashboardStats{}, err
	}
	unread, err := s.notifications.CountUnread(ctx, user.ID)
	if err != nil {
		return models.DashboardStats{}, err
	}

	stats := models.DashboardStats{
		ShipmentsByStatus:   shipments,
		DriversByStatus:     drivers,
		UnreadNotifications: unread,
	}
	for _, n := range shipments {
		stats.TotalShipments += n
	}
	for _, n := range drivers {
		stats.TotalDrivers += n
	}
	return stats, nil
}
