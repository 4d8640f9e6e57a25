package models

import "time"

// DriverStatus is a driver's availability.
type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverOnRoute   DriverStatus = "on_route"
	DriverOffDuty   DriverStatus = "off_duty"
)

func (s DriverStatus) Valid() bool {
	switch s {
	case DriverAvailable, DriverOnRoute, DriverOffDuty:
		return true
	}
	return false
}

// Driver is a person employed by a carrier or company to move shipments.
type Driver struct {
	ID            string       `json:"id"`
	OwnerID       string       `json:"ownerId"`
	Name          string       `json:"name"`
	Phone         string       `json:"phone"`
	LicenseNumber string       `json:"licenseNumber"`
	Status        DriverStatus `json:"status"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}
