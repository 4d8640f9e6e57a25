package models

import "time"

// ShipmentStatus is the lifecycle state of a shipment.
type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "pending"
	ShipmentInTransit ShipmentStatus = "in_transit"
	ShipmentDelivered ShipmentStatus = "delivered"
	ShipmentCancelled ShipmentStatus = "cancelled"
)

var shipmentTransitions = map[ShipmentStatus][]ShipmentStatus{
	ShipmentPending:   {ShipmentInTransit, ShipmentCancelled},
	ShipmentInTransit: {ShipmentDelivered, ShipmentCancelled},
}

func (s ShipmentStatus) Valid() bool {
	switch s {
	case ShipmentPending, ShipmentInTransit, ShipmentDelivered, ShipmentCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Delivered and cancelled shipments are terminal.
func (s ShipmentStatus) CanTransitionTo(next ShipmentStatus) bool {
	for _, allowed := range shipmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Shipment is a consignment moved on behalf of its owner.
type Shipment struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"ownerId"`
	TrackingNumber string         `json:"trackingNumber"`
	Origin         string         `json:"origin"`
	Destination    string         `json:"destination"`
	WeightKg       float64        `json:"weightKg"`
	Status         ShipmentStatus `json:"status"`
	DriverID       *string        `json:"driverId,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// ShipmentFilter selects a page of shipments.
type ShipmentFilter struct {
	Page   int
	Limit  int
	Status ShipmentStatus // empty means any
}

// ShipmentPage is the result of listing shipments.
type ShipmentPage struct {
	Shipments  []Shipment `json:"shipments"`
	Pagination Pagination `json:"pagination"`
}
