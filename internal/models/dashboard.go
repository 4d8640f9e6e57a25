package models

// DashboardStats summarises the caller's fleet and inbox.
type DashboardStats struct {
	TotalShipments      int                    `json:"totalShipments"`
	ShipmentsByStatus   map[ShipmentStatus]int `json:"shipmentsByStatus"`
	TotalDrivers        int                    `json:"totalDrivers"`
	DriversByStatus     map[DriverStatus]int   `json:"driversByStatus"`
	UnreadNotifications int                    `json:"unreadNotifications"`
}

// SystemStats reports host resource usage.
type SystemStats struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	MemoryUsedMB  uint64  `json:"memoryUsedMb"`
	MemoryTotalMB uint64  `json:"memoryTotalMb"`
	Uptime        string  `json:"uptime"`
}
