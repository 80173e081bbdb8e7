package domain

import "time"

type ResourceType string

const (
	ResourceTypeRoom ResourceType = "ROOM"
	ResourceTypeDesk ResourceType = "DESK"
)

type ResourceStatus string

const (
	ResourceStatusAvailable   ResourceStatus = "AVAILABLE"
	ResourceStatusOccupied    ResourceStatus = "OCCUPIED"
	ResourceStatusMaintenance ResourceStatus = "MAINTENANCE"
	ResourceStatusPending     ResourceStatus = "PENDING"
)

// Resource is a bookable asset. Status is informational; admission reasons
// about overlapping bookings, not resource status.
type Resource struct {
	ID        string
	Name      string
	Type      ResourceType
	Capacity  *int
	Location  string
	Features  []string
	Status    ResourceStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
