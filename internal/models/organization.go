package models

import "time"

// OrganizationSettings holds the scheduling toggles of one organization.
type OrganizationSettings struct {
	OrganizationID      string    `db:"organization_id" json:"organization_id"`
	RoomTrackingEnabled bool      `db:"room_tracking_enabled" json:"room_tracking_enabled"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// OrganizationConfig is the per-call snapshot of settings the scheduler consults.
type OrganizationConfig struct {
	OrganizationID      string
	RoomTrackingEnabled bool
}

// Config converts persisted settings into the scheduler snapshot.
func (s OrganizationSettings) Config() OrganizationConfig {
	return OrganizationConfig{OrganizationID: s.OrganizationID, RoomTrackingEnabled: s.RoomTrackingEnabled}
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
