package domain

import "context"

// EventStats holds the statistics computed fresh on every dashboard read.
// Nothing here is persisted.
//
// IsEventToday compares calendar dates in the process's local zone, not the
// event's stored timezone. Known limitation, kept deliberately.
// swagger:model EventStats
type EventStats struct {
	Capacity           int     `json:"capacity"`
	TotalRegistrations int     `json:"total_registrations"`
	CheckedInCount     int     `json:"checked_in_count"`
	PendingCount       int     `json:"pending_count"`
	TotalRevenue       float64 `json:"total_revenue"`
	IsEventPast        bool    `json:"is_event_past"`
	IsEventToday       bool    `json:"is_event_today"`
	HoursUntilEvent    int     `json:"hours_until_event"`
	CheckInRate        int     `json:"check_in_rate"`
}

// DashboardSnapshot bundles an event with its freshly computed stats.
// swagger:model DashboardSnapshot
type DashboardSnapshot struct {
	Event *Event     `json:"event"`
	Stats EventStats `json:"stats"`
}

// DashboardService derives read-only statistics snapshots.
type DashboardService interface {
	// GetEventDashboard returns the snapshot for the event, or (nil, nil)
	// when userID is empty or the event does not exist. A resolved caller
	// who is not the organizer gets ErrForbidden.
	GetEventDashboard(ctx context.Context, eventID, userID string) (*DashboardSnapshot, error)
}
