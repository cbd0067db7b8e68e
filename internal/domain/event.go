package domain

import (
	"context"
	"time"
)

// Location types.
const (
	LocationPhysical = "physical"
	LocationOnline   = "online"
)

// Ticket types.
const (
	TicketFree = "free"
	TicketPaid = "paid"
)

// DefaultThemeColor is the theme every non-Pro event gets. Only Pro
// organizers may store anything else.
const DefaultThemeColor = "#1e3a8a"

// Event represents a user-created event.
//
// Slug is immutable and globally unique for the lifetime of the record.
// OrganizerName is a snapshot of the organizer's display name at creation
// time and is not kept in sync with later name changes.
// RegistrationCount is a best-effort cache; the dashboard recomputes counts
// from the registrations table instead of trusting it.
// swagger:model Event
type Event struct {
	ID                string    `json:"id"`
	OrganizerID       string    `json:"organizer_id"`
	OrganizerName     string    `json:"organizer_name"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	Tags              []string  `json:"tags"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Timezone          string    `json:"timezone"`
	LocationType      string    `json:"location_type"`
	Venue             *string   `json:"venue,omitempty"`
	Address           *string   `json:"address,omitempty"`
	City              string    `json:"city"`
	State             *string   `json:"state,omitempty"`
	Country           string    `json:"country"`
	Capacity          int       `json:"capacity"`
	TicketType        string    `json:"ticket_type"`
	TicketPrice       *float64  `json:"ticket_price,omitempty"`
	CoverImage        *string   `json:"cover_image,omitempty"`
	ThemeColor        string    `json:"theme_color"`
	Slug              string    `json:"slug"`
	RegistrationCount int       `json:"registration_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateEventInput is the caller-supplied payload for event creation.
// Server-assigned fields (slug, organizer snapshot, counters, timestamps)
// are filled by the service.
type CreateEventInput struct {
	Title        string
	Description  string
	Category     string
	Tags         []string
	StartDate    time.Time
	EndDate      time.Time
	Timezone     string
	LocationType string
	Venue        *string
	Address      *string
	City         string
	State        *string
	Country      string
	Capacity     int
	TicketType   string
	TicketPrice  *float64
	CoverImage   *string
	ThemeColor   string
}

// EventRepository defines the interface for event storage.
// GetBySlug and ListByOrganizerID are expected to be served from equality
// indexes, never full-collection scans.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetBySlug(ctx context.Context, slug string) (*Event, error)
	ListByOrganizerID(ctx context.Context, organizerID string) ([]*Event, error)
	Delete(ctx context.Context, id string) error
	SetRegistrationCount(ctx context.Context, id string, count int) error
}

// EventService defines the event lifecycle operations.
type EventService interface {
	// CreateEvent runs the creation protocol: quota enforcement, theme-color
	// gating, slug derivation, insert, and quota increment as one atomic
	// unit. hasPro is the caller-resolved Pro entitlement. Returns the new
	// event's ID.
	CreateEvent(ctx context.Context, organizerID string, in CreateEventInput, hasPro bool) (string, error)
	// DeleteEvent removes the event and every registration referencing it
	// (registrations first), then rolls back the quota for free events.
	DeleteEvent(ctx context.Context, eventID, organizerID string) error
	GetEventBySlug(ctx context.Context, slug string) (*Event, error)
	ListMyEvents(ctx context.Context, organizerID string) ([]*Event, error)
}
