package domain

import (
	"context"
	"time"
)

// Registration represents an attendee's spot at an event. QRCode is the
// opaque token presented at the door; CheckedIn flips when it is scanned.
// A registration never outlives its event: event deletion removes it.
// swagger:model Registration
type Registration struct {
	ID            string    `json:"id"`
	EventID       string    `json:"event_id"`
	AttendeeName  string    `json:"attendee_name"`
	AttendeeEmail string    `json:"attendee_email"`
	QRCode        string    `json:"qr_code"`
	CheckedIn     bool      `json:"checked_in"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewRegistration creates a new Registration. ID is typically set by the repository on create.
func NewRegistration(eventID, attendeeName, attendeeEmail, qrCode string, createdAt time.Time) *Registration {
	return &Registration{
		EventID:       eventID,
		AttendeeName:  attendeeName,
		AttendeeEmail: attendeeEmail,
		QRCode:        qrCode,
		CreatedAt:     createdAt,
	}
}

// RegistrationRepository defines storage operations for registrations.
// ListByEventID must be served from the event_id equality index.
type RegistrationRepository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*Registration, error)
	GetByQRCode(ctx context.Context, qrCode string) (*Registration, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Registration, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	SetCheckedIn(ctx context.Context, id string, checkedIn bool) error
	Delete(ctx context.Context, id string) error
}

// RegistrationService defines attendee registration and check-in operations.
type RegistrationService interface {
	// RegisterForEvent registers an attendee. Returns (reg, created, err):
	// created is false when the email was already registered for the event.
	RegisterForEvent(ctx context.Context, eventID, attendeeName, attendeeEmail string) (*Registration, bool, error)
	// CheckInByQRCode marks the registration behind qrCode as checked in.
	// Only the event organizer may check attendees in.
	CheckInByQRCode(ctx context.Context, eventID, qrCode, callerID string) (*Registration, error)
	// ListEventRegistrations returns all registrations for the event.
	// Only the event organizer may list them.
	ListEventRegistrations(ctx context.Context, eventID, callerID string) ([]*Registration, error)
}
