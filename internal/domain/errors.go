package domain

import "errors"

// Sentinel errors shared across services. Controllers map these onto HTTP
// status codes; services wrap lower-level failures with fmt.Errorf("...: %w")
// so the original cause text is preserved.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoPrincipal      = errors.New("no authenticated user")
	ErrQuotaExceeded    = errors.New("free event limit reached, upgrade to Pro to create more events")
	ErrFeatureGated     = errors.New("custom theme colors are a Pro feature, upgrade to Pro")
	ErrAlreadyCheckedIn = errors.New("attendee already checked in")
	ErrEventFull        = errors.New("event is at capacity")
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateEmail   = errors.New("email already in use")
)
