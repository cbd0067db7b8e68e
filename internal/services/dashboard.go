package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"eventpulse/internal/clock"
	"eventpulse/internal/domain"
)

type dashboardService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	clock            clock.Clock
	contextTimeout   time.Duration
}

// NewDashboardService creates a DashboardService with the given repositories and clock.
func NewDashboardService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	clk clock.Clock,
	timeout time.Duration,
) domain.DashboardService {
	return &dashboardService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		clock:            clk,
		contextTimeout:   timeout,
	}
}

// GetEventDashboard computes a fresh statistics snapshot. An unresolved
// caller or a missing event yields (nil, nil), "no dashboard available";
// a resolved caller who is not the organizer gets ErrForbidden. The two
// paths are deliberately different and callers rely on the distinction.
func (s *dashboardService) GetEventDashboard(ctx context.Context, eventID, userID string) (*domain.DashboardSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return nil, nil
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != userID {
		return nil, domain.ErrForbidden
	}

	regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}

	total := len(regs)
	checkedIn := 0
	for _, reg := range regs {
		if reg.CheckedIn {
			checkedIn++
		}
	}

	checkInRate := 0
	if total > 0 {
		checkInRate = int(math.Round(float64(checkedIn) / float64(total) * 100))
	}

	// Revenue is a projection (registrations x full price), not a ledger of
	// collected payments.
	totalRevenue := 0.0
	if event.TicketType == domain.TicketPaid && event.TicketPrice != nil {
		totalRevenue = float64(total) * *event.TicketPrice
	}

	now := s.clock.Now()

	// Calendar-date comparison in the process local zone; the event's own
	// timezone field is not consulted. Known limitation.
	isToday := sameLocalDate(event.StartDate, now)

	hoursUntil := int(math.Ceil(event.StartDate.Sub(now).Hours()))
	if hoursUntil < 0 {
		hoursUntil = 0
	}

	return &domain.DashboardSnapshot{
		Event: event,
		Stats: domain.EventStats{
			Capacity:           event.Capacity,
			TotalRegistrations: total,
			CheckedInCount:     checkedIn,
			PendingCount:       total - checkedIn,
			TotalRevenue:       totalRevenue,
			IsEventPast:        event.EndDate.Before(now),
			IsEventToday:       isToday,
			HoursUntilEvent:    hoursUntil,
			CheckInRate:        checkInRate,
		},
	}, nil
}

func sameLocalDate(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
