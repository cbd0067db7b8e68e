package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"eventpulse/internal/clock"
	"eventpulse/internal/domain"
)

type registrationService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	emailService     domain.EmailService
	clock            clock.Clock
	logger           *slog.Logger
	contextTimeout   time.Duration
}

// NewRegistrationService creates a RegistrationService. emailService may be
// nil; confirmation emails are then skipped.
func NewRegistrationService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	emailService domain.EmailService,
	clk clock.Clock,
	logger *slog.Logger,
	timeout time.Duration,
) domain.RegistrationService {
	return &registrationService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		emailService:     emailService,
		clock:            clk,
		logger:           logger,
		contextTimeout:   timeout,
	}
}

func (s *registrationService) RegisterForEvent(ctx context.Context, eventID, attendeeName, attendeeEmail string) (*domain.Registration, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	attendeeEmail = strings.TrimSpace(strings.ToLower(attendeeEmail))
	attendeeName = strings.TrimSpace(attendeeName)
	if attendeeEmail == "" || attendeeName == "" {
		return nil, false, domain.ErrInvalidInput
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, domain.ErrNotFound
		}
		return nil, false, fmt.Errorf("get event: %w", err)
	}

	// One registration per (event, attendee email); repeat calls return the
	// existing record.
	if existing, err := s.registrationRepo.GetByEventAndEmail(ctx, eventID, attendeeEmail); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get registration: %w", err)
	}

	count, err := s.registrationRepo.CountByEventID(ctx, eventID)
	if err != nil {
		return nil, false, fmt.Errorf("count registrations: %w", err)
	}
	if count >= event.Capacity {
		return nil, false, domain.ErrEventFull
	}

	reg := domain.NewRegistration(eventID, attendeeName, attendeeEmail, uuid.NewString(), s.clock.Now())
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		return nil, false, fmt.Errorf("create registration: %w", err)
	}

	// registration_count on the event is a best-effort cache; the dashboard
	// recomputes from the registrations table.
	if err := s.eventRepo.SetRegistrationCount(ctx, eventID, count+1); err != nil {
		s.logger.WarnContext(ctx, "update registration count", "event_id", eventID, "err", err)
	}

	if s.emailService != nil {
		data := &domain.RegistrationTicketEmailData{
			AttendeeName:  reg.AttendeeName,
			AttendeeEmail: reg.AttendeeEmail,
			EventTitle:    event.Title,
			EventSlug:     event.Slug,
			QRCode:        reg.QRCode,
		}
		if err := s.emailService.SendRegistrationTicket(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "send ticket email", "event_id", eventID, "err", err)
		}
	}

	return reg, true, nil
}

func (s *registrationService) CheckInByQRCode(ctx context.Context, eventID, qrCode, callerID string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if callerID == "" {
		return nil, domain.ErrNoPrincipal
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}

	reg, err := s.registrationRepo.GetByQRCode(ctx, strings.TrimSpace(qrCode))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get registration by qr code: %w", err)
	}
	if reg.EventID != eventID {
		return nil, domain.ErrNotFound
	}
	if reg.CheckedIn {
		return nil, domain.ErrAlreadyCheckedIn
	}

	if err := s.registrationRepo.SetCheckedIn(ctx, reg.ID, true); err != nil {
		return nil, fmt.Errorf("set checked in: %w", err)
	}
	reg.CheckedIn = true
	return reg, nil
}

func (s *registrationService) ListEventRegistrations(ctx context.Context, eventID, callerID string) ([]*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if callerID == "" {
		return nil, domain.ErrNoPrincipal
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.OrganizerID != callerID {
		return nil, domain.ErrForbidden
	}

	regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}
