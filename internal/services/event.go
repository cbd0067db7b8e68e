package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"eventpulse/internal/clock"
	"eventpulse/internal/domain"
)

// freeEventLimit is the number of events a non-Pro organizer may have
// created. Pro organizers are exempt regardless of their counter value.
const freeEventLimit = 1

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

type eventService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	userRepo         domain.UserRepository
	tx               domain.TransactionManager
	clock            clock.Clock
	contextTimeout   time.Duration
}

// NewEventService creates an EventService with the given repositories,
// transaction manager, and clock.
func NewEventService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	userRepo domain.UserRepository,
	tx domain.TransactionManager,
	clk clock.Clock,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		userRepo:         userRepo,
		tx:               tx,
		clock:            clk,
		contextTimeout:   timeout,
	}
}

// slugify lowercases the title, collapses every run of non-alphanumeric
// characters into a single hyphen, and strips leading/trailing hyphens.
func slugify(title string) string {
	s := strings.ToLower(title)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func (s *eventService) CreateEvent(ctx context.Context, organizerID string, in domain.CreateEventInput, hasPro bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return "", fmt.Errorf("failed to create event: %w", domain.ErrNoPrincipal)
	}

	var eventID string
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, organizerID)
		if err != nil {
			return fmt.Errorf("get organizer: %w", err)
		}

		if !hasPro && user.FreeEventsCreated >= freeEventLimit {
			return domain.ErrQuotaExceeded
		}

		if !hasPro && in.ThemeColor != "" && in.ThemeColor != domain.DefaultThemeColor {
			return domain.ErrFeatureGated
		}
		themeColor := in.ThemeColor
		if !hasPro || themeColor == "" {
			themeColor = domain.DefaultThemeColor
		}

		now := s.clock.Now()
		// Two identical titles in the same millisecond would collide. Accepted;
		// at that rate the unique index on slug rejects the second insert.
		slug := fmt.Sprintf("%s-%d", slugify(in.Title), now.UnixMilli())

		event := &domain.Event{
			OrganizerID:       user.ID,
			OrganizerName:     user.Name,
			Title:             in.Title,
			Description:       in.Description,
			Category:          in.Category,
			Tags:              in.Tags,
			StartDate:         in.StartDate,
			EndDate:           in.EndDate,
			Timezone:          in.Timezone,
			LocationType:      in.LocationType,
			Venue:             in.Venue,
			Address:           in.Address,
			City:              in.City,
			State:             in.State,
			Country:           in.Country,
			Capacity:          in.Capacity,
			TicketType:        in.TicketType,
			TicketPrice:       in.TicketPrice,
			CoverImage:        in.CoverImage,
			ThemeColor:        themeColor,
			Slug:              slug,
			RegistrationCount: 0,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.eventRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}

		// Quota increments for any non-Pro creation, free or paid. Deletion
		// only decrements for free events; the asymmetry mirrors production
		// behavior and is intentional.
		if !hasPro {
			if err := s.userRepo.IncrementFreeEvents(ctx, user.ID); err != nil {
				return fmt.Errorf("increment free events: %w", err)
			}
		}

		eventID = event.ID
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create event: %w", err)
	}
	return eventID, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, organizerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return domain.ErrNoPrincipal
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		event, err := s.eventRepo.GetByID(ctx, eventID)
		if err != nil {
			// Existence is checked before ownership so deleting a missing
			// event reports not-found, never forbidden.
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("get event: %w", err)
		}
		if event.OrganizerID != organizerID {
			return domain.ErrForbidden
		}

		regs, err := s.registrationRepo.ListByEventID(ctx, eventID)
		if err != nil {
			return fmt.Errorf("list registrations: %w", err)
		}

		// Registrations go first so a crash mid-protocol never leaves
		// registrations pointing at a deleted event. The reverse partial
		// state (some registrations gone, event still present) is
		// recoverable by re-running the delete.
		for _, reg := range regs {
			if err := s.registrationRepo.Delete(ctx, reg.ID); err != nil {
				return fmt.Errorf("delete registration %s: %w", reg.ID, err)
			}
		}
		if err := s.eventRepo.Delete(ctx, eventID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("delete event: %w", err)
		}

		// Paid events never touch the quota counter. The repository guard
		// (counter > 0) keeps a racing double-delete from underflowing it.
		if event.TicketType == domain.TicketFree {
			if err := s.userRepo.DecrementFreeEvents(ctx, organizerID); err != nil {
				return fmt.Errorf("decrement free events: %w", err)
			}
		}
		return nil
	})
}

func (s *eventService) GetEventBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event by slug: %w", err)
	}
	return event, nil
}

func (s *eventService) ListMyEvents(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if organizerID == "" {
		return nil, domain.ErrNoPrincipal
	}
	events, err := s.eventRepo.ListByOrganizerID(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}
