package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"eventpulse/internal/clock"
	"eventpulse/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEventRepo is an in-memory EventRepository for tests.
type fakeEventRepo struct {
	byID        map[string]*domain.Event
	nextID      int
	createErr   error
	setCountErr error
	counts      map[string]int // eventID -> last SetRegistrationCount value
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		byID:   make(map[string]*domain.Event),
		nextID: 1,
		counts: make(map[string]int),
	}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	e.ID = fmt.Sprintf("ev-%d", f.nextID)
	f.nextID++
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	for _, e := range f.byID {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	// Sort by CreatedAt DESC to match repo
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].CreatedAt.After(out[i].CreatedAt) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeEventRepo) SetRegistrationCount(ctx context.Context, id string, count int) error {
	if f.setCountErr != nil {
		return f.setCountErr
	}
	e, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.RegistrationCount = count
	f.counts[id] = count
	return nil
}

// fakeRegistrationRepo is an in-memory RegistrationRepository for tests.
type fakeRegistrationRepo struct {
	byID      map[string]*domain.Registration
	nextID    int
	createErr error
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{
		byID:   make(map[string]*domain.Registration),
		nextID: 1,
	}
}

func (f *fakeRegistrationRepo) Create(ctx context.Context, reg *domain.Registration) error {
	if f.createErr != nil {
		return f.createErr
	}
	reg.ID = fmt.Sprintf("reg-%d", f.nextID)
	f.nextID++
	f.byID[reg.ID] = reg
	return nil
}

func (f *fakeRegistrationRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Registration, error) {
	for _, r := range f.byID {
		if r.EventID == eventID && r.AttendeeEmail == email {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) GetByQRCode(ctx context.Context, qrCode string) (*domain.Registration, error) {
	for _, r := range f.byID {
		if r.QRCode == qrCode {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	var out []*domain.Registration
	for _, r := range f.byID {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRegistrationRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	count := 0
	for _, r := range f.byID {
		if r.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRegistrationRepo) SetCheckedIn(ctx context.Context, id string, checkedIn bool) error {
	r, ok := f.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	r.CheckedIn = checkedIn
	return nil
}

func (f *fakeRegistrationRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeUserRepo is an in-memory UserRepository for tests.
type fakeUserRepo struct {
	byID   map[string]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:   make(map[string]*domain.User),
		nextID: 1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, u *domain.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) IncrementFreeEvents(ctx context.Context, userID string) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FreeEventsCreated++
	return nil
}

func (f *fakeUserRepo) DecrementFreeEvents(ctx context.Context, userID string) error {
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	// No-op at zero, matching the SQL guard.
	if u.FreeEventsCreated > 0 {
		u.FreeEventsCreated--
	}
	return nil
}

// fakeTxManager runs the function directly without a real transaction.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func seedUser(repo *fakeUserRepo, name string, freeEventsCreated int) *domain.User {
	u := &domain.User{
		Name:              name,
		Email:             fmt.Sprintf("%s@example.com", name),
		FreeEventsCreated: freeEventsCreated,
	}
	_ = repo.Create(context.Background(), u)
	return u
}

func validInput() domain.CreateEventInput {
	return domain.CreateEventInput{
		Title:        "Summer Gala 2026",
		Description:  "An evening of music",
		Category:     "music",
		Tags:         []string{"gala", "live"},
		StartDate:    time.Date(2026, 7, 10, 18, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 7, 10, 23, 0, 0, 0, time.UTC),
		Timezone:     "Europe/Madrid",
		LocationType: domain.LocationPhysical,
		City:         "Madrid",
		Country:      "Spain",
		Capacity:     200,
		TicketType:   domain.TicketFree,
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	newService := func(userRepo *fakeUserRepo, eventRepo *fakeEventRepo) domain.EventService {
		return NewEventService(eventRepo, newFakeRegistrationRepo(), userRepo, &fakeTxManager{}, clock.NewFixed(now), time.Second)
	}

	t.Run("first free event succeeds and increments the counter", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()
		user := seedUser(userRepo, "alice", 0)

		id, err := newService(userRepo, eventRepo).CreateEvent(ctx, user.ID, validInput(), false)
		require.NoError(t, err)
		require.NotEmpty(t, id)

		created := eventRepo.byID[id]
		require.NotNil(t, created)
		assert.Equal(t, user.ID, created.OrganizerID)
		assert.Equal(t, "alice", created.OrganizerName)
		assert.Equal(t, domain.DefaultThemeColor, created.ThemeColor)
		assert.Equal(t, 0, created.RegistrationCount)
		assert.Equal(t, 1, user.FreeEventsCreated)
	})

	t.Run("slug is derived from title and creation time", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()
		user := seedUser(userRepo, "alice", 0)

		in := validInput()
		in.Title = "  Go Meetup: Madrid!  "
		id, err := newService(userRepo, eventRepo).CreateEvent(ctx, user.ID, in, false)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("go-meetup-madrid-%d", now.UnixMilli()), eventRepo.byID[id].Slug)
	})

	t.Run("second free event is rejected", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()
		user := seedUser(userRepo, "alice", 1)

		_, err := newService(userRepo, eventRepo).CreateEvent(ctx, user.ID, validInput(), false)
		require.ErrorIs(t, err, domain.ErrQuotaExceeded)
		assert.Empty(t, eventRepo.byID)
		assert.Equal(t, 1, user.FreeEventsCreated)
	})

	t.Run("pro organizer bypasses the quota and keeps the counter", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()
		user := seedUser(userRepo, "alice", 5)

		id, err := newService(userRepo, eventRepo).CreateEvent(ctx, user.ID, validInput(), true)
		require.NoError(t, err)
		require.NotEmpty(t, id)
		assert.Equal(t, 5, user.FreeEventsCreated)
	})

	t.Run("paid creation by a non-pro organizer still increments the counter", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()
		user := seedUser(userRepo, "alice", 0)

		price := 25.0
		in := validInput()
		in.TicketType = domain.TicketPaid
		in.TicketPrice = &price
		_, err := newService(userRepo, eventRepo).CreateEvent(ctx, user.ID, in, false)
		require.NoError(t, err)
		assert.Equal(t, 1, user.FreeEventsCreated)
	})

	t.Run("custom theme color requires pro", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()
		user := seedUser(userRepo, "alice", 0)

		in := validInput()
		in.ThemeColor = "#ff0000"
		_, err := newService(userRepo, eventRepo).CreateEvent(ctx, user.ID, in, false)
		require.ErrorIs(t, err, domain.ErrFeatureGated)
		assert.Empty(t, eventRepo.byID)
		assert.Equal(t, 0, user.FreeEventsCreated)
	})

	t.Run("default theme color sent explicitly is allowed without pro", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()
		user := seedUser(userRepo, "alice", 0)

		in := validInput()
		in.ThemeColor = domain.DefaultThemeColor
		id, err := newService(userRepo, eventRepo).CreateEvent(ctx, user.ID, in, false)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultThemeColor, eventRepo.byID[id].ThemeColor)
	})

	t.Run("pro organizer stores a custom theme color", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()
		user := seedUser(userRepo, "alice", 0)

		in := validInput()
		in.ThemeColor = "#ff0000"
		id, err := newService(userRepo, eventRepo).CreateEvent(ctx, user.ID, in, true)
		require.NoError(t, err)
		assert.Equal(t, "#ff0000", eventRepo.byID[id].ThemeColor)
	})

	t.Run("pro organizer with no theme color gets the default", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()
		user := seedUser(userRepo, "alice", 0)

		id, err := newService(userRepo, eventRepo).CreateEvent(ctx, user.ID, validInput(), true)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultThemeColor, eventRepo.byID[id].ThemeColor)
	})

	t.Run("missing principal", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()

		_, err := newService(userRepo, eventRepo).CreateEvent(ctx, "", validInput(), false)
		require.ErrorIs(t, err, domain.ErrNoPrincipal)
	})

	t.Run("insert failure does not increment the counter", func(t *testing.T) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()
		eventRepo.createErr = errors.New("connection reset")
		user := seedUser(userRepo, "alice", 0)

		_, err := newService(userRepo, eventRepo).CreateEvent(ctx, user.ID, validInput(), false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create event")
	})
}

func TestEventService_DeleteEvent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	setup := func(ticketType string, freeEventsCreated int) (domain.EventService, *fakeEventRepo, *fakeRegistrationRepo, *domain.User, string) {
		userRepo := newFakeUserRepo()
		eventRepo := newFakeEventRepo()
		regRepo := newFakeRegistrationRepo()
		user := seedUser(userRepo, "alice", freeEventsCreated)

		event := &domain.Event{
			OrganizerID: user.ID,
			Title:       "Gala",
			TicketType:  ticketType,
			Capacity:    100,
		}
		require.NoError(t, eventRepo.Create(ctx, event))

		svc := NewEventService(eventRepo, regRepo, userRepo, &fakeTxManager{}, clock.NewFixed(now), time.Second)
		return svc, eventRepo, regRepo, user, event.ID
	}

	t.Run("deletes the event and all its registrations", func(t *testing.T) {
		svc, eventRepo, regRepo, _, eventID := setup(domain.TicketFree, 1)
		for i := 0; i < 3; i++ {
			reg := domain.NewRegistration(eventID, fmt.Sprintf("guest %d", i), fmt.Sprintf("g%d@example.com", i), fmt.Sprintf("qr-%d", i), now)
			require.NoError(t, regRepo.Create(ctx, reg))
		}
		otherReg := domain.NewRegistration("ev-other", "bob", "bob@example.com", "qr-other", now)
		require.NoError(t, regRepo.Create(ctx, otherReg))

		require.NoError(t, svc.DeleteEvent(ctx, eventID, "user-1"))
		assert.Empty(t, eventRepo.byID)
		remaining, err := regRepo.ListByEventID(ctx, eventID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
		assert.Len(t, regRepo.byID, 1)
	})

	t.Run("free event deletion refunds the quota", func(t *testing.T) {
		svc, _, _, user, eventID := setup(domain.TicketFree, 1)
		require.NoError(t, svc.DeleteEvent(ctx, eventID, user.ID))
		assert.Equal(t, 0, user.FreeEventsCreated)
	})

	t.Run("paid event deletion leaves the quota alone", func(t *testing.T) {
		svc, _, _, user, eventID := setup(domain.TicketPaid, 1)
		require.NoError(t, svc.DeleteEvent(ctx, eventID, user.ID))
		assert.Equal(t, 1, user.FreeEventsCreated)
	})

	t.Run("repeated deletion cannot drive the counter negative", func(t *testing.T) {
		svc, eventRepo, _, user, eventID := setup(domain.TicketFree, 0)
		require.NoError(t, svc.DeleteEvent(ctx, eventID, user.ID))
		assert.Equal(t, 0, user.FreeEventsCreated)
		assert.Empty(t, eventRepo.byID)
	})

	t.Run("missing event reports not found, never forbidden", func(t *testing.T) {
		svc, _, _, user, _ := setup(domain.TicketFree, 1)
		err := svc.DeleteEvent(ctx, "ev-missing", user.ID)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		svc, eventRepo, _, _, eventID := setup(domain.TicketFree, 1)
		err := svc.DeleteEvent(ctx, eventID, "user-999")
		require.ErrorIs(t, err, domain.ErrForbidden)
		assert.Len(t, eventRepo.byID, 1)
	})

	t.Run("missing principal", func(t *testing.T) {
		svc, _, _, _, eventID := setup(domain.TicketFree, 1)
		err := svc.DeleteEvent(ctx, eventID, "")
		require.ErrorIs(t, err, domain.ErrNoPrincipal)
	})
}

func TestEventService_GetEventBySlug(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	userRepo := newFakeUserRepo()
	eventRepo := newFakeEventRepo()
	user := seedUser(userRepo, "alice", 0)
	event := &domain.Event{OrganizerID: user.ID, Title: "Gala", Slug: "gala-123"}
	require.NoError(t, eventRepo.Create(ctx, event))

	svc := NewEventService(eventRepo, newFakeRegistrationRepo(), userRepo, &fakeTxManager{}, clock.NewFixed(now), time.Second)

	got, err := svc.GetEventBySlug(ctx, "gala-123")
	require.NoError(t, err)
	assert.Equal(t, event.ID, got.ID)

	_, err = svc.GetEventBySlug(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEventService_ListMyEvents(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	userRepo := newFakeUserRepo()
	eventRepo := newFakeEventRepo()
	user := seedUser(userRepo, "alice", 0)
	other := seedUser(userRepo, "bob", 0)

	older := &domain.Event{OrganizerID: user.ID, Title: "Old", CreatedAt: now.Add(-time.Hour)}
	newer := &domain.Event{OrganizerID: user.ID, Title: "New", CreatedAt: now}
	theirs := &domain.Event{OrganizerID: other.ID, Title: "Theirs", CreatedAt: now}
	for _, e := range []*domain.Event{older, newer, theirs} {
		require.NoError(t, eventRepo.Create(ctx, e))
	}

	svc := NewEventService(eventRepo, newFakeRegistrationRepo(), userRepo, &fakeTxManager{}, clock.NewFixed(now), time.Second)

	events, err := svc.ListMyEvents(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "New", events[0].Title)
	assert.Equal(t, "Old", events[1].Title)

	events, err = svc.ListMyEvents(ctx, "user-without-events")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)

	_, err = svc.ListMyEvents(ctx, "")
	require.ErrorIs(t, err, domain.ErrNoPrincipal)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Summer Gala 2026", "summer-gala-2026"},
		{"  Go Meetup: Madrid!  ", "go-meetup-madrid"},
		{"---", ""},
		{"Café & Códigos", "caf-c-digos"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.title), tt.title)
	}
}
