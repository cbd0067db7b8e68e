package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventpulse/internal/domain"
)

const eventColumns = `id, organizer_id, organizer_name, title, description, category, tags,
		start_date, end_date, timezone, location_type, venue, address, city, state, country,
		capacity, ticket_type, ticket_price, cover_image, theme_color, slug, registration_count,
		created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (organizer_id, organizer_name, title, description, category, tags,
			start_date, end_date, timezone, location_type, venue, address, city, state, country,
			capacity, ticket_type, ticket_price, cover_image, theme_color, slug, registration_count,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id
	`
	return dbOrTx(ctx, r.DB).QueryRowContext(ctx, query,
		e.OrganizerID, e.OrganizerName, e.Title, e.Description, e.Category, pq.Array(e.Tags),
		e.StartDate, e.EndDate, e.Timezone, e.LocationType, e.Venue, e.Address, e.City, e.State, e.Country,
		e.Capacity, e.TicketType, e.TicketPrice, e.CoverImage, e.ThemeColor, e.Slug, e.RegistrationCount,
		e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func scanEvent(row interface{ Scan(dest ...any) error }) (*domain.Event, error) {
	e := &domain.Event{}
	var tags pq.StringArray
	var venue, address, state, coverImage sql.NullString
	var ticketPrice sql.NullFloat64
	err := row.Scan(
		&e.ID, &e.OrganizerID, &e.OrganizerName, &e.Title, &e.Description, &e.Category, &tags,
		&e.StartDate, &e.EndDate, &e.Timezone, &e.LocationType, &venue, &address, &e.City, &state, &e.Country,
		&e.Capacity, &e.TicketType, &ticketPrice, &coverImage, &e.ThemeColor, &e.Slug, &e.RegistrationCount,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Tags = tags
	if venue.Valid {
		e.Venue = &venue.String
	}
	if address.Valid {
		e.Address = &address.String
	}
	if state.Valid {
		e.State = &state.String
	}
	if coverImage.Valid {
		e.CoverImage = &coverImage.String
	}
	if ticketPrice.Valid {
		e.TicketPrice = &ticketPrice.Float64
	}
	return e, nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(dbOrTx(ctx, r.DB).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	e, err := scanEvent(dbOrTx(ctx, r.DB).QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE organizer_id = $1 ORDER BY created_at DESC`
	rows, err := dbOrTx(ctx, r.DB).QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := dbOrTx(ctx, r.DB).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventRepository) SetRegistrationCount(ctx context.Context, id string, count int) error {
	query := `UPDATE events SET registration_count = $1, updated_at = NOW() WHERE id = $2`
	result, err := dbOrTx(ctx, r.DB).ExecContext(ctx, query, count, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
