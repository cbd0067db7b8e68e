package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventpulse/internal/domain"
)

type registrationRepository struct {
	DB *sql.DB
}

func NewRegistrationRepository(db *sql.DB) domain.RegistrationRepository {
	return &registrationRepository{
		DB: db,
	}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	query := `
		INSERT INTO registrations (event_id, attendee_name, attendee_email, qr_code, checked_in, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	return dbOrTx(ctx, r.DB).QueryRowContext(ctx, query,
		reg.EventID, reg.AttendeeName, reg.AttendeeEmail, reg.QRCode, reg.CheckedIn, reg.CreatedAt,
	).Scan(&reg.ID)
}

func (r *registrationRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, attendee_name, attendee_email, qr_code, checked_in, created_at
		FROM registrations
		WHERE event_id = $1 AND attendee_email = $2
	`
	reg := &domain.Registration{}
	err := dbOrTx(ctx, r.DB).QueryRowContext(ctx, query, eventID, email).
		Scan(&reg.ID, &reg.EventID, &reg.AttendeeName, &reg.AttendeeEmail, &reg.QRCode, &reg.CheckedIn, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) GetByQRCode(ctx context.Context, qrCode string) (*domain.Registration, error) {
	query := `
		SELECT id, event_id, attendee_name, attendee_email, qr_code, checked_in, created_at
		FROM registrations
		WHERE qr_code = $1
	`
	reg := &domain.Registration{}
	err := dbOrTx(ctx, r.DB).QueryRowContext(ctx, query, qrCode).
		Scan(&reg.ID, &reg.EventID, &reg.AttendeeName, &reg.AttendeeEmail, &reg.QRCode, &reg.CheckedIn, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func (r *registrationRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Registration, error) {
	query := `
		SELECT id, event_id, attendee_name, attendee_email, qr_code, checked_in, created_at
		FROM registrations
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	rows, err := dbOrTx(ctx, r.DB).QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var regs []*domain.Registration
	for rows.Next() {
		reg := &domain.Registration{}
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.AttendeeName, &reg.AttendeeEmail, &reg.QRCode, &reg.CheckedIn, &reg.CreatedAt); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if regs == nil {
		regs = []*domain.Registration{}
	}
	return regs, nil
}

func (r *registrationRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM registrations WHERE event_id = $1`
	var count int
	if err := dbOrTx(ctx, r.DB).QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *registrationRepository) SetCheckedIn(ctx context.Context, id string, checkedIn bool) error {
	query := `UPDATE registrations SET checked_in = $1 WHERE id = $2`
	result, err := dbOrTx(ctx, r.DB).ExecContext(ctx, query, checkedIn, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *registrationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM registrations WHERE id = $1`
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
