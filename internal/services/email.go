package services

import (
	"context"
	"fmt"

	"eventpulse/internal/domain"
)

type emailService struct {
	renderer domain.EmailTemplateRenderer
	mailer   domain.Mailer
}

// NewEmailService creates an EmailService that renders templates and sends
// them through the given mailer.
func NewEmailService(renderer domain.EmailTemplateRenderer, mailer domain.Mailer) domain.EmailService {
	return &emailService{renderer: renderer, mailer: mailer}
}

func (s *emailService) SendRegistrationTicket(ctx context.Context, data *domain.RegistrationTicketEmailData) error {
	subject, html, text, err := s.renderer.Render("registration_ticket", data)
	if err != nil {
		return fmt.Errorf("render registration ticket email: %w", err)
	}
	if err := s.mailer.Send(data.AttendeeEmail, subject, html, text); err != nil {
		return fmt.Errorf("send registration ticket email: %w", err)
	}
	return nil
}
