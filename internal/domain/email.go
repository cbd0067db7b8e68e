package domain

import "context"

// Mailer sends a single email. Implementations may use SES, SMTP, or a noop.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named email template with data and returns
// the subject, html body, and text body.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// RegistrationTicketEmailData is the payload for the registration
// confirmation email. QRCode is the opaque check-in token.
type RegistrationTicketEmailData struct {
	AttendeeName  string
	AttendeeEmail string
	EventTitle    string
	EventSlug     string
	QRCode        string
}

// EmailService sends application emails.
type EmailService interface {
	SendRegistrationTicket(ctx context.Context, data *RegistrationTicketEmailData) error
}
