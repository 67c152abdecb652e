package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// Message is a rendered HTML email ready for a Sender.
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	HTML     string
}

// Sender delivers a single message. Implementations: SMTP and Amazon SES.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// EmailService defines the interface for sending emails
type EmailService interface {
	SendInvitation(ctx context.Context, data InvitationEmail) error
	SendEnrollmentApproved(ctx context.Context, data EnrollmentApprovedEmail) error
	SendVarianceAlert(ctx context.Context, data VarianceAlertEmail) error
}

type emailServiceImpl struct {
	sender    Sender
	from      string
	fromName  string
	templates *template.Template
	backoff   time.Duration
}

// NewEmailService creates a new email service instance. A nil sender logs and drops mail.
func NewEmailService(sender Sender, from, fromName string) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		sender:    sender,
		from:      from,
		fromName:  fromName,
		templates: tmpl,
		backoff:   time.Second,
	}, nil
}

type InvitationEmail struct {
	To             string
	FirstName      string
	InviterName    string
	Role           string
	InvitationLink string
	ExpiresAt      string
}

// SendInvitation sends an enrollment invitation link
func (s *emailServiceImpl) SendInvitation(ctx context.Context, data InvitationEmail) error {
	return s.send(ctx, data.To, "You're invited to TimeGuard", "invitation.html", data)
}

type EnrollmentApprovedEmail struct {
	To        string
	FirstName string
	LoginLink string
}

// SendEnrollmentApproved tells an enrolled user they can now sign in
func (s *emailServiceImpl) SendEnrollmentApproved(ctx context.Context, data EnrollmentApprovedEmail) error {
	return s.send(ctx, data.To, "Your TimeGuard account is approved", "enrollment_approved.html", data)
}

type VarianceAlertEmail struct {
	To                 string
	ManagerName        string
	EmployeeName       string
	SiteName           string
	Date               string
	ExpectedHours      float64
	ActualHours        float64
	VariancePercentage float64
	Threshold          float64
}

// SendVarianceAlert notifies a site manager of an hours variance
func (s *emailServiceImpl) SendVarianceAlert(ctx context.Context, data VarianceAlertEmail) error {
	subject := fmt.Sprintf("Hours variance: %s at %s on %s", data.EmployeeName, data.SiteName, data.Date)
	return s.send(ctx, data.To, subject, "variance_alert.html", data)
}

func (s *emailServiceImpl) send(ctx context.Context, to, subject, tmpl string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	if s.sender == nil {
		slog.Warn("email sender not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	msg := Message{
		From:     s.from,
		FromName: s.fromName,
		To:       to,
		Subject:  subject,
		HTML:     body.String(),
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.sender.Send(ctx, msg)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		// Exponential backoff: 1s, 2s
		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff * time.Duration(1<<(attempt-1))):
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}

// headers builds the RFC 5322 header block shared by both senders.
func headers(msg Message) string {
	h := fmt.Sprintf("From: %s <%s>\r\n", msg.FromName, msg.From)
	h += fmt.Sprintf("To: %s\r\n", msg.To)
	h += fmt.Sprintf("Subject: %s\r\n", msg.Subject)
	h += "MIME-Version: 1.0\r\n"
	h += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	h += "\r\n"
	return h
}
