// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/solusaas-git/ovoky-voip-platform-sub001/app/dto"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/repository"
	"gopkg.in/gomail.v2"
)

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(email, subject, htmlBody string) error
}

// SMTPEmailProvider sends mail through an SMTP relay
type SMTPEmailProvider struct {
	dialer    *gomail.Dialer
	fromEmail string
	fromName  string
	timeout   time.Duration
}

// NewSMTPEmailProvider creates a new SMTP email provider
func NewSMTPEmailProvider(host string, port int, username, password, fromEmail, fromName string, timeout time.Duration) EmailProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SMTPEmailProvider{
		dialer:    gomail.NewDialer(host, port, username, password),
		fromEmail: fromEmail,
		fromName:  fromName,
		timeout:   timeout,
	}
}

// SendEmail sends one HTML email. The send is bounded by the provider timeout
// so a stalled relay cannot hold a request open indefinitely.
func (p *SMTPEmailProvider) SendEmail(email, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", p.fromEmail, p.fromName)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	done := make(chan error, 1)
	go func() {
		done <- p.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(p.timeout):
		return fmt.Errorf("smtp send to %s timed out after %s", email, p.timeout)
	}
}

// MockEmailProvider logs instead of sending; used in development and tests
type MockEmailProvider struct{}

func NewMockEmailProvider() EmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(email, subject, htmlBody string) error {
	log.Printf("Email sent to %s [%s]", email, subject)
	return nil
}

// EmailNotificationService sends lifecycle emails and records every dispatch
// outcome in the notification log. A failed send is logged and reported to
// the caller; it never blocks or reverses the state transition that
// triggered it.
type EmailNotificationService struct {
	provider EmailProvider
	logRepo  repository.NotificationLogRepository
}

// NewEmailNotificationService creates a new email notification service.
// logRepo may be nil, in which case outcomes are only written to the app log.
func NewEmailNotificationService(provider EmailProvider, logRepo repository.NotificationLogRepository) *EmailNotificationService {
	return &EmailNotificationService{provider: provider, logRepo: logRepo}
}

// NotifyNumberAssigned emails the new owner of a number
func (s *EmailNotificationService) NotifyNumberAssigned(ctx context.Context, user *models.User, number *models.PhoneNumber, assignment *models.PhoneNumberAssignment) error {
	subject := fmt.Sprintf("Phone number %s assigned to your account", number.Number)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hello %s,</h2>
			<p>The phone number <strong>%s</strong> has been assigned to your account.</p>
			<ul>
				<li>Monthly rate: %.2f %s</li>
				<li>Setup fee: %.2f %s</li>
				<li>Billing starts: %s</li>
			</ul>
		</div>
	`, user.FullName(), number.Number,
		assignment.MonthlyRate, assignment.Currency,
		assignment.SetupFee, assignment.Currency,
		assignment.BillingStartDate.Format("2006-01-02"))

	return s.send(ctx, user.Email, subject, body, models.NotificationTypeNumberAssigned, &number.ID)
}

// NotifyNumberUnassigned emails the previous owner of a released number
func (s *EmailNotificationService) NotifyNumberUnassigned(ctx context.Context, user *models.User, number *models.PhoneNumber, reason *string) error {
	subject := fmt.Sprintf("Phone number %s removed from your account", number.Number)
	reasonLine := ""
	if reason != nil && *reason != "" {
		reasonLine = fmt.Sprintf("<p>Reason: %s</p>", *reason)
	}
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hello %s,</h2>
			<p>The phone number <strong>%s</strong> has been removed from your account.</p>
			%s
		</div>
	`, user.FullName(), number.Number, reasonLine)

	return s.send(ctx, user.Email, subject, body, models.NotificationTypeNumberUnassigned, &number.ID)
}

// NotifyBulkPurchaseSummary emails one receipt for a whole bulk purchase
func (s *EmailNotificationService) NotifyBulkPurchaseSummary(ctx context.Context, user *models.User, summary *dto.BulkSummary) error {
	subject := fmt.Sprintf("Bulk purchase: %d of %d numbers assigned", summary.Successful, summary.Total)
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Hello %s,</h2>
			<p>Your bulk purchase finished with %d assigned and %d failed numbers.</p>
			<ul>
				<li>Total monthly: %.2f %s</li>
				<li>Total setup fees: %.2f %s</li>
			</ul>
		</div>
	`, user.FullName(),
		summary.Successful, summary.Failed,
		summary.TotalMonthly, summary.Currency,
		summary.TotalSetup, summary.Currency)

	return s.send(ctx, user.Email, subject, body, models.NotificationTypeBulkPurchase, nil)
}

func (s *EmailNotificationService) send(ctx context.Context, recipient, subject, body, notificationType string, phoneNumberID *uint) error {
	if s.provider == nil {
		return fmt.Errorf("email provider not configured")
	}
	if recipient == "" || !strings.Contains(recipient, "@") {
		return fmt.Errorf("invalid email address: %s", recipient)
	}

	sendErr := s.provider.SendEmail(recipient, subject, body)
	s.record(ctx, recipient, subject, notificationType, phoneNumberID, sendErr)
	return sendErr
}

func (s *EmailNotificationService) record(ctx context.Context, recipient, subject, notificationType string, phoneNumberID *uint, sendErr error) {
	if s.logRepo == nil {
		if sendErr != nil {
			log.Printf("email dispatch to %s failed: %v", recipient, sendErr)
		}
		return
	}

	entry := &models.NotificationLog{
		Recipient:     recipient,
		Subject:       subject,
		Type:          notificationType,
		Status:        models.NotificationStatusSent,
		PhoneNumberID: phoneNumberID,
	}
	if sendErr != nil {
		entry.Status = models.NotificationStatusFailed
		msg := sendErr.Error()
		if len(msg) > 500 {
			msg = msg[:500]
		}
		entry.Error = &msg
	}

	if err := s.logRepo.Save(ctx, entry); err != nil {
		log.Printf("failed to record notification log for %s: %v", recipient, err)
	}
}
