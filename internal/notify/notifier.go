// Package notify formats deal messages and delivers them by email and SMS.
package notify

import (
	"context"
	"fmt"
	"log"

	"flightdeals/internal/config"
	"flightdeals/internal/metrics"
	"flightdeals/internal/models"
)

// RecipientLister fetches the current subscriber list.
type RecipientLister interface {
	FetchRecipients(ctx context.Context) ([]models.Recipient, error)
}

// Mailer sends one copy of a message per recipient over a single session.
type Mailer interface {
	IsEnabled() bool
	Broadcast(to []string, subject, textBody string) (int, error)
}

// SMSSender sends one text message to the configured receiver.
type SMSSender interface {
	IsEnabled() bool
	Send(ctx context.Context, body string) (string, error)
}

// Notifier delivers deal notifications.
type Notifier struct {
	recipients RecipientLister
	mailer     Mailer
	sms        SMSSender
	subject    string
}

// NewNotifier creates a new notifier.
func NewNotifier(cfg *config.Config, recipients RecipientLister, mailer Mailer, sms SMSSender) *Notifier {
	return &Notifier{
		recipients: recipients,
		mailer:     mailer,
		sms:        sms,
		subject:    cfg.EmailSubject,
	}
}

// EmailEnabled returns true if email broadcasts will be delivered.
func (n *Notifier) EmailEnabled() bool {
	return n.mailer != nil && n.mailer.IsEnabled()
}

// SMSEnabled returns true if SMS will be delivered.
func (n *Notifier) SMSEnabled() bool {
	return n.sms != nil && n.sms.IsEnabled()
}

// BroadcastEmail sends body to every subscriber. The subscriber list is
// fetched on every call. It returns the number of messages sent.
func (n *Notifier) BroadcastEmail(ctx context.Context, body string) (int, error) {
	if !n.EmailEnabled() {
		return 0, nil
	}

	recipients, err := n.recipients.FetchRecipients(ctx)
	if err != nil {
		return 0, err
	}

	to := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if r.Email == "" {
			continue
		}
		to = append(to, r.Email)
	}
	if len(to) == 0 {
		log.Println("No subscribers to email")
		return 0, nil
	}

	sent, err := n.mailer.Broadcast(to, n.subject, body)
	metrics.RecordNotification(models.ChannelEmail, metrics.OutcomeSent, sent)
	if err != nil {
		metrics.RecordNotification(models.ChannelEmail, metrics.OutcomeFailed, 1)
		return sent, fmt.Errorf("email broadcast: %w", err)
	}

	log.Printf("Emailed deal to %d subscribers", sent)
	return sent, nil
}

// SendSMS sends body to the configured phone number.
func (n *Notifier) SendSMS(ctx context.Context, body string) error {
	if !n.SMSEnabled() {
		return nil
	}

	sid, err := n.sms.Send(ctx, body)
	if err != nil {
		metrics.RecordNotification(models.ChannelSMS, metrics.OutcomeFailed, 1)
		return err
	}
	metrics.RecordNotification(models.ChannelSMS, metrics.OutcomeSent, 1)

	log.Printf("SMS sent (sid %s)", sid)
	return nil
}
