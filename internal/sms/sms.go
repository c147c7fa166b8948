// Package sms sends text messages through the Twilio REST API.
package sms

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"

	"flightdeals/internal/config"
)

var ErrSMSDisabled = errors.New("sms is not configured")

// messageCreator is the slice of the Twilio API the sender needs.
type messageCreator interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

// Sender sends SMS from a fixed sender number to a fixed receiver number.
type Sender struct {
	api     messageCreator
	from    string
	to      string
	enabled bool
}

// NewSender creates a new Twilio-backed sender.
func NewSender(cfg *config.Config) *Sender {
	s := &Sender{
		from:    cfg.SMSSenderNumber,
		to:      cfg.SMSReceiverNumber,
		enabled: cfg.IsSMSEnabled(),
	}

	if s.enabled {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
		s.api = client.Api
		log.Printf("SMS notifications enabled (from %s to %s)", s.from, s.to)
	} else {
		log.Println("SMS notifications disabled (Twilio not configured)")
	}

	return s
}

// IsEnabled returns true if Twilio is configured.
func (s *Sender) IsEnabled() bool {
	return s.enabled
}

// Send delivers body as one SMS and returns the Twilio message SID.
func (s *Sender) Send(ctx context.Context, body string) (string, error) {
	if !s.enabled {
		return "", ErrSMSDisabled
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(body)

	msg, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("twilio create message: %w", err)
	}

	sid := ""
	if msg != nil && msg.Sid != nil {
		sid = *msg.Sid
	}
	return sid, nil
}
