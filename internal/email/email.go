package email

import (
	"crypto/tls"
	"fmt"
	"log"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"flightdeals/internal/config"
)

// session is an open, authenticated mail transport.
type session interface {
	Send(from, to string, msg []byte) error
	Close() error
}

// Service handles sending email notifications.
type Service struct {
	cfg     *config.Config
	enabled bool
	dial    func() (session, error)
	now     func() time.Time
}

// NewService creates a new email service.
func NewService(cfg *config.Config) *Service {
	s := &Service{
		cfg:     cfg,
		enabled: cfg.IsEmailEnabled(),
		now:     time.Now,
	}
	s.dial = s.dialSMTP

	if s.enabled {
		log.Printf("Email notifications enabled (SMTP: %s:%d)", cfg.SMTPHost, cfg.SMTPPort)
	} else {
		log.Println("Email notifications disabled (SMTP not configured)")
	}

	return s
}

// IsEnabled returns true if email is enabled.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// Broadcast opens a single SMTP session and sends a separate copy of the
// message to every recipient. It returns how many messages were accepted.
func (s *Service) Broadcast(to []string, subject, textBody string) (sent int, err error) {
	if !s.enabled || len(to) == 0 {
		return 0, nil
	}

	sess, err := s.dial()
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("SMTP quit failed: %w", cerr)
		}
	}()

	for _, rcpt := range to {
		msg := s.buildMessage(rcpt, subject, textBody)
		if err := sess.Send(s.cfg.SMTPFrom, rcpt, []byte(msg)); err != nil {
			return sent, fmt.Errorf("send to %s: %w", rcpt, err)
		}
		sent++
	}

	return sent, nil
}

// fromHeader returns the From header value, with display name when configured.
func (s *Service) fromHeader() string {
	if s.cfg.SMTPFromName != "" {
		return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.cfg.SMTPFromName), s.cfg.SMTPFrom)
	}
	return s.cfg.SMTPFrom
}

// buildMessage renders a plain-text message for one recipient.
func (s *Service) buildMessage(to, subject, textBody string) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", s.fromHeader()))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject)))
	msg.WriteString(fmt.Sprintf("Date: %s\r\n", s.now().Format(time.RFC1123Z)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(textBody)
	msg.WriteString("\r\n")

	return msg.String()
}

// dialSMTP connects according to the TLS mode and authenticates.
func (s *Service) dialSMTP() (session, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	tlsConfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}

	var client *smtp.Client
	switch s.cfg.SMTPTLS {
	case "tls":
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("TLS dial failed: %w", err)
		}
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("SMTP client failed: %w", err)
		}
	case "none":
		var err error
		client, err = smtp.Dial(addr)
		if err != nil {
			return nil, fmt.Errorf("SMTP dial failed: %w", err)
		}
	default: // "starttls"
		var err error
		client, err = smtp.Dial(addr)
		if err != nil {
			return nil, fmt.Errorf("SMTP dial failed: %w", err)
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("STARTTLS failed: %w", err)
		}
	}

	if s.cfg.SMTPUsername != "" && s.cfg.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	return &smtpSession{client: client}, nil
}

// smtpSession sends messages over one net/smtp connection.
type smtpSession struct {
	client *smtp.Client
}

func (s *smtpSession) Send(from, to string, msg []byte) error {
	if err := s.client.Mail(from); err != nil {
		return fmt.Errorf("SMTP MAIL failed: %w", err)
	}

	if err := s.client.Rcpt(to); err != nil {
		return fmt.Errorf("SMTP RCPT failed: %w", err)
	}

	w, err := s.client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed: %w", err)
	}

	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("SMTP write failed: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("SMTP close failed: %w", err)
	}

	return nil
}

func (s *smtpSession) Close() error {
	if err := s.client.Quit(); err != nil {
		s.client.Close()
		return err
	}
	return nil
}
