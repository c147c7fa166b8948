package email

import (
	"errors"
	"strings"
	"testing"
	"time"

	"flightdeals/internal/config"
)

// fakeSession records sends instead of talking to an SMTP server.
type fakeSession struct {
	sent    []string
	msgs    []string
	failOn  string
	closed  bool
	closeFn func() error
}

func (f *fakeSession) Send(from, to string, msg []byte) error {
	if to == f.failOn {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, to)
	f.msgs = append(f.msgs, string(msg))
	return nil
}

func (f *fakeSession) Close() error {
	f.closed = true
	if f.closeFn != nil {
		return f.closeFn()
	}
	return nil
}

func enabledConfig() *config.Config {
	return &config.Config{
		SMTPEnabled:  true,
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPFrom:     "deals@example.com",
		SMTPFromName: "Flight Deals",
	}
}

func newTestService(cfg *config.Config, sess *fakeSession) (*Service, *int) {
	dials := 0
	svc := NewService(cfg)
	svc.dial = func() (session, error) {
		dials++
		return sess, nil
	}
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) }
	return svc, &dials
}

func TestNewService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.Config
		wantEnabled bool
	}{
		{
			name:        "enabled when all SMTP settings configured",
			cfg:         enabledConfig(),
			wantEnabled: true,
		},
		{
			name: "disabled when SMTPEnabled is false",
			cfg: &config.Config{
				SMTPHost: "smtp.example.com",
				SMTPFrom: "deals@example.com",
			},
			wantEnabled: false,
		},
		{
			name: "disabled when SMTPFrom is empty",
			cfg: &config.Config{
				SMTPEnabled: true,
				SMTPHost:    "smtp.example.com",
			},
			wantEnabled: false,
		},
		{
			name:        "disabled with empty config",
			cfg:         &config.Config{},
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.cfg)
			if svc.IsEnabled() != tt.wantEnabled {
				t.Errorf("IsEnabled() = %v, want %v", svc.IsEnabled(), tt.wantEnabled)
			}
		})
	}
}

func TestService_Broadcast(t *testing.T) {
	sess := &fakeSession{}
	svc, dials := newTestService(enabledConfig(), sess)

	to := []string{"a@example.com", "b@example.com", "c@example.com"}
	sent, err := svc.Broadcast(to, "New Low Price Flight", "Great deal alert!")
	if err != nil {
		t.Fatalf("Broadcast() error = %v", err)
	}

	if sent != 3 {
		t.Errorf("sent = %d, want 3", sent)
	}
	if *dials != 1 {
		t.Errorf("sessions opened = %d, want 1", *dials)
	}
	if !sess.closed {
		t.Error("session was not closed")
	}
	for i, rcpt := range to {
		if sess.sent[i] != rcpt {
			t.Errorf("send %d went to %q, want %q", i, sess.sent[i], rcpt)
		}
		if !strings.Contains(sess.msgs[i], "To: "+rcpt+"\r\n") {
			t.Errorf("message %d missing To header for %s", i, rcpt)
		}
	}
}

func TestService_Broadcast_Disabled(t *testing.T) {
	sess := &fakeSession{}
	svc, dials := newTestService(&config.Config{}, sess)

	sent, err := svc.Broadcast([]string{"a@example.com"}, "Test", "Text")
	if err != nil || sent != 0 {
		t.Errorf("Broadcast() = %d, %v; want 0, nil", sent, err)
	}
	if *dials != 0 {
		t.Errorf("sessions opened = %d, want 0", *dials)
	}
}

func TestService_Broadcast_NoRecipients(t *testing.T) {
	sess := &fakeSession{}
	svc, dials := newTestService(enabledConfig(), sess)

	for _, to := range [][]string{nil, {}} {
		sent, err := svc.Broadcast(to, "Test", "Text")
		if err != nil || sent != 0 {
			t.Errorf("Broadcast(%v) = %d, %v; want 0, nil", to, sent, err)
		}
	}
	if *dials != 0 {
		t.Errorf("sessions opened = %d, want 0", *dials)
	}
}

func TestService_Broadcast_StopsOnFailure(t *testing.T) {
	sess := &fakeSession{failOn: "b@example.com"}
	svc, _ := newTestService(enabledConfig(), sess)

	sent, err := svc.Broadcast([]string{"a@example.com", "b@example.com", "c@example.com"}, "Test", "Text")
	if err == nil {
		t.Fatal("Broadcast() error = nil, want failure")
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
	if !sess.closed {
		t.Error("session was not closed after failure")
	}
}

func TestService_Broadcast_QuitError(t *testing.T) {
	sess := &fakeSession{closeFn: func() error { return errors.New("421 closing") }}
	svc, _ := newTestService(enabledConfig(), sess)

	sent, err := svc.Broadcast([]string{"a@example.com"}, "Test", "Text")
	if err == nil || !strings.Contains(err.Error(), "quit") {
		t.Errorf("Broadcast() error = %v, want quit error", err)
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
}

func TestService_FromHeader(t *testing.T) {
	tests := []struct {
		name       string
		fromName   string
		wantHeader string
	}{
		{
			name:       "with display name",
			fromName:   "Flight Deals",
			wantHeader: "Flight Deals <deals@example.com>",
		},
		{
			name:       "without display name",
			fromName:   "",
			wantHeader: "deals@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := enabledConfig()
			cfg.SMTPFromName = tt.fromName
			svc := NewService(cfg)
			if got := svc.fromHeader(); got != tt.wantHeader {
				t.Errorf("fromHeader() = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestBuildMessage(t *testing.T) {
	svc, _ := newTestService(enabledConfig(), &fakeSession{})

	msg := svc.buildMessage("a@example.com", "New Low Price Flight", "Great deal alert!\nhttps://www.kiwi.com/deep")

	checks := []string{
		"From: Flight Deals <deals@example.com>\r\n",
		"To: a@example.com\r\n",
		"Subject: New Low Price Flight\r\n",
		"Date: Mon, 01 Jan 2024 08:00:00 +0000\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: text/plain; charset=\"UTF-8\"\r\n",
		"\r\n\r\nGreat deal alert!\nhttps://www.kiwi.com/deep\r\n",
	}
	for _, check := range checks {
		if !strings.Contains(msg, check) {
			t.Errorf("message missing %q\nMessage:\n%s", check, msg)
		}
	}
}

func TestBuildMessage_EncodesNonASCIISubject(t *testing.T) {
	svc, _ := newTestService(enabledConfig(), &fakeSession{})

	msg := svc.buildMessage("a@example.com", "Dhaka → Paris", "body")
	if !strings.Contains(msg, "Subject: =?utf-8?q?") {
		t.Errorf("subject not Q-encoded:\n%s", msg)
	}
}
