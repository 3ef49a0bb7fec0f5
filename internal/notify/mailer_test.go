package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/fluxdesk/helpdesk/internal/config"
	"github.com/fluxdesk/helpdesk/internal/domain"
)

type staticSettings struct {
	settings *domain.EmailSettings
	err      error
}

func (s *staticSettings) Get(_ context.Context) (*domain.EmailSettings, error) {
	return s.settings, s.err
}

func TestSettingsMailerResolve(t *testing.T) {
	fallback := config.SMTPConfig{Host: "env.example.com", Port: 25, From: "env@example.com"}

	tests := []struct {
		name        string
		source      SettingsSource
		fallback    config.SMTPConfig
		wantHost    string
		wantEnabled bool
	}{
		{
			name: "saved settings win over environment",
			source: &staticSettings{settings: &domain.EmailSettings{
				Host: "db.example.com", Port: 587, FromAddress: "db@example.com", Enabled: true,
			}},
			fallback:    fallback,
			wantHost:    "db.example.com",
			wantEnabled: true,
		},
		{
			name: "disabled toggle silences the channel",
			source: &staticSettings{settings: &domain.EmailSettings{
				Host: "db.example.com", Port: 587, Enabled: false,
			}},
			fallback:    fallback,
			wantHost:    "db.example.com",
			wantEnabled: false,
		},
		{
			name:        "no saved row falls back to environment",
			source:      &staticSettings{err: pgx.ErrNoRows},
			fallback:    fallback,
			wantHost:    "env.example.com",
			wantEnabled: true,
		},
		{
			name:        "load failure falls back to environment",
			source:      &staticSettings{err: errors.New("connection refused")},
			fallback:    fallback,
			wantHost:    "env.example.com",
			wantEnabled: true,
		},
		{
			name:        "nothing configured anywhere",
			source:      &staticSettings{err: pgx.ErrNoRows},
			fallback:    config.SMTPConfig{},
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSettingsMailer(tt.source, tt.fallback, nil)
			smtp, enabled := m.resolve(context.Background())
			if enabled != tt.wantEnabled {
				t.Errorf("enabled = %v, want %v", enabled, tt.wantEnabled)
			}
			if smtp.Host != tt.wantHost {
				t.Errorf("host = %q, want %q", smtp.Host, tt.wantHost)
			}
		})
	}
}

func TestSettingsMailerSendWhenDisabled(t *testing.T) {
	source := &staticSettings{settings: &domain.EmailSettings{Host: "db.example.com", Enabled: false}}
	m := NewSettingsMailer(source, config.SMTPConfig{}, nil)

	// Must drop the message without ever dialing.
	if err := m.Send("user@example.com", "subject", "<p>hi</p>", "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
}
