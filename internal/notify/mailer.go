package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"github.com/fluxdesk/helpdesk/internal/config"
	"github.com/fluxdesk/helpdesk/internal/domain"
)

// Mailer sends a single notification email. Implementations report transport
// failures as errors; the caller decides that they are non-fatal.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// SettingsSource loads the admin-managed SMTP configuration.
type SettingsSource interface {
	Get(ctx context.Context) (*domain.EmailSettings, error)
}

// SettingsMailer resolves SMTP transport per send: the admin-managed
// database settings win, the SMTP_* environment settings are the fallback
// until an admin has saved any. An admin flipping the enabled toggle off
// silences the channel without a restart.
type SettingsMailer struct {
	source   SettingsSource
	fallback config.SMTPConfig
	logger   *zap.Logger
}

// NewSettingsMailer builds the mailer used for all outbound email.
func NewSettingsMailer(source SettingsSource, fallback config.SMTPConfig, logger *zap.Logger) *SettingsMailer {
	return &SettingsMailer{source: source, fallback: fallback, logger: logger}
}

// Send composes and delivers one message, or silently drops it when the
// email channel is not configured or switched off.
func (m *SettingsMailer) Send(to, subject, html, text string) error {
	smtp, enabled := m.resolve(context.Background())
	if !enabled {
		return nil
	}
	return sendMessage(smtp, to, subject, html, text)
}

func (m *SettingsMailer) resolve(ctx context.Context) (config.SMTPConfig, bool) {
	if m.source != nil {
		settings, err := m.source.Get(ctx)
		switch {
		case err == nil:
			return config.SMTPConfig{
				Host:     settings.Host,
				Port:     settings.Port,
				Username: settings.Username,
				Password: settings.Password,
				From:     settings.FromAddress,
			}, settings.Enabled && settings.Host != ""
		case !errors.Is(err, pgx.ErrNoRows):
			if m.logger != nil {
				m.logger.Warn("email settings unavailable, using environment fallback", zap.Error(err))
			}
		}
	}
	return m.fallback, m.fallback.Host != ""
}

func sendMessage(cfg config.SMTPConfig, to, subject, html, text string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return dialer.DialAndSend(msg)
}

// EmailBody renders the shared notification template. Every notification
// email uses the same layout; only the heading, rows and link vary.
func EmailBody(heading string, rows map[string]string, order []string, link string) string {
	body := `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">` +
		`<div style="background: #f8f9fa; padding: 20px; border-radius: 8px;">` +
		fmt.Sprintf(`<h2 style="margin-top: 0;">%s</h2>`, heading)
	for _, key := range order {
		body += fmt.Sprintf(`<p><strong>%s:</strong> %s</p>`, key, rows[key])
	}
	if link != "" {
		body += fmt.Sprintf(`<p style="margin-top: 20px;"><a href="%s" style="background: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View ticket</a></p>`, link)
	}
	return body + `</div></div>`
}
