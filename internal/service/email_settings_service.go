package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/fluxdesk/helpdesk/internal/domain"
	"github.com/fluxdesk/helpdesk/internal/notify"
	"github.com/fluxdesk/helpdesk/internal/repository"
	apperrors "github.com/fluxdesk/helpdesk/pkg/util"
)

const defaultSMTPPort = 587

// EmailSettingsInput carries an admin update of the SMTP configuration. An
// empty Password keeps the stored one, so the UI never has to echo secrets.
type EmailSettingsInput struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	Enabled     bool
}

// EmailSettingsService manages the admin-owned SMTP configuration that
// drives the email notification channel.
type EmailSettingsService struct {
	settings repository.EmailSettingsRepository
	mailer   notify.Mailer
}

// NewEmailSettingsService constructs the service.
func NewEmailSettingsService(settings repository.EmailSettingsRepository, mailer notify.Mailer) *EmailSettingsService {
	return &EmailSettingsService{settings: settings, mailer: mailer}
}

// Get returns the stored configuration, or sensible defaults when no admin
// has saved any yet. Admin only.
func (s *EmailSettingsService) Get(ctx context.Context, actor *domain.User) (*domain.EmailSettings, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.EmailSettings{Port: defaultSMTPPort}, nil
		}
		return nil, apperrors.MapError(err)
	}
	return settings, nil
}

// Update validates and stores the SMTP configuration. Admin only.
func (s *EmailSettingsService) Update(ctx context.Context, actor *domain.User, input EmailSettingsInput) (*domain.EmailSettings, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	input.Host = strings.TrimSpace(input.Host)
	input.FromAddress = strings.TrimSpace(input.FromAddress)
	if input.Port == 0 {
		input.Port = defaultSMTPPort
	}
	if input.Port < 1 || input.Port > 65535 {
		return nil, apperrors.NewValidationError("smtp port out of range", map[string]any{"port": input.Port})
	}
	if input.Enabled {
		if input.Host == "" {
			return nil, apperrors.NewValidationError("smtp host required to enable email", map[string]any{"field": "host"})
		}
		if input.FromAddress == "" {
			return nil, apperrors.NewValidationError("from address required to enable email", map[string]any{"field": "from_address"})
		}
	}

	settings := &domain.EmailSettings{
		Host:        input.Host,
		Port:        input.Port,
		Username:    input.Username,
		Password:    input.Password,
		FromAddress: input.FromAddress,
		Enabled:     input.Enabled,
	}
	if input.Password == "" {
		if stored, err := s.settings.Get(ctx); err == nil {
			settings.Password = stored.Password
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
	}

	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, apperrors.MapError(err)
	}
	return settings, nil
}

// SendTest delivers a test message to the given address using the effective
// configuration, letting an admin verify credentials before relying on the
// channel. Admin only.
func (s *EmailSettingsService) SendTest(ctx context.Context, actor *domain.User, to string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	to = strings.TrimSpace(to)
	if to == "" {
		return apperrors.NewValidationError("recipient address required", map[string]any{"field": "to"})
	}

	settings, err := s.settings.Get(ctx)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	if err == nil && !settings.Enabled {
		return apperrors.NewStateError("email channel is disabled", nil)
	}

	rows := map[string]string{"Requested by": actor.Name}
	html := notify.EmailBody("Test email", rows, []string{"Requested by"}, "")
	if err := s.mailer.Send(to, "Helpdesk test email", html, "This is a test email from the helpdesk."); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}
