package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxdesk/helpdesk/internal/domain"
)

// EmailSettingsRepository persists the singleton SMTP configuration row.
type EmailSettingsRepository interface {
	Get(ctx context.Context) (*domain.EmailSettings, error)
	Save(ctx context.Context, settings *domain.EmailSettings) error
}

type emailSettingsRepository struct {
	pool *pgxpool.Pool
}

// NewEmailSettingsRepository builds the repository.
func NewEmailSettingsRepository(pool *pgxpool.Pool) EmailSettingsRepository {
	return &emailSettingsRepository{pool: pool}
}

func (r *emailSettingsRepository) Get(ctx context.Context) (*domain.EmailSettings, error) {
	const query = `
        SELECT host, port, username, password, from_address, enabled, updated_at
        FROM email_settings WHERE name='default'`
	var settings domain.EmailSettings
	if err := r.pool.QueryRow(ctx, query).Scan(
		&settings.Host,
		&settings.Port,
		&settings.Username,
		&settings.Password,
		&settings.FromAddress,
		&settings.Enabled,
		&settings.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *emailSettingsRepository) Save(ctx context.Context, settings *domain.EmailSettings) error {
	const query = `
        INSERT INTO email_settings (name, host, port, username, password, from_address, enabled)
        VALUES ('default', $1, $2, $3, $4, $5, $6)
        ON CONFLICT (name) DO UPDATE SET
            host=EXCLUDED.host,
            port=EXCLUDED.port,
            username=EXCLUDED.username,
            password=EXCLUDED.password,
            from_address=EXCLUDED.from_address,
            enabled=EXCLUDED.enabled,
            updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		settings.Host,
		settings.Port,
		settings.Username,
		settings.Password,
		settings.FromAddress,
		settings.Enabled,
	).Scan(&settings.UpdatedAt)
}
