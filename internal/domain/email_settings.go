package domain

import "time"

// EmailSettings is the admin-managed SMTP configuration for the email
// notification channel. A single row backs the whole installation; when no
// row exists the process-level SMTP environment settings apply.
type EmailSettings struct {
	Host        string    `json:"host"`
	Port        int       `json:"port"`
	Username    string    `json:"username"`
	Password    string    `json:"-"`
	FromAddress string    `json:"from_address"`
	Enabled     bool      `json:"enabled"`
	UpdatedAt   time.Time `json:"updated_at"`
}
