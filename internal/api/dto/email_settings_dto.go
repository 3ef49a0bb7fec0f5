package dto

import "time"

// EmailSettingsRequest payload for updating the SMTP configuration. An
// empty password keeps the stored one.
type EmailSettingsRequest struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	FromAddress string `json:"from_address"`
	Enabled     bool   `json:"enabled"`
}

// EmailSettingsResponse view. The password is never echoed back.
type EmailSettingsResponse struct {
	Host        string    `json:"host"`
	Port        int       `json:"port"`
	Username    string    `json:"username"`
	FromAddress string    `json:"from_address"`
	Enabled     bool      `json:"enabled"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TestEmailRequest payload for the test-send endpoint.
type TestEmailRequest struct {
	To string `json:"to"`
}
