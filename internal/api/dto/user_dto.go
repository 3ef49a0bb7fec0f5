package dto

import "time"

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// RegisterUserRequest payload for admin account creation.
type RegisterUserRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	IsAdmin    bool   `json:"is_admin"`
	Password   string `json:"password"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UpdateProfileRequest payload.
type UpdateProfileRequest struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// UserResponse public account view. The password hash never leaves the
// service layer.
type UserResponse struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Department        string    `json:"department"`
	IsAdmin           bool      `json:"is_admin"`
	TemporaryPassword bool      `json:"temporary_password"`
	CreatedAt         time.Time `json:"created_at"`
}
