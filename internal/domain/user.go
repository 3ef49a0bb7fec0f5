package domain

import "time"

// User is the domain model for everyone who can log in. Admins are help-desk
// staff; regular users submit tickets.
type User struct {
	ID                string
	Name              string
	Email             string
	Department        string
	IsAdmin           bool
	PasswordHash      string
	TemporaryPassword bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
