package domain

import "time"

// Department is an organizational label. Tickets and users reference it by
// name (denormalized), so renaming a department does not rewrite them.
type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
