package dto

import "time"

// DepartmentRequest payload for create and rename.
type DepartmentRequest struct {
	Name string `json:"name"`
}

// DepartmentResponse view.
type DepartmentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
