package dto

import (
	"time"

	"github.com/fluxdesk/helpdesk/internal/domain"
)

// CreateTicketRequest payload. Files arrive as multipart parts alongside
// these fields.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
	Department  string                `json:"department"`
	Category    string                `json:"category"`
}

// CommentRequest payload.
type CommentRequest struct {
	Text string `json:"text"`
}

// AssignRequest payload. An empty assignee_email clears the assignment.
type AssignRequest struct {
	AssigneeEmail string `json:"assignee_email"`
}

// StatusRequest payload.
type StatusRequest struct {
	Status            domain.TicketStatus `json:"status"`
	ResolutionComment string              `json:"resolution_comment"`
}

// FinalizeRequest payload.
type FinalizeRequest struct {
	ResolutionComment string `json:"resolution_comment"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            string                `json:"id"`
	Number        int64                 `json:"number"`
	DisplayNumber string                `json:"display_number"`
	Title         string                `json:"title"`
	Department    string                `json:"department"`
	Category      string                `json:"category"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	OwnerID       string                `json:"owner_id"`
	AssigneeEmail *string               `json:"assignee_email"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info with its history thread.
type TicketDetailResponse struct {
	TicketSummary
	Description       string                 `json:"description"`
	ResolutionComment *string                `json:"resolution_comment"`
	FinalizedAt       *time.Time             `json:"finalized_at"`
	History           []HistoryEntryResponse `json:"history"`
}

// HistoryEntryResponse represents one thread entry.
type HistoryEntryResponse struct {
	ID          string              `json:"id"`
	AuthorID    string              `json:"author_id"`
	AuthorName  string              `json:"author_name"`
	Text        string              `json:"text"`
	Attachments []domain.Attachment `json:"attachments"`
	CreatedAt   time.Time           `json:"created_at"`
}

// SuggestionResponse is one prior resolution offered during drafting.
type SuggestionResponse struct {
	TicketID          string  `json:"ticket_id"`
	DisplayNumber     string  `json:"display_number"`
	Title             string  `json:"title"`
	Category          string  `json:"category"`
	ResolutionComment string  `json:"resolution_comment"`
	Score             float64 `json:"score"`
}

// SuggestRequest payload for draft matching.
type SuggestRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// RecurringProblemResponse is one row of the recurring-problem report.
type RecurringProblemResponse struct {
	Category            string    `json:"category"`
	Count               int64     `json:"count"`
	AvgResolutionHours  float64   `json:"avg_resolution_hours"`
	LastFinalizedAt     time.Time `json:"last_finalized_at"`
	SampleDisplayNumber string    `json:"sample_display_number"`
}
