package domain

import (
	"fmt"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen             TicketStatus = "OPEN"
	TicketStatusInProgress       TicketStatus = "IN_PROGRESS"
	TicketStatusAwaitingResponse TicketStatus = "AWAITING_RESPONSE"
	TicketStatusReopened         TicketStatus = "REOPENED"
	TicketStatusFinalized        TicketStatus = "FINALIZED"
)

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is the aggregate for help-desk requests. History entries live in
// their own append-only table, not on the aggregate row.
type Ticket struct {
	ID                string
	Number            int64
	OwnerID           string
	AssigneeEmail     *string
	Department        string
	Category          string
	Title             string
	Description       string
	Status            TicketStatus
	Priority          TicketPriority
	ResolutionComment *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	FinalizedAt       *time.Time
}

// FormatDisplayNumber renders the user-facing form of a sequential ticket
// number.
func FormatDisplayNumber(n int64) string {
	return fmt.Sprintf("CH-%04d", n)
}

// DisplayNumber renders the user-facing sequential ticket identifier.
func (t *Ticket) DisplayNumber() string {
	return FormatDisplayNumber(t.Number)
}

// IsFinalized reports whether the ticket is in its terminal state.
func (t *Ticket) IsFinalized() bool {
	return t.Status == TicketStatusFinalized
}

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// ValidStatus reports whether s is a known status value.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusAwaitingResponse,
		TicketStatusReopened, TicketStatusFinalized:
		return true
	}
	return false
}
