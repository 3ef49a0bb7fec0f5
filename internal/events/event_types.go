package events

import (
	"time"

	"github.com/fluxdesk/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventCommentAdded        EventType = "comment_added"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventAssignmentCleared   EventType = "assignment_cleared"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketFinalized     EventType = "ticket_finalized"
	EventTicketReopened      EventType = "ticket_reopened"
	EventTicketDeleted       EventType = "ticket_deleted"
)

// AllTypes lists every event type services emit, for consumers that want the
// full stream rather than a single type.
func AllTypes() []EventType {
	return []EventType{
		EventTicketCreated,
		EventCommentAdded,
		EventTicketAssigned,
		EventAssignmentCleared,
		EventTicketStatusChanged,
		EventTicketFinalized,
		EventTicketReopened,
		EventTicketDeleted,
	}
}

// Event represents a domain event emitted by services after a mutation has
// been persisted. Consumers get a snapshot of the ticket at emission time.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Ticket    domain.Ticket `json:"ticket"`
	ActorID   string        `json:"actor_id"`
	ActorName string        `json:"actor_name"`
	Timestamp time.Time     `json:"timestamp"`
	Payload   interface{}   `json:"payload,omitempty"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	AuthorIsOwner bool   `json:"author_is_owner"`
	TextPreview   string `json:"text_preview"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeEmail string `json:"assignee_email"`
	Transferred   bool   `json:"transferred"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketFinalizedPayload payload.
type TicketFinalizedPayload struct {
	ResolutionComment string `json:"resolution_comment,omitempty"`
}
