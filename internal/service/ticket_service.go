package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fluxdesk/helpdesk/internal/cache"
	"github.com/fluxdesk/helpdesk/internal/domain"
	"github.com/fluxdesk/helpdesk/internal/events"
	"github.com/fluxdesk/helpdesk/internal/repository"
	"github.com/fluxdesk/helpdesk/internal/upload"
	apperrors "github.com/fluxdesk/helpdesk/pkg/util"
)

const (
	minTitleLen       = 5
	minDescriptionLen = 10
)

// TicketService coordinates the ticket lifecycle: every mutation validates
// permission, persists, appends history where required, and publishes a
// domain event. Notification fan-out happens in the event consumers, never
// here, so a delivery failure can never fail a committed mutation.
type TicketService struct {
	tickets       repository.TicketRepository
	history       repository.HistoryRepository
	users         repository.UserRepository
	listCache     *cache.TicketListCache
	dispatcher    events.Dispatcher
	maxAttachSize int64
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo        repository.TicketRepository
	HistoryRepo       repository.HistoryRepository
	UserRepo          repository.UserRepository
	ListCache         *cache.TicketListCache
	Dispatcher        events.Dispatcher
	MaxAttachmentSize int64
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Department  string
	Category    string
	Files       []upload.FileInput
}

// TicketListInput describes listing filters.
type TicketListInput struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Department *string
	Category   *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	maxSize := deps.MaxAttachmentSize
	if maxSize <= 0 {
		maxSize = upload.MaxAttachmentSize
	}
	return &TicketService{
		tickets:       deps.TicketRepo,
		history:       deps.HistoryRepo,
		users:         deps.UserRepo,
		listCache:     deps.ListCache,
		dispatcher:    deps.Dispatcher,
		maxAttachSize: maxSize,
	}
}

// Create opens a new ticket for the owner. The ticket number comes from an
// atomic counter, so concurrent creates always get distinct numbers.
func (s *TicketService) Create(ctx context.Context, owner *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if owner == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if utf8.RuneCountInString(title) < minTitleLen {
		return nil, apperrors.NewValidationError("title must be at least 5 characters", map[string]any{"field": "title"})
	}
	if utf8.RuneCountInString(description) < minDescriptionLen {
		return nil, apperrors.NewValidationError("description must be at least 10 characters", map[string]any{"field": "description"})
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	attachments, err := upload.ProcessAll(input.Files, s.maxAttachSize)
	if err != nil {
		return nil, err
	}

	number, err := s.tickets.NextTicketNumber(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	ticket := &domain.Ticket{
		Number:      number,
		OwnerID:     owner.ID,
		Department:  strings.TrimSpace(input.Department),
		Category:    strings.TrimSpace(input.Category),
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	// an initial history entry exists only when the ticket carries attachments
	if len(attachments) > 0 {
		entry := &domain.HistoryEntry{
			TicketID:    ticket.ID,
			AuthorID:    owner.ID,
			AuthorName:  owner.Name,
			Text:        "Ticket opened with attachment.",
			Attachments: attachments,
		}
		if err := s.history.Append(ctx, entry); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		Ticket:    *ticket,
		ActorID:   owner.ID,
		ActorName: owner.Name,
	})
	return ticket, nil
}

// Comment appends one history entry bundling text and attachments. The owner
// may comment while the ticket is not finalized; an admin may comment only
// while currently assigned, but then regardless of status.
func (s *TicketService) Comment(ctx context.Context, actor *domain.User, ticketID, text string, files []upload.FileInput) (*domain.HistoryEntry, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	isOwner := ticket.OwnerID == actor.ID
	isAssignedAdmin := actor.IsAdmin && ticket.AssigneeEmail != nil && *ticket.AssigneeEmail == actor.Email
	switch {
	case isAssignedAdmin:
		// assigned staff may comment even on a finalized ticket
	case isOwner:
		if ticket.IsFinalized() {
			return nil, apperrors.NewStateError("ticket is finalized", map[string]any{"status": ticket.Status})
		}
	default:
		return nil, apperrors.NewPermissionError("only the ticket owner or the assigned admin may comment")
	}

	text = strings.TrimSpace(text)
	attachments, err := upload.ProcessAll(files, s.maxAttachSize)
	if err != nil {
		return nil, err
	}
	if text == "" && len(attachments) == 0 {
		return nil, apperrors.NewValidationError("comment requires text or attachments", nil)
	}
	if text == "" {
		text = "Comment with attachment."
	}

	entry := &domain.HistoryEntry{
		TicketID:    ticket.ID,
		AuthorID:    actor.ID,
		AuthorName:  actor.Name,
		Text:        text,
		Attachments: attachments,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventCommentAdded,
		Ticket:    *ticket,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Payload: events.CommentAddedPayload{
			AuthorIsOwner: isOwner,
			TextPreview:   stringPreview(text, 120),
		},
	})
	return entry, nil
}

// Assign puts the ticket in the hands of the admin with the given email and
// moves it to in-progress. Valid from any non-terminal state.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, ticketID, assigneeEmail string) (*domain.Ticket, error) {
	return s.assign(ctx, actor, ticketID, assigneeEmail, false)
}

// Claim is an admin assigning an unassigned ticket to themselves.
func (s *TicketService) Claim(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	return s.assign(ctx, actor, ticketID, actor.Email, false)
}

// Transfer either reassigns the ticket (status stays in-progress) or, with an
// empty email, clears the assignment and resets the ticket to open.
func (s *TicketService) Transfer(ctx context.Context, actor *domain.User, ticketID, newAssigneeEmail string) (*domain.Ticket, error) {
	if newAssigneeEmail == "" {
		return s.clearAssignment(ctx, actor, ticketID)
	}
	return s.assign(ctx, actor, ticketID, newAssigneeEmail, true)
}

func (s *TicketService) assign(ctx context.Context, actor *domain.User, ticketID, assigneeEmail string, transferred bool) (*domain.Ticket, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsFinalized() {
		return nil, apperrors.NewStateError("cannot assign a finalized ticket", map[string]any{"status": ticket.Status})
	}

	assignee, err := s.users.GetByEmail(ctx, assigneeEmail)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("assignee", map[string]any{"email": assigneeEmail})
		}
		return nil, apperrors.MapError(err)
	}
	// Only admins can work tickets; a non-admin assignee would hold a ticket
	// they cannot comment on.
	if !assignee.IsAdmin {
		return nil, apperrors.NewValidationError("assignee must be an admin", map[string]any{"email": assignee.Email})
	}

	ticket.AssigneeEmail = &assignee.Email
	ticket.Status = domain.TicketStatusInProgress
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.appendSystemEntry(ctx, ticket, actor, "Assigned to "+assignee.Name+"."); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketAssigned,
		Ticket:    *ticket,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Payload: events.TicketAssignedPayload{
			AssigneeEmail: assignee.Email,
			Transferred:   transferred,
		},
	})
	return ticket, nil
}

func (s *TicketService) clearAssignment(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsFinalized() {
		return nil, apperrors.NewStateError("cannot change assignment of a finalized ticket", map[string]any{"status": ticket.Status})
	}

	ticket.AssigneeEmail = nil
	ticket.Status = domain.TicketStatusOpen
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.appendSystemEntry(ctx, ticket, actor, "Assignment removed."); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventAssignmentCleared,
		Ticket:    *ticket,
		ActorID:   actor.ID,
		ActorName: actor.Name,
	})
	return ticket, nil
}

// UpdateStatus moves the ticket through the state machine. Finalizing stores
// the resolution comment; finalizing twice is a state error.
func (s *TicketService) UpdateStatus(ctx context.Context, actor *domain.User, ticketID string, newStatus domain.TicketStatus, resolutionComment string) (*domain.Ticket, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !domain.ValidStatus(newStatus) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewStateError("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	finalized := newStatus == domain.TicketStatusFinalized
	if finalized {
		now := time.Now()
		ticket.FinalizedAt = &now
		comment := strings.TrimSpace(resolutionComment)
		ticket.ResolutionComment = &comment
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	text := "Status changed to " + string(newStatus) + "."
	if finalized {
		text = "Ticket finalized."
	}
	if err := s.appendSystemEntry(ctx, ticket, actor, text); err != nil {
		return nil, err
	}

	if finalized {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketFinalized,
			Ticket:    *ticket,
			ActorID:   actor.ID,
			ActorName: actor.Name,
			Payload: events.TicketFinalizedPayload{
				ResolutionComment: strings.TrimSpace(resolutionComment),
			},
		})
	} else {
		s.publishEvent(ctx, events.Event{
			Type:      events.EventTicketStatusChanged,
			Ticket:    *ticket,
			ActorID:   actor.ID,
			ActorName: actor.Name,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: newStatus,
			},
		})
	}
	return ticket, nil
}

// Finalize closes the ticket with a resolution comment.
func (s *TicketService) Finalize(ctx context.Context, actor *domain.User, ticketID, resolutionComment string) (*domain.Ticket, error) {
	return s.UpdateStatus(ctx, actor, ticketID, domain.TicketStatusFinalized, resolutionComment)
}

// Reopen moves a finalized ticket back into the workflow. The owner or any
// admin may reopen.
func (s *TicketService) Reopen(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && ticket.OwnerID != actor.ID {
		return nil, apperrors.NewPermissionError("only the ticket owner or an admin may reopen")
	}
	if !ticket.IsFinalized() {
		return nil, apperrors.NewStateError("ticket is not finalized", map[string]any{"status": ticket.Status})
	}

	ticket.Status = domain.TicketStatusReopened
	ticket.FinalizedAt = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.appendSystemEntry(ctx, ticket, actor, "Ticket reopened."); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketReopened,
		Ticket:    *ticket,
		ActorID:   actor.ID,
		ActorName: actor.Name,
	})
	return ticket, nil
}

// Delete removes the ticket and its history. Admin only.
func (s *TicketService) Delete(ctx context.Context, actor *domain.User, ticketID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketDeleted,
		Ticket:    *ticket,
		ActorID:   actor.ID,
		ActorName: actor.Name,
	})
	return nil
}

// Get fetches a ticket with its history, enforcing visibility: admins see
// everything, regular users only their own tickets.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, ticketID string) (*domain.Ticket, []domain.HistoryEntry, error) {
	if actor == nil {
		return nil, nil, apperrors.NewUnauthorized("authenticated user required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.IsAdmin && ticket.OwnerID != actor.ID {
		return nil, nil, apperrors.NewPermissionError("access denied")
	}
	history, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, history, nil
}

// List returns tickets visible to the actor, served from the query cache
// when a recent identical query exists.
func (s *TicketService) List(ctx context.Context, actor *domain.User, input TicketListInput) ([]domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authenticated user required")
	}
	filter := repository.TicketFilter{
		Statuses:   input.Statuses,
		Priorities: input.Priorities,
		Department: input.Department,
		Category:   input.Category,
		SearchTerm: input.SearchTerm,
		Limit:      input.Limit,
		Offset:     input.Offset,
	}
	if !actor.IsAdmin {
		ownerID := actor.ID
		filter.OwnerID = &ownerID
	}

	if tickets, ok := s.listCache.Get(ctx, filter); ok {
		return tickets, nil
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.listCache.Put(ctx, filter, tickets)
	return tickets, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) appendSystemEntry(ctx context.Context, ticket *domain.Ticket, actor *domain.User, text string) error {
	entry := &domain.HistoryEntry{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Text:       text,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authenticated user required")
	}
	if !actor.IsAdmin {
		return apperrors.NewPermissionError("admin role required")
	}
	return nil
}

// stringPreview truncates on rune boundaries so multibyte text never gets
// split mid-character.
func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:             {domain.TicketStatusInProgress, domain.TicketStatusAwaitingResponse, domain.TicketStatusFinalized},
	domain.TicketStatusInProgress:       {domain.TicketStatusOpen, domain.TicketStatusAwaitingResponse, domain.TicketStatusFinalized},
	domain.TicketStatusAwaitingResponse: {domain.TicketStatusInProgress, domain.TicketStatusFinalized},
	domain.TicketStatusReopened:         {domain.TicketStatusInProgress, domain.TicketStatusFinalized},
	domain.TicketStatusFinalized:        {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
