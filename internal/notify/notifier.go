package notify

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fluxdesk/helpdesk/internal/domain"
	"github.com/fluxdesk/helpdesk/internal/events"
	"github.com/fluxdesk/helpdesk/internal/repository"
)

// Notifier consumes ticket mutation events and performs the best-effort
// fan-out: resolve the directory, run the router, deliver on each channel.
// Delivery failures are logged and never propagate; the ticket mutation that
// produced the event is already committed and stays committed.
type Notifier struct {
	users       repository.UserRepository
	hub         *Hub
	mailer      Mailer
	logger      *zap.Logger
	frontendURL string
}

// NotifierDependencies bundles collaborators.
type NotifierDependencies struct {
	UserRepo    repository.UserRepository
	Hub         *Hub
	Mailer      Mailer
	Logger      *zap.Logger
	FrontendURL string
}

// NewNotifier creates the consumer.
func NewNotifier(deps NotifierDependencies) *Notifier {
	return &Notifier{
		users:       deps.UserRepo,
		hub:         deps.Hub,
		mailer:      deps.Mailer,
		logger:      deps.Logger,
		frontendURL: deps.FrontendURL,
	}
}

// RegisterHandlers subscribes the notifier to every event the router knows
// how to fan out.
func (n *Notifier) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventCommentAdded,
		events.EventTicketAssigned,
		events.EventTicketFinalized,
		events.EventTicketReopened,
	} {
		dispatcher.Subscribe(eventType, n.handleEvent)
	}
}

func (n *Notifier) handleEvent(ctx context.Context, event events.Event) error {
	input, err := n.resolveDirectory(ctx, event)
	if err != nil {
		n.logger.Error("notification directory lookup failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.Ticket.ID),
			zap.Error(err))
		return nil
	}

	for _, delivery := range Route(input) {
		n.deliver(event, delivery)
	}
	return nil
}

func (n *Notifier) resolveDirectory(ctx context.Context, event events.Event) (RouteInput, error) {
	input := RouteInput{Event: event}

	owner, err := n.users.GetByID(ctx, event.Ticket.OwnerID)
	if err != nil && err != pgx.ErrNoRows {
		return input, err
	}
	input.Owner = owner

	if event.Ticket.AssigneeEmail != nil && *event.Ticket.AssigneeEmail != "" {
		assignee, err := n.users.GetByEmail(ctx, *event.Ticket.AssigneeEmail)
		if err != nil && err != pgx.ErrNoRows {
			return input, err
		}
		input.Assignee = assignee
	}

	admins, err := n.users.ListAdmins(ctx)
	if err != nil {
		return input, err
	}
	input.Admins = admins
	return input, nil
}

func (n *Notifier) deliver(event events.Event, delivery Delivery) {
	ticket := event.Ticket
	for _, channel := range delivery.Channels {
		switch channel {
		case ChannelPush:
			if n.hub == nil {
				continue
			}
			err := n.hub.Publish(delivery.UserID, PushNotification{
				Message:      delivery.Message,
				TicketID:     ticket.ID,
				TicketNumber: ticket.DisplayNumber(),
				Title:        ticket.Title,
				Link:         delivery.Link,
			})
			if err != nil {
				n.logger.Warn("push delivery failed",
					zap.String("user_id", delivery.UserID),
					zap.String("ticket_id", ticket.ID),
					zap.Error(err))
			}
		case ChannelEmail:
			if n.mailer == nil || delivery.Email == "" {
				continue
			}
			html := n.emailBody(ticket, delivery)
			if err := n.mailer.Send(delivery.Email, delivery.Subject, html, delivery.Message); err != nil {
				n.logger.Warn("email delivery failed",
					zap.String("to", delivery.Email),
					zap.String("ticket_id", ticket.ID),
					zap.Error(err))
			}
		}
	}
}

func (n *Notifier) emailBody(ticket domain.Ticket, delivery Delivery) string {
	rows := map[string]string{
		"Number":   ticket.DisplayNumber(),
		"Title":    ticket.Title,
		"Priority": string(ticket.Priority),
		"Status":   string(ticket.Status),
	}
	order := []string{"Number", "Title", "Priority", "Status"}
	return EmailBody(delivery.Subject, rows, order, n.frontendURL+delivery.Link)
}
