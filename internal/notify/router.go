package notify

import (
	"fmt"

	"github.com/fluxdesk/helpdesk/internal/domain"
	"github.com/fluxdesk/helpdesk/internal/events"
)

// Channel identifies a delivery mechanism.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
)

// Delivery is one computed (recipient, message, channel set) triple.
type Delivery struct {
	UserID   string
	Email    string
	Name     string
	Subject  string
	Message  string
	Link     string
	Channels []Channel
}

// RouteInput bundles everything the router needs. The router itself owns no
// state and performs no I/O: the caller resolves the directory beforehand.
type RouteInput struct {
	Event    events.Event
	Owner    *domain.User
	Assignee *domain.User
	Admins   []domain.User
}

// Route computes the recipient set for a ticket mutation event, applying the
// role-aware rules:
//
//   - new ticket: every admin;
//   - comment by the owner: the current assignee, or every admin when the
//     ticket is unassigned (broadcast to the pool);
//   - comment by staff: the owner only;
//   - assignment and transfer: the new assignee only;
//   - finalization and reopen: the owner plus every admin.
//
// The actor never receives a notification about their own action.
func Route(in RouteInput) []Delivery {
	ticket := in.Event.Ticket
	link := "/tickets/" + ticket.ID
	number := ticket.DisplayNumber()

	var deliveries []Delivery
	switch in.Event.Type {
	case events.EventTicketCreated:
		subject := fmt.Sprintf("New ticket %s - %s", number, ticket.Title)
		message := fmt.Sprintf("New ticket opened by %s: %s - %s", in.Event.ActorName, number, ticket.Title)
		deliveries = toAdmins(in.Admins, subject, message, link)

	case events.EventCommentAdded:
		payload, ok := in.Event.Payload.(events.CommentAddedPayload)
		if !ok {
			return nil
		}
		if payload.AuthorIsOwner {
			subject := fmt.Sprintf("New comment on ticket %s", number)
			message := fmt.Sprintf("%s commented on ticket %s - %s", in.Event.ActorName, number, ticket.Title)
			if in.Assignee != nil {
				deliveries = []Delivery{toUser(*in.Assignee, subject, message, link)}
			} else {
				deliveries = toAdmins(in.Admins, subject, message, link)
			}
		} else if in.Owner != nil {
			subject := fmt.Sprintf("Reply on ticket %s", number)
			message := fmt.Sprintf("%s commented on your ticket %s - %s", in.Event.ActorName, number, ticket.Title)
			deliveries = []Delivery{toUser(*in.Owner, subject, message, link)}
		}

	case events.EventTicketAssigned:
		if in.Assignee == nil {
			return nil
		}
		payload, _ := in.Event.Payload.(events.TicketAssignedPayload)
		verb := "assigned"
		if payload.Transferred {
			verb = "transferred"
		}
		subject := fmt.Sprintf("Ticket %s %s to you", number, verb)
		message := fmt.Sprintf("You have been %s ticket %s - %s (priority %s)", verb, number, ticket.Title, ticket.Priority)
		deliveries = []Delivery{toUser(*in.Assignee, subject, message, link)}

	case events.EventTicketFinalized:
		if in.Owner != nil {
			subject := fmt.Sprintf("Ticket %s finalized", number)
			message := fmt.Sprintf("Your ticket %s has been finalized.", number)
			deliveries = append(deliveries, toUser(*in.Owner, subject, message, link))
		}
		subject := fmt.Sprintf("Ticket finalized: %s - %s", number, ticket.Title)
		deliveries = append(deliveries, toAdmins(in.Admins, subject, subject, link)...)

	case events.EventTicketReopened:
		subject := fmt.Sprintf("Ticket reopened: %s - %s", number, ticket.Title)
		deliveries = toAdmins(in.Admins, subject, subject, link)
		if in.Owner != nil {
			message := fmt.Sprintf("Your ticket %s has been reopened.", number)
			deliveries = append(deliveries, toUser(*in.Owner, fmt.Sprintf("Ticket %s reopened", number), message, link))
		}

	default:
		// assignment removal and plain status changes fan out to nobody
		return nil
	}

	return dropActor(deliveries, in.Event.ActorID)
}

func toUser(user domain.User, subject, message, link string) Delivery {
	return Delivery{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		Subject:  subject,
		Message:  message,
		Link:     link,
		Channels: []Channel{ChannelPush, ChannelEmail},
	}
}

func toAdmins(admins []domain.User, subject, message, link string) []Delivery {
	deliveries := make([]Delivery, 0, len(admins))
	for _, admin := range admins {
		deliveries = append(deliveries, toUser(admin, subject, message, link))
	}
	return deliveries
}

func dropActor(deliveries []Delivery, actorID string) []Delivery {
	filtered := deliveries[:0]
	seen := make(map[string]struct{}, len(deliveries))
	for _, delivery := range deliveries {
		if delivery.UserID == actorID {
			continue
		}
		if _, dup := seen[delivery.UserID]; dup {
			continue
		}
		seen[delivery.UserID] = struct{}{}
		filtered = append(filtered, delivery)
	}
	return filtered
}
