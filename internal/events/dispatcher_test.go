package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishInvokesSubscribersInOrder(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	var calls []string
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		calls = append(calls, "first")
		return nil
	})
	dispatcher.Subscribe(EventTicketCreated, func(_ context.Context, _ Event) error {
		calls = append(calls, "second")
		return nil
	})
	dispatcher.Subscribe(EventCommentAdded, func(_ context.Context, _ Event) error {
		calls = append(calls, "other")
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(calls) != 2 || calls[0] != "first" || calls[1] != "second" {
		t.Errorf("calls = %v", calls)
	}
}

func TestPublishSwallowsHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	reached := false
	dispatcher.Subscribe(EventTicketFinalized, func(_ context.Context, _ Event) error {
		return errors.New("consumer exploded")
	})
	dispatcher.Subscribe(EventTicketFinalized, func(_ context.Context, _ Event) error {
		reached = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketFinalized}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if !reached {
		t.Error("handler after the failing one was not invoked")
	}
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketDeleted}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}
