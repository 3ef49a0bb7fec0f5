package observability

import (
	"context"
	"testing"
	"time"

	"github.com/fluxdesk/helpdesk/internal/events"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "POST", 201, 10*time.Millisecond)
	m.RecordRequest("/tickets", "POST", 201, 12*time.Millisecond)
	m.RecordError("/tickets/:id", "PATCH", "STATE_CONFLICT")

	snap := m.Snapshot()
	if snap.Requests["/tickets|POST|201"] != 2 {
		t.Errorf("requests = %v", snap.Requests)
	}
	if snap.Errors["/tickets/:id|PATCH|STATE_CONFLICT"] != 1 {
		t.Errorf("errors = %v", snap.Errors)
	}

	// Snapshot is a copy; mutating it must not leak into the live counters.
	snap.Requests["/tickets|POST|201"] = 99
	if m.Snapshot().Requests["/tickets|POST|201"] != 2 {
		t.Error("snapshot shares state with the live counters")
	}
}

func TestMetricsObserveEvents(t *testing.T) {
	m := NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	m.ObserveEvents(dispatcher)

	ctx := context.Background()
	_ = dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated})
	_ = dispatcher.Publish(ctx, events.Event{Type: events.EventTicketCreated})
	_ = dispatcher.Publish(ctx, events.Event{Type: events.EventTicketFinalized})

	snap := m.Snapshot()
	if snap.TicketEvents["ticket_created"] != 2 {
		t.Errorf("ticket_created = %d", snap.TicketEvents["ticket_created"])
	}
	if snap.TicketEvents["ticket_finalized"] != 1 {
		t.Errorf("ticket_finalized = %d", snap.TicketEvents["ticket_finalized"])
	}
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "INTERNAL_ERROR")
	m.RecordTicketEvent("ticket_created")
	if snap := m.Snapshot(); len(snap.Requests) != 0 {
		t.Errorf("snapshot = %v", snap)
	}
}
