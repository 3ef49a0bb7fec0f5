package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/fluxdesk/helpdesk/internal/events"
)

// Metrics keeps in-memory counters for the HTTP surface and the ticket
// lifecycle. Counters are read through Snapshot, nothing is pushed anywhere.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	eventCount   map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		eventCount:   make(map[string]int64),
	}
}

// RecordRequest increments the counter for a completed request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments the counter for a request that ended in an error
// response, keyed by the domain error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordTicketEvent counts one ticket lifecycle mutation by event type.
func (m *Metrics) RecordTicketEvent(eventType string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventCount[eventType]++
}

// ObserveEvents subscribes the counters to the full lifecycle event stream,
// so assignment, comment and status activity shows up next to the HTTP
// counters.
func (m *Metrics) ObserveEvents(dispatcher events.Dispatcher) {
	if m == nil || dispatcher == nil {
		return
	}
	for _, eventType := range events.AllTypes() {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			m.RecordTicketEvent(string(event.Type))
			return nil
		})
	}
}

// Snapshot is a point-in-time copy of every counter.
type Snapshot struct {
	Requests     map[string]int64 `json:"requests"`
	Errors       map[string]int64 `json:"errors"`
	TicketEvents map[string]int64 `json:"ticket_events"`
}

// Snapshot copies the counters so callers can serialize them without holding
// the lock.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{
		Requests:     make(map[string]int64),
		Errors:       make(map[string]int64),
		TicketEvents: make(map[string]int64),
	}
	if m == nil {
		return snap
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range m.requestCount {
		snap.Requests[k] = v
	}
	for k, v := range m.errorCount {
		snap.Errors[k] = v
	}
	for k, v := range m.eventCount {
		snap.TicketEvents[k] = v
	}
	return snap
}
