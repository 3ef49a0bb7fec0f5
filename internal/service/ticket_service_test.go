package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/fluxdesk/helpdesk/internal/domain"
	"github.com/fluxdesk/helpdesk/internal/events"
	"github.com/fluxdesk/helpdesk/internal/repository"
	"github.com/fluxdesk/helpdesk/internal/upload"
	apperrors "github.com/fluxdesk/helpdesk/pkg/util"
)

type fakeTicketRepo struct {
	mu         sync.Mutex
	tickets    map[string]domain.Ticket
	counter    int64
	nextID     int
	lastFilter repository.TicketFilter
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = "t-" + strconv.Itoa(r.nextID)
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.OwnerID != nil && ticket.OwnerID != *filter.OwnerID {
			continue
		}
		result = append(result, ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) ListFinalized(_ context.Context, _ int) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if ticket.Status == domain.TicketStatusFinalized {
			result = append(result, ticket)
		}
	}
	return result, nil
}

func (r *fakeTicketRepo) NextTicketNumber(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter++
	return r.counter, nil
}

func (r *fakeTicketRepo) RecurringProblems(_ context.Context) ([]repository.CategoryStats, error) {
	return nil, nil
}

type fakeHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.HistoryEntry
}

func (r *fakeHistoryRepo) Append(_ context.Context, entry *domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = "h-" + strconv.Itoa(len(r.entries)+1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.HistoryEntry
	for _, entry := range r.entries {
		if entry.TicketID == ticketID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (r *fakeHistoryRepo) forTicket(ticketID string) []domain.HistoryEntry {
	entries, _ := r.ListByTicket(context.Background(), ticketID)
	return entries
}

type fakeUserRepo struct {
	users []domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, _ *domain.User) error { return nil }
func (r *fakeUserRepo) Update(_ context.Context, _ *domain.User) error { return nil }
func (r *fakeUserRepo) Delete(_ context.Context, _ string) error       { return nil }

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			return &r.users[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for i := range r.users {
		if r.users[i].Email == email {
			return &r.users[i], nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) { return r.users, nil }

func (r *fakeUserRepo) ListAdmins(_ context.Context) ([]domain.User, error) {
	var admins []domain.User
	for _, user := range r.users {
		if user.IsAdmin {
			admins = append(admins, user)
		}
	}
	return admins, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []events.Event
	for _, event := range r.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

type fixture struct {
	service  *TicketService
	tickets  *fakeTicketRepo
	history  *fakeHistoryRepo
	recorder *eventRecorder
}

var (
	requester = domain.User{ID: "u-1", Name: "Alice", Email: "alice@example.com"}
	tech      = domain.User{ID: "u-2", Name: "Bob", Email: "bob@example.com", IsAdmin: true}
	tech2     = domain.User{ID: "u-3", Name: "Carol", Email: "carol@example.com", IsAdmin: true}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ticketRepo := newFakeTicketRepo()
	historyRepo := &fakeHistoryRepo{}
	userRepo := &fakeUserRepo{users: []domain.User{requester, tech, tech2}}
	recorder := &eventRecorder{}

	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventCommentAdded,
		events.EventTicketAssigned,
		events.EventAssignmentCleared,
		events.EventTicketStatusChanged,
		events.EventTicketFinalized,
		events.EventTicketReopened,
		events.EventTicketDeleted,
	} {
		dispatcher.Subscribe(eventType, recorder.record)
	}

	svc := NewTicketService(TicketDependencies{
		TicketRepo:  ticketRepo,
		HistoryRepo: historyRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})
	return &fixture{service: svc, tickets: ticketRepo, history: historyRepo, recorder: recorder}
}

func (f *fixture) createTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := f.service.Create(context.Background(), &requester, TicketCreateInput{
		Title:       "Network printer issue",
		Description: "The third floor printer rejects all jobs.",
		Priority:    domain.TicketPriorityHigh,
		Department:  "IT",
		Category:    "Hardware",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return ticket
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	domainErr := apperrors.ToDomainError(err)
	return domainErr.Code
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input TicketCreateInput
	}{
		{"short title", TicketCreateInput{Title: "abc", Description: "long enough description"}},
		{"short multibyte title", TicketCreateInput{Title: "プリンタ", Description: "long enough description"}},
		{"short description", TicketCreateInput{Title: "Printer broken", Description: "short"}},
		{"short multibyte description", TicketCreateInput{Title: "Printer broken", Description: "プリンタが壊れた"}},
		{"unknown priority", TicketCreateInput{Title: "Printer broken", Description: "long enough description", Priority: "CRITICAL"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.service.Create(ctx, &requester, tc.input); errorCode(t, err) != "VALIDATION_FAILED" {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateDefaultsAndNumbering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, &requester, TicketCreateInput{
		Title:       "VPN keeps dropping",
		Description: "Connection drops every ten minutes.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.Status != domain.TicketStatusOpen {
		t.Errorf("Status = %s, want OPEN", first.Status)
	}
	if first.Priority != domain.TicketPriorityMedium {
		t.Errorf("Priority = %s, want MEDIUM default", first.Priority)
	}
	if first.Number != 1 {
		t.Errorf("Number = %d, want 1", first.Number)
	}
	if first.DisplayNumber() != "CH-0001" {
		t.Errorf("DisplayNumber = %s", first.DisplayNumber())
	}
	// no attachments, so no initial history entry
	if entries := f.history.forTicket(first.ID); len(entries) != 0 {
		t.Errorf("unexpected history entries: %d", len(entries))
	}

	second := f.createTicket(t)
	if second.Number != 2 {
		t.Errorf("second Number = %d, want 2", second.Number)
	}

	created := f.recorder.ofType(events.EventTicketCreated)
	if len(created) != 2 {
		t.Fatalf("created events = %d, want 2", len(created))
	}
	if created[1].Ticket.Priority != domain.TicketPriorityHigh {
		t.Errorf("event snapshot priority = %s", created[1].Ticket.Priority)
	}
}

func TestCreateConcurrentNumbersAreDistinct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	numbers := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ticket, err := f.service.Create(ctx, &requester, TicketCreateInput{
				Title:       "Concurrent ticket",
				Description: "Opened from a burst of requests.",
			})
			if err != nil {
				t.Error(err)
				return
			}
			numbers <- ticket.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[int64]struct{}, n)
	for number := range numbers {
		if _, dup := seen[number]; dup {
			t.Fatalf("duplicate ticket number %d", number)
		}
		seen[number] = struct{}{}
	}
	if len(seen) != n {
		t.Fatalf("got %d distinct numbers, want %d", len(seen), n)
	}
}

func TestCreateWithAttachmentWritesInitialHistory(t *testing.T) {
	f := newFixture(t)
	ticket, err := f.service.Create(context.Background(), &requester, TicketCreateInput{
		Title:       "Broken screen",
		Description: "See the attached photo of the crack.",
		Files: []upload.FileInput{
			{Name: "crack.png", DeclaredMime: "image/png", Data: []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}},
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	entries := f.history.forTicket(ticket.ID)
	if len(entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(entries))
	}
	if entries[0].Text != "Ticket opened with attachment." {
		t.Errorf("Text = %q", entries[0].Text)
	}
	if len(entries[0].Attachments) != 1 || entries[0].Attachments[0].FileName != "crack.png" {
		t.Errorf("Attachments = %+v", entries[0].Attachments)
	}
}

func TestCommentPermissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	if _, err := f.service.Comment(ctx, &requester, ticket.ID, "Any update on this?", nil); err != nil {
		t.Fatalf("owner comment: %v", err)
	}

	stranger := domain.User{ID: "u-9", Name: "Mallory", Email: "mallory@example.com"}
	if code := errorCode(t, mustErr(f.service.Comment(ctx, &stranger, ticket.ID, "hi", nil))); code != "PERMISSION_DENIED" {
		t.Errorf("stranger comment code = %s", code)
	}

	// unassigned admin may not comment either
	if code := errorCode(t, mustErr(f.service.Comment(ctx, &tech, ticket.ID, "on it", nil))); code != "PERMISSION_DENIED" {
		t.Errorf("unassigned admin comment code = %s", code)
	}

	if _, err := f.service.Claim(ctx, &tech, ticket.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if _, err := f.service.Comment(ctx, &tech, ticket.ID, "Looking into it.", nil); err != nil {
		t.Fatalf("assigned admin comment: %v", err)
	}

	if _, err := f.service.Finalize(ctx, &tech, ticket.ID, "Replaced the toner."); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	// owner is locked out of a finalized ticket, the assigned admin is not
	if code := errorCode(t, mustErr(f.service.Comment(ctx, &requester, ticket.ID, "thanks", nil))); code != "STATE_CONFLICT" {
		t.Errorf("owner comment on finalized code = %s", code)
	}
	if _, err := f.service.Comment(ctx, &tech, ticket.ID, "Closing note.", nil); err != nil {
		t.Errorf("assigned admin comment on finalized: %v", err)
	}
}

func TestCommentRequiresContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	if code := errorCode(t, mustErr(f.service.Comment(ctx, &requester, ticket.ID, "   ", nil))); code != "VALIDATION_FAILED" {
		t.Errorf("empty comment code = %s", code)
	}

	entry, err := f.service.Comment(ctx, &requester, ticket.ID, "", []upload.FileInput{
		{Name: "log.pdf", DeclaredMime: "application/pdf", Data: []byte("%PDF-1.4\n")},
	})
	if err != nil {
		t.Fatalf("attachment-only comment: %v", err)
	}
	if entry.Text != "Comment with attachment." {
		t.Errorf("Text = %q", entry.Text)
	}
}

func TestAssignAndClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	if code := errorCode(t, mustErr(f.service.Assign(ctx, &requester, ticket.ID, tech.Email))); code != "PERMISSION_DENIED" {
		t.Errorf("non-admin assign code = %s", code)
	}
	if code := errorCode(t, mustErr(f.service.Assign(ctx, &tech, ticket.ID, "nobody@example.com"))); code != "NOT_FOUND" {
		t.Errorf("unknown assignee code = %s", code)
	}
	// A regular user may never hold an assignment: the comment permission
	// check would lock them out of their own ticket.
	if code := errorCode(t, mustErr(f.service.Assign(ctx, &tech, ticket.ID, requester.Email))); code != "VALIDATION_FAILED" {
		t.Errorf("non-admin assignee code = %s", code)
	}

	assigned, err := f.service.Assign(ctx, &tech, ticket.ID, tech2.Email)
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if assigned.Status != domain.TicketStatusInProgress {
		t.Errorf("Status = %s, want IN_PROGRESS", assigned.Status)
	}
	if assigned.AssigneeEmail == nil || *assigned.AssigneeEmail != tech2.Email {
		t.Errorf("AssigneeEmail = %v", assigned.AssigneeEmail)
	}

	entries := f.history.forTicket(ticket.ID)
	if len(entries) == 0 || entries[len(entries)-1].Text != "Assigned to Carol." {
		t.Errorf("history = %+v", entries)
	}

	assignedEvents := f.recorder.ofType(events.EventTicketAssigned)
	if len(assignedEvents) != 1 {
		t.Fatalf("assigned events = %d", len(assignedEvents))
	}
	payload, ok := assignedEvents[0].Payload.(events.TicketAssignedPayload)
	if !ok || payload.AssigneeEmail != tech2.Email {
		t.Errorf("payload = %+v", assignedEvents[0].Payload)
	}
}

func TestTransferEmptyEmailClearsAssignment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	if _, err := f.service.Claim(ctx, &tech, ticket.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	cleared, err := f.service.Transfer(ctx, &tech, ticket.ID, "")
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if cleared.AssigneeEmail != nil {
		t.Errorf("AssigneeEmail = %v, want nil", cleared.AssigneeEmail)
	}
	if cleared.Status != domain.TicketStatusOpen {
		t.Errorf("Status = %s, want OPEN", cleared.Status)
	}
	if got := f.recorder.ofType(events.EventAssignmentCleared); len(got) != 1 {
		t.Errorf("cleared events = %d, want 1", len(got))
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from  domain.TicketStatus
		to    domain.TicketStatus
		valid bool
	}{
		{domain.TicketStatusOpen, domain.TicketStatusInProgress, true},
		{domain.TicketStatusOpen, domain.TicketStatusReopened, false},
		{domain.TicketStatusInProgress, domain.TicketStatusOpen, true},
		{domain.TicketStatusInProgress, domain.TicketStatusAwaitingResponse, true},
		{domain.TicketStatusAwaitingResponse, domain.TicketStatusOpen, false},
		{domain.TicketStatusAwaitingResponse, domain.TicketStatusFinalized, true},
		{domain.TicketStatusReopened, domain.TicketStatusInProgress, true},
		{domain.TicketStatusFinalized, domain.TicketStatusOpen, false},
		{domain.TicketStatusFinalized, domain.TicketStatusFinalized, false},
	}
	for _, tc := range cases {
		if got := isValidTransition(tc.from, tc.to); got != tc.valid {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.valid)
		}
	}
}

func TestFinalizeSetsResolutionAndRejectsTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	finalized, err := f.service.Finalize(ctx, &tech, ticket.ID, "Cable was unplugged.")
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if finalized.Status != domain.TicketStatusFinalized {
		t.Errorf("Status = %s", finalized.Status)
	}
	if finalized.FinalizedAt == nil {
		t.Error("FinalizedAt not set")
	}
	if finalized.ResolutionComment == nil || *finalized.ResolutionComment != "Cable was unplugged." {
		t.Errorf("ResolutionComment = %v", finalized.ResolutionComment)
	}

	entries := f.history.forTicket(ticket.ID)
	if len(entries) == 0 || entries[len(entries)-1].Text != "Ticket finalized." {
		t.Errorf("history = %+v", entries)
	}

	if code := errorCode(t, mustErr(f.service.Finalize(ctx, &tech, ticket.ID, "again"))); code != "STATE_CONFLICT" {
		t.Errorf("second finalize code = %s", code)
	}
}

func TestReopen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	if code := errorCode(t, mustErr(f.service.Reopen(ctx, &requester, ticket.ID))); code != "STATE_CONFLICT" {
		t.Errorf("reopen non-finalized code = %s", code)
	}

	if _, err := f.service.Finalize(ctx, &tech, ticket.ID, "done"); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	stranger := domain.User{ID: "u-9", Name: "Mallory", Email: "mallory@example.com"}
	if code := errorCode(t, mustErr(f.service.Reopen(ctx, &stranger, ticket.ID))); code != "PERMISSION_DENIED" {
		t.Errorf("stranger reopen code = %s", code)
	}

	reopened, err := f.service.Reopen(ctx, &requester, ticket.ID)
	if err != nil {
		t.Fatalf("Reopen: %v", err)
	}
	if reopened.Status != domain.TicketStatusReopened {
		t.Errorf("Status = %s, want REOPENED", reopened.Status)
	}
	if reopened.FinalizedAt != nil {
		t.Error("FinalizedAt should be cleared")
	}
	entries := f.history.forTicket(ticket.ID)
	if len(entries) == 0 || entries[len(entries)-1].Text != "Ticket reopened." {
		t.Errorf("history = %+v", entries)
	}
	if got := f.recorder.ofType(events.EventTicketReopened); len(got) != 1 {
		t.Errorf("reopened events = %d", len(got))
	}
}

func TestHistoryIsAppendOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	comments := []string{"First note.", "Second note.", "Third note."}
	for i, text := range comments {
		if _, err := f.service.Comment(ctx, &requester, ticket.ID, text, nil); err != nil {
			t.Fatalf("Comment %d: %v", i, err)
		}
		entries := f.history.forTicket(ticket.ID)
		if len(entries) != i+1 {
			t.Fatalf("after comment %d: %d entries", i+1, len(entries))
		}
		// earlier entries are untouched
		for j := 0; j <= i; j++ {
			if entries[j].Text != comments[j] {
				t.Errorf("entry %d mutated: %q", j, entries[j].Text)
			}
		}
	}
}

func TestGetEnforcesVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	if _, _, err := f.service.Get(ctx, &requester, ticket.ID); err != nil {
		t.Errorf("owner get: %v", err)
	}
	if _, _, err := f.service.Get(ctx, &tech, ticket.ID); err != nil {
		t.Errorf("admin get: %v", err)
	}
	stranger := domain.User{ID: "u-9", Name: "Mallory", Email: "mallory@example.com"}
	if code := errorCode(t, func() error { _, _, err := f.service.Get(ctx, &stranger, ticket.ID); return err }()); code != "PERMISSION_DENIED" {
		t.Errorf("stranger get code = %s", code)
	}
	if code := errorCode(t, func() error { _, _, err := f.service.Get(ctx, &tech, "missing"); return err }()); code != "NOT_FOUND" {
		t.Errorf("missing ticket code = %s", code)
	}
}

func TestListScopesNonAdminsToOwnTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createTicket(t)

	if _, err := f.service.List(ctx, &requester, TicketListInput{}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if f.tickets.lastFilter.OwnerID == nil || *f.tickets.lastFilter.OwnerID != requester.ID {
		t.Errorf("non-admin filter.OwnerID = %v", f.tickets.lastFilter.OwnerID)
	}

	if _, err := f.service.List(ctx, &tech, TicketListInput{}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if f.tickets.lastFilter.OwnerID != nil {
		t.Errorf("admin filter.OwnerID = %v, want nil", *f.tickets.lastFilter.OwnerID)
	}
}

func TestDeleteIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.createTicket(t)

	if code := errorCode(t, f.service.Delete(ctx, &requester, ticket.ID)); code != "PERMISSION_DENIED" {
		t.Errorf("owner delete code = %s", code)
	}
	if err := f.service.Delete(ctx, &tech, ticket.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := f.tickets.GetByID(ctx, ticket.ID); err == nil {
		t.Error("ticket still present after delete")
	}
	if got := f.recorder.ofType(events.EventTicketDeleted); len(got) != 1 {
		t.Errorf("deleted events = %d", len(got))
	}
}

// mustErr discards the value of a two-return call so the error can feed
// errorCode.
func mustErr[T any](_ T, err error) error { return err }

func TestStringPreview(t *testing.T) {
	long := strings.Repeat("x", 200)
	if got := stringPreview(long, 120); len(got) != 120 || !strings.HasSuffix(got, "...") {
		t.Errorf("preview = %q", got)
	}
	if got := stringPreview("short", 120); got != "short" {
		t.Errorf("preview = %q", got)
	}

	multibyte := strings.Repeat("é", 200)
	got := stringPreview(multibyte, 120)
	if !utf8.ValidString(got) {
		t.Errorf("preview split a rune: %q", got)
	}
	if utf8.RuneCountInString(got) != 120 || !strings.HasSuffix(got, "...") {
		t.Errorf("preview = %q", got)
	}
}

func TestCreateCountsCharactersNotBytes(t *testing.T) {
	f := newFixture(t)

	ticket, err := f.service.Create(context.Background(), &requester, TicketCreateInput{
		Title:       "プリンタ故障",
		Description: "三階のプリンタが印刷できない。",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ticket.Title != "プリンタ故障" {
		t.Errorf("Title = %q", ticket.Title)
	}
}
