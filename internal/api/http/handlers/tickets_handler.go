package handlers

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fluxdesk/helpdesk/internal/api/dto"
	"github.com/fluxdesk/helpdesk/internal/auth"
	"github.com/fluxdesk/helpdesk/internal/domain"
	"github.com/fluxdesk/helpdesk/internal/service"
	"github.com/fluxdesk/helpdesk/internal/upload"
	apperrors "github.com/fluxdesk/helpdesk/pkg/util"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets     *service.TicketService
	suggestions *service.SuggestionService
	maxUpload   int64
}

// NewTicketsHandler constructs handler. maxUpload is the configured
// per-attachment size bound; file parts are read up to one byte past it so
// oversized uploads fail validation instead of being silently truncated.
func NewTicketsHandler(tickets *service.TicketService, suggestions *service.SuggestionService, maxUpload int64) *TicketsHandler {
	if maxUpload <= 0 {
		maxUpload = upload.MaxAttachmentSize
	}
	return &TicketsHandler{tickets: tickets, suggestions: suggestions, maxUpload: maxUpload}
}

// CreateTicket POST /tickets. Accepts multipart form data so attachments can
// ride along with the ticket fields.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}

	input := service.TicketCreateInput{}
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		input.Title = c.FormValue("title")
		input.Description = c.FormValue("description")
		input.Priority = domain.TicketPriority(c.FormValue("priority"))
		input.Department = c.FormValue("department")
		input.Category = c.FormValue("category")
		files, err := collectFiles(c, h.maxUpload)
		if err != nil {
			return err
		}
		input.Files = files
	} else {
		var req dto.CreateTicketRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		input.Title = req.Title
		input.Description = req.Description
		input.Priority = req.Priority
		input.Department = req.Department
		input.Category = req.Category
	}

	ticket, err := h.tickets.Create(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets. Non-admin callers only ever see their own.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	tickets, err := h.tickets.List(c.UserContext(), actor, parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, history, err := h.tickets.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, history)})
}

// Comment POST /tickets/:id/comments.
func (h *TicketsHandler) Comment(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}

	var text string
	var files []upload.FileInput
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		text = c.FormValue("text")
		collected, err := collectFiles(c, h.maxUpload)
		if err != nil {
			return err
		}
		files = collected
	} else {
		var req dto.CommentRequest
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		text = req.Text
	}

	entry, err := h.tickets.Comment(c.UserContext(), actor, c.Params("id"), text, files)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": historyEntry(entry)})
}

// Assign PATCH /tickets/:id/assignee. Empty email clears the assignment.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.Transfer(c.UserContext(), actor, c.Params("id"), req.AssigneeEmail)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Claim POST /tickets/:id/claim assigns the ticket to the caller.
func (h *TicketsHandler) Claim(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.tickets.Claim(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), actor, c.Params("id"), req.Status, req.ResolutionComment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Finalize POST /tickets/:id/finalize.
func (h *TicketsHandler) Finalize(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.FinalizeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.Finalize(c.UserContext(), actor, c.Params("id"), req.ResolutionComment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Reopen POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.tickets.Reopen(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	if err := h.tickets.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Suggest POST /tickets/suggestions surfaces prior resolutions for a draft.
func (h *TicketsHandler) Suggest(c *fiber.Ctx) error {
	if _, ok := auth.UserFromContext(c); !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.SuggestRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	suggestions, err := h.suggestions.Suggest(c.UserContext(), req.Title, req.Description, req.Category)
	if err != nil {
		return err
	}
	items := make([]dto.SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		items = append(items, dto.SuggestionResponse{
			TicketID:          s.TicketID,
			DisplayNumber:     domain.FormatDisplayNumber(s.TicketNumber),
			Title:             s.Title,
			Category:          s.Category,
			ResolutionComment: s.ResolutionComment,
			Score:             s.Score,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

func collectFiles(c *fiber.Ctx, maxSize int64) ([]upload.FileInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	var inputs []upload.FileInput
	for _, header := range form.File["files"] {
		data, err := readFilePart(header, maxSize)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, upload.FileInput{
			Name:         header.Filename,
			DeclaredMime: header.Header.Get("Content-Type"),
			Data:         data,
		})
	}
	return inputs, nil
}

func readFilePart(header *multipart.FileHeader, maxSize int64) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable file part", map[string]any{"file": header.Filename})
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable file part", map[string]any{"file": header.Filename})
	}
	return data, nil
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListInput {
	input := service.TicketListInput{}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			input.Statuses = append(input.Statuses, domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if raw := c.Query("priority"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			input.Priorities = append(input.Priorities, domain.TicketPriority(strings.ToUpper(strings.TrimSpace(part))))
		}
	}
	if raw := c.Query("department"); raw != "" {
		input.Department = &raw
	}
	if raw := c.Query("category"); raw != "" {
		input.Category = &raw
	}
	if raw := c.Query("search"); raw != "" {
		input.SearchTerm = &raw
	}
	if raw := c.Query("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			input.Limit = limit
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil {
			input.Offset = offset
		}
	}
	return input
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:            ticket.ID,
		Number:        ticket.Number,
		DisplayNumber: ticket.DisplayNumber(),
		Title:         ticket.Title,
		Department:    ticket.Department,
		Category:      ticket.Category,
		Status:        ticket.Status,
		Priority:      ticket.Priority,
		OwnerID:       ticket.OwnerID,
		AssigneeEmail: ticket.AssigneeEmail,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, history []domain.HistoryEntry) dto.TicketDetailResponse {
	entries := make([]dto.HistoryEntryResponse, 0, len(history))
	for i := range history {
		entries = append(entries, historyEntry(&history[i]))
	}
	return dto.TicketDetailResponse{
		TicketSummary:     ticketSummary(ticket),
		Description:       ticket.Description,
		ResolutionComment: ticket.ResolutionComment,
		FinalizedAt:       ticket.FinalizedAt,
		History:           entries,
	}
}

func historyEntry(entry *domain.HistoryEntry) dto.HistoryEntryResponse {
	attachments := entry.Attachments
	if attachments == nil {
		attachments = []domain.Attachment{}
	}
	return dto.HistoryEntryResponse{
		ID:          entry.ID,
		AuthorID:    entry.AuthorID,
		AuthorName:  entry.AuthorName,
		Text:        entry.Text,
		Attachments: attachments,
		CreatedAt:   entry.CreatedAt,
	}
}
