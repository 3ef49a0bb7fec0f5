package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fluxdesk/helpdesk/internal/api/dto"
	"github.com/fluxdesk/helpdesk/internal/domain"
	"github.com/fluxdesk/helpdesk/internal/service"
)

// ReportsHandler serves aggregate reporting endpoints.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// RecurringProblems GET /reports/recurring. Groups finalized tickets by
// category so admins can spot repeat offenders.
func (h *ReportsHandler) RecurringProblems(c *fiber.Ctx) error {
	if err := requireAdminCtx(c); err != nil {
		return err
	}
	stats, err := h.reports.RecurringProblems(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.RecurringProblemResponse, 0, len(stats))
	for _, row := range stats {
		items = append(items, dto.RecurringProblemResponse{
			Category:            row.Category,
			Count:               row.Count,
			AvgResolutionHours:  row.AvgResolutionHours,
			LastFinalizedAt:     row.LastFinalizedAt,
			SampleDisplayNumber: domain.FormatDisplayNumber(row.SampleTicketNumber),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
