package service

import (
	"context"

	"github.com/fluxdesk/helpdesk/internal/repository"
	apperrors "github.com/fluxdesk/helpdesk/pkg/util"
)

// ReportService produces aggregate views over finalized tickets.
type ReportService struct {
	tickets repository.TicketRepository
}

// NewReportService constructs the service.
func NewReportService(tickets repository.TicketRepository) *ReportService {
	return &ReportService{tickets: tickets}
}

// RecurringProblems groups finalized tickets by category with counts and
// average resolution time in hours, most frequent category first.
func (s *ReportService) RecurringProblems(ctx context.Context) ([]repository.CategoryStats, error) {
	stats, err := s.tickets.RecurringProblems(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}
