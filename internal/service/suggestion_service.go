package service

import (
	"context"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/fluxdesk/helpdesk/internal/config"
	"github.com/fluxdesk/helpdesk/internal/domain"
	"github.com/fluxdesk/helpdesk/internal/repository"
	apperrors "github.com/fluxdesk/helpdesk/pkg/util"
)

// Suggestion is a previously finalized ticket offered as a hint.
type Suggestion struct {
	TicketID          string
	TicketNumber      int64
	Title             string
	Category          string
	ResolutionComment string
	Score             float64
}

// SuggestionService searches finalized tickets for approximate textual
// matches against a draft ticket, surfacing prior resolutions. Purely
// assistive: ticket creation never depends on its output, and it keeps no
// state of its own.
type SuggestionService struct {
	tickets repository.TicketRepository
	history repository.HistoryRepository
	cfg     config.SuggestionConfig
}

// NewSuggestionService constructs the service.
func NewSuggestionService(tickets repository.TicketRepository, history repository.HistoryRepository, cfg config.SuggestionConfig) *SuggestionService {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 3
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.45
	}
	return &SuggestionService{tickets: tickets, history: history, cfg: cfg}
}

// Suggest returns up to MaxResults finalized tickets whose text is similar
// to the query, best match first.
func (s *SuggestionService) Suggest(ctx context.Context, title, description, category string) ([]Suggestion, error) {
	tokens := queryTokens(title + " " + description + " " + category)
	if len(tokens) == 0 {
		return nil, nil
	}

	finalized, err := s.tickets.ListFinalized(ctx, s.cfg.CorpusLimit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	var suggestions []Suggestion
	for i := range finalized {
		ticket := &finalized[i]
		doc, err := s.documentText(ctx, ticket)
		if err != nil {
			return nil, err
		}
		score := similarity(tokens, doc)
		if score < s.cfg.Threshold {
			continue
		}
		suggestion := Suggestion{
			TicketID:     ticket.ID,
			TicketNumber: ticket.Number,
			Title:        ticket.Title,
			Category:     ticket.Category,
			Score:        score,
		}
		if ticket.ResolutionComment != nil {
			suggestion.ResolutionComment = *ticket.ResolutionComment
		}
		suggestions = append(suggestions, suggestion)
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Score > suggestions[j].Score
	})
	if len(suggestions) > s.cfg.MaxResults {
		suggestions = suggestions[:s.cfg.MaxResults]
	}
	return suggestions, nil
}

func (s *SuggestionService) documentText(ctx context.Context, ticket *domain.Ticket) (string, error) {
	parts := []string{ticket.Title, ticket.Description, ticket.Category}
	entries, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	for _, entry := range entries {
		parts = append(parts, entry.Text)
	}
	return strings.Join(parts, " "), nil
}

// similarity is the fraction of query tokens that fuzzy-match the document.
func similarity(tokens []string, doc string) float64 {
	matched := 0
	for _, token := range tokens {
		if fuzzy.MatchNormalizedFold(token, doc) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

func queryTokens(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	tokens := make([]string, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		field = strings.Trim(field, ".,;:!?()[]\"'")
		// short words carry no signal and match everything
		if len(field) < 4 {
			continue
		}
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		tokens = append(tokens, field)
	}
	return tokens
}
