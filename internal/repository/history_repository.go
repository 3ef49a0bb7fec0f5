package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fluxdesk/helpdesk/internal/domain"
)

// HistoryRepository stores the append-only ticket timeline. There is no
// update or delete: each entry is a single INSERT, so concurrent comments
// never overwrite each other.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository builds repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	attachments, err := json.Marshal(entry.Attachments)
	if err != nil {
		return err
	}
	if entry.Attachments == nil {
		attachments = []byte("[]")
	}
	const query = `
        INSERT INTO ticket_history (ticket_id, author_id, author_name, text, attachments)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.TicketID,
		entry.AuthorID,
		entry.AuthorName,
		entry.Text,
		attachments,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *historyRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT id, ticket_id, author_id, author_name, text, attachments, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var entry domain.HistoryEntry
		var attachments []byte
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.AuthorID,
			&entry.AuthorName,
			&entry.Text,
			&attachments,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(attachments) > 0 {
			if err := json.Unmarshal(attachments, &entry.Attachments); err != nil {
				return nil, err
			}
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
