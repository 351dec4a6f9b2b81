package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/flowgen/internal/domain"
)

// TicketFilter captures listing parameters for the dashboard endpoints.
type TicketFilter struct {
	Status  *domain.TicketStatus
	Urgency *domain.TicketUrgency
	Limit   int
}

// TicketRepository encapsulates ticket persistence. Tickets are append-only:
// there is no update path.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	FindLatestByFingerprint(ctx context.Context, messageHash string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, name, email, subject, message, message_hash, is_duplicate, original_ticket_id,
       category, urgency, priority_score, confidence_score, draft_reply, reasoning_summary,
       status, guardrail_flags, routing_decision, created_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (name, email, subject, message, message_hash, is_duplicate, original_ticket_id,
                             category, urgency, priority_score, confidence_score, draft_reply, reasoning_summary,
                             status, guardrail_flags, routing_decision)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Name,
		ticket.Email,
		ticket.Subject,
		ticket.Message,
		ticket.MessageHash,
		ticket.IsDuplicate,
		ticket.OriginalTicketID,
		ticket.Category,
		ticket.Urgency,
		ticket.PriorityScore,
		ticket.ConfidenceScore,
		ticket.DraftReply,
		ticket.ReasoningSummary,
		ticket.Status,
		ticket.GuardrailFlags,
		ticket.RoutingDecision,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	row := r.pool.QueryRow(ctx, query, id)
	return scanTicket(row)
}

// FindLatestByFingerprint returns the most recent ticket sharing a message
// hash, or nil when no such ticket exists.
func (r *ticketRepository) FindLatestByFingerprint(ctx context.Context, messageHash string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE message_hash=$1 ORDER BY created_at DESC LIMIT 1`, ticketColumns)
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, messageHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Urgency != nil {
		args = append(args, *filter.Urgency)
		clauses = append(clauses, fmt.Sprintf("urgency=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d`,
		ticketColumns, strings.Join(clauses, " AND "), limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Name,
		&ticket.Email,
		&ticket.Subject,
		&ticket.Message,
		&ticket.MessageHash,
		&ticket.IsDuplicate,
		&ticket.OriginalTicketID,
		&ticket.Category,
		&ticket.Urgency,
		&ticket.PriorityScore,
		&ticket.ConfidenceScore,
		&ticket.DraftReply,
		&ticket.ReasoningSummary,
		&ticket.Status,
		&ticket.GuardrailFlags,
		&ticket.RoutingDecision,
		&ticket.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}
