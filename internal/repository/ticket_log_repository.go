package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/flowgen/internal/domain"
)

// TicketLogRepository encapsulates audit log persistence.
type TicketLogRepository interface {
	Create(ctx context.Context, log *domain.TicketLog) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketLog, error)
}

type ticketLogRepository struct {
	pool *pgxpool.Pool
}

// NewTicketLogRepository instantiates repository.
func NewTicketLogRepository(pool *pgxpool.Pool) TicketLogRepository {
	return &ticketLogRepository{pool: pool}
}

func (r *ticketLogRepository) Create(ctx context.Context, log *domain.TicketLog) error {
	const query = `
        INSERT INTO ticket_logs (ticket_id, raw_input, ai_output, guardrail_flags, routing_decision)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, timestamp`
	return r.pool.QueryRow(ctx, query,
		log.TicketID,
		log.RawInput,
		log.AIOutput,
		log.GuardrailFlags,
		log.RoutingDecision,
	).Scan(&log.ID, &log.Timestamp)
}

func (r *ticketLogRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketLog, error) {
	const query = `
        SELECT id, ticket_id, timestamp, raw_input, ai_output, guardrail_flags, routing_decision
        FROM ticket_logs WHERE ticket_id=$1 ORDER BY timestamp ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketLog
	for rows.Next() {
		var log domain.TicketLog
		if err := rows.Scan(
			&log.ID,
			&log.TicketID,
			&log.Timestamp,
			&log.RawInput,
			&log.AIOutput,
			&log.GuardrailFlags,
			&log.RoutingDecision,
		); err != nil {
			return nil, err
		}
		result = append(result, log)
	}
	return result, rows.Err()
}
