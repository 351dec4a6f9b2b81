package events

import (
	"time"

	"github.com/spec-kit/flowgen/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketReceived     EventType = "ticket_received"
	EventTicketAutoResolved EventType = "ticket_auto_resolved"
	EventTicketEscalated    EventType = "ticket_escalated"
)

// Event represents a domain event emitted by the intake pipeline.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketReceivedPayload describes an accepted submission.
type TicketReceivedPayload struct {
	Email       string  `json:"email"`
	Subject     string  `json:"subject"`
	IsDuplicate bool    `json:"is_duplicate"`
	OriginalID  *string `json:"original_ticket_id,omitempty"`
}

// TicketRoutedPayload describes the guardrail outcome for a ticket. It is
// shared by the auto-resolved and escalated event types.
type TicketRoutedPayload struct {
	Category        *domain.TicketCategory `json:"category,omitempty"`
	Urgency         *domain.TicketUrgency  `json:"urgency,omitempty"`
	GuardrailFlags  []string               `json:"guardrail_flags"`
	RoutingDecision domain.RoutingDecision `json:"routing_decision"`
	AIFallback      bool                   `json:"ai_fallback"`
}
