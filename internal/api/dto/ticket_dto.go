package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/flowgen/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// TicketResponse is the full view returned after a submission.
type TicketResponse struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Email            string                 `json:"email"`
	Subject          string                 `json:"subject"`
	Message          string                 `json:"message"`
	Category         *domain.TicketCategory `json:"category"`
	Urgency          *domain.TicketUrgency  `json:"urgency"`
	PriorityScore    *int                   `json:"priority_score"`
	ConfidenceScore  *float64               `json:"confidence_score"`
	DraftReply       *string                `json:"draft_reply"`
	ReasoningSummary *string                `json:"reasoning_summary"`
	Status           domain.TicketStatus    `json:"status"`
	GuardrailFlags   []string               `json:"guardrail_flags"`
	RoutingDecision  domain.RoutingDecision `json:"routing_decision"`
	IsDuplicate      bool                   `json:"is_duplicate"`
	OriginalTicketID *string                `json:"original_ticket_id"`
	CreatedAt        time.Time              `json:"created_at"`
}

// TicketListItem is the condensed dashboard view.
type TicketListItem struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Email           string                 `json:"email"`
	Subject         string                 `json:"subject"`
	Category        *domain.TicketCategory `json:"category"`
	Urgency         *domain.TicketUrgency  `json:"urgency"`
	PriorityScore   *int                   `json:"priority_score"`
	ConfidenceScore *float64               `json:"confidence_score"`
	Status          domain.TicketStatus    `json:"status"`
	CreatedAt       time.Time              `json:"created_at"`
}

// TicketListResponse wraps the list endpoint payload.
type TicketListResponse struct {
	Items []TicketListItem `json:"items"`
}

// TicketLogEntry is one audit record.
type TicketLogEntry struct {
	ID              string                 `json:"id"`
	Timestamp       time.Time              `json:"timestamp"`
	RawInput        string                 `json:"raw_input"`
	AIOutput        string                 `json:"ai_output"`
	GuardrailFlags  string                 `json:"guardrail_flags"`
	RoutingDecision domain.RoutingDecision `json:"routing_decision"`
}

// AdminLoginRequest payload.
type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminLoginResponse payload.
type AdminLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewTicketResponse maps a persisted ticket into its response view.
func NewTicketResponse(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:               ticket.ID,
		Name:             ticket.Name,
		Email:            ticket.Email,
		Subject:          ticket.Subject,
		Message:          ticket.Message,
		Category:         ticket.Category,
		Urgency:          ticket.Urgency,
		PriorityScore:    ticket.PriorityScore,
		ConfidenceScore:  ticket.ConfidenceScore,
		DraftReply:       ticket.DraftReply,
		ReasoningSummary: ticket.ReasoningSummary,
		Status:           ticket.Status,
		GuardrailFlags:   SplitFlags(ticket.GuardrailFlags),
		RoutingDecision:  ticket.RoutingDecision,
		IsDuplicate:      ticket.IsDuplicate,
		OriginalTicketID: ticket.OriginalTicketID,
		CreatedAt:        ticket.CreatedAt,
	}
}

// NewTicketListItem maps a ticket into its condensed view.
func NewTicketListItem(ticket *domain.Ticket) TicketListItem {
	return TicketListItem{
		ID:              ticket.ID,
		Name:            ticket.Name,
		Email:           ticket.Email,
		Subject:         ticket.Subject,
		Category:        ticket.Category,
		Urgency:         ticket.Urgency,
		PriorityScore:   ticket.PriorityScore,
		ConfidenceScore: ticket.ConfidenceScore,
		Status:          ticket.Status,
		CreatedAt:       ticket.CreatedAt,
	}
}

// NewTicketLogEntry maps an audit record into its response view.
func NewTicketLogEntry(log *domain.TicketLog) TicketLogEntry {
	return TicketLogEntry{
		ID:              log.ID,
		Timestamp:       log.Timestamp,
		RawInput:        log.RawInput,
		AIOutput:        log.AIOutput,
		GuardrailFlags:  log.GuardrailFlags,
		RoutingDecision: log.RoutingDecision,
	}
}

// SplitFlags turns the serialized flag column back into a list.
func SplitFlags(flags string) []string {
	if flags == "" {
		return []string{}
	}
	return strings.Split(flags, ",")
}
