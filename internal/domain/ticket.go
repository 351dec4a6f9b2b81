package domain

import "time"

// TicketStatus is the guardrail-derived lifecycle state of a ticket.
type TicketStatus string

const (
	TicketStatusAutoResolved TicketStatus = "Auto-Resolved"
	TicketStatusNeedsReview  TicketStatus = "Needs Human Review"
)

// RoutingDecision is the binary routing outcome for a ticket.
type RoutingDecision string

const (
	RoutingAutoResolve RoutingDecision = "Auto-Resolve"
	RoutingHumanReview RoutingDecision = "Human Review"
)

// TicketCategory enumerates the classifier's category values.
type TicketCategory string

const (
	CategoryBilling   TicketCategory = "billing"
	CategoryTechnical TicketCategory = "technical"
	CategoryAccount   TicketCategory = "account"
	CategoryGeneral   TicketCategory = "general"
)

// TicketUrgency enumerates the classifier's urgency values.
type TicketUrgency string

const (
	UrgencyLow    TicketUrgency = "low"
	UrgencyMedium TicketUrgency = "medium"
	UrgencyHigh   TicketUrgency = "high"
)

// Ticket is the persisted aggregate for one accepted submission.
// Rows are created exactly once and never mutated afterwards.
type Ticket struct {
	ID               string
	Name             string
	Email            string
	Subject          string
	Message          string
	MessageHash      string
	IsDuplicate      bool
	OriginalTicketID *string
	Category         *TicketCategory
	Urgency          *TicketUrgency
	PriorityScore    *int
	ConfidenceScore  *float64
	DraftReply       *string
	ReasoningSummary *string
	Status           TicketStatus
	GuardrailFlags   string
	RoutingDecision  RoutingDecision
	CreatedAt        time.Time
}

// TicketLog is an append-only audit entry written alongside each ticket.
type TicketLog struct {
	ID              string
	TicketID        string
	Timestamp       time.Time
	RawInput        string
	AIOutput        string
	GuardrailFlags  string
	RoutingDecision RoutingDecision
}
