package domain

// Classification is the typed result of one AI classification attempt.
// Every field the model may omit is a pointer; an unset field stays nil all
// the way to the database.
type Classification struct {
	Category         *TicketCategory
	Urgency          *TicketUrgency
	PriorityScore    *int
	ConfidenceScore  *float64
	DraftReply       *string
	ReasoningSummary *string

	// Fallback marks the deterministic substitute result used when the AI
	// backend produced no valid answer within the retry budget.
	Fallback bool
}
