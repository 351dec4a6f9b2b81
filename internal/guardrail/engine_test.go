package guardrail

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/flowgen/internal/domain"
)

func classification(confidence *float64, urgency *domain.TicketUrgency, draft *string) domain.Classification {
	return domain.Classification{
		ConfidenceScore: confidence,
		Urgency:         urgency,
		DraftReply:      draft,
	}
}

func floatPtr(v float64) *float64                             { return &v }
func strPtr(v string) *string                                 { return &v }
func urgencyPtr(v domain.TicketUrgency) *domain.TicketUrgency { return &v }

func TestEvaluate(t *testing.T) {
	engine := NewEngine()

	t.Run("clean result auto-resolves", func(t *testing.T) {
		verdict := engine.Evaluate(classification(floatPtr(0.9), urgencyPtr(domain.UrgencyLow), strPtr("Thanks!")))
		assert.Empty(t, verdict.Flags)
		assert.Equal(t, domain.TicketStatusAutoResolved, verdict.Status)
		assert.False(t, verdict.NeedsHumanReview)
		assert.Equal(t, domain.RoutingAutoResolve, verdict.RoutingDecision())
	})

	t.Run("low confidence flagged", func(t *testing.T) {
		verdict := engine.Evaluate(classification(floatPtr(0.5), nil, nil))
		assert.Equal(t, []string{FlagLowConfidence}, verdict.Flags)
		assert.Equal(t, domain.TicketStatusNeedsReview, verdict.Status)
		assert.True(t, verdict.NeedsHumanReview)
	})

	t.Run("unset confidence does not fire low confidence", func(t *testing.T) {
		verdict := engine.Evaluate(classification(nil, urgencyPtr(domain.UrgencyLow), strPtr("Thanks!")))
		assert.Empty(t, verdict.Flags)
	})

	t.Run("high urgency flagged", func(t *testing.T) {
		verdict := engine.Evaluate(classification(floatPtr(0.9), urgencyPtr(domain.UrgencyHigh), nil))
		assert.Equal(t, []string{FlagHighUrgency}, verdict.Flags)
	})

	t.Run("refund commitment in draft flagged", func(t *testing.T) {
		verdict := engine.Evaluate(classification(floatPtr(0.9), nil, strPtr("We will refund your payment.")))
		assert.Contains(t, verdict.Flags, FlagRefundCommitment)
		assert.Equal(t, domain.RoutingHumanReview, verdict.RoutingDecision())
	})

	t.Run("whole word financial terms flagged", func(t *testing.T) {
		verdict := engine.Evaluate(classification(nil, nil, strPtr("We can compensate you for the outage.")))
		assert.Equal(t, []string{FlagRefundCommitment}, verdict.Flags)
	})

	t.Run("financial substring inside larger word ignored", func(t *testing.T) {
		verdict := engine.Evaluate(classification(nil, nil, strPtr("Your account is accredited.")))
		assert.Empty(t, verdict.Flags)
	})

	t.Run("legal and compliance phrases flagged", func(t *testing.T) {
		verdict := engine.Evaluate(classification(nil, nil, strPtr("This is legal advice: we are fully compliant.")))
		assert.Equal(t, []string{FlagComplianceClaim, FlagLegalAdvice}, verdict.Flags)
	})

	t.Run("policy reference flagged", func(t *testing.T) {
		verdict := engine.Evaluate(classification(nil, nil, strPtr("Per our Policy, this is covered.")))
		assert.Equal(t, []string{FlagRiskyPolicy}, verdict.Flags)
	})

	t.Run("flags deduplicated and sorted", func(t *testing.T) {
		draft := "We will refund you a full refund and credit your account."
		verdict := engine.Evaluate(classification(floatPtr(0.2), urgencyPtr(domain.UrgencyHigh), strPtr(draft)))
		assert.Equal(t, []string{FlagHighUrgency, FlagLowConfidence, FlagRefundCommitment}, verdict.Flags)
	})

	t.Run("fallback result forces human review", func(t *testing.T) {
		draft := "We are unable to auto-process this ticket at the moment. It has been forwarded to human support."
		reasoning := "Fallback response due to Gemini error or invalid output."
		verdict := engine.Evaluate(domain.Classification{
			DraftReply:       &draft,
			ReasoningSummary: &reasoning,
			Fallback:         true,
		})
		assert.Equal(t, []string{FlagAIUnavailable}, verdict.Flags)
		assert.Equal(t, domain.TicketStatusNeedsReview, verdict.Status)
	})

	t.Run("evaluation is idempotent", func(t *testing.T) {
		input := classification(floatPtr(0.4), urgencyPtr(domain.UrgencyHigh), strPtr("We will refund you."))
		first := engine.Evaluate(input)
		second := engine.Evaluate(input)
		assert.Equal(t, first, second)
	})
}
