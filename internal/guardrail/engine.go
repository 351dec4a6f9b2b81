// Package guardrail turns AI classifications into risk flags and a routing
// decision. Evaluation is deterministic and side-effect-free.
package guardrail

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spec-kit/flowgen/internal/domain"
)

// Risk flag identifiers.
const (
	FlagLowConfidence    = "low_confidence"
	FlagHighUrgency      = "high_urgency"
	FlagRefundCommitment = "refund_or_financial_commitment"
	FlagLegalAdvice      = "legal_advice_or_liability"
	FlagComplianceClaim  = "compliance_claim"
	FlagRiskyPolicy      = "fabricated_or_risky_policy"
	FlagAIUnavailable    = "ai_unavailable"
)

const lowConfidenceThreshold = 0.65

// highRiskPhrases maps each monitored phrase to its flag category. Matching
// is case-insensitive substring search over the draft reply.
var highRiskPhrases = []struct {
	phrase string
	flag   string
}{
	{"money-back guarantee", FlagRefundCommitment},
	{"full refund", FlagRefundCommitment},
	{"we guarantee a refund", FlagRefundCommitment},
	{"we will refund", FlagRefundCommitment},
	{"legal advice", FlagLegalAdvice},
	{"this is legal advice", FlagLegalAdvice},
	{"we are not liable", FlagLegalAdvice},
	{"we are not responsible", FlagLegalAdvice},
	{"compliant with all regulations", FlagComplianceClaim},
	{"fully compliant", FlagComplianceClaim},
	{"pci compliant", FlagComplianceClaim},
	{"hipaa compliant", FlagComplianceClaim},
	{"gdpr compliant", FlagComplianceClaim},
	{"policy", FlagRiskyPolicy},
	{"terms and conditions", FlagRiskyPolicy},
}

var financialPattern = regexp.MustCompile(`\b(refund|reimburse|compensate|credit)\b`)

// Verdict is the outcome of guardrail evaluation.
type Verdict struct {
	Flags            []string
	Status           domain.TicketStatus
	NeedsHumanReview bool
}

// Engine scans classifications for risk signals.
type Engine struct{}

// NewEngine constructs the guardrail engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate aggregates risk flags for a classification and derives the ticket
// status. Flags come back deduplicated and sorted so evaluation is
// reproducible.
func (e *Engine) Evaluate(result domain.Classification) Verdict {
	var flags []string

	if result.ConfidenceScore != nil && *result.ConfidenceScore < lowConfidenceThreshold {
		flags = append(flags, FlagLowConfidence)
	}

	if result.Urgency != nil && strings.EqualFold(string(*result.Urgency), string(domain.UrgencyHigh)) {
		flags = append(flags, FlagHighUrgency)
	}

	if result.DraftReply != nil {
		flags = append(flags, scanDraftForRisks(*result.DraftReply)...)
	}

	// A fallback classification carries no scores for the checks above to
	// fire on; without this flag it would sail into Auto-Resolved.
	if result.Fallback {
		flags = append(flags, FlagAIUnavailable)
	}

	flags = dedupeSorted(flags)

	needsReview := len(flags) > 0
	status := domain.TicketStatusAutoResolved
	if needsReview {
		status = domain.TicketStatusNeedsReview
	}

	return Verdict{
		Flags:            flags,
		Status:           status,
		NeedsHumanReview: needsReview,
	}
}

// RoutingDecision derives the pipeline's routing outcome from a verdict.
func (v Verdict) RoutingDecision() domain.RoutingDecision {
	if v.NeedsHumanReview {
		return domain.RoutingHumanReview
	}
	return domain.RoutingAutoResolve
}

func scanDraftForRisks(draft string) []string {
	var flags []string
	text := strings.ToLower(draft)

	for _, entry := range highRiskPhrases {
		if strings.Contains(text, entry.phrase) {
			flags = append(flags, entry.flag)
		}
	}

	if financialPattern.MatchString(text) {
		flags = append(flags, FlagRefundCommitment)
	}

	return flags
}

func dedupeSorted(flags []string) []string {
	if len(flags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(flags))
	unique := make([]string, 0, len(flags))
	for _, flag := range flags {
		if _, ok := seen[flag]; ok {
			continue
		}
		seen[flag] = struct{}{}
		unique = append(unique, flag)
	}
	sort.Strings(unique)
	return unique
}
