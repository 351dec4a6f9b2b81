package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/flowgen/internal/ai"
	"github.com/spec-kit/flowgen/internal/domain"
	"github.com/spec-kit/flowgen/internal/events"
	"github.com/spec-kit/flowgen/internal/guardrail"
	"github.com/spec-kit/flowgen/internal/observability"
	"github.com/spec-kit/flowgen/internal/ratelimit"
	"github.com/spec-kit/flowgen/internal/repository"
	"github.com/spec-kit/flowgen/internal/security"
	apperrors "github.com/spec-kit/flowgen/pkg/util"
)

// SubmissionInput is one raw ticket submission.
type SubmissionInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// IntakeService runs the ticket intake decision pipeline: admission control,
// safety prefilter, duplicate fingerprinting, AI classification, guardrail
// evaluation, persistence.
type IntakeService struct {
	tickets    repository.TicketRepository
	logs       repository.TicketLogRepository
	limiter    *ratelimit.FixedWindowLimiter
	classifier *ai.Classifier
	guardrails *guardrail.Engine
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	TicketRepo repository.TicketRepository
	LogRepo    repository.TicketLogRepository
	Limiter    *ratelimit.FixedWindowLimiter
	Classifier *ai.Classifier
	Guardrails *guardrail.Engine
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewIntakeService constructs the service.
func NewIntakeService(deps IntakeDependencies) *IntakeService {
	return &IntakeService{
		tickets:    deps.TicketRepo,
		logs:       deps.LogRepo,
		limiter:    deps.Limiter,
		classifier: deps.Classifier,
		guardrails: deps.Guardrails,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}
}

// Submit processes one submission for the given client key. Rejections
// (admission, validation) surface as DomainErrors; an AI failure never does,
// it only changes what gets persisted and flagged.
func (s *IntakeService) Submit(ctx context.Context, input SubmissionInput, clientKey string) (*domain.Ticket, error) {
	if !s.limiter.Admit(clientKey) {
		return nil, apperrors.NewRateLimited("Too many requests. Please wait and try again.", map[string]any{
			"retry_after_seconds": int(s.limiter.Window().Seconds()),
		})
	}

	if err := validateSubmission(input); err != nil {
		return nil, err
	}

	if issues := security.ValidateContentSafety(input.Name, input.Subject, input.Message); len(issues) > 0 {
		return nil, apperrors.NewValidationError("Input failed security validation.", map[string]any{
			"issues": issues,
		})
	}

	fingerprint := security.Fingerprint(input.Message)
	original, err := s.tickets.FindLatestByFingerprint(ctx, fingerprint)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	isDuplicate := original != nil
	var originalID *string
	if original != nil {
		originalID = &original.ID
	}

	outcome := s.classifier.Classify(ctx, ai.Submission{
		Name:    input.Name,
		Email:   input.Email,
		Subject: input.Subject,
		Message: input.Message,
	}, fingerprint)

	verdict := s.guardrails.Evaluate(outcome.Result)
	routing := verdict.RoutingDecision()

	ticket := &domain.Ticket{
		Name:             input.Name,
		Email:            input.Email,
		Subject:          input.Subject,
		Message:          input.Message,
		MessageHash:      fingerprint,
		IsDuplicate:      isDuplicate,
		OriginalTicketID: originalID,
		Category:         outcome.Result.Category,
		Urgency:          outcome.Result.Urgency,
		PriorityScore:    outcome.Result.PriorityScore,
		ConfidenceScore:  outcome.Result.ConfidenceScore,
		DraftReply:       outcome.Result.DraftReply,
		ReasoningSummary: outcome.Result.ReasoningSummary,
		Status:           verdict.Status,
		GuardrailFlags:   strings.Join(verdict.Flags, ","),
		RoutingDecision:  routing,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	log := &domain.TicketLog{
		TicketID:        ticket.ID,
		RawInput:        rawInputSummary(input),
		AIOutput:        aiOutputSummary(outcome),
		GuardrailFlags:  ticket.GuardrailFlags,
		RoutingDecision: routing,
	}
	if err := s.logs.Create(ctx, log); err != nil {
		s.logger.Error("failed to write ticket audit log",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.RecordIntake(string(routing), outcome.Result.Fallback)
	s.publishIntakeEvents(ctx, ticket, outcome, verdict)

	s.logger.Info("ticket processed",
		zap.String("ticket_id", ticket.ID),
		zap.String("routing_decision", string(routing)),
		zap.Bool("is_duplicate", isDuplicate),
		zap.Bool("ai_fallback", outcome.Result.Fallback),
		zap.Strings("guardrail_flags", verdict.Flags))

	return ticket, nil
}

// ListTickets returns recent tickets, optionally filtered by status and
// urgency.
func (s *IntakeService) ListTickets(ctx context.Context, status *domain.TicketStatus, urgency *domain.TicketUrgency, limit int) ([]domain.Ticket, error) {
	return s.tickets.List(ctx, repository.TicketFilter{
		Status:  status,
		Urgency: urgency,
		Limit:   limit,
	})
}

// GetTicketLogs returns a ticket's audit trail in chronological order.
func (s *IntakeService) GetTicketLogs(ctx context.Context, ticketID string) ([]domain.TicketLog, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.logs.ListByTicket(ctx, ticketID)
}

const (
	maxNameLen    = 255
	maxSubjectLen = 255
	minMessageLen = 10
	maxMessageLen = 5000
)

func validateSubmission(input SubmissionInput) error {
	issues := map[string]any{}

	if strings.TrimSpace(input.Name) == "" || utf8.RuneCountInString(input.Name) > maxNameLen {
		issues["name"] = fmt.Sprintf("must be 1-%d characters and not whitespace-only", maxNameLen)
	}
	if strings.TrimSpace(input.Subject) == "" || utf8.RuneCountInString(input.Subject) > maxSubjectLen {
		issues["subject"] = fmt.Sprintf("must be 1-%d characters and not whitespace-only", maxSubjectLen)
	}
	if messageLen := utf8.RuneCountInString(input.Message); strings.TrimSpace(input.Message) == "" ||
		messageLen < minMessageLen || messageLen > maxMessageLen {
		issues["message"] = fmt.Sprintf("must be %d-%d characters and not whitespace-only", minMessageLen, maxMessageLen)
	}
	if addr, err := mail.ParseAddress(input.Email); err != nil || addr.Address != input.Email {
		issues["email"] = "must be a valid email address"
	}

	if len(issues) > 0 {
		return apperrors.NewValidationError("invalid submission", issues)
	}
	return nil
}

func rawInputSummary(input SubmissionInput) string {
	return fmt.Sprintf("name=%s; email=%s; subject=%s; message=%s",
		input.Name, input.Email, input.Subject, input.Message)
}

func aiOutputSummary(outcome ai.Outcome) string {
	out := outcome.RawOutput
	if outcome.ErrorNote != "" {
		out += "\nERROR: " + outcome.ErrorNote
	}
	return out
}

func (s *IntakeService) publishIntakeEvents(ctx context.Context, ticket *domain.Ticket, outcome ai.Outcome, verdict guardrail.Verdict) {
	if s.dispatcher == nil {
		return
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketReceived,
		TicketID: ticket.ID,
		Payload: events.TicketReceivedPayload{
			Email:       ticket.Email,
			Subject:     ticket.Subject,
			IsDuplicate: ticket.IsDuplicate,
			OriginalID:  ticket.OriginalTicketID,
		},
	})

	routedType := events.EventTicketAutoResolved
	if verdict.NeedsHumanReview {
		routedType = events.EventTicketEscalated
	}
	s.publish(ctx, events.Event{
		Type:     routedType,
		TicketID: ticket.ID,
		Payload: events.TicketRoutedPayload{
			Category:        ticket.Category,
			Urgency:         ticket.Urgency,
			GuardrailFlags:  verdict.Flags,
			RoutingDecision: ticket.RoutingDecision,
			AIFallback:      outcome.Result.Fallback,
		},
	})
}

func (s *IntakeService) publish(ctx context.Context, event events.Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failure",
			zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
