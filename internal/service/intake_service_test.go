package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/flowgen/internal/ai"
	"github.com/spec-kit/flowgen/internal/config"
	"github.com/spec-kit/flowgen/internal/domain"
	"github.com/spec-kit/flowgen/internal/guardrail"
	"github.com/spec-kit/flowgen/internal/observability"
	"github.com/spec-kit/flowgen/internal/ratelimit"
	"github.com/spec-kit/flowgen/internal/repository"
	apperrors "github.com/spec-kit/flowgen/pkg/util"
)

// fakeTicketRepo is an in-memory TicketRepository.
type fakeTicketRepo struct {
	tickets []domain.Ticket
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = time.Now()
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	for i := range r.tickets {
		if r.tickets[i].ID == id {
			ticket := r.tickets[i]
			return &ticket, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) FindLatestByFingerprint(_ context.Context, hash string) (*domain.Ticket, error) {
	for i := len(r.tickets) - 1; i >= 0; i-- {
		if r.tickets[i].MessageHash == hash {
			ticket := r.tickets[i]
			return &ticket, nil
		}
	}
	return nil, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for i := len(r.tickets) - 1; i >= 0; i-- {
		t := r.tickets[i]
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.Urgency != nil && (t.Urgency == nil || *t.Urgency != *filter.Urgency) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// fakeLogRepo is an in-memory TicketLogRepository.
type fakeLogRepo struct {
	logs []domain.TicketLog
}

func (r *fakeLogRepo) Create(_ context.Context, log *domain.TicketLog) error {
	log.ID = uuid.NewString()
	log.Timestamp = time.Now()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeLogRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketLog, error) {
	var out []domain.TicketLog
	for _, log := range r.logs {
		if log.TicketID == ticketID {
			out = append(out, log)
		}
	}
	return out, nil
}

// scriptedBackend replays completion responses and counts calls.
type scriptedBackend struct {
	response string
	err      error
	calls    int
}

func (b *scriptedBackend) Complete(_ context.Context, _ string) (string, error) {
	b.calls++
	return b.response, b.err
}

type intakeFixture struct {
	service *IntakeService
	tickets *fakeTicketRepo
	logs    *fakeLogRepo
	backend *scriptedBackend
}

func newIntakeFixture(t *testing.T, backend *scriptedBackend, maxPerWindow int) *intakeFixture {
	t.Helper()
	tickets := &fakeTicketRepo{}
	logs := &fakeLogRepo{}
	classifier := ai.NewClassifier(backend, nil, config.GeminiConfig{TimeoutSeconds: 1, MaxAttempts: 2}, zap.NewNop())

	svc := NewIntakeService(IntakeDependencies{
		TicketRepo: tickets,
		LogRepo:    logs,
		Limiter:    ratelimit.NewFixedWindowLimiter(maxPerWindow, time.Minute),
		Classifier: classifier,
		Guardrails: guardrail.NewEngine(),
		Metrics:    observability.NewMetrics(),
		Logger:     zap.NewNop(),
	})
	return &intakeFixture{service: svc, tickets: tickets, logs: logs, backend: backend}
}

const cleanResponse = `{"category":"technical","urgency":"low","priority_score":20,"confidence_score":0.95,"draft_reply":"Hi Jane, please restart the agent.","reasoning_summary":"Routine technical question."}`

func validInput() SubmissionInput {
	return SubmissionInput{
		Name:    "Jane Doe",
		Email:   "jane@example.com",
		Subject: "Agent will not start",
		Message: "The desktop agent crashes on startup every time.",
	}
}

func TestSubmitHappyPath(t *testing.T) {
	f := newIntakeFixture(t, &scriptedBackend{response: cleanResponse}, 5)

	ticket, err := f.service.Submit(context.Background(), validInput(), "1.2.3.4")
	require.NoError(t, err)

	assert.NotEmpty(t, ticket.ID)
	assert.False(t, ticket.IsDuplicate)
	assert.Nil(t, ticket.OriginalTicketID)
	assert.Equal(t, domain.TicketStatusAutoResolved, ticket.Status)
	assert.Equal(t, domain.RoutingAutoResolve, ticket.RoutingDecision)
	assert.Empty(t, ticket.GuardrailFlags)
	require.NotNil(t, ticket.Category)
	assert.Equal(t, domain.CategoryTechnical, *ticket.Category)

	require.Len(t, f.logs.logs, 1)
	log := f.logs.logs[0]
	assert.Equal(t, ticket.ID, log.TicketID)
	assert.Contains(t, log.RawInput, "email=jane@example.com")
	assert.Equal(t, cleanResponse, log.AIOutput)
	assert.Equal(t, domain.RoutingAutoResolve, log.RoutingDecision)
}

func TestSubmitDuplicateDetection(t *testing.T) {
	f := newIntakeFixture(t, &scriptedBackend{response: cleanResponse}, 10)

	first, err := f.service.Submit(context.Background(), validInput(), "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, first.IsDuplicate)

	// Same normalized message, different case and padding.
	input := validInput()
	input.Message = "  " + strings.ToUpper(input.Message) + " "
	second, err := f.service.Submit(context.Background(), input, "1.2.3.4")
	require.NoError(t, err)

	assert.True(t, second.IsDuplicate)
	require.NotNil(t, second.OriginalTicketID)
	assert.Equal(t, first.ID, *second.OriginalTicketID)
	// Duplicates are informational, never blocking.
	assert.Equal(t, domain.RoutingAutoResolve, second.RoutingDecision)
}

func TestSubmitRateLimited(t *testing.T) {
	f := newIntakeFixture(t, &scriptedBackend{response: cleanResponse}, 1)

	_, err := f.service.Submit(context.Background(), validInput(), "9.9.9.9")
	require.NoError(t, err)

	_, err = f.service.Submit(context.Background(), validInput(), "9.9.9.9")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "RATE_LIMITED", domainErr.Code)
	assert.Equal(t, 429, domainErr.HTTPStatus)

	// Other clients are unaffected.
	_, err = f.service.Submit(context.Background(), validInput(), "8.8.8.8")
	assert.NoError(t, err)
}

func TestSubmitPrefilterRejection(t *testing.T) {
	f := newIntakeFixture(t, &scriptedBackend{response: cleanResponse}, 5)

	input := validInput()
	input.Message = "<script>alert(1)</script> please help me now"
	_, err := f.service.Submit(context.Background(), input, "1.2.3.4")

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	issues, ok := domainErr.Details["issues"].([]string)
	require.True(t, ok)
	assert.Contains(t, issues, "Potential script injection detected.")

	// No AI call, no persistence for rejected submissions.
	assert.Zero(t, f.backend.calls)
	assert.Empty(t, f.tickets.tickets)
	assert.Empty(t, f.logs.logs)
}

func TestSubmitFieldValidation(t *testing.T) {
	f := newIntakeFixture(t, &scriptedBackend{response: cleanResponse}, 20)

	cases := []struct {
		name   string
		mutate func(*SubmissionInput)
	}{
		{"invalid email", func(in *SubmissionInput) { in.Email = "not-an-email" }},
		{"whitespace name", func(in *SubmissionInput) { in.Name = "   " }},
		{"short message", func(in *SubmissionInput) { in.Message = "too short" }},
		{"long subject", func(in *SubmissionInput) { in.Subject = strings.Repeat("x", 300) }},
		{"long multibyte name", func(in *SubmissionInput) { in.Name = strings.Repeat("é", 256) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := f.service.Submit(context.Background(), input, "1.2.3.4")
			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
		})
	}
	assert.Zero(t, f.backend.calls)
}

func TestSubmitFieldBoundsCountRunesNotBytes(t *testing.T) {
	f := newIntakeFixture(t, &scriptedBackend{response: cleanResponse}, 20)

	input := validInput()
	input.Name = strings.Repeat("é", 255) // 510 bytes, 255 characters

	ticket, err := f.service.Submit(context.Background(), input, "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, input.Name, ticket.Name)
}

func TestSubmitAIFallbackStillPersists(t *testing.T) {
	backend := &scriptedBackend{err: errors.New("gemini API error (status 429): quota exceeded")}
	f := newIntakeFixture(t, backend, 5)

	ticket, err := f.service.Submit(context.Background(), validInput(), "1.2.3.4")
	require.NoError(t, err, "AI failures must never fail the submission")

	assert.Equal(t, 1, backend.calls)
	assert.Nil(t, ticket.Category)
	assert.Nil(t, ticket.ConfidenceScore)
	require.NotNil(t, ticket.DraftReply)
	assert.Equal(t, ai.FallbackDraftReply, *ticket.DraftReply)
	assert.Equal(t, domain.TicketStatusNeedsReview, ticket.Status)
	assert.Equal(t, domain.RoutingHumanReview, ticket.RoutingDecision)
	assert.Contains(t, ticket.GuardrailFlags, guardrail.FlagAIUnavailable)

	require.Len(t, f.logs.logs, 1)
	assert.Contains(t, f.logs.logs[0].AIOutput, "ERROR: Gemini quota or rate limit error")
}

func TestSubmitRiskyDraftNeedsReview(t *testing.T) {
	risky := `{"category":"billing","urgency":"low","confidence_score":0.9,"draft_reply":"We will refund your payment in full.","reasoning_summary":"Billing complaint."}`
	f := newIntakeFixture(t, &scriptedBackend{response: risky}, 5)

	ticket, err := f.service.Submit(context.Background(), validInput(), "1.2.3.4")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusNeedsReview, ticket.Status)
	assert.Equal(t, domain.RoutingHumanReview, ticket.RoutingDecision)
	assert.Contains(t, ticket.GuardrailFlags, guardrail.FlagRefundCommitment)
}

func TestListTicketsFilters(t *testing.T) {
	f := newIntakeFixture(t, &scriptedBackend{response: cleanResponse}, 50)

	for i := 0; i < 3; i++ {
		input := validInput()
		input.Message = fmt.Sprintf("The desktop agent crashes on startup, attempt %d.", i)
		_, err := f.service.Submit(context.Background(), input, "1.2.3.4")
		require.NoError(t, err)
	}

	all, err := f.service.ListTickets(context.Background(), nil, nil, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	status := domain.TicketStatusNeedsReview
	none, err := f.service.ListTickets(context.Background(), &status, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetTicketLogs(t *testing.T) {
	f := newIntakeFixture(t, &scriptedBackend{response: cleanResponse}, 5)

	ticket, err := f.service.Submit(context.Background(), validInput(), "1.2.3.4")
	require.NoError(t, err)

	logs, err := f.service.GetTicketLogs(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, ticket.ID, logs[0].TicketID)

	_, err = f.service.GetTicketLogs(context.Background(), uuid.NewString())
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}
