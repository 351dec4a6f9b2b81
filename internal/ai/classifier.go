package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/flowgen/internal/config"
	"github.com/spec-kit/flowgen/internal/domain"
)

const systemPrompt = `You are an AI assistant helping a customer support workflow automation system.
You MUST respond ONLY with a single JSON object and NOTHING else.
Do not include markdown, code fences, commentary, or explanations.

The expected JSON schema is:
{
  "category": "billing | technical | account | general",
  "urgency": "low | medium | high",
  "priority_score": number between 1 and 100,
  "confidence_score": number between 0 and 1,
  "draft_reply": "string",
  "reasoning_summary": "string"
}

Rules:
- Always choose one of the allowed enum values for category and urgency.
- priority_score: higher means more urgent/important.
- confidence_score: 0 to 1 indicating how confident you are.
- draft_reply: a polite, helpful response that a human agent could send with minimal edits.
- reasoning_summary: short explanation of why you chose the category, urgency, and priority.

Draft reply style rules:
- If a customer name is provided, you may greet them using their name.
- Always sign off as "Sufiyan Ali" in the closing of the draft reply.`

const (
	// FallbackDraftReply is the deterministic reply substituted when the AI
	// backend produces no valid answer within the retry budget.
	FallbackDraftReply = "We are unable to auto-process this ticket at the moment. It has been forwarded to human support."
	// FallbackReasoning is the reasoning text attached to fallback results.
	FallbackReasoning = "Fallback response due to Gemini error or invalid output."
)

const (
	noteTimeout     = "Gemini timeout"
	noteInvalidJSON = "Invalid JSON from Gemini"
	noteRateLimited = "Gemini quota or rate limit error"
	noteAPIError    = "Gemini API error"
)

// Submission carries the raw ticket fields the classifier works from.
type Submission struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Outcome is what one classification run yields. Classify never fails
// outward: Result is always usable, and RawOutput/ErrorNote carry the
// diagnostic trail for the audit log.
type Outcome struct {
	Result    domain.Classification
	RawOutput string
	ErrorNote string
}

// attemptStatus tags the result of a single backend attempt so the retry
// policy is explicit: parse failures and timeouts retry, everything else
// stops immediately.
type attemptStatus int

const (
	attemptOK attemptStatus = iota
	attemptRetryable
	attemptFatal
)

type attemptResult struct {
	status attemptStatus
	result domain.Classification
	raw    string
	note   string
}

// Classifier produces typed classifications for ticket submissions.
type Classifier struct {
	client      CompletionClient
	cache       ClassificationCache
	logger      *zap.Logger
	timeout     time.Duration
	maxAttempts int
}

// NewClassifier builds a classifier over the given backend. cache may be nil.
func NewClassifier(client CompletionClient, cache ClassificationCache, cfg config.GeminiConfig, logger *zap.Logger) *Classifier {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 2
	}
	return &Classifier{
		client:      client,
		cache:       cache,
		logger:      logger,
		timeout:     cfg.Timeout(),
		maxAttempts: maxAttempts,
	}
}

// Classify runs the bounded attempt loop and always returns a usable result,
// substituting the deterministic fallback when the backend cannot produce a
// structurally valid answer. fingerprint keys the optional result cache.
func (c *Classifier) Classify(ctx context.Context, sub Submission, fingerprint string) Outcome {
	if c.cache != nil {
		if cached, ok := c.cache.Get(ctx, fingerprint); ok {
			c.logger.Debug("classification cache hit", zap.String("fingerprint", fingerprint))
			return Outcome{Result: cached}
		}
	}

	prompt := buildPrompt(sub)

	var lastRaw, lastNote string
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		res := c.attempt(ctx, prompt)
		if res.raw != "" {
			lastRaw = res.raw
		}

		switch res.status {
		case attemptOK:
			if c.cache != nil {
				c.cache.Set(ctx, fingerprint, res.result)
			}
			return Outcome{Result: res.result, RawOutput: res.raw}
		case attemptRetryable:
			lastNote = res.note
			c.logger.Warn("classification attempt failed",
				zap.Int("attempt", attempt),
				zap.String("error", res.note))
		case attemptFatal:
			lastNote = res.note
			c.logger.Error("classification aborted",
				zap.Int("attempt", attempt),
				zap.String("error", res.note))
		}

		if res.status == attemptFatal {
			break
		}
	}

	return Outcome{
		Result:    fallbackClassification(),
		RawOutput: lastRaw,
		ErrorNote: lastNote,
	}
}

func (c *Classifier) attempt(ctx context.Context, prompt string) attemptResult {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.client.Complete(attemptCtx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return attemptResult{status: attemptRetryable, note: noteTimeout}
		}
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "rate") {
			return attemptResult{status: attemptFatal, note: noteRateLimited}
		}
		return attemptResult{status: attemptFatal, note: noteAPIError}
	}

	result, err := parseClassification(raw)
	if err != nil {
		return attemptResult{status: attemptRetryable, raw: raw, note: noteInvalidJSON}
	}
	return attemptResult{status: attemptOK, raw: raw, result: result}
}

func buildPrompt(sub Submission) string {
	return fmt.Sprintf("%s\n\nNow analyze the following support ticket:\nName: %s\nEmail: %s\nSubject: %s\nMessage: %s\n",
		systemPrompt, sub.Name, sub.Email, sub.Subject, sub.Message)
}

// parseClassification maps the model's JSON object into a Classification.
// Missing keys stay unset; extra keys are ignored.
func parseClassification(raw string) (domain.Classification, error) {
	var payload struct {
		Category         *string  `json:"category"`
		Urgency          *string  `json:"urgency"`
		PriorityScore    *float64 `json:"priority_score"`
		ConfidenceScore  *float64 `json:"confidence_score"`
		DraftReply       *string  `json:"draft_reply"`
		ReasoningSummary *string  `json:"reasoning_summary"`
	}

	cleaned := cleanMarkdownWrapper(raw)
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return domain.Classification{}, err
	}

	result := domain.Classification{
		DraftReply:       payload.DraftReply,
		ReasoningSummary: payload.ReasoningSummary,
		ConfidenceScore:  payload.ConfidenceScore,
	}
	if payload.Category != nil {
		category := domain.TicketCategory(*payload.Category)
		result.Category = &category
	}
	if payload.Urgency != nil {
		urgency := domain.TicketUrgency(*payload.Urgency)
		result.Urgency = &urgency
	}
	if payload.PriorityScore != nil {
		score := int(*payload.PriorityScore)
		result.PriorityScore = &score
	}
	return result, nil
}

// cleanMarkdownWrapper strips a ```json fenced block if the model wrapped its
// answer despite the format contract.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func fallbackClassification() domain.Classification {
	draft := FallbackDraftReply
	reasoning := FallbackReasoning
	return domain.Classification{
		DraftReply:       &draft,
		ReasoningSummary: &reasoning,
		Fallback:         true,
	}
}
