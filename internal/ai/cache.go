package ai

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/flowgen/internal/domain"
)

const cacheKeyPrefix = "flowgen:classification:"

// ClassificationCache stores classifications keyed by message fingerprint.
// Implementations must treat Set as best-effort; a failed write only costs a
// future backend call.
type ClassificationCache interface {
	Get(ctx context.Context, fingerprint string) (domain.Classification, bool)
	Set(ctx context.Context, fingerprint string, result domain.Classification)
}

var _ ClassificationCache = (*ResultCache)(nil)

// ResultCache keeps recent successful classifications in Redis keyed by
// message fingerprint, so resubmissions of identical content skip the
// backend. A nil cache disables caching; Redis being unreachable only costs
// the lookup.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewResultCache wraps a Redis client as a classification cache.
func NewResultCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ResultCache {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &ResultCache{client: client, ttl: ttl, logger: logger}
}

type cachedClassification struct {
	Category         *string  `json:"category"`
	Urgency          *string  `json:"urgency"`
	PriorityScore    *int     `json:"priority_score"`
	ConfidenceScore  *float64 `json:"confidence_score"`
	DraftReply       *string  `json:"draft_reply"`
	ReasoningSummary *string  `json:"reasoning_summary"`
}

// Get returns the cached classification for a fingerprint, if any.
func (c *ResultCache) Get(ctx context.Context, fingerprint string) (domain.Classification, bool) {
	if c == nil || fingerprint == "" {
		return domain.Classification{}, false
	}

	payload, err := c.client.Get(ctx, cacheKeyPrefix+fingerprint).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("classification cache read failed", zap.Error(err))
		}
		return domain.Classification{}, false
	}

	var cached cachedClassification
	if err := json.Unmarshal(payload, &cached); err != nil {
		c.logger.Debug("classification cache entry corrupt", zap.Error(err))
		return domain.Classification{}, false
	}

	result := domain.Classification{
		PriorityScore:    cached.PriorityScore,
		ConfidenceScore:  cached.ConfidenceScore,
		DraftReply:       cached.DraftReply,
		ReasoningSummary: cached.ReasoningSummary,
	}
	if cached.Category != nil {
		category := domain.TicketCategory(*cached.Category)
		result.Category = &category
	}
	if cached.Urgency != nil {
		urgency := domain.TicketUrgency(*cached.Urgency)
		result.Urgency = &urgency
	}
	return result, true
}

// Set stores a classification under a fingerprint. Fallback results are
// never cached; the next submission should retry the backend.
func (c *ResultCache) Set(ctx context.Context, fingerprint string, result domain.Classification) {
	if c == nil || fingerprint == "" || result.Fallback {
		return
	}

	cached := cachedClassification{
		PriorityScore:    result.PriorityScore,
		ConfidenceScore:  result.ConfidenceScore,
		DraftReply:       result.DraftReply,
		ReasoningSummary: result.ReasoningSummary,
	}
	if result.Category != nil {
		category := string(*result.Category)
		cached.Category = &category
	}
	if result.Urgency != nil {
		urgency := string(*result.Urgency)
		cached.Urgency = &urgency
	}

	payload, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+fingerprint, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("classification cache write failed", zap.Error(err))
	}
}
