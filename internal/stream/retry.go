package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RetryHandler retries a failed analysis run with backoff and parks
// messages that keep failing on a dead-letter list.
type RetryHandler struct {
	client        *redis.Client
	deadLetterKey string
	maxRetries    int
	baseDelay     time.Duration
}

func NewRetryHandler(client *redis.Client, deadLetterKey string) *RetryHandler {
	return &RetryHandler{
		client:        client,
		deadLetterKey: deadLetterKey,
		maxRetries:    3,
		baseDelay:     2 * time.Second,
	}
}

// RetryWithBackoff runs fn up to maxRetries+1 times. Once exhausted the
// message lands on the dead-letter list with the final error attached.
func (r *RetryHandler) RetryWithBackoff(ctx context.Context, fn func() error, messageID string, fields map[string]interface{}) error {
	var lastErr error
	delay := r.baseDelay

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			log.Warn().
				Str("message_id", messageID).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying analysis message")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}
	}

	r.sendToDeadLetter(ctx, messageID, fields, lastErr)
	return lastErr
}

func (r *RetryHandler) sendToDeadLetter(ctx context.Context, messageID string, fields map[string]interface{}, cause error) {
	entry := map[string]interface{}{
		"message_id": messageID,
		"fields":     fields,
		"error":      cause.Error(),
		"failed_at":  time.Now().Format(time.RFC3339),
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to marshal dead-letter entry")
		return
	}

	if err := r.client.LPush(ctx, r.deadLetterKey, payload).Err(); err != nil {
		log.Error().Err(err).Str("message_id", messageID).Msg("Failed to push message to dead-letter list")
		return
	}

	log.Warn().
		Str("message_id", messageID).
		Str("dead_letter_key", r.deadLetterKey).
		Msg("Message moved to dead-letter list")
}
