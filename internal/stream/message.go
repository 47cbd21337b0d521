package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidrmz/cotejo/internal/models"
)

// StreamMessage is a raw message read off the analysis stream
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// AnalysisRequest is a queued group analysis run
type AnalysisRequest struct {
	ComparisonID string
	Tipo         models.ComparisonType
	RequestedAt  time.Time
}

// ParseAnalysisRequest decodes a stream message into an analysis
// request
func ParseAnalysisRequest(msg *StreamMessage) (*AnalysisRequest, error) {
	comparisonID := msg.Fields["comparison_id"]
	if comparisonID == "" {
		return nil, fmt.Errorf("message %s missing comparison_id", msg.ID)
	}

	tipo := models.ComparisonType(msg.Fields["tipo"])
	if tipo != models.TipoIndividual && tipo != models.TipoGrupal {
		return nil, fmt.Errorf("message %s has unknown tipo %q", msg.ID, msg.Fields["tipo"])
	}

	requestedAt := time.Now()
	if raw := msg.Fields["requested_at"]; raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			requestedAt = parsed
		}
	}

	return &AnalysisRequest{
		ComparisonID: comparisonID,
		Tipo:         tipo,
		RequestedAt:  requestedAt,
	}, nil
}

// Publisher enqueues analysis requests onto the stream
type Publisher struct {
	client    *redis.Client
	streamKey string
}

func NewPublisher(client *redis.Client, streamKey string) *Publisher {
	return &Publisher{client: client, streamKey: streamKey}
}

func (p *Publisher) PublishAnalysisRequest(ctx context.Context, req *AnalysisRequest) error {
	err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.streamKey,
		Values: map[string]interface{}{
			"comparison_id": req.ComparisonID,
			"tipo":          string(req.Tipo),
			"requested_at":  req.RequestedAt.Format(time.RFC3339),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish analysis request: %w", err)
	}

	return nil
}
