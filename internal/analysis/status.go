package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	redisInfra "github.com/davidrmz/cotejo/internal/infra/redis"
	"github.com/davidrmz/cotejo/internal/models"
)

const statusTTL = 12 * time.Hour

var validSteps = map[models.Step]bool{
	models.StepDraft:             true,
	models.StepSubmitted:         true,
	models.StepSimilarityPending: true,
	models.StepSimilarityReady:   true,
	models.StepSimilarityFailed:  true,
	models.StepEfficiencyPending: true,
	models.StepEfficiencyReady:   true,
	models.StepEfficiencyFailed:  true,
	models.StepCommentaryPending: true,
	models.StepCommentaryReady:   true,
	models.StepCompleted:         true,
}

// Status tracks each comparison's pipeline stage in Redis so clients
// can poll the stage label while a run is in flight.
type Status struct {
	client *redisInfra.Client
}

func NewStatus(client *redisInfra.Client) *Status {
	return &Status{client: client}
}

func statusKey(comparisonID string) string {
	return "analysis_status:" + comparisonID
}

func (s *Status) SetStep(ctx context.Context, comparisonID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKey(comparisonID)

	err := s.client.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("comparisonID", comparisonID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("comparisonID", comparisonID).
		Msg("Status updated in Redis")

	return nil
}

// GetStep returns StepDraft when no status was ever recorded or the key
// expired.
func (s *Status) GetStep(ctx context.Context, comparisonID string) (models.Step, error) {
	value, err := s.client.Get(ctx, statusKey(comparisonID)).Result()
	if err != nil {
		return models.StepDraft, nil
	}

	return models.Step(value), nil
}
