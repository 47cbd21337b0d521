package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/davidrmz/cotejo/internal/engine"
	"github.com/davidrmz/cotejo/internal/metrics"
	"github.com/davidrmz/cotejo/internal/models"
)

// ErrComparisonNotFound is returned when a pipeline step references a
// comparison id that was never submitted.
var ErrComparisonNotFound = errors.New("comparison not found")

// ErrResultNotFound is returned when a commentary run references a
// resultado_id with no stored efficiency result behind it.
var ErrResultNotFound = errors.New("efficiency result not found")

// ValidationError rejects a submission before any store or engine call
// is made.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Engine is the analysis engine surface the pipeline depends on
type Engine interface {
	AnalyzeSimilarity(ctx context.Context, req *engine.SimilarityRequest) (*engine.SimilarityResponse, error)
	AnalyzeEfficiency(ctx context.Context, req *engine.EfficiencyRequest) (*engine.EfficiencyResponse, error)
	GenerateCommentary(ctx context.Context, req *engine.CommentaryRequest) (*engine.CommentaryResponse, error)
}

// ComparisonStore is the slice of the comparisons repository the
// pipeline uses
type ComparisonStore interface {
	InsertComparison(ctx context.Context, comparison *models.Comparison) error
	GetComparisonByID(ctx context.Context, id string) (*models.Comparison, error)
}

// ResultStore persists and reads step outputs
type ResultStore interface {
	InsertSimilarityResult(ctx context.Context, result *models.SimilarityResult) error
	GetLatestSimilarityByComparisonID(ctx context.Context, comparisonID string) (*models.SimilarityResult, error)
	InsertEfficiencyResult(ctx context.Context, result *models.EfficiencyResult) error
	GetLatestEfficiencyByComparisonID(ctx context.Context, comparisonID string) (*models.EfficiencyResult, error)
	GetEfficiencyByResultadoID(ctx context.Context, resultadoID string) (*models.EfficiencyResult, error)
	InsertCommentary(ctx context.Context, commentary *models.EfficiencyCommentary) error
	GetCommentaryByResultadoID(ctx context.Context, resultadoID string) (*models.EfficiencyCommentary, error)
}

// CatalogStore resolves language and model references at analysis time
type CatalogStore interface {
	GetLanguageByID(ctx context.Context, id string) (*models.Language, error)
	GetAIModelByID(ctx context.Context, id string) (*models.AIModel, error)
}

// StatusSetter records the pipeline stage per comparison
type StatusSetter interface {
	SetStep(ctx context.Context, comparisonID string, step models.Step) error
}

// Pipeline is the comparison analysis orchestrator. Steps are strictly
// ordered by data dependency: submission produces the comparison id the
// similarity and efficiency steps consume, and the efficiency result's
// resultado_id is the only key the commentary step accepts. A later
// step's failure never rolls back an earlier step's persisted output.
type Pipeline struct {
	engine      Engine
	comparisons ComparisonStore
	results     ResultStore
	catalog     CatalogStore
	status      StatusSetter
}

func NewPipeline(
	eng Engine,
	comparisons ComparisonStore,
	results ResultStore,
	catalog CatalogStore,
	status StatusSetter,
) *Pipeline {
	return &Pipeline{
		engine:      eng,
		comparisons: comparisons,
		results:     results,
		catalog:     catalog,
		status:      status,
	}
}

// validateSubmission gates the submission step. A rejected request must
// produce zero network and zero store calls, so this runs before
// anything else.
func validateSubmission(req *models.SubmissionRequest) error {
	if req.LenguajeID == "" {
		return &ValidationError{Message: "Debe seleccionar un lenguaje"}
	}
	if req.ModeloIAID == "" {
		return &ValidationError{Message: "Debe seleccionar un modelo de IA"}
	}
	if req.UsuarioID == "" {
		return &ValidationError{Message: "Usuario no identificado"}
	}

	switch req.Tipo {
	case models.TipoIndividual:
		if len(req.Codigos) != 2 {
			return &ValidationError{Message: "Una comparación individual requiere exactamente 2 códigos"}
		}
	case models.TipoGrupal:
		if len(req.Codigos) < 3 {
			return &ValidationError{Message: "Una comparación grupal requiere al menos 3 códigos"}
		}
	default:
		return &ValidationError{Message: "Tipo de comparación desconocido"}
	}

	for i, code := range req.Codigos {
		if strings.TrimSpace(code.Codigo) == "" {
			return &ValidationError{Message: fmt.Sprintf("El código %d está vacío", i+1)}
		}
	}

	return nil
}

// Submit validates and persists a comparison. Once persisted the record
// is locked: there is no update path for its codes, only estado
// transitions and analysis runs keyed by the returned id.
func (p *Pipeline) Submit(ctx context.Context, req *models.SubmissionRequest) (*models.SubmissionResponse, error) {
	if err := validateSubmission(req); err != nil {
		return nil, err
	}

	comparison := &models.Comparison{
		ID:         uuid.New().String(),
		Nombre:     req.Nombre,
		Tipo:       req.Tipo,
		Codigos:    req.Codigos,
		LenguajeID: req.LenguajeID,
		ModeloIAID: req.ModeloIAID,
		UsuarioID:  req.UsuarioID,
		Estado:     models.EstadoReciente,
	}

	if err := p.comparisons.InsertComparison(ctx, comparison); err != nil {
		return nil, fmt.Errorf("failed to persist comparison: %w", err)
	}

	metrics.ComparisonsCreated.WithLabelValues(string(req.Tipo)).Inc()

	if err := p.status.SetStep(ctx, comparison.ID, models.StepSubmitted); err != nil {
		log.Warn().Err(err).Str("comparisonID", comparison.ID).Msg("Failed to record submitted status")
	}

	return &models.SubmissionResponse{
		ComparisonID: comparison.ID,
		TotalCodes:   len(comparison.Codigos),
		CreatedAt:    comparison.FechaCreacion,
	}, nil
}

// RunSimilarity executes the similarity step for an already-submitted
// comparison. On failure the comparison stays submitted and the step can
// be retried with the same id; nothing is re-submitted.
func (p *Pipeline) RunSimilarity(ctx context.Context, comparisonID string) (*models.SimilarityResult, error) {
	comparison, language, model, err := p.resolve(ctx, comparisonID)
	if err != nil {
		return nil, err
	}

	p.setStep(ctx, comparisonID, models.StepSimilarityPending)

	resp, err := p.engine.AnalyzeSimilarity(ctx, &engine.SimilarityRequest{
		ComparisonID: comparison.ID,
		Codigos:      comparison.Codigos,
		Lenguaje:     language.Nombre,
		Proveedor:    model.Proveedor,
		Modelo:       model.Nombre,
	})
	if err != nil {
		metrics.PipelineSteps.WithLabelValues("similarity", "failed").Inc()
		p.setStep(ctx, comparisonID, models.StepSimilarityFailed)
		return nil, err
	}

	dims, general := engine.ParseNarrative(resp.Explanation)
	score := resp.SimilarityScore
	if score == 0 && general >= 0 {
		score = general
	}

	result := &models.SimilarityResult{
		ID:              uuid.New().String(),
		ComparisonID:    comparison.ID,
		SimilarityScore: score,
		Explanation:     resp.Explanation,
		Dimensions:      dims,
		Likelihood:      resp.Likelihood,
	}

	if err := p.results.InsertSimilarityResult(ctx, result); err != nil {
		metrics.PipelineSteps.WithLabelValues("similarity", "failed").Inc()
		p.setStep(ctx, comparisonID, models.StepSimilarityFailed)
		return nil, fmt.Errorf("failed to persist similarity result: %w", err)
	}

	metrics.PipelineSteps.WithLabelValues("similarity", "ok").Inc()
	p.setStep(ctx, comparisonID, models.StepSimilarityReady)

	return result, nil
}

// RunEfficiency executes the efficiency step and, only after it
// succeeds, chains the commentary step keyed by the new resultado_id.
// A commentary failure degrades gracefully: the efficiency result is
// already persisted and is returned with a nil commentary.
func (p *Pipeline) RunEfficiency(ctx context.Context, comparisonID string) (*models.EfficiencyResult, *models.EfficiencyCommentary, error) {
	comparison, language, model, err := p.resolve(ctx, comparisonID)
	if err != nil {
		return nil, nil, err
	}

	p.setStep(ctx, comparisonID, models.StepEfficiencyPending)

	resp, err := p.engine.AnalyzeEfficiency(ctx, &engine.EfficiencyRequest{
		ComparisonID: comparison.ID,
		Codigos:      comparison.Codigos,
		Lenguaje:     language.Nombre,
	})
	if err != nil {
		metrics.PipelineSteps.WithLabelValues("efficiency", "failed").Inc()
		p.setStep(ctx, comparisonID, models.StepEfficiencyFailed)
		return nil, nil, err
	}

	result := &models.EfficiencyResult{
		ResultadoID:  uuid.New().String(),
		ComparisonID: comparison.ID,
		Codigos:      resp.Codigos,
		Ganador:      resp.Ganador,
		Ranking:      resp.Ranking,
	}

	if err := p.results.InsertEfficiencyResult(ctx, result); err != nil {
		metrics.PipelineSteps.WithLabelValues("efficiency", "failed").Inc()
		p.setStep(ctx, comparisonID, models.StepEfficiencyFailed)
		return nil, nil, fmt.Errorf("failed to persist efficiency result: %w", err)
	}

	metrics.PipelineSteps.WithLabelValues("efficiency", "ok").Inc()
	p.setStep(ctx, comparisonID, models.StepEfficiencyReady)

	commentary := p.runCommentary(ctx, comparisonID, result, model)

	return result, commentary, nil
}

// runCommentary is never user-initiated: it fires only right after a
// successful efficiency step, keyed by the resultado_id.
func (p *Pipeline) runCommentary(ctx context.Context, comparisonID string, result *models.EfficiencyResult, model *models.AIModel) *models.EfficiencyCommentary {
	p.setStep(ctx, comparisonID, models.StepCommentaryPending)

	resp, err := p.engine.GenerateCommentary(ctx, &engine.CommentaryRequest{
		ResultadoID: result.ResultadoID,
		Codigos:     result.Codigos,
		Ganador:     result.Ganador,
		Proveedor:   model.Proveedor,
		Modelo:      model.Nombre,
	})
	if err != nil {
		metrics.PipelineSteps.WithLabelValues("commentary", "failed").Inc()
		log.Warn().Err(err).
			Str("resultadoID", result.ResultadoID).
			Msg("Commentary step failed, keeping efficiency result")
		p.setStep(ctx, comparisonID, models.StepEfficiencyReady)
		return nil
	}

	commentary := &models.EfficiencyCommentary{
		ID:           uuid.New().String(),
		ResultadoID:  result.ResultadoID,
		Comentario:   resp.Comentario,
		TokensUsados: resp.TokensUsados,
		Proveedor:    resp.Proveedor,
	}

	if err := p.results.InsertCommentary(ctx, commentary); err != nil {
		metrics.PipelineSteps.WithLabelValues("commentary", "failed").Inc()
		log.Warn().Err(err).Str("resultadoID", result.ResultadoID).Msg("Failed to persist commentary")
		p.setStep(ctx, comparisonID, models.StepEfficiencyReady)
		return nil
	}

	metrics.PipelineSteps.WithLabelValues("commentary", "ok").Inc()
	metrics.EngineTokensUsed.WithLabelValues(commentary.Proveedor).Add(float64(commentary.TokensUsados))
	p.setStep(ctx, comparisonID, models.StepCommentaryReady)
	p.setStep(ctx, comparisonID, models.StepCompleted)

	return commentary
}

// RunCommentary regenerates the commentary for an existing efficiency
// result. It is the retry path when the automatic chain degraded; the
// key is always a resultado_id, never a comparison id. An existing
// commentary is returned as-is instead of burning engine tokens again.
func (p *Pipeline) RunCommentary(ctx context.Context, resultadoID string) (*models.EfficiencyCommentary, error) {
	result, err := p.results.GetEfficiencyByResultadoID(ctx, resultadoID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrResultNotFound
	}

	existing, err := p.results.GetCommentaryByResultadoID(ctx, resultadoID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	_, _, model, err := p.resolve(ctx, result.ComparisonID)
	if err != nil {
		return nil, err
	}

	commentary := p.runCommentary(ctx, result.ComparisonID, result, model)
	if commentary == nil {
		return nil, fmt.Errorf("commentary generation failed for result %s", resultadoID)
	}

	return commentary, nil
}

// RunGroupAnalysis drives a group comparison through the full chain:
// similarity, then efficiency, then commentary. Submission and
// similarity stay two separate steps for group runs too; the chain is
// what makes the group flow feel like one request.
func (p *Pipeline) RunGroupAnalysis(ctx context.Context, comparisonID string) error {
	if _, err := p.RunSimilarity(ctx, comparisonID); err != nil {
		return fmt.Errorf("group similarity step failed: %w", err)
	}

	if _, _, err := p.RunEfficiency(ctx, comparisonID); err != nil {
		return fmt.Errorf("group efficiency step failed: %w", err)
	}

	return nil
}

// resolve loads the comparison and its catalog references. Each step
// re-resolves so a retried step always works from persisted state.
func (p *Pipeline) resolve(ctx context.Context, comparisonID string) (*models.Comparison, *models.Language, *models.AIModel, error) {
	comparison, err := p.comparisons.GetComparisonByID(ctx, comparisonID)
	if err != nil {
		return nil, nil, nil, err
	}
	if comparison == nil {
		return nil, nil, nil, ErrComparisonNotFound
	}

	language, err := p.catalog.GetLanguageByID(ctx, comparison.LenguajeID)
	if err != nil {
		return nil, nil, nil, err
	}
	if language == nil {
		return nil, nil, nil, fmt.Errorf("language %s not found", comparison.LenguajeID)
	}

	model, err := p.catalog.GetAIModelByID(ctx, comparison.ModeloIAID)
	if err != nil {
		return nil, nil, nil, err
	}
	if model == nil {
		return nil, nil, nil, fmt.Errorf("AI model %s not found", comparison.ModeloIAID)
	}

	return comparison, language, model, nil
}

func (p *Pipeline) setStep(ctx context.Context, comparisonID string, step models.Step) {
	if err := p.status.SetStep(ctx, comparisonID, step); err != nil {
		log.Warn().Err(err).
			Str("comparisonID", comparisonID).
			Str("step", string(step)).
			Msg("Failed to record pipeline status")
	}
}
