package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/davidrmz/cotejo/internal/analysis"
	"github.com/davidrmz/cotejo/internal/config"
	"github.com/davidrmz/cotejo/internal/models"
	"github.com/davidrmz/cotejo/internal/stream"
)

// ComparisonStore is the slice of the comparisons repository the
// handlers use
type ComparisonStore interface {
	ListByUser(ctx context.Context, usuarioID string, tipo models.ComparisonType, includeHidden bool) ([]*models.Comparison, error)
	ListAll(ctx context.Context) ([]*models.Comparison, error)
	SetEstado(ctx context.Context, id string, tipo models.ComparisonType, estado models.Estado) (bool, error)
}

// ResultStore is the read surface over stored analysis results
type ResultStore interface {
	GetLatestSimilarityByComparisonID(ctx context.Context, comparisonID string) (*models.SimilarityResult, error)
	GetLatestEfficiencyByComparisonID(ctx context.Context, comparisonID string) (*models.EfficiencyResult, error)
	GetCommentaryByResultadoID(ctx context.Context, resultadoID string) (*models.EfficiencyCommentary, error)
}

// CatalogStore covers the language and AI model CRUD surface
type CatalogStore interface {
	analysis.CatalogLister
	InsertLanguage(ctx context.Context, language *models.Language) error
	UpdateLanguage(ctx context.Context, language *models.Language) (bool, error)
	GetLanguageByID(ctx context.Context, id string) (*models.Language, error)
	ListAllLanguages(ctx context.Context) ([]*models.Language, error)
	InsertAIModel(ctx context.Context, model *models.AIModel) error
	UpdateAIModel(ctx context.Context, model *models.AIModel) (bool, error)
	GetAIModelByID(ctx context.Context, id string) (*models.AIModel, error)
	ListAIModelsByProvider(ctx context.Context, provider models.Provider) ([]*models.AIModel, error)
}

// UserStore is the account lookup and creation surface
type UserStore interface {
	InsertUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// StatusReader reads the recorded pipeline stage per comparison
type StatusReader interface {
	GetStep(ctx context.Context, comparisonID string) (models.Step, error)
}

// AnalysisQueue enqueues group analysis runs
type AnalysisQueue interface {
	PublishAnalysisRequest(ctx context.Context, req *stream.AnalysisRequest) error
}

// Handler holds dependencies for handlers
type Handler struct {
	cfg             *config.Config
	pipeline        *analysis.Pipeline
	comparisonsRepo ComparisonStore
	resultsRepo     ResultStore
	catalogRepo     CatalogStore
	usersRepo       UserStore
	status          StatusReader
	publisher       AnalysisQueue
	analysisSem     chan struct{} // Semaphore for bounded in-request analysis
}

func NewHandler(
	cfg *config.Config,
	pipeline *analysis.Pipeline,
	comparisonsRepo ComparisonStore,
	resultsRepo ResultStore,
	catalogRepo CatalogStore,
	usersRepo UserStore,
	status StatusReader,
	publisher AnalysisQueue,
) *Handler {
	return &Handler{
		cfg:             cfg,
		pipeline:        pipeline,
		comparisonsRepo: comparisonsRepo,
		resultsRepo:     resultsRepo,
		catalogRepo:     catalogRepo,
		usersRepo:       usersRepo,
		status:          status,
		publisher:       publisher,
		analysisSem:     make(chan struct{}, cfg.MaxConcurrentAnalysis),
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// acquireAnalysisSlot bounds how many engine-backed analyses run inside
// requests at once. Returns false when the request was cancelled while
// waiting.
func (h *Handler) acquireAnalysisSlot(c *gin.Context) bool {
	select {
	case h.analysisSem <- struct{}{}:
		return true
	case <-c.Request.Context().Done():
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error:   "REQUEST_TIMEOUT",
			Mensaje: "La solicitud fue cancelada",
		})
		return false
	}
}

func (h *Handler) releaseAnalysisSlot() {
	<-h.analysisSem
}

// collectCodes gathers submitted code samples from a multipart form.
// Numbered codigo_N text fields and uploaded archivos files are both
// accepted; uploads keep their filename.
func collectCodes(c *gin.Context) ([]models.CodeEntry, error) {
	var codes []models.CodeEntry

	for i := 1; ; i++ {
		val := c.PostForm(fmt.Sprintf("codigo_%d", i))
		if val == "" {
			break
		}
		codes = append(codes, models.CodeEntry{
			Codigo:        val,
			NombreArchivo: c.PostForm(fmt.Sprintf("nombre_archivo_%d", i)),
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		// Non-multipart bodies only carry numbered fields
		return codes, nil
	}

	for _, fh := range form.File["archivos"] {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read uploaded file %s: %w", fh.Filename, err)
		}
		codes = append(codes, models.CodeEntry{
			Codigo:        string(data),
			NombreArchivo: fh.Filename,
		})
	}

	return codes, nil
}

// CreateIndividual persists a two-code comparison. Submission and
// similarity are separate steps: the client runs the analysis against
// the returned comparacion_id.
func (h *Handler) CreateIndividual(c *gin.Context) {
	resp, ok := h.submitComparison(c, models.TipoIndividual)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// CreateGrupal persists a group comparison and enqueues its full
// analysis chain, replying 202 while the stream consumer works. An
// enqueue failure keeps the persisted comparison; the chain can be
// rerun against its id.
func (h *Handler) CreateGrupal(c *gin.Context) {
	resp, ok := h.submitComparison(c, models.TipoGrupal)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	req := &stream.AnalysisRequest{
		ComparisonID: resp.ComparisonID,
		Tipo:         models.TipoGrupal,
		RequestedAt:  time.Now(),
	}
	if err := h.publisher.PublishAnalysisRequest(ctx, req); err != nil {
		log.Error().Err(err).Str("comparisonID", resp.ComparisonID).Msg("Failed to enqueue group analysis")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "ENQUEUE_FAILED",
			Mensaje: "La comparación se guardó pero no se pudo encolar el análisis",
		})
		return
	}

	c.JSON(http.StatusAccepted, resp)
}

// submitComparison runs the shared submission step; ok false means the
// error response was already written.
func (h *Handler) submitComparison(c *gin.Context, tipo models.ComparisonType) (*models.SubmissionResponse, bool) {
	codes, err := collectCodes(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "INVALID_REQUEST",
			Mensaje: "No se pudieron leer los códigos enviados",
		})
		return nil, false
	}

	req := &models.SubmissionRequest{
		Nombre:     strings.TrimSpace(c.PostForm("nombre_comparacion")),
		Tipo:       tipo,
		Codigos:    codes,
		LenguajeID: c.PostForm("lenguaje_id"),
		ModeloIAID: c.PostForm("modelo_ia_id"),
		UsuarioID:  c.GetString("usuario_id"),
	}

	resp, err := h.pipeline.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	return resp, true
}

// RunSimilarity executes the similarity step in-request, bounded by the
// analysis semaphore. Retrying after a failure reuses the same
// comparison id; the submission is never repeated.
func (h *Handler) RunSimilarity(c *gin.Context) {
	if !h.acquireAnalysisSlot(c) {
		return
	}
	defer h.releaseAnalysisSlot()

	result, err := h.pipeline.RunSimilarity(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSimilarity returns the latest stored similarity result
func (h *Handler) GetSimilarity(c *gin.Context) {
	result, err := h.resultsRepo.GetLatestSimilarityByComparisonID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "NOT_FOUND",
			Mensaje: "Aún no hay resultado de similitud para esta comparación",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// RunEfficiency executes the efficiency step and its chained commentary
// in-request. Comentario may be null when the commentary step degraded.
func (h *Handler) RunEfficiency(c *gin.Context) {
	if !h.acquireAnalysisSlot(c) {
		return
	}
	defer h.releaseAnalysisSlot()

	result, commentary, err := h.pipeline.RunEfficiency(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resultado":  result,
		"comentario": commentary,
	})
}

// GetEfficiency returns the latest stored efficiency result. A missing
// result is an empty state, not an error: the body says
// existe_analisis:false with HTTP 200.
func (h *Handler) GetEfficiency(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.resultsRepo.GetLatestEfficiencyByComparisonID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusOK, gin.H{
			"existe_analisis": false,
		})
		return
	}

	commentary, err := h.resultsRepo.GetCommentaryByResultadoID(ctx, result.ResultadoID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"existe_analisis": true,
		"resultado":       result,
		"comentario":      commentary,
	})
}

// CreateCommentary regenerates the commentary for an efficiency result.
// The path parameter is a resultado_id; an already-stored commentary is
// returned without another engine call.
func (h *Handler) CreateCommentary(c *gin.Context) {
	if !h.acquireAnalysisSlot(c) {
		return
	}
	defer h.releaseAnalysisSlot()

	commentary, err := h.pipeline.RunCommentary(c.Request.Context(), c.Param("resultado_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, commentary)
}

// GetAnalysisStatus returns the pipeline stage label for a comparison
func (h *Handler) GetAnalysisStatus(c *gin.Context) {
	step, err := h.status.GetStep(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comparacion_id": c.Param("id"),
		"paso":           step,
	})
}

// ListComparisons lists a user's comparisons of one type, hidden ones
// excluded. Users only see their own lists; admins see anyone's.
func (h *Handler) ListComparisons(tipo models.ComparisonType) gin.HandlerFunc {
	return func(c *gin.Context) {
		usuarioID := c.Param("usuario_id")
		if usuarioID != c.GetString("usuario_id") && c.GetString("rol") != string(models.RolAdmin) {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "FORBIDDEN",
				Mensaje: "No puede consultar comparaciones de otro usuario",
			})
			return
		}

		comparisons, err := h.comparisonsRepo.ListByUser(c.Request.Context(), usuarioID, tipo, false)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"comparaciones": comparisons,
		})
	}
}

// MarkEstado transitions a comparison to one display state. The states
// are mutually exclusive; setting one clears whichever held before.
// Hiding is the only "delete" there is.
func (h *Handler) MarkEstado(tipo models.ComparisonType, estado models.Estado) gin.HandlerFunc {
	return func(c *gin.Context) {
		matched, err := h.comparisonsRepo.SetEstado(c.Request.Context(), c.Param("id"), tipo, estado)
		if err != nil {
			respondError(c, err)
			return
		}
		if !matched {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "NOT_FOUND",
				Mensaje: "La comparación no existe",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"mensaje": "Estado actualizado",
			"estado":  estado,
		})
	}
}
