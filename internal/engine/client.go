package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/davidrmz/cotejo/internal/metrics"
	"github.com/davidrmz/cotejo/internal/models"
)

// Client handles communication with the external analysis engine. The
// engine owns the AI similarity scoring, the Big-O heuristics and the
// prompt templates; this client only speaks its HTTP contract.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new analysis engine client. Per-call deadlines are
// expected to come from the caller's context.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// SimilarityRequest asks the engine to compare the given code samples
type SimilarityRequest struct {
	ComparisonID string             `json:"comparacion_id"`
	Codigos      []models.CodeEntry `json:"codigos"`
	Lenguaje     string             `json:"lenguaje"`
	Proveedor    models.Provider    `json:"proveedor"`
	Modelo       string             `json:"modelo"`
}

// SimilarityResponse is the engine's similarity verdict
type SimilarityResponse struct {
	SimilarityScore int                         `json:"similarity_score"`
	Explanation     string                      `json:"explanation"`
	Likelihood      models.PlagiarismLikelihood `json:"plagiarism_likelihood"`
}

// EfficiencyRequest asks the engine for a static Big-O classification
type EfficiencyRequest struct {
	ComparisonID string             `json:"comparacion_id"`
	Codigos      []models.CodeEntry `json:"codigos"`
	Lenguaje     string             `json:"lenguaje"`
}

// EfficiencyResponse carries the per-code classifications plus winner
// or ranking
type EfficiencyResponse struct {
	Codigos []models.CodeEfficiency `json:"codigos"`
	Ganador int                     `json:"ganador"`
	Ranking []int                   `json:"ranking,omitempty"`
}

// CommentaryRequest asks the engine for a narrative on an efficiency
// result. ResultadoID belongs to the efficiency result, not to the
// comparison.
type CommentaryRequest struct {
	ResultadoID string                  `json:"resultado_id"`
	Codigos     []models.CodeEfficiency `json:"codigos"`
	Ganador     int                     `json:"ganador"`
	Proveedor   models.Provider         `json:"proveedor"`
	Modelo      string                  `json:"modelo"`
}

// CommentaryResponse is the engine's narrative commentary
type CommentaryResponse struct {
	Comentario   string `json:"comentario"`
	TokensUsados int    `json:"tokens_usados"`
	Proveedor    string `json:"proveedor"`
}

// errorBody is the engine's error/mensaje response convention
type errorBody struct {
	Error   string `json:"error"`
	Mensaje string `json:"mensaje"`
}

func (c *Client) AnalyzeSimilarity(ctx context.Context, req *SimilarityRequest) (*SimilarityResponse, error) {
	var resp SimilarityResponse
	if err := c.post(ctx, "similarity", "/api/v1/similitud", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) AnalyzeEfficiency(ctx context.Context, req *EfficiencyRequest) (*EfficiencyResponse, error) {
	var resp EfficiencyResponse
	if err := c.post(ctx, "efficiency", "/api/v1/eficiencia", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) GenerateCommentary(ctx context.Context, req *CommentaryRequest) (*CommentaryResponse, error) {
	var resp CommentaryResponse
	if err := c.post(ctx, "commentary", "/api/v1/comentario", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, operation, path string, payload, out interface{}) error {
	start := time.Now()
	defer func() {
		metrics.EngineCallDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	url := c.baseURL + path

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Warn().Err(err).Str("operation", operation).Msg("Engine request failed at transport level")
		return networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return networkError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return c.errorFrom(resp, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// errorFrom builds a tagged error from a non-200 engine response,
// preferring the backend's error/mensaje text over the status line.
func (c *Client) errorFrom(resp *http.Response, body []byte) *Error {
	msg := fmt.Sprintf("Error %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Mensaje != "" {
			msg = eb.Mensaje
		} else if eb.Error != "" {
			msg = eb.Error
		}
	}

	return &Error{
		Kind:    classifyStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: msg,
	}
}
