package models

import (
	"time"
)

// PlagiarismLikelihood buckets the similarity verdict
type PlagiarismLikelihood string

const (
	LikelihoodBajo  PlagiarismLikelihood = "bajo"
	LikelihoodMedio PlagiarismLikelihood = "medio"
	LikelihoodAlto  PlagiarismLikelihood = "alto"
)

// DimensionScore is one parsed sub-score of the similarity narrative
// (lexical, structural, style, functional)
type DimensionScore struct {
	Dimension string `bson:"dimension" json:"dimension"`
	Score     int    `bson:"puntaje" json:"puntaje"`
}

// SimilarityResult is the AI similarity verdict for one comparison.
// Immutable once created: re-running the step inserts a new document.
type SimilarityResult struct {
	ID              string               `bson:"_id" json:"id"`
	ComparisonID    string               `bson:"comparacion_id" json:"comparacion_id"`
	SimilarityScore int                  `bson:"similarity_score" json:"similarity_score"`
	Explanation     string               `bson:"explanation" json:"explanation"`
	Dimensions      []DimensionScore     `bson:"dimensiones,omitempty" json:"dimensiones,omitempty"`
	Likelihood      PlagiarismLikelihood `bson:"plagiarism_likelihood" json:"plagiarism_likelihood"`
	CreatedAt       time.Time            `bson:"createdAt" json:"fecha_creacion"`
}

// AnalysisConfidence is the engine's self-reported confidence
type AnalysisConfidence string

const (
	ConfianzaAlta  AnalysisConfidence = "Alta"
	ConfianzaMedia AnalysisConfidence = "Media"
	ConfianzaBaja  AnalysisConfidence = "Baja"
)

// DetectedPattern is one algorithmic pattern found in a code sample
type DetectedPattern struct {
	Patron      string `bson:"patron" json:"patron"`
	Complejidad string `bson:"complejidad" json:"complejidad"`
}

// CodeEfficiency is the static Big-O classification of one code sample.
// EstructurasDatos may be absent when the engine detects none.
type CodeEfficiency struct {
	CodigoIndex          int                `bson:"codigo_index" json:"codigo_index"`
	ComplejidadTemporal  string             `bson:"complejidad_temporal" json:"complejidad_temporal"`
	ComplejidadEspacial  string             `bson:"complejidad_espacial" json:"complejidad_espacial"`
	NivelAnidamiento     int                `bson:"nivel_anidamiento" json:"nivel_anidamiento"`
	PatronesDetectados   []DetectedPattern  `bson:"patrones_detectados,omitempty" json:"patrones_detectados,omitempty"`
	EstructurasDatos     []string           `bson:"estructuras_datos,omitempty" json:"estructuras_datos,omitempty"`
	ConfianzaAnalisis    AnalysisConfidence `bson:"confianza_analisis" json:"confianza_analisis"`
}

// EfficiencyResult holds the per-code classifications plus the
// comparison-level winner (individual) or ranking (group). ResultadoID
// is its own identifier namespace: commentary is keyed by it, never by
// the comparison id.
type EfficiencyResult struct {
	ResultadoID  string           `bson:"_id" json:"resultado_id"`
	ComparisonID string           `bson:"comparacion_id" json:"comparacion_id"`
	Codigos      []CodeEfficiency `bson:"codigos" json:"codigos"`
	Ganador      int              `bson:"ganador" json:"ganador"`
	Ranking      []int            `bson:"ranking,omitempty" json:"ranking,omitempty"`
	CreatedAt    time.Time        `bson:"createdAt" json:"fecha_creacion"`
}

// EfficiencyCommentary is the AI narrative elaborating on an
// EfficiencyResult
type EfficiencyCommentary struct {
	ID              string    `bson:"_id" json:"id"`
	ResultadoID     string    `bson:"resultado_id" json:"resultado_id"`
	Comentario      string    `bson:"comentario" json:"comentario"`
	TokensUsados    int       `bson:"tokens_usados" json:"tokens_usados"`
	Proveedor       string    `bson:"proveedor" json:"proveedor"`
	FechaGeneracion time.Time `bson:"fecha_generacion" json:"fecha_generacion"`
}
