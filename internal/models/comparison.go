package models

import (
	"time"
)

// Estado is the three-way display state of a comparison. The states are
// mutually exclusive; "delete" is a transition to EstadoOculto, documents
// are never removed.
type Estado string

const (
	EstadoReciente  Estado = "reciente"
	EstadoDestacado Estado = "destacado"
	EstadoOculto    Estado = "oculto"
)

func (e Estado) Valid() bool {
	switch e {
	case EstadoReciente, EstadoDestacado, EstadoOculto:
		return true
	}
	return false
}

// ComparisonType distinguishes two-code comparisons from group runs
type ComparisonType string

const (
	TipoIndividual ComparisonType = "individual"
	TipoGrupal     ComparisonType = "grupal"
)

// Step is the pipeline stage of a comparison's analysis lifecycle
type Step string

const (
	StepDraft             Step = "draft"
	StepSubmitted         Step = "submitted"
	StepSimilarityPending Step = "similarity_pending"
	StepSimilarityReady   Step = "similarity_ready"
	StepSimilarityFailed  Step = "similarity_failed"
	StepEfficiencyPending Step = "efficiency_pending"
	StepEfficiencyReady   Step = "efficiency_ready"
	StepEfficiencyFailed  Step = "efficiency_failed"
	StepCommentaryPending Step = "commentary_pending"
	StepCommentaryReady   Step = "commentary_ready"
	StepCompleted         Step = "completed"
)

// CodeEntry is one submitted code sample. NombreArchivo is optional and
// only set for group uploads.
type CodeEntry struct {
	Codigo        string `bson:"codigo" json:"codigo"`
	NombreArchivo string `bson:"nombre_archivo,omitempty" json:"nombre_archivo,omitempty"`
}

// Comparison pairs two (individual) or N>=3 (group) code samples with a
// chosen language and AI model. Once created the record is locked: codes
// are immutable, only estado transitions mutate it.
type Comparison struct {
	ID            string         `bson:"_id" json:"id"`
	Nombre        string         `bson:"nombre_comparacion" json:"nombre_comparacion"`
	Tipo          ComparisonType `bson:"tipo" json:"tipo"`
	Codigos       []CodeEntry    `bson:"codigos" json:"codigos"`
	LenguajeID    string         `bson:"lenguaje_id" json:"lenguaje_id"`
	ModeloIAID    string         `bson:"modelo_ia_id" json:"modelo_ia_id"`
	UsuarioID     string         `bson:"usuario_id" json:"usuario_id"`
	Estado        Estado         `bson:"estado" json:"estado"`
	FechaCreacion time.Time      `bson:"fecha_creacion" json:"fecha_creacion"`
}

// SubmissionRequest is the validated input of the submission step
type SubmissionRequest struct {
	Nombre     string         `json:"nombre_comparacion"`
	Tipo       ComparisonType `json:"tipo"`
	Codigos    []CodeEntry    `json:"codigos"`
	LenguajeID string         `json:"lenguaje_id"`
	ModeloIAID string         `json:"modelo_ia_id"`
	UsuarioID  string         `json:"usuario_id"`
}

// SubmissionResponse is returned once a comparison is persisted
type SubmissionResponse struct {
	ComparisonID string    `json:"comparacion_id"`
	TotalCodes   int       `json:"total_codigos"`
	CreatedAt    time.Time `json:"fecha_creacion"`
}
