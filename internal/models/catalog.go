package models

import (
	"time"
)

// Provider names the AI vendors the platform can route analyses to
type Provider string

const (
	ProviderClaude   Provider = "Claude"
	ProviderDeepSeek Provider = "DeepSeek"
	ProviderGemini   Provider = "Gemini"
	ProviderOpenAI   Provider = "OpenAI"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderClaude, ProviderDeepSeek, ProviderGemini, ProviderOpenAI:
		return true
	}
	return false
}

// AIModel is an admin-managed model entry referenced by comparisons
type AIModel struct {
	ID          string    `bson:"_id" json:"id"`
	Nombre      string    `bson:"nombre" json:"nombre"`
	Proveedor   Provider  `bson:"proveedor" json:"proveedor"`
	Version     string    `bson:"version" json:"version"`
	Descripcion string    `bson:"descripcion,omitempty" json:"descripcion,omitempty"`
	Color       string    `bson:"color,omitempty" json:"color,omitempty"`
	Recomendado bool      `bson:"recomendado" json:"recomendado"`
	Activo      bool      `bson:"activo" json:"activo"`
	CreatedAt   time.Time `bson:"createdAt" json:"fecha_creacion"`
}

// Language is an admin or teacher managed programming language entry
type Language struct {
	ID        string    `bson:"_id" json:"id"`
	Nombre    string    `bson:"nombre" json:"nombre"`
	Extension string    `bson:"extension" json:"extension"`
	Estado    bool      `bson:"estado" json:"estado"`
	UsuarioID string    `bson:"usuario_id,omitempty" json:"usuario_id,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"fecha_creacion"`
}

// Catalog bundles the two selector lists fetched together before a
// comparison form renders
type Catalog struct {
	Lenguajes []*Language `json:"lenguajes"`
	Modelos   []*AIModel  `json:"modelos"`
}
