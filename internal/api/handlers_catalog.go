package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/davidrmz/cotejo/internal/analysis"
	"github.com/davidrmz/cotejo/internal/models"
)

// Catalogo returns the language and AI model selector lists in one
// response; the two lookups run concurrently. When exactly one half
// fails the loaded half is still served with an advisory, so a broken
// model list never hides the languages and vice versa. Only both
// halves failing is an error.
func (h *Handler) Catalogo(c *gin.Context) {
	catalog, err := analysis.LoadCatalog(c.Request.Context(), h.catalogRepo, c.GetString("usuario_id"))
	if err != nil {
		var catErr *analysis.CatalogError
		if errors.As(err, &catErr) && catErr.Partial() {
			c.JSON(http.StatusOK, gin.H{
				"lenguajes":   catalog.Lenguajes,
				"modelos":     catalog.Modelos,
				"advertencia": "Parte del catálogo no está disponible",
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, catalog)
}

// CreateTeacherLanguage lets a teacher add a private language entry
// visible only in their own catalog
func (h *Handler) CreateTeacherLanguage(c *gin.Context) {
	nombre := strings.TrimSpace(c.PostForm("nombre"))
	extension := strings.TrimSpace(c.PostForm("extension"))

	if nombre == "" || extension == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "INVALID_REQUEST",
			Mensaje: "Nombre y extensión son obligatorios",
		})
		return
	}

	language := &models.Language{
		ID:        uuid.New().String(),
		Nombre:    nombre,
		Extension: extension,
		Estado:    true,
		UsuarioID: c.GetString("usuario_id"),
	}

	if err := h.catalogRepo.InsertLanguage(c.Request.Context(), language); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, language)
}

// ListTeacherLanguages lists global active languages plus the teacher's
// own entries
func (h *Handler) ListTeacherLanguages(c *gin.Context) {
	languages, err := h.catalogRepo.ListLanguagesForUser(c.Request.Context(), c.GetString("usuario_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lenguajes": languages,
	})
}

// UpdateTeacherLanguage edits one of the teacher's own language
// entries. Global entries and other teachers' entries are off limits.
func (h *Handler) UpdateTeacherLanguage(c *gin.Context) {
	ctx := c.Request.Context()

	language, err := h.catalogRepo.GetLanguageByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if language == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "NOT_FOUND",
			Mensaje: "El lenguaje no existe",
		})
		return
	}
	if language.UsuarioID != c.GetString("usuario_id") {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "FORBIDDEN",
			Mensaje: "Solo puede editar sus propios lenguajes",
		})
		return
	}

	applyLanguageForm(c, language)

	if _, err := h.catalogRepo.UpdateLanguage(ctx, language); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, language)
}

// CreateAdminLanguage adds a global language entry
func (h *Handler) CreateAdminLanguage(c *gin.Context) {
	nombre := strings.TrimSpace(c.PostForm("nombre"))
	extension := strings.TrimSpace(c.PostForm("extension"))

	if nombre == "" || extension == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "INVALID_REQUEST",
			Mensaje: "Nombre y extensión son obligatorios",
		})
		return
	}

	language := &models.Language{
		ID:        uuid.New().String(),
		Nombre:    nombre,
		Extension: extension,
		Estado:    formBool(c, "estado", true),
	}

	if err := h.catalogRepo.InsertLanguage(c.Request.Context(), language); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, language)
}

// UpdateAdminLanguage edits any language entry, including disabling it
func (h *Handler) UpdateAdminLanguage(c *gin.Context) {
	ctx := c.Request.Context()

	language, err := h.catalogRepo.GetLanguageByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if language == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "NOT_FOUND",
			Mensaje: "El lenguaje no existe",
		})
		return
	}

	applyLanguageForm(c, language)

	if _, err := h.catalogRepo.UpdateLanguage(ctx, language); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, language)
}

// ListAdminLanguages lists every language entry, disabled included
func (h *Handler) ListAdminLanguages(c *gin.Context) {
	languages, err := h.catalogRepo.ListAllLanguages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"lenguajes": languages,
	})
}

// CreateAIModel adds an AI model entry under one of the known providers
func (h *Handler) CreateAIModel(c *gin.Context) {
	nombre := strings.TrimSpace(c.PostForm("nombre"))
	proveedor := models.Provider(c.PostForm("proveedor"))

	if nombre == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "INVALID_REQUEST",
			Mensaje: "El nombre del modelo es obligatorio",
		})
		return
	}
	if !proveedor.Valid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "INVALID_REQUEST",
			Mensaje: "Proveedor desconocido",
		})
		return
	}

	model := &models.AIModel{
		ID:          uuid.New().String(),
		Nombre:      nombre,
		Proveedor:   proveedor,
		Version:     c.PostForm("version"),
		Descripcion: c.PostForm("descripcion"),
		Color:       c.PostForm("color"),
		Recomendado: formBool(c, "recomendado", false),
		Activo:      formBool(c, "activo", true),
	}

	if err := h.catalogRepo.InsertAIModel(c.Request.Context(), model); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model)
}

// UpdateAIModel edits an AI model entry
func (h *Handler) UpdateAIModel(c *gin.Context) {
	ctx := c.Request.Context()

	model, err := h.catalogRepo.GetAIModelByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if model == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "NOT_FOUND",
			Mensaje: "El modelo no existe",
		})
		return
	}

	if v := strings.TrimSpace(c.PostForm("nombre")); v != "" {
		model.Nombre = v
	}
	if v := models.Provider(c.PostForm("proveedor")); v != "" {
		if !v.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "INVALID_REQUEST",
				Mensaje: "Proveedor desconocido",
			})
			return
		}
		model.Proveedor = v
	}
	if v := c.PostForm("version"); v != "" {
		model.Version = v
	}
	if v := c.PostForm("descripcion"); v != "" {
		model.Descripcion = v
	}
	if v := c.PostForm("color"); v != "" {
		model.Color = v
	}
	model.Recomendado = formBool(c, "recomendado", model.Recomendado)
	model.Activo = formBool(c, "activo", model.Activo)

	if _, err := h.catalogRepo.UpdateAIModel(ctx, model); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model)
}

// ListAIModels lists model entries, optionally filtered by provider
// with ?proveedor=
func (h *Handler) ListAIModels(c *gin.Context) {
	ctx := c.Request.Context()

	if proveedor := models.Provider(c.Query("proveedor")); proveedor != "" {
		if !proveedor.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "INVALID_REQUEST",
				Mensaje: "Proveedor desconocido",
			})
			return
		}

		modelos, err := h.catalogRepo.ListAIModelsByProvider(ctx, proveedor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"modelos": modelos})
		return
	}

	modelos, err := h.catalogRepo.ListAIModels(ctx, false)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"modelos": modelos})
}

// ListAllComparisons is the admin view over every user's comparisons,
// hidden ones included
func (h *Handler) ListAllComparisons(c *gin.Context) {
	comparisons, err := h.comparisonsRepo.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"comparaciones": comparisons,
	})
}

func applyLanguageForm(c *gin.Context, language *models.Language) {
	if v := strings.TrimSpace(c.PostForm("nombre")); v != "" {
		language.Nombre = v
	}
	if v := strings.TrimSpace(c.PostForm("extension")); v != "" {
		language.Extension = v
	}
	language.Estado = formBool(c, "estado", language.Estado)
}

// formBool reads an optional boolean form field, keeping the fallback
// when the field is absent or unparseable
func formBool(c *gin.Context, field string, fallback bool) bool {
	raw := c.PostForm(field)
	if raw == "" {
		return fallback
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return val
}
