package api

import (
	"github.com/gin-gonic/gin"

	"github.com/davidrmz/cotejo/internal/config"
	"github.com/davidrmz/cotejo/internal/models"
)

// SetupRoutes wires the full route table. Path names and trailing
// slashes follow the established client contract, so they stay in
// Spanish and are registered verbatim.
func SetupRoutes(cfg *config.Config, handler *Handler) *gin.Engine {
	router := gin.Default()

	rateLimiter := NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))

	// Health endpoint (no auth)
	router.GET("/health", handler.Health)

	// Login is the only unauthenticated application route
	router.POST("/app/usuarios/login/", handler.Login)

	usuarios := router.Group("/app/usuarios")
	usuarios.Use(JWTAuthMiddleware(cfg.JWTSecret))
	usuarios.Use(RateLimitMiddleware(rateLimiter))
	{
		usuarios.GET("/perfil/", handler.Perfil)
		usuarios.GET("/catalogo/", handler.Catalogo)

		usuarios.GET("/listar_individual/:usuario_id/", handler.ListComparisons(models.TipoIndividual))
		usuarios.GET("/listar_grupal/:usuario_id/", handler.ListComparisons(models.TipoGrupal))

		usuarios.PATCH("/comparacion_individual_reciente/:id/", handler.MarkEstado(models.TipoIndividual, models.EstadoReciente))
		usuarios.PATCH("/comparacion_individual_destacado/:id/", handler.MarkEstado(models.TipoIndividual, models.EstadoDestacado))
		usuarios.PATCH("/comparacion_individual_oculto/:id/", handler.MarkEstado(models.TipoIndividual, models.EstadoOculto))
		usuarios.PATCH("/comparacion_grupal_reciente/:id/", handler.MarkEstado(models.TipoGrupal, models.EstadoReciente))
		usuarios.PATCH("/comparacion_grupal_destacado/:id/", handler.MarkEstado(models.TipoGrupal, models.EstadoDestacado))
		usuarios.PATCH("/comparacion_grupal_oculto/:id/", handler.MarkEstado(models.TipoGrupal, models.EstadoOculto))

		usuarios.POST("/crear_comparaciones_individuales/", handler.CreateIndividual)
		usuarios.POST("/crear_comparacion_grupal", handler.CreateGrupal)

		usuarios.POST("/mostrar_resultados_similitud_individual/:id/", handler.RunSimilarity)
		usuarios.GET("/mostrar_resultados_similitud_individual/:id/", handler.GetSimilarity)
		usuarios.POST("/mostrar_resultados_similitud_grupal/:id/", handler.RunSimilarity)
		usuarios.GET("/mostrar_resultados_similitud_grupal/:id/", handler.GetSimilarity)

		usuarios.POST("/analizar_eficiencia_individual/:id/", handler.RunEfficiency)
		usuarios.POST("/analizar_eficiencia_grupal/:id/", handler.RunEfficiency)
		usuarios.GET("/obtener_eficiencia_individual/:id/", handler.GetEfficiency)
		usuarios.GET("/obtener_eficiencia_grupal/:id/", handler.GetEfficiency)

		usuarios.POST("/crear_comentario_eficiencia/:resultado_id/", handler.CreateCommentary)
		usuarios.POST("/crear_comentario_eficiencia_grupal/:resultado_id/", handler.CreateCommentary)

		usuarios.GET("/estado_analisis/:id/", handler.GetAnalysisStatus)

		usuarios.POST("/crear_lenguaje_docente/", handler.CreateTeacherLanguage)
		usuarios.GET("/listar_lenguajes_docente/", handler.ListTeacherLanguages)
		usuarios.PUT("/actualizar_lenguaje_docente/:id/", handler.UpdateTeacherLanguage)
	}

	admin := router.Group("/app/administrador")
	admin.Use(JWTAuthMiddleware(cfg.JWTSecret))
	admin.Use(RequireRole(models.RolAdmin))
	admin.Use(RateLimitMiddleware(rateLimiter))
	{
		admin.POST("/crear_lenguaje/", handler.CreateAdminLanguage)
		admin.GET("/listar_lenguajes/", handler.ListAdminLanguages)
		admin.PUT("/actualizar_lenguaje/:id/", handler.UpdateAdminLanguage)

		admin.POST("/crear_modelo_ia/", handler.CreateAIModel)
		admin.GET("/listar_modelos_ia/", handler.ListAIModels)
		admin.PUT("/actualizar_modelo_ia/:id/", handler.UpdateAIModel)

		admin.GET("/listar_comparaciones/", handler.ListAllComparisons)

		admin.POST("/crear_usuario/", handler.CreateUser)
	}

	return router
}
