package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/davidrmz/cotejo/internal/analysis"
	"github.com/davidrmz/cotejo/internal/engine"
	"github.com/davidrmz/cotejo/internal/models"
)

// ErrorResponse is the error/mensaje body every failed request returns
type ErrorResponse struct {
	Error   string `json:"error"`
	Mensaje string `json:"mensaje,omitempty"`
}

// JWTAuthMiddleware validates bearer tokens and loads the user identity
// into the request context
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "UNAUTHORIZED",
				Mensaje: "Se requiere el encabezado Authorization",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "UNAUTHORIZED",
				Mensaje: "Formato de autorización inválido",
			})
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "UNAUTHORIZED",
				Mensaje: "Token inválido o expirado",
			})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "UNAUTHORIZED",
				Mensaje: "Token inválido o expirado",
			})
			c.Abort()
			return
		}

		if usuarioID, ok := claims["usuario_id"].(string); ok {
			c.Set("usuario_id", usuarioID)
		}
		if rol, ok := claims["rol"].(string); ok {
			c.Set("rol", rol)
		}

		c.Next()
	}
}

// RequireRole gates a route group behind a single role
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("rol") != string(role) {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "FORBIDDEN",
				Mensaje: "No tiene permisos para esta operación",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimiter manages rate limiting per authenticated user
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rps      float64
	burst    int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
		burst:    burst,
	}
}

// GetLimiter gets or creates a limiter for a user
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[key]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := rl.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(rl.rps), rl.burst)
	rl.limiters[key] = limiter

	// Drop idle limiters after an hour
	go func() {
		time.Sleep(1 * time.Hour)
		rl.mu.Lock()
		delete(rl.limiters, key)
		rl.mu.Unlock()
	}()

	return limiter
}

// RateLimitMiddleware limits requests per usuario_id, falling back to
// client IP for unauthenticated paths
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("usuario_id")
		if key == "" {
			key = c.ClientIP()
		}

		if !limiter.GetLimiter(key).Allow() {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "RATE_LIMIT_EXCEEDED",
				Mensaje: "Demasiadas solicitudes, intente más tarde",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// respondError maps a pipeline or engine failure to an HTTP status and
// the error/mensaje body. Engine errors carry a structured kind, so the
// mapping never inspects message text.
func respondError(c *gin.Context, err error) {
	if analysis.IsValidation(err) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "VALIDATION_ERROR",
			Mensaje: err.Error(),
		})
		return
	}

	switch err {
	case analysis.ErrComparisonNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "NOT_FOUND",
			Mensaje: "La comparación no existe",
		})
		return
	case analysis.ErrResultNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "NOT_FOUND",
			Mensaje: "No existe un resultado de eficiencia con ese id",
		})
		return
	}

	switch engine.KindOf(err) {
	case engine.KindBadRequest:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "ENGINE_REJECTED",
			Mensaje: err.Error(),
		})
	case engine.KindNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "ENGINE_NOT_FOUND",
			Mensaje: err.Error(),
		})
	case engine.KindAuthExpired, engine.KindNetworkError:
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "ENGINE_UNAVAILABLE",
			Mensaje: "El motor de análisis no está disponible",
		})
	default:
		log.Error().Err(err).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "INTERNAL_ERROR",
			Mensaje: "Error interno del servidor",
		})
	}
}
