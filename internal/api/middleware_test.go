package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidrmz/cotejo/internal/analysis"
	"github.com/davidrmz/cotejo/internal/engine"
	"github.com/davidrmz/cotejo/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func authedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuthMiddleware(testSecret)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"usuario_id": c.GetString("usuario_id")})
	})
	router.GET("/protegido", handlers...)
	return router
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	router := authedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthRejectsMalformedHeader(t *testing.T) {
	router := authedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthRejectsExpiredToken(t *testing.T) {
	router := authedRouter()
	token := signToken(t, testSecret, jwt.MapClaims{
		"usuario_id": "u1",
		"exp":        time.Now().Add(-time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	router := authedRouter()
	token := signToken(t, "another-secret", jwt.MapClaims{
		"usuario_id": "u1",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuthLoadsIdentityIntoContext(t *testing.T) {
	router := authedRouter()
	token := signToken(t, testSecret, jwt.MapClaims{
		"usuario_id": "u1",
		"rol":        "docente",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["usuario_id"])
}

func TestRequireRoleForbidsOtherRoles(t *testing.T) {
	router := authedRouter(RequireRole(models.RolAdmin))
	token := signToken(t, testSecret, jwt.MapClaims{
		"usuario_id": "u1",
		"rol":        "docente",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	router := authedRouter(RequireRole(models.RolAdmin))
	token := signToken(t, testSecret, jwt.MapClaims{
		"usuario_id": "admin-1",
		"rol":        "admin",
		"exp":        time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddlewareThrottlesPerUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	limiter := NewRateLimiter(1, 1)
	router.GET("/limited", func(c *gin.Context) {
		c.Set("usuario_id", c.Query("u"))
	}, RateLimitMiddleware(limiter), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	// First request from u1 passes, second is throttled
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited?u=u1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited?u=u1", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different user has its own bucket
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/limited?u=u2", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRespondErrorMapsFailuresToStatuses(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &analysis.ValidationError{Message: "Debe seleccionar un lenguaje"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"comparison missing", analysis.ErrComparisonNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"result missing", analysis.ErrResultNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"engine bad request", &engine.Error{Kind: engine.KindBadRequest, Status: 422, Message: "no"}, http.StatusBadRequest, "ENGINE_REJECTED"},
		{"engine not found", &engine.Error{Kind: engine.KindNotFound, Status: 404, Message: "no"}, http.StatusNotFound, "ENGINE_NOT_FOUND"},
		{"engine auth expired", &engine.Error{Kind: engine.KindAuthExpired, Status: 401, Message: "no"}, http.StatusBadGateway, "ENGINE_UNAVAILABLE"},
		{"engine unreachable", &engine.Error{Kind: engine.KindNetworkError, Message: "refused"}, http.StatusBadGateway, "ENGINE_UNAVAILABLE"},
		{"engine server error", &engine.Error{Kind: engine.KindServerError, Status: 500, Message: "no"}, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tc.err)

			assert.Equal(t, tc.status, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error)
		})
	}
}
