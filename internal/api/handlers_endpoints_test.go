package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/davidrmz/cotejo/internal/config"
	"github.com/davidrmz/cotejo/internal/models"
)

type fakeComparisonStore struct {
	comparisons map[string]*models.Comparison
}

func (f *fakeComparisonStore) ListByUser(ctx context.Context, usuarioID string, tipo models.ComparisonType, includeHidden bool) ([]*models.Comparison, error) {
	var out []*models.Comparison
	for _, c := range f.comparisons {
		if c.UsuarioID != usuarioID || c.Tipo != tipo {
			continue
		}
		if !includeHidden && c.Estado == models.EstadoOculto {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeComparisonStore) ListAll(ctx context.Context) ([]*models.Comparison, error) {
	var out []*models.Comparison
	for _, c := range f.comparisons {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeComparisonStore) SetEstado(ctx context.Context, id string, tipo models.ComparisonType, estado models.Estado) (bool, error) {
	if !estado.Valid() {
		return false, errors.New("unknown estado")
	}
	c, ok := f.comparisons[id]
	if !ok || c.Tipo != tipo {
		return false, nil
	}
	c.Estado = estado
	return true, nil
}

type fakeResultStore struct {
	efficiency    *models.EfficiencyResult
	efficiencyErr error
	commentary    *models.EfficiencyCommentary
	similarity    *models.SimilarityResult
}

func (f *fakeResultStore) GetLatestSimilarityByComparisonID(ctx context.Context, comparisonID string) (*models.SimilarityResult, error) {
	return f.similarity, nil
}

func (f *fakeResultStore) GetLatestEfficiencyByComparisonID(ctx context.Context, comparisonID string) (*models.EfficiencyResult, error) {
	return f.efficiency, f.efficiencyErr
}

func (f *fakeResultStore) GetCommentaryByResultadoID(ctx context.Context, resultadoID string) (*models.EfficiencyCommentary, error) {
	return f.commentary, nil
}

type fakeCatalogStore struct {
	languages []*models.Language
	langErr   error
	aiModels  []*models.AIModel
	modelErr  error
}

func (f *fakeCatalogStore) ListLanguagesForUser(ctx context.Context, usuarioID string) ([]*models.Language, error) {
	return f.languages, f.langErr
}

func (f *fakeCatalogStore) ListAIModels(ctx context.Context, activeOnly bool) ([]*models.AIModel, error) {
	return f.aiModels, f.modelErr
}

func (f *fakeCatalogStore) InsertLanguage(ctx context.Context, language *models.Language) error {
	f.languages = append(f.languages, language)
	return nil
}

func (f *fakeCatalogStore) UpdateLanguage(ctx context.Context, language *models.Language) (bool, error) {
	return true, nil
}

func (f *fakeCatalogStore) GetLanguageByID(ctx context.Context, id string) (*models.Language, error) {
	for _, l := range f.languages {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalogStore) ListAllLanguages(ctx context.Context) ([]*models.Language, error) {
	return f.languages, nil
}

func (f *fakeCatalogStore) InsertAIModel(ctx context.Context, model *models.AIModel) error {
	f.aiModels = append(f.aiModels, model)
	return nil
}

func (f *fakeCatalogStore) UpdateAIModel(ctx context.Context, model *models.AIModel) (bool, error) {
	return true, nil
}

func (f *fakeCatalogStore) GetAIModelByID(ctx context.Context, id string) (*models.AIModel, error) {
	for _, m := range f.aiModels {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, nil
}

func (f *fakeCatalogStore) ListAIModelsByProvider(ctx context.Context, provider models.Provider) ([]*models.AIModel, error) {
	return f.aiModels, nil
}

type fakeUserStore struct {
	users map[string]*models.User // keyed by email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (f *fakeUserStore) InsertUser(ctx context.Context, user *models.User) error {
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.users[email], nil
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		MaxConcurrentAnalysis: 1,
		JWTSecret:             "test-secret",
		JWTIssuer:             "cotejo",
		JWTTTL:                time.Hour,
	}
}

func testHandler(comparisons *fakeComparisonStore, results *fakeResultStore, catalog *fakeCatalogStore, users *fakeUserStore) *Handler {
	if comparisons == nil {
		comparisons = &fakeComparisonStore{comparisons: map[string]*models.Comparison{}}
	}
	if results == nil {
		results = &fakeResultStore{}
	}
	if catalog == nil {
		catalog = &fakeCatalogStore{}
	}
	if users == nil {
		users = newFakeUserStore()
	}
	return NewHandler(testConfig(), nil, comparisons, results, catalog, users, nil, nil)
}

func getContext(t *testing.T, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Params = params
	return c, w
}

func TestGetEfficiencyMissingResultIsEmptyStateNotError(t *testing.T) {
	h := testHandler(nil, &fakeResultStore{}, nil, nil)

	c, w := getContext(t, gin.Params{{Key: "id", Value: "comp-1"}})
	h.GetEfficiency(c)

	// No analysis yet answers 200 with an explicit empty-state body
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["existe_analisis"])
}

func TestGetEfficiencyStoreFailureIsAnError(t *testing.T) {
	h := testHandler(nil, &fakeResultStore{efficiencyErr: errors.New("db down")}, nil, nil)

	c, w := getContext(t, gin.Params{{Key: "id", Value: "comp-1"}})
	h.GetEfficiency(c)

	// A real failure must not look like the empty state
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error)
}

func TestGetEfficiencyReturnsStoredResultWithCommentary(t *testing.T) {
	results := &fakeResultStore{
		efficiency: &models.EfficiencyResult{
			ResultadoID:  "res-1",
			ComparisonID: "comp-1",
			Ganador:      0,
		},
		commentary: &models.EfficiencyCommentary{
			ID:          "com-1",
			ResultadoID: "res-1",
			Comentario:  "El primer código gana.",
		},
	}
	h := testHandler(nil, results, nil, nil)

	c, w := getContext(t, gin.Params{{Key: "id", Value: "comp-1"}})
	h.GetEfficiency(c)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ExisteAnalisis bool                         `json:"existe_analisis"`
		Resultado      *models.EfficiencyResult     `json:"resultado"`
		Comentario     *models.EfficiencyCommentary `json:"comentario"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.ExisteAnalisis)
	assert.Equal(t, "res-1", body.Resultado.ResultadoID)
	assert.Equal(t, "com-1", body.Comentario.ID)
}

func TestMarkEstadoTransitionsStayExclusive(t *testing.T) {
	store := &fakeComparisonStore{comparisons: map[string]*models.Comparison{
		"comp-1": {ID: "comp-1", Tipo: models.TipoIndividual, Estado: models.EstadoDestacado},
	}}
	h := testHandler(store, nil, nil, nil)

	// destacado -> reciente
	c, w := getContext(t, gin.Params{{Key: "id", Value: "comp-1"}})
	h.MarkEstado(models.TipoIndividual, models.EstadoReciente)(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.EstadoReciente, store.comparisons["comp-1"].Estado)

	// reciente -> oculto; estado is one field, so the previous state is
	// gone rather than accumulated
	c, w = getContext(t, gin.Params{{Key: "id", Value: "comp-1"}})
	h.MarkEstado(models.TipoIndividual, models.EstadoOculto)(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.EstadoOculto, store.comparisons["comp-1"].Estado)

	// Hidden comparisons drop out of the user's list
	listed, err := store.ListByUser(context.Background(), "", models.TipoIndividual, false)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestMarkEstadoUnknownComparison(t *testing.T) {
	h := testHandler(nil, nil, nil, nil)

	c, w := getContext(t, gin.Params{{Key: "id", Value: "nope"}})
	h.MarkEstado(models.TipoIndividual, models.EstadoDestacado)(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkEstadoWrongTipoDoesNotMatch(t *testing.T) {
	store := &fakeComparisonStore{comparisons: map[string]*models.Comparison{
		"comp-1": {ID: "comp-1", Tipo: models.TipoGrupal, Estado: models.EstadoReciente},
	}}
	h := testHandler(store, nil, nil, nil)

	c, w := getContext(t, gin.Params{{Key: "id", Value: "comp-1"}})
	h.MarkEstado(models.TipoIndividual, models.EstadoOculto)(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, models.EstadoReciente, store.comparisons["comp-1"].Estado)
}

func TestCatalogoServesLoadedHalfOnPartialFailure(t *testing.T) {
	catalog := &fakeCatalogStore{
		langErr:  errors.New("languages unavailable"),
		aiModels: []*models.AIModel{{ID: "m1", Nombre: "claude-sonnet", Proveedor: models.ProviderClaude}},
	}
	h := testHandler(nil, nil, catalog, nil)

	c, w := getContext(t, nil)
	h.Catalogo(c)

	// The loaded model list reaches the client despite the language
	// failure
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Lenguajes   []*models.Language `json:"lenguajes"`
		Modelos     []*models.AIModel  `json:"modelos"`
		Advertencia string             `json:"advertencia"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body.Lenguajes)
	require.Len(t, body.Modelos, 1)
	assert.Equal(t, "m1", body.Modelos[0].ID)
	assert.NotEmpty(t, body.Advertencia)
}

func TestCatalogoBothHalvesFailingIsAnError(t *testing.T) {
	catalog := &fakeCatalogStore{
		langErr:  errors.New("lang down"),
		modelErr: errors.New("models down"),
	}
	h := testHandler(nil, nil, catalog, nil)

	c, w := getContext(t, nil)
	h.Catalogo(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCreateUserHashesPassword(t *testing.T) {
	users := newFakeUserStore()
	h := testHandler(nil, nil, nil, users)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("nombre", "Ana")
	mw.WriteField("apellido", "Reyes")
	mw.WriteField("email", "ana@uni.edu")
	mw.WriteField("password", "s3creta")
	mw.WriteField("rol", "docente")
	require.NoError(t, mw.Close())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.Request = req

	h.CreateUser(c)

	require.Equal(t, http.StatusCreated, w.Code)

	stored := users.users["ana@uni.edu"]
	require.NotNil(t, stored)
	assert.Equal(t, models.RolDocente, stored.Rol)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3creta")))
	// The hash never leaks into the response
	assert.NotContains(t, w.Body.String(), stored.PasswordHash)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	users := newFakeUserStore()
	users.users["ana@uni.edu"] = &models.User{ID: "u1", Email: "ana@uni.edu"}
	h := testHandler(nil, nil, nil, users)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("nombre", "Ana")
	mw.WriteField("email", "ana@uni.edu")
	mw.WriteField("password", "otra")
	mw.WriteField("rol", "docente")
	require.NoError(t, mw.Close())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.Request = req

	h.CreateUser(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}
