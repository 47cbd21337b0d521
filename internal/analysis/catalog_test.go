package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidrmz/cotejo/internal/models"
)

type fakeCatalogLister struct {
	languages []*models.Language
	langErr   error
	aiModels  []*models.AIModel
	modelErr  error
}

func (f *fakeCatalogLister) ListLanguagesForUser(ctx context.Context, usuarioID string) ([]*models.Language, error) {
	return f.languages, f.langErr
}

func (f *fakeCatalogLister) ListAIModels(ctx context.Context, activeOnly bool) ([]*models.AIModel, error) {
	return f.aiModels, f.modelErr
}

func TestLoadCatalogReturnsBothLists(t *testing.T) {
	lister := &fakeCatalogLister{
		languages: []*models.Language{{ID: "l1", Nombre: "Python"}},
		aiModels:  []*models.AIModel{{ID: "m1", Nombre: "claude-sonnet", Proveedor: models.ProviderClaude}},
	}

	catalog, err := LoadCatalog(context.Background(), lister, "user-1")

	require.NoError(t, err)
	assert.Len(t, catalog.Lenguajes, 1)
	assert.Len(t, catalog.Modelos, 1)
}

func TestLoadCatalogOneFailureDoesNotBlockTheOther(t *testing.T) {
	langErr := errors.New("languages unavailable")
	lister := &fakeCatalogLister{
		langErr:  langErr,
		aiModels: []*models.AIModel{{ID: "m1", Nombre: "gpt", Proveedor: models.ProviderOpenAI}},
	}

	catalog, err := LoadCatalog(context.Background(), lister, "user-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, langErr)
	// The model list still populated
	assert.Len(t, catalog.Modelos, 1)
	assert.Empty(t, catalog.Lenguajes)

	var catErr *CatalogError
	require.ErrorAs(t, err, &catErr)
	assert.True(t, catErr.Partial())
}

func TestLoadCatalogBothFailing(t *testing.T) {
	langErr := errors.New("lang down")
	modelErr := errors.New("models down")
	lister := &fakeCatalogLister{langErr: langErr, modelErr: modelErr}

	catalog, err := LoadCatalog(context.Background(), lister, "user-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, langErr)
	assert.ErrorIs(t, err, modelErr)
	assert.Empty(t, catalog.Lenguajes)
	assert.Empty(t, catalog.Modelos)

	var catErr *CatalogError
	require.ErrorAs(t, err, &catErr)
	assert.False(t, catErr.Partial())
}
