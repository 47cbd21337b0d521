package analysis

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/davidrmz/cotejo/internal/models"
)

// CatalogLister is the read surface of the catalog repository
type CatalogLister interface {
	ListLanguagesForUser(ctx context.Context, usuarioID string) ([]*models.Language, error)
	ListAIModels(ctx context.Context, activeOnly bool) ([]*models.AIModel, error)
}

// CatalogError reports which catalog halves failed to load, so callers
// can serve a partial catalog instead of discarding the half that
// loaded.
type CatalogError struct {
	LangErr  error
	ModelErr error
}

func (e *CatalogError) Error() string {
	return errors.Join(e.LangErr, e.ModelErr).Error()
}

func (e *CatalogError) Unwrap() []error {
	var errs []error
	if e.LangErr != nil {
		errs = append(errs, e.LangErr)
	}
	if e.ModelErr != nil {
		errs = append(errs, e.ModelErr)
	}
	return errs
}

// Partial reports whether exactly one half failed, meaning the other
// list is populated and usable.
func (e *CatalogError) Partial() bool {
	return (e.LangErr == nil) != (e.ModelErr == nil)
}

// LoadCatalog fetches the language and model selector lists
// concurrently. One list failing does not block the other: the
// successful list is still populated, and the returned *CatalogError
// says which half failed. Both failing yields an empty catalog.
func LoadCatalog(ctx context.Context, lister CatalogLister, usuarioID string) (*models.Catalog, error) {
	catalog := &models.Catalog{}

	var wg sync.WaitGroup
	var langErr, modelErr error

	wg.Add(2)

	go func() {
		defer wg.Done()
		languages, err := lister.ListLanguagesForUser(ctx, usuarioID)
		if err != nil {
			langErr = err
			return
		}
		catalog.Lenguajes = languages
	}()

	go func() {
		defer wg.Done()
		aiModels, err := lister.ListAIModels(ctx, true)
		if err != nil {
			modelErr = err
			return
		}
		catalog.Modelos = aiModels
	}()

	wg.Wait()

	if langErr != nil {
		log.Warn().Err(langErr).Str("usuarioID", usuarioID).Msg("Language catalog load failed")
	}
	if modelErr != nil {
		log.Warn().Err(modelErr).Str("usuarioID", usuarioID).Msg("AI model catalog load failed")
	}

	if langErr != nil || modelErr != nil {
		return catalog, &CatalogError{LangErr: langErr, ModelErr: modelErr}
	}

	return catalog, nil
}
