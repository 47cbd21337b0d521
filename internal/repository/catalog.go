package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/davidrmz/cotejo/internal/models"
)

const (
	languagesCollection = "lenguajes"
	aiModelsCollection  = "modelos_ia"
)

type CatalogRepository struct {
	mongoRepo *MongoRepository
}

func NewCatalogRepository(mongoRepo *MongoRepository) *CatalogRepository {
	return &CatalogRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *CatalogRepository) InsertLanguage(ctx context.Context, language *models.Language) error {
	language.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, languagesCollection, language)
	if err != nil {
		return fmt.Errorf("failed to insert language: %w", err)
	}

	return nil
}

func (r *CatalogRepository) UpdateLanguage(ctx context.Context, language *models.Language) (bool, error) {
	filter := bson.M{"_id": language.ID}
	update := bson.M{"$set": bson.M{
		"nombre":    language.Nombre,
		"extension": language.Extension,
		"estado":    language.Estado,
	}}

	result, err := r.mongoRepo.UpdateOne(ctx, languagesCollection, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update language: %w", err)
	}

	return result.MatchedCount > 0, nil
}

// ListLanguagesForUser returns active global languages plus the user's
// own entries. A teacher's catalog is their languages merged with the
// admin-managed set.
func (r *CatalogRepository) ListLanguagesForUser(ctx context.Context, usuarioID string) ([]*models.Language, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"usuario_id": bson.M{"$in": bson.A{nil, ""}}, "estado": true},
		bson.M{"usuario_id": usuarioID},
	}}

	return r.findLanguages(ctx, filter)
}

func (r *CatalogRepository) ListAllLanguages(ctx context.Context) ([]*models.Language, error) {
	return r.findLanguages(ctx, bson.M{})
}

func (r *CatalogRepository) findLanguages(ctx context.Context, filter bson.M) ([]*models.Language, error) {
	opts := options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}})

	cursor, err := r.mongoRepo.FindMany(ctx, languagesCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find languages: %w", err)
	}
	defer cursor.Close(ctx)

	var languages []*models.Language
	if err := cursor.All(ctx, &languages); err != nil {
		return nil, fmt.Errorf("failed to decode languages: %w", err)
	}

	return languages, nil
}

func (r *CatalogRepository) GetLanguageByID(ctx context.Context, id string) (*models.Language, error) {
	filter := bson.M{"_id": id}

	var language models.Language
	err := r.mongoRepo.FindOne(ctx, languagesCollection, filter).Decode(&language)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find language: %w", err)
	}

	return &language, nil
}

func (r *CatalogRepository) InsertAIModel(ctx context.Context, model *models.AIModel) error {
	model.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, aiModelsCollection, model)
	if err != nil {
		return fmt.Errorf("failed to insert AI model: %w", err)
	}

	return nil
}

func (r *CatalogRepository) UpdateAIModel(ctx context.Context, model *models.AIModel) (bool, error) {
	filter := bson.M{"_id": model.ID}
	update := bson.M{"$set": bson.M{
		"nombre":      model.Nombre,
		"proveedor":   model.Proveedor,
		"version":     model.Version,
		"descripcion": model.Descripcion,
		"color":       model.Color,
		"recomendado": model.Recomendado,
		"activo":      model.Activo,
	}}

	result, err := r.mongoRepo.UpdateOne(ctx, aiModelsCollection, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update AI model: %w", err)
	}

	return result.MatchedCount > 0, nil
}

func (r *CatalogRepository) ListAIModels(ctx context.Context, activeOnly bool) ([]*models.AIModel, error) {
	filter := bson.M{}
	if activeOnly {
		filter["activo"] = true
	}

	return r.findAIModels(ctx, filter)
}

func (r *CatalogRepository) ListAIModelsByProvider(ctx context.Context, provider models.Provider) ([]*models.AIModel, error) {
	return r.findAIModels(ctx, bson.M{"proveedor": provider})
}

func (r *CatalogRepository) findAIModels(ctx context.Context, filter bson.M) ([]*models.AIModel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}})

	cursor, err := r.mongoRepo.FindMany(ctx, aiModelsCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find AI models: %w", err)
	}
	defer cursor.Close(ctx)

	var aiModels []*models.AIModel
	if err := cursor.All(ctx, &aiModels); err != nil {
		return nil, fmt.Errorf("failed to decode AI models: %w", err)
	}

	return aiModels, nil
}

func (r *CatalogRepository) GetAIModelByID(ctx context.Context, id string) (*models.AIModel, error) {
	filter := bson.M{"_id": id}

	var model models.AIModel
	err := r.mongoRepo.FindOne(ctx, aiModelsCollection, filter).Decode(&model)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find AI model: %w", err)
	}

	return &model, nil
}
