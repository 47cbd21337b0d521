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
	similarityCollection = "resultados_similitud"
	efficiencyCollection = "resultados_eficiencia"
	commentaryCollection = "comentarios_eficiencia"
)

type ResultsRepository struct {
	mongoRepo *MongoRepository
}

func NewResultsRepository(mongoRepo *MongoRepository) *ResultsRepository {
	return &ResultsRepository{
		mongoRepo: mongoRepo,
	}
}

// Similarity results are append-only: re-running the step inserts a new
// document and readers take the latest.

func (r *ResultsRepository) InsertSimilarityResult(ctx context.Context, result *models.SimilarityResult) error {
	result.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, similarityCollection, result)
	if err != nil {
		return fmt.Errorf("failed to insert similarity result: %w", err)
	}

	return nil
}

func (r *ResultsRepository) GetLatestSimilarityByComparisonID(ctx context.Context, comparisonID string) (*models.SimilarityResult, error) {
	filter := bson.M{"comparacion_id": comparisonID}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var result models.SimilarityResult
	err := r.mongoRepo.FindOne(ctx, similarityCollection, filter, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find similarity result: %w", err)
	}

	return &result, nil
}

func (r *ResultsRepository) InsertEfficiencyResult(ctx context.Context, result *models.EfficiencyResult) error {
	result.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, efficiencyCollection, result)
	if err != nil {
		return fmt.Errorf("failed to insert efficiency result: %w", err)
	}

	return nil
}

func (r *ResultsRepository) GetLatestEfficiencyByComparisonID(ctx context.Context, comparisonID string) (*models.EfficiencyResult, error) {
	filter := bson.M{"comparacion_id": comparisonID}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var result models.EfficiencyResult
	err := r.mongoRepo.FindOne(ctx, efficiencyCollection, filter, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find efficiency result: %w", err)
	}

	return &result, nil
}

func (r *ResultsRepository) GetEfficiencyByResultadoID(ctx context.Context, resultadoID string) (*models.EfficiencyResult, error) {
	filter := bson.M{"_id": resultadoID}

	var result models.EfficiencyResult
	err := r.mongoRepo.FindOne(ctx, efficiencyCollection, filter).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find efficiency result: %w", err)
	}

	return &result, nil
}

func (r *ResultsRepository) InsertCommentary(ctx context.Context, commentary *models.EfficiencyCommentary) error {
	commentary.FechaGeneracion = time.Now()

	err := r.mongoRepo.InsertOne(ctx, commentaryCollection, commentary)
	if err != nil {
		return fmt.Errorf("failed to insert commentary: %w", err)
	}

	return nil
}

func (r *ResultsRepository) GetCommentaryByResultadoID(ctx context.Context, resultadoID string) (*models.EfficiencyCommentary, error) {
	filter := bson.M{"resultado_id": resultadoID}
	opts := options.FindOne().SetSort(bson.D{{Key: "fecha_generacion", Value: -1}})

	var commentary models.EfficiencyCommentary
	err := r.mongoRepo.FindOne(ctx, commentaryCollection, filter, opts).Decode(&commentary)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find commentary: %w", err)
	}

	return &commentary, nil
}
