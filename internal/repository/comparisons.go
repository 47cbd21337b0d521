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

const comparisonsCollection = "comparaciones"

type ComparisonsRepository struct {
	mongoRepo *MongoRepository
}

func NewComparisonsRepository(mongoRepo *MongoRepository) *ComparisonsRepository {
	return &ComparisonsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *ComparisonsRepository) InsertComparison(ctx context.Context, comparison *models.Comparison) error {
	comparison.FechaCreacion = time.Now()

	err := r.mongoRepo.InsertOne(ctx, comparisonsCollection, comparison)
	if err != nil {
		return fmt.Errorf("failed to insert comparison: %w", err)
	}

	return nil
}

func (r *ComparisonsRepository) GetComparisonByID(ctx context.Context, id string) (*models.Comparison, error) {
	filter := bson.M{"_id": id}

	var comparison models.Comparison
	err := r.mongoRepo.FindOne(ctx, comparisonsCollection, filter).Decode(&comparison)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comparison: %w", err)
	}

	return &comparison, nil
}

// ListByUser returns a user's comparisons of the given type, newest
// first. Hidden comparisons are excluded unless includeHidden is set.
func (r *ComparisonsRepository) ListByUser(ctx context.Context, usuarioID string, tipo models.ComparisonType, includeHidden bool) ([]*models.Comparison, error) {
	filter := bson.M{"usuario_id": usuarioID, "tipo": tipo}
	if !includeHidden {
		filter["estado"] = bson.M{"$ne": models.EstadoOculto}
	}

	opts := options.Find().SetSort(bson.D{{Key: "fecha_creacion", Value: -1}})

	cursor, err := r.mongoRepo.FindMany(ctx, comparisonsCollection, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find comparisons: %w", err)
	}
	defer cursor.Close(ctx)

	var comparisons []*models.Comparison
	if err := cursor.All(ctx, &comparisons); err != nil {
		return nil, fmt.Errorf("failed to decode comparisons: %w", err)
	}

	return comparisons, nil
}

// ListAll returns every comparison, hidden ones included. Admin surface
// only.
func (r *ComparisonsRepository) ListAll(ctx context.Context) ([]*models.Comparison, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fecha_creacion", Value: -1}})

	cursor, err := r.mongoRepo.FindMany(ctx, comparisonsCollection, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find comparisons: %w", err)
	}
	defer cursor.Close(ctx)

	var comparisons []*models.Comparison
	if err := cursor.All(ctx, &comparisons); err != nil {
		return nil, fmt.Errorf("failed to decode comparisons: %w", err)
	}

	return comparisons, nil
}

// SetEstado replaces the comparison's estado. estado is a single field,
// so the three display states stay mutually exclusive by construction.
// Returns false when no comparison matched the id and type.
func (r *ComparisonsRepository) SetEstado(ctx context.Context, id string, tipo models.ComparisonType, estado models.Estado) (bool, error) {
	if !estado.Valid() {
		return false, fmt.Errorf("unknown estado: %s", estado)
	}

	filter := bson.M{"_id": id, "tipo": tipo}
	update := bson.M{"$set": bson.M{"estado": estado}}

	result, err := r.mongoRepo.UpdateOne(ctx, comparisonsCollection, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update estado: %w", err)
	}

	return result.MatchedCount > 0, nil
}
