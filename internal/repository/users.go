package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/davidrmz/cotejo/internal/models"
)

const usersCollection = "usuarios"

type UsersRepository struct {
	mongoRepo *MongoRepository
}

func NewUsersRepository(mongoRepo *MongoRepository) *UsersRepository {
	return &UsersRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *UsersRepository) InsertUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now()

	err := r.mongoRepo.InsertOne(ctx, usersCollection, user)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

func (r *UsersRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	filter := bson.M{"email": email}

	var user models.User
	err := r.mongoRepo.FindOne(ctx, usersCollection, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}

func (r *UsersRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	filter := bson.M{"_id": id}

	var user models.User
	err := r.mongoRepo.FindOne(ctx, usersCollection, filter).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &user, nil
}
