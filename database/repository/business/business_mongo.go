package businessRepo

import (
	"context"
	"fmt"
	"time"

	"kymaclub/database"
	"kymaclub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBusinessRepo implements BusinessRepository using MongoDB.
type MongoBusinessRepo struct {
	coll *mongo.Collection
}

// NewMongoBusinessRepo creates a new instance of BusinessRepository using MongoDB.
func NewMongoBusinessRepo() BusinessRepository {
	coll := database.MongoClient.Database(database.Name()).Collection("businesses")
	repo := &MongoBusinessRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoBusinessRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a business by its unique ID.
func (r *MongoBusinessRepo) GetByID(ctx context.Context, id string) (*models.Business, error) {
	var biz models.Business
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&biz); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch business with id %s: %w", id, err)
	}
	return &biz, nil
}

// Create inserts a new business document.
func (r *MongoBusinessRepo) Create(ctx context.Context, business *models.Business) error {
	now := time.Now()
	business.CreatedAt = now
	business.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, business)
	if err != nil {
		return fmt.Errorf("failed to create business: %w", err)
	}
	return nil
}

// UpdateFeeStructure patches the fee structure of a business.
func (r *MongoBusinessRepo) UpdateFeeStructure(ctx context.Context, id string, fees models.FeeStructure) error {
	update := bson.M{"$set": bson.M{
		"fees":       fees,
		"updated_at": time.Now(),
	}}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update fee structure for business %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
