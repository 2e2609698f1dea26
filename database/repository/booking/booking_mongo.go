package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.MongoClient.Database(database.Name()).Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "business_id", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "business_id", Value: 1}, {Key: "checked_in_at", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its unique ID.
func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch booking with id %s: %w", id, err)
	}
	return &booking, nil
}

// Create inserts a new booking document.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// ListForBusinessCreatedBetween returns non-deleted bookings created in [from, to).
func (r *MongoBookingRepo) ListForBusinessCreatedBetween(ctx context.Context, businessID string, from, to time.Time) ([]models.Booking, error) {
	filter := bson.M{
		"business_id": businessID,
		"deleted":     false,
		"created_at":  bson.M{"$gte": from, "$lt": to},
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// CountCheckInsBetween counts bookings checked in within [from, to).
func (r *MongoBookingRepo) CountCheckInsBetween(ctx context.Context, businessID string, from, to time.Time) (int64, error) {
	filter := bson.M{
		"business_id":   businessID,
		"deleted":       false,
		"checked_in_at": bson.M{"$gte": from, "$lt": to},
	}

	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return count, nil
}
