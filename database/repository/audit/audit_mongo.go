package auditRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kymaclub/database"
	"kymaclub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// auditDoc is the storage shape of an audit entry. The typed change payload
// is serialized to JSON here, at the storage boundary, and nowhere else.
type auditDoc struct {
	ID         string             `bson:"id"`
	ActorID    string             `bson:"actor_id"`
	ActorEmail string             `bson:"actor_email,omitempty"`
	EntityType string             `bson:"entity_type"`
	EntityID   string             `bson:"entity_id"`
	EntityName string             `bson:"entity_name,omitempty"`
	Action     models.AuditAction `bson:"action"`
	ChangeType string             `bson:"change_type,omitempty"`
	ChangeJSON string             `bson:"change_json,omitempty"`
	Reason     string             `bson:"reason"`
	CreatedAt  time.Time          `bson:"created_at"`
}

// MongoAuditRepo implements AuditRepository using MongoDB.
type MongoAuditRepo struct {
	coll *mongo.Collection
}

// NewMongoAuditRepo creates a new instance of AuditRepository using MongoDB.
func NewMongoAuditRepo() AuditRepository {
	coll := database.MongoClient.Database(database.Name()).Collection("audit_log")
	repo := &MongoAuditRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func (r *MongoAuditRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Insert appends one audit entry.
func (r *MongoAuditRepo) Insert(ctx context.Context, entry *models.AuditLogEntry) error {
	doc := auditDoc{
		ID:         entry.ID,
		ActorID:    entry.ActorID,
		ActorEmail: entry.ActorEmail,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		EntityName: entry.EntityName,
		Action:     entry.Action,
		Reason:     entry.Reason,
		CreatedAt:  entry.CreatedAt,
	}
	if entry.Change != nil {
		payload, err := json.Marshal(entry.Change)
		if err != nil {
			return fmt.Errorf("failed to serialize audit change payload: %w", err)
		}
		doc.ChangeType = entry.Change.AuditChangeType()
		doc.ChangeJSON = string(payload)
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// ListByEntity returns the most recent entries for one entity.
func (r *MongoAuditRepo) ListByEntity(ctx context.Context, entityType, entityID string, limit int64) ([]models.AuditLogEntry, error) {
	filter := bson.M{"entity_type": entityType, "entity_id": entityID}
	return r.list(ctx, filter, limit)
}

// ListByAction returns the most recent entries for one action type.
func (r *MongoAuditRepo) ListByAction(ctx context.Context, action models.AuditAction, limit int64) ([]models.AuditLogEntry, error) {
	return r.list(ctx, bson.M{"action": action}, limit)
}

// ListRecent returns the most recent entries across all entities.
func (r *MongoAuditRepo) ListRecent(ctx context.Context, limit int64) ([]models.AuditLogEntry, error) {
	return r.list(ctx, bson.M{}, limit)
}

func (r *MongoAuditRepo) list(ctx context.Context, filter bson.M, limit int64) ([]models.AuditLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.AuditLogEntry
	for cursor.Next(ctx) {
		var doc auditDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode audit entry: %w", err)
		}
		entry, err := doc.toModel()
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, nil
}

// toModel restores the typed change payload from its stored JSON form.
func (d auditDoc) toModel() (*models.AuditLogEntry, error) {
	entry := &models.AuditLogEntry{
		ID:         d.ID,
		ActorID:    d.ActorID,
		ActorEmail: d.ActorEmail,
		EntityType: d.EntityType,
		EntityID:   d.EntityID,
		EntityName: d.EntityName,
		Action:     d.Action,
		Reason:     d.Reason,
		CreatedAt:  d.CreatedAt,
	}

	if d.ChangeJSON == "" {
		return entry, nil
	}
	switch d.ChangeType {
	case models.FeeRateChange{}.AuditChangeType():
		var change models.FeeRateChange
		if err := json.Unmarshal([]byte(d.ChangeJSON), &change); err != nil {
			return nil, fmt.Errorf("failed to decode fee-rate change payload: %w", err)
		}
		entry.Change = change
	case models.CreditGrantChange{}.AuditChangeType():
		var change models.CreditGrantChange
		if err := json.Unmarshal([]byte(d.ChangeJSON), &change); err != nil {
			return nil, fmt.Errorf("failed to decode credit-grant change payload: %w", err)
		}
		entry.Change = change
	case models.BalanceReconcileChange{}.AuditChangeType():
		var change models.BalanceReconcileChange
		if err := json.Unmarshal([]byte(d.ChangeJSON), &change); err != nil {
			return nil, fmt.Errorf("failed to decode reconcile change payload: %w", err)
		}
		entry.Change = change
	}
	return entry, nil
}
