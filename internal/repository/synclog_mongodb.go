package repository

import (
	"context"
	"fmt"
	"time"

	"catalog-sync-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSyncLogRepository stores run and webhook summaries in a capped-style
// log collection, sharing the product store's database connection.
type MongoSyncLogRepository struct {
	collection *mongo.Collection
}

// NewMongoSyncLogRepository creates a sync log on an existing product store.
func NewMongoSyncLogRepository(store *MongoProductRepository, collection string) *MongoSyncLogRepository {
	return &MongoSyncLogRepository{collection: store.db.Collection(collection)}
}

// Append stores one log entry.
func (r *MongoSyncLogRepository) Append(ctx context.Context, entry *model.SyncLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	doc := bson.M{
		"kind":       entry.Kind,
		"detail":     entry.Detail,
		"created_at": entry.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (r *MongoSyncLogRepository) Recent(ctx context.Context, limit int) ([]model.SyncLogEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync log: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []model.SyncLogEntry
	for cursor.Next(ctx) {
		var doc struct {
			ID        primitive.ObjectID `bson:"_id"`
			Kind      string             `bson:"kind"`
			Detail    interface{}        `bson:"detail"`
			CreatedAt time.Time          `bson:"created_at"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		entries = append(entries, model.SyncLogEntry{
			ID:        doc.ID.Hex(),
			Kind:      doc.Kind,
			Detail:    doc.Detail,
			CreatedAt: doc.CreatedAt,
		})
	}
	return entries, cursor.Err()
}

// Close is a no-op; the underlying client belongs to the product store.
func (r *MongoSyncLogRepository) Close() error {
	return nil
}
