package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"catalog-sync-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository implements ProductRepository on MongoDB, with raw
// listings and canonical products in separate collections keyed by SKU.
type MongoProductRepository struct {
	client   *mongo.Client
	db       *mongo.Database
	raw      *mongo.Collection
	products *mongo.Collection
}

// MongoConfig holds the connection settings for the Mongo-backed store.
type MongoConfig struct {
	URI               string
	Database          string
	RawCollection     string
	ProductCollection string
}

// NewMongoProductRepository connects to MongoDB and prepares both collections.
func NewMongoProductRepository(cfg MongoConfig) (*MongoProductRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(20).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(cfg.Database)
	repo := &MongoProductRepository{
		client:   client,
		db:       db,
		raw:      db.Collection(cfg.RawCollection),
		products: db.Collection(cfg.ProductCollection),
	}

	// Reconciliation filters on linkage and hash; index them.
	indexModel := mongo.IndexModel{Keys: bson.D{{Key: "shopify_id", Value: 1}}}
	if _, err := repo.products.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Printf("[MongoDB] Warning: failed to create index: %v", err)
	}

	log.Printf("[MongoDB] Connected to %s (%s, %s)", cfg.Database, cfg.RawCollection, cfg.ProductCollection)
	return repo, nil
}

// UpsertRaw replaces the stored raw listing for its SKU.
func (r *MongoProductRepository) UpsertRaw(ctx context.Context, listing *model.RawListing) error {
	filter := bson.M{"_id": listing.SKU}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.raw.ReplaceOne(ctx, filter, listing, opts); err != nil {
		return fmt.Errorf("failed to upsert raw listing %s: %w", listing.SKU, err)
	}
	return nil
}

// ListRaw returns raw listings with SKU > afterSKU in SKU order.
func (r *MongoProductRepository) ListRaw(ctx context.Context, afterSKU string, limit int) ([]model.RawListing, error) {
	filter := bson.M{"_id": bson.M{"$gt": afterSKU}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.raw.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []model.RawListing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode raw listings: %w", err)
	}
	return listings, nil
}

// GetProduct returns the canonical product for a SKU, or nil if absent.
func (r *MongoProductRepository) GetProduct(ctx context.Context, sku string) (*model.CanonicalProduct, error) {
	var p model.CanonicalProduct
	err := r.products.FindOne(ctx, bson.M{"_id": sku}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", sku, err)
	}
	return &p, nil
}

// UpsertProduct inserts or fully replaces a canonical product.
func (r *MongoProductRepository) UpsertProduct(ctx context.Context, p *model.CanonicalProduct) error {
	filter := bson.M{"_id": p.SKU}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.products.ReplaceOne(ctx, filter, p, opts); err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.SKU, err)
	}
	return nil
}

// ListProducts returns canonical products with SKU > afterSKU in SKU order.
func (r *MongoProductRepository) ListProducts(ctx context.Context, afterSKU string, limit int) ([]model.CanonicalProduct, error) {
	filter := bson.M{"_id": bson.M{"$gt": afterSKU}}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit))

	cursor, err := r.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []model.CanonicalProduct
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

// SetDownstreamLink stores the ids returned by a downstream create.
func (r *MongoProductRepository) SetDownstreamLink(ctx context.Context, sku string, productID, variantID int64, syncedHash string) error {
	update := bson.M{"$set": bson.M{
		"shopify_id":         productID,
		"shopify_variant_id": variantID,
		"last_synced_hash":   syncedHash,
	}}
	if _, err := r.products.UpdateOne(ctx, bson.M{"_id": sku}, update); err != nil {
		return fmt.Errorf("failed to set downstream link for %s: %w", sku, err)
	}
	return nil
}

// SetSyncedHash records the hash persisted by a downstream update.
func (r *MongoProductRepository) SetSyncedHash(ctx context.Context, sku, hash string) error {
	update := bson.M{"$set": bson.M{"last_synced_hash": hash}}
	if _, err := r.products.UpdateOne(ctx, bson.M{"_id": sku}, update); err != nil {
		return fmt.Errorf("failed to set synced hash for %s: %w", sku, err)
	}
	return nil
}

// ResetLinks clears downstream linkage for one SKU or for every product.
func (r *MongoProductRepository) ResetLinks(ctx context.Context, sku string) (int64, error) {
	filter := bson.M{}
	if sku != "" {
		filter["_id"] = sku
	}
	update := bson.M{"$unset": bson.M{
		"shopify_id":         "",
		"shopify_variant_id": "",
		"last_synced_hash":   "",
	}}
	res, err := r.products.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to reset links: %w", err)
	}
	return res.ModifiedCount, nil
}

// AttributeKeys returns a census of raw attribute keys across all products.
func (r *MongoProductRepository) AttributeKeys(ctx context.Context) (map[string]int, error) {
	cursor, err := r.products.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"raw_attributes": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to scan attributes: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int)
	for cursor.Next(ctx) {
		var doc struct {
			RawAttributes map[string]string `bson:"raw_attributes"`
		}
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		for k := range doc.RawAttributes {
			counts[k]++
		}
	}
	return counts, cursor.Err()
}

// Stats returns store statistics for the status endpoint.
func (r *MongoProductRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"status": "connected", "backend": "mongodb"}

	rawCount, err := r.raw.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, err
	}
	stats["raw_listings"] = rawCount

	productCount, err := r.products.CountDocuments(ctx, bson.M{})
	if err != nil {
		return stats, err
	}
	stats["products"] = productCount

	linked, err := r.products.CountDocuments(ctx, bson.M{"shopify_id": bson.M{"$gt": 0}})
	if err == nil {
		stats["linked_products"] = linked
	}

	return stats, nil
}

// Close closes the MongoDB connection.
func (r *MongoProductRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
