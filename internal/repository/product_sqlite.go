package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"catalog-sync-api/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteProductRepository implements ProductRepository on an embedded SQLite
// database. Records are stored as JSON documents keyed by SKU, mirroring the
// document-store layout so the two backends stay interchangeable.
type SQLiteProductRepository struct {
	db *sql.DB
}

// NewSQLiteProductRepository opens (and if needed creates) the database file.
func NewSQLiteProductRepository(path string) (*SQLiteProductRepository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Single writer; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS raw_listings (
		sku TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS products (
		sku TEXT PRIMARY KEY,
		doc TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Printf("[SQLite] Opened %s", path)
	return &SQLiteProductRepository{db: db}, nil
}

// UpsertRaw replaces the stored raw listing for its SKU.
func (r *SQLiteProductRepository) UpsertRaw(ctx context.Context, listing *model.RawListing) error {
	doc, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to marshal raw listing %s: %w", listing.SKU, err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO raw_listings (sku, doc) VALUES (?, ?)
		 ON CONFLICT(sku) DO UPDATE SET doc = excluded.doc`,
		listing.SKU, string(doc))
	if err != nil {
		return fmt.Errorf("failed to upsert raw listing %s: %w", listing.SKU, err)
	}
	return nil
}

// ListRaw returns raw listings with SKU > afterSKU in SKU order.
func (r *SQLiteProductRepository) ListRaw(ctx context.Context, afterSKU string, limit int) ([]model.RawListing, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT doc FROM raw_listings WHERE sku > ? ORDER BY sku LIMIT ?`, afterSKU, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw listings: %w", err)
	}
	defer rows.Close()

	var listings []model.RawListing
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var l model.RawListing
		if err := json.Unmarshal([]byte(doc), &l); err != nil {
			log.Printf("[SQLite] Warning: skipping undecodable raw listing: %v", err)
			continue
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// GetProduct returns the canonical product for a SKU, or nil if absent.
func (r *SQLiteProductRepository) GetProduct(ctx context.Context, sku string) (*model.CanonicalProduct, error) {
	var doc string
	err := r.db.QueryRowContext(ctx,
		`SELECT doc FROM products WHERE sku = ?`, sku).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", sku, err)
	}

	var p model.CanonicalProduct
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", sku, err)
	}
	return &p, nil
}

// UpsertProduct inserts or fully replaces a canonical product.
func (r *SQLiteProductRepository) UpsertProduct(ctx context.Context, p *model.CanonicalProduct) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal product %s: %w", p.SKU, err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO products (sku, doc) VALUES (?, ?)
		 ON CONFLICT(sku) DO UPDATE SET doc = excluded.doc`,
		p.SKU, string(doc))
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.SKU, err)
	}
	return nil
}

// ListProducts returns canonical products with SKU > afterSKU in SKU order.
func (r *SQLiteProductRepository) ListProducts(ctx context.Context, afterSKU string, limit int) ([]model.CanonicalProduct, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT doc FROM products WHERE sku > ? ORDER BY sku LIMIT ?`, afterSKU, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []model.CanonicalProduct
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p model.CanonicalProduct
		if err := json.Unmarshal([]byte(doc), &p); err != nil {
			log.Printf("[SQLite] Warning: skipping undecodable product: %v", err)
			continue
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// mutateProduct applies fn to a stored product inside a transaction.
func (r *SQLiteProductRepository) mutateProduct(ctx context.Context, sku string, fn func(*model.CanonicalProduct)) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var doc string
	if err := tx.QueryRowContext(ctx,
		`SELECT doc FROM products WHERE sku = ?`, sku).Scan(&doc); err != nil {
		return fmt.Errorf("failed to load product %s: %w", sku, err)
	}

	var p model.CanonicalProduct
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return fmt.Errorf("failed to decode product %s: %w", sku, err)
	}

	fn(&p)

	updated, err := json.Marshal(&p)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE products SET doc = ? WHERE sku = ?`, string(updated), sku); err != nil {
		return fmt.Errorf("failed to update product %s: %w", sku, err)
	}
	return tx.Commit()
}

// SetDownstreamLink stores the ids returned by a downstream create.
func (r *SQLiteProductRepository) SetDownstreamLink(ctx context.Context, sku string, productID, variantID int64, syncedHash string) error {
	return r.mutateProduct(ctx, sku, func(p *model.CanonicalProduct) {
		p.ShopifyID = productID
		p.ShopifyVariantID = variantID
		p.LastSyncedHash = syncedHash
	})
}

// SetSyncedHash records the hash persisted by a downstream update.
func (r *SQLiteProductRepository) SetSyncedHash(ctx context.Context, sku, hash string) error {
	return r.mutateProduct(ctx, sku, func(p *model.CanonicalProduct) {
		p.LastSyncedHash = hash
	})
}

// ResetLinks clears downstream linkage for one SKU or for every product.
func (r *SQLiteProductRepository) ResetLinks(ctx context.Context, sku string) (int64, error) {
	var skus []string
	if sku != "" {
		skus = append(skus, sku)
	} else {
		rows, err := r.db.QueryContext(ctx, `SELECT sku FROM products`)
		if err != nil {
			return 0, err
		}
		defer rows.Close()
		for rows.Next() {
			var s string
			if err := rows.Scan(&s); err != nil {
				return 0, err
			}
			skus = append(skus, s)
		}
		if err := rows.Err(); err != nil {
			return 0, err
		}
	}

	var reset int64
	for _, s := range skus {
		err := r.mutateProduct(ctx, s, func(p *model.CanonicalProduct) {
			p.ShopifyID = 0
			p.ShopifyVariantID = 0
			p.LastSyncedHash = ""
		})
		if err != nil {
			return reset, err
		}
		reset++
	}
	return reset, nil
}

// AttributeKeys returns a census of raw attribute keys across all products.
func (r *SQLiteProductRepository) AttributeKeys(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	after := ""
	for {
		page, err := r.ListProducts(ctx, after, 500)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			return counts, nil
		}
		for _, p := range page {
			for k := range p.RawAttributes {
				counts[k]++
			}
		}
		after = page[len(page)-1].SKU
	}
}

// Stats returns store statistics for the status endpoint.
func (r *SQLiteProductRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := map[string]interface{}{"status": "connected", "backend": "sqlite"}

	var rawCount, productCount int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_listings`).Scan(&rawCount); err != nil {
		return stats, err
	}
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&productCount); err != nil {
		return stats, err
	}
	stats["raw_listings"] = rawCount
	stats["products"] = productCount
	return stats, nil
}

// Close closes the database.
func (r *SQLiteProductRepository) Close() error {
	return r.db.Close()
}
