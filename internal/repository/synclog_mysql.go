package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"catalog-sync-api/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLSyncLogRepository stores run and webhook summaries in MySQL, for
// deployments that keep operational records relational.
type MySQLSyncLogRepository struct {
	db *sql.DB
}

// NewMySQLSyncLogRepository connects to MySQL and ensures the log table exists.
func NewMySQLSyncLogRepository(dsn string) (*MySQLSyncLogRepository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sync_log (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		kind VARCHAR(64) NOT NULL,
		detail JSON,
		created_at DATETIME NOT NULL,
		INDEX idx_created_at (created_at)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sync_log table: %w", err)
	}

	log.Println("[MySQL] Sync log repository initialized")
	return &MySQLSyncLogRepository{db: db}, nil
}

// Append stores one log entry.
func (r *MySQLSyncLogRepository) Append(ctx context.Context, entry *model.SyncLogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	detail, err := json.Marshal(entry.Detail)
	if err != nil {
		return fmt.Errorf("failed to marshal sync log detail: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO sync_log (kind, detail, created_at) VALUES (?, ?, ?)`,
		entry.Kind, string(detail), entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}
	return nil
}

// Recent returns the most recent entries, newest first.
func (r *MySQLSyncLogRepository) Recent(ctx context.Context, limit int) ([]model.SyncLogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, detail, created_at FROM sync_log ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync log: %w", err)
	}
	defer rows.Close()

	var entries []model.SyncLogEntry
	for rows.Next() {
		var (
			id        int64
			kind      string
			detail    sql.NullString
			createdAt time.Time
		)
		if err := rows.Scan(&id, &kind, &detail, &createdAt); err != nil {
			return nil, err
		}

		var parsed interface{}
		if detail.Valid {
			_ = json.Unmarshal([]byte(detail.String), &parsed)
		}

		entries = append(entries, model.SyncLogEntry{
			ID:        strconv.FormatInt(id, 10),
			Kind:      kind,
			Detail:    parsed,
			CreatedAt: createdAt,
		})
	}
	return entries, rows.Err()
}

// Close closes the MySQL connection.
func (r *MySQLSyncLogRepository) Close() error {
	return r.db.Close()
}
