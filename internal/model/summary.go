package model

import "time"

// SyncSummary aggregates the outcome of one reconciliation run.
type SyncSummary struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// NormalizeSummary aggregates the outcome of one normalization pass.
type NormalizeSummary struct {
	Normalized int `json:"normalized"`
	Failed     int `json:"failed"`
}

// IngestSummary aggregates the outcome of one raw listing pull.
type IngestSummary struct {
	Upserted int `json:"upserted"`
	Skipped  int `json:"skipped"`
}

// RunSummary is the combined result of a full ingest -> normalize -> reconcile run.
type RunSummary struct {
	Ingest    IngestSummary    `json:"ingest"`
	Normalize NormalizeSummary `json:"normalize"`
	Sync      SyncSummary      `json:"sync"`
}

// SyncLogEntry is one persisted run or webhook record.
type SyncLogEntry struct {
	ID        string      `json:"id,omitempty" bson:"_id,omitempty"`
	Kind      string      `json:"kind" bson:"kind"`
	Detail    interface{} `json:"detail" bson:"detail"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
}
