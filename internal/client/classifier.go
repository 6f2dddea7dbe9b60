package client

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"catalog-sync-api/internal/cache"
	"catalog-sync-api/internal/normalize"
)

// HTTPClassifier calls an external semantic classification service. The
// service receives the structured signals and the allowed vocabulary and
// answers with one label or "no match".
type HTTPClassifier struct {
	url        string
	apiKey     string
	model      string
	httpClient *http.Client
}

// HTTPClassifierConfig holds the classifier service settings.
type HTTPClassifierConfig struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// NewHTTPClassifier creates a classifier client.
func NewHTTPClassifier(cfg HTTPClassifierConfig) *HTTPClassifier {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	return &HTTPClassifier{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Classify asks the service for a label. Malformed or empty answers come back
// as "no match"; callers treat errors as "no match" too, so nothing here is
// allowed to take a run down.
func (c *HTTPClassifier) Classify(ctx context.Context, signals normalize.ClassifierSignals, allowed []string) (string, error) {
	payload := map[string]interface{}{
		"model":          c.model,
		"signals":        signals,
		"allowed_labels": allowed,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("classifier call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("classifier call: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var answer struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		// A garbled body is an ambiguity outcome, not a failure.
		return normalize.NoMatch, nil
	}
	if strings.TrimSpace(answer.Label) == "" {
		return normalize.NoMatch, nil
	}
	return answer.Label, nil
}

// CachedClassifier wraps a SemanticClassifier with a cache keyed by the input
// signals, so repeated questions (re-runs, restarts) never hit the service
// twice.
type CachedClassifier struct {
	inner normalize.SemanticClassifier
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedClassifier wraps inner with the given cache.
func NewCachedClassifier(inner normalize.SemanticClassifier, c cache.Cache, ttl time.Duration) *CachedClassifier {
	return &CachedClassifier{inner: inner, cache: c, ttl: ttl}
}

// Classify answers from cache when possible, otherwise asks the inner
// classifier and stores the answer. Cache failures degrade to a direct call.
func (c *CachedClassifier) Classify(ctx context.Context, signals normalize.ClassifierSignals, allowed []string) (string, error) {
	key := classifierCacheKey(signals, allowed)

	if data, err := c.cache.Get(ctx, key); err == nil {
		return string(data), nil
	} else if err != cache.ErrCacheMiss {
		log.Printf("[Classifier] cache read failed: %v", err)
	}

	label, err := c.inner.Classify(ctx, signals, allowed)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, key, []byte(label), c.ttl); err != nil {
		log.Printf("[Classifier] cache write failed: %v", err)
	}
	return label, nil
}

func classifierCacheKey(signals normalize.ClassifierSignals, allowed []string) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(signals)
	_ = enc.Encode(allowed)
	return hex.EncodeToString(h.Sum(nil))
}
