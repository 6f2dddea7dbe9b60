package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server     ServerConfig
	App        AppConfig
	Store      StoreConfig
	SyncLog    SyncLogConfig
	Cache      CacheConfig
	Ebay       EbayConfig
	Shopify    ShopifyConfig
	Classifier ClassifierConfig
	Sync       SyncConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"catalog-sync-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	APIKey      string `envconfig:"API_KEY" default:""` // gates mutating endpoints
}

// StoreConfig holds canonical product store settings.
type StoreConfig struct {
	Type string `envconfig:"STORE_TYPE" default:"mongodb"` // mongodb or sqlite
	Path string `envconfig:"STORE_SQLITE_PATH" default:"./data/catalog.db"`

	MongoURI          string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase     string `envconfig:"MONGODB_DATABASE" default:"catalog_sync"`
	RawCollection     string `envconfig:"MONGODB_RAW_COLLECTION" default:"product_raw"`
	ProductCollection string `envconfig:"MONGODB_PRODUCT_COLLECTION" default:"product_normalized"`
}

// SyncLogConfig holds sync log storage settings. The log defaults to the same
// Mongo database as the store; a MySQL backend exists for setups that keep
// operational records relational.
type SyncLogConfig struct {
	Type string `envconfig:"SYNCLOG_TYPE" default:"mongodb"` // mongodb or mysql

	MySQLHost     string `envconfig:"SYNCLOG_MYSQL_HOST" default:"localhost"`
	MySQLPort     int    `envconfig:"SYNCLOG_MYSQL_PORT" default:"3306"`
	MySQLName     string `envconfig:"SYNCLOG_MYSQL_NAME" default:"catalog_sync"`
	MySQLUser     string `envconfig:"SYNCLOG_MYSQL_USER" default:"root"`
	MySQLPassword string `envconfig:"SYNCLOG_MYSQL_PASS" default:""`
}

// CacheConfig holds classifier cache settings.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"720h"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// EbayConfig holds marketplace listing API settings.
type EbayConfig struct {
	BaseURL    string        `envconfig:"EBAY_BASE_URL" default:"https://api.ebay.com"`
	OAuthToken string        `envconfig:"EBAY_OAUTH_TOKEN" default:""`
	PageSize   int           `envconfig:"EBAY_PAGE_SIZE" default:"100"`
	Timeout    time.Duration `envconfig:"EBAY_TIMEOUT" default:"30s"`
}

// ShopifyConfig holds downstream store API settings.
type ShopifyConfig struct {
	StoreURL    string        `envconfig:"SHOPIFY_STORE_URL" default:""`
	AccessToken string        `envconfig:"SHOPIFY_ACCESS_TOKEN" default:""`
	APIVersion  string        `envconfig:"SHOPIFY_API_VERSION" default:"2024-07"`
	Timeout     time.Duration `envconfig:"SHOPIFY_TIMEOUT" default:"30s"`
	// Shopify's REST limit is 2 req/s per store; stay under it.
	RateLimit float64 `envconfig:"SHOPIFY_RATE_LIMIT" default:"2"`
	RateBurst int     `envconfig:"SHOPIFY_RATE_BURST" default:"4"`
}

// ClassifierConfig holds external semantic classifier settings. An empty URL
// disables the external fallback entirely.
type ClassifierConfig struct {
	URL     string        `envconfig:"CLASSIFIER_URL" default:""`
	APIKey  string        `envconfig:"CLASSIFIER_API_KEY" default:""`
	Model   string        `envconfig:"CLASSIFIER_MODEL" default:"default"`
	Timeout time.Duration `envconfig:"CLASSIFIER_TIMEOUT" default:"20s"`
}

// SyncConfig holds pipeline run settings.
type SyncConfig struct {
	PageSize     int           `envconfig:"SYNC_PAGE_SIZE" default:"100"`
	MaxWrites    int           `envconfig:"SYNC_MAX_WRITES" default:"0"` // 0 = unlimited
	Interval     time.Duration `envconfig:"SYNC_INTERVAL" default:"0"`   // 0 = scheduler off
	RecentWindow time.Duration `envconfig:"SYNC_RECENT_WINDOW" default:"720h"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// MySQLDSN returns the MySQL data source name for the sync log.
func (s *SyncLogConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		s.MySQLUser, s.MySQLPassword, s.MySQLHost, s.MySQLPort, s.MySQLName)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
