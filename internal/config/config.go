package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration values. It is loaded once at startup and
// handed to every component that needs it.
type Config struct {
	// Server configuration
	Port        int    `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// PostgreSQL configuration
	DatabaseURL      string `envconfig:"DATABASE_URL" required:"true"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	MigrateOnStart   bool   `envconfig:"MIGRATE_ON_START" default:"false"`

	// Redis configuration
	RedisURI      string        `envconfig:"REDIS_URI" default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheEnabled  bool          `envconfig:"CACHE_ENABLED" default:"true"`
	GeoCacheTTL   time.Duration `envconfig:"GEO_CACHE_TTL" default:"6h"`
	PollCacheTTL  time.Duration `envconfig:"POLL_CACHE_TTL" default:"30s"`

	// RedisClusterAddrs overrides RedisURI with a cluster client when set
	RedisClusterAddrs []string `envconfig:"REDIS_CLUSTER_ADDRS"`

	// MongoDB configuration (audit trail)
	MongoURI            string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase       string `envconfig:"MONGODB_DATABASE" default:"popular_vote"`
	AuditLogsEnabled    bool   `envconfig:"AUDIT_LOGS_ENABLED" default:"false"`
	AuditLogsCollection string `envconfig:"AUDIT_LOGS_COLLECTION" default:"audit_logs"`
	AuditWorkerCount    int    `envconfig:"AUDIT_WORKER_COUNT" default:"2"`
	AuditBufferSize     int    `envconfig:"AUDIT_BUFFER_SIZE" default:"1000"`

	// Token validation
	AuthIssuer      string        `envconfig:"AUTH_ISSUER" required:"true"`
	AuthAudience    string        `envconfig:"AUTH_AUDIENCE" required:"true"`
	AuthJWKSURL     string        `envconfig:"AUTH_JWKS_URL"`
	AuthHS256Secret string        `envconfig:"AUTH_HS256_SECRET"`
	AuthJWKSRefresh time.Duration `envconfig:"AUTH_JWKS_REFRESH" default:"15m"`

	// Identity provider management API
	IDPDomain                string `envconfig:"IDP_DOMAIN"`
	IDPClientID              string `envconfig:"IDP_CLIENT_ID"`
	IDPClientSecret          string `envconfig:"IDP_CLIENT_SECRET"`
	IDPReadOnlyCitizenRoleID string `envconfig:"IDP_READ_ONLY_CITIZEN_ROLE_ID"`
	IDPCitizenRoleID         string `envconfig:"IDP_CITIZEN_ROLE_ID"`
	IDPPoliticianRoleID      string `envconfig:"IDP_POLITICIAN_ROLE_ID"`

	// HTTP surface
	CORSAllowedOrigins     []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://host.docker.internal:3000"`
	VoteRateLimitPerMinute int      `envconfig:"VOTE_RATE_LIMIT_PER_MINUTE" default:"30"`

	// Tracing configuration
	TracingEnabled     bool    `envconfig:"TRACING_ENABLED" default:"false"`
	TracingEndpoint    string  `envconfig:"TRACING_ENDPOINT" default:"localhost:4317"`
	TracingSampleRatio float64 `envconfig:"TRACING_SAMPLE_RATIO" default:"1"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.AuthJWKSURL == "" && cfg.AuthHS256Secret == "" {
		cfg.AuthJWKSURL = strings.TrimSuffix(cfg.AuthIssuer, "/") + "/.well-known/jwks.json"
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.AuthIssuer == "" || c.AuthAudience == "" {
		return fmt.Errorf("AUTH_ISSUER and AUTH_AUDIENCE are required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.VoteRateLimitPerMinute <= 0 {
		return fmt.Errorf("VOTE_RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.AuditWorkerCount <= 0 || c.AuditBufferSize <= 0 {
		return fmt.Errorf("AUDIT_WORKER_COUNT and AUDIT_BUFFER_SIZE must be positive")
	}
	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return fmt.Errorf("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}
	if c.IDPDomain != "" && (c.IDPClientID == "" || c.IDPClientSecret == "") {
		return fmt.Errorf("IDP_CLIENT_ID and IDP_CLIENT_SECRET are required when IDP_DOMAIN is set")
	}
	return nil
}

// IdentityProviderEnabled reports whether role grants are mirrored to the
// identity provider.
func (c *Config) IdentityProviderEnabled() bool {
	return c.IDPDomain != ""
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
