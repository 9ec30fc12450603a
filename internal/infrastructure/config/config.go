package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Instagram  InstagramConfig
	Storefront StorefrontConfig
	OAuth      OAuthConfig
	JWT        JWTConfig
	Publish    PublishConfig
	Sync       SyncConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Telemetry  TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name      string
	Env       string
	Port      string
	PublicURL string // externally reachable base URL of this service
	AdminURL  string // where the handshake callback redirects the operator
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres, sqlite
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string // sqlite file path
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// InstagramConfig holds provider application credentials and endpoints
type InstagramConfig struct {
	ClientID          string
	ClientSecret      string
	RedirectURI       string
	Scopes            []string
	AuthorizeURL      string
	TokenURL          string
	GraphURL          string
	TimeoutSeconds    int
	RequestsPerSecond float64
}

// StorefrontConfig holds the storefront app credentials.
// Lifecycle webhooks are signed with WebhookSecret, not the Instagram client secret.
type StorefrontConfig struct {
	WebhookSecret string
}

// OAuthConfig holds handshake state settings
type OAuthConfig struct {
	StateSecret string
	StateTTL    time.Duration
}

// JWTConfig holds admin API token settings
type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

// PublishConfig holds publish target settings
type PublishConfig struct {
	Backend      string // memory, redis, s3
	Namespace    string
	TrackingPath string
	S3           S3Config
}

// S3Config holds S3-compatible object storage settings
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	Prefix       string
}

// SyncConfig holds sync worker pool and cron settings
type SyncConfig struct {
	Enabled             bool
	Workers             int
	QueueSize           int
	JobTimeout          time.Duration
	RetryAttempts       int
	RetryDelay          time.Duration
	CronSchedule        string
	RefreshCronSchedule string
	RefreshWindow       time.Duration
	LockTTL             time.Duration
	DefaultPostLimit    int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodySize       int64
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	CORSAllowOrigins  []string
	CORSAllowMethods  []string
	CORSAllowHeaders  []string
	TrustedProxies    []string
}

// TelemetryConfig holds OpenTelemetry and metrics configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	DBTraceEnabled    bool    // Enable database query tracing (otelgorm)
	MetricsEnabled    bool    // Expose prometheus metrics on /metrics
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with IGFEED_ prefix (e.g., IGFEED_INSTAGRAM_CLIENT_SECRET)
// 2. .env file in the working directory
// 3. config.toml
// 4. Built-in defaults
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("IGFEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:      v.GetString("app.name"),
			Env:       v.GetString("app.env"),
			Port:      v.GetString("app.port"),
			PublicURL: v.GetString("app.public_url"),
			AdminURL:  v.GetString("app.admin_url"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			Path:            v.GetString("database.path"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Instagram: InstagramConfig{
			ClientID:          v.GetString("instagram.client_id"),
			ClientSecret:      v.GetString("instagram.client_secret"),
			RedirectURI:       v.GetString("instagram.redirect_uri"),
			Scopes:            v.GetStringSlice("instagram.scopes"),
			AuthorizeURL:      v.GetString("instagram.authorize_url"),
			TokenURL:          v.GetString("instagram.token_url"),
			GraphURL:          v.GetString("instagram.graph_url"),
			TimeoutSeconds:    v.GetInt("instagram.timeout_seconds"),
			RequestsPerSecond: v.GetFloat64("instagram.requests_per_second"),
		},
		Storefront: StorefrontConfig{
			WebhookSecret: v.GetString("storefront.webhook_secret"),
		},
		OAuth: OAuthConfig{
			StateSecret: v.GetString("oauth.state_secret"),
			StateTTL:    v.GetDuration("oauth.state_ttl"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Issuer:     v.GetString("jwt.issuer"),
			Expiration: v.GetDuration("jwt.expiration"),
		},
		Publish: PublishConfig{
			Backend:      v.GetString("publish.backend"),
			Namespace:    v.GetString("publish.namespace"),
			TrackingPath: v.GetString("publish.tracking_path"),
			S3: S3Config{
				Endpoint:     v.GetString("publish.s3.endpoint"),
				Region:       v.GetString("publish.s3.region"),
				Bucket:       v.GetString("publish.s3.bucket"),
				AccessKey:    v.GetString("publish.s3.access_key"),
				SecretKey:    v.GetString("publish.s3.secret_key"),
				UsePathStyle: v.GetBool("publish.s3.use_path_style"),
				Prefix:       v.GetString("publish.s3.prefix"),
			},
		},
		Sync: SyncConfig{
			Enabled:             v.GetBool("sync.enabled"),
			Workers:             v.GetInt("sync.workers"),
			QueueSize:           v.GetInt("sync.queue_size"),
			JobTimeout:          v.GetDuration("sync.job_timeout"),
			RetryAttempts:       v.GetInt("sync.retry_attempts"),
			RetryDelay:          v.GetDuration("sync.retry_delay"),
			CronSchedule:        v.GetString("sync.cron_schedule"),
			RefreshCronSchedule: v.GetString("sync.refresh_cron_schedule"),
			RefreshWindow:       v.GetDuration("sync.refresh_window"),
			LockTTL:             v.GetDuration("sync.lock_ttl"),
			DefaultPostLimit:    v.GetInt("sync.default_post_limit"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:       v.GetDuration("http.read_timeout"),
			WriteTimeout:      v.GetDuration("http.write_timeout"),
			IdleTimeout:       v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:    v.GetInt("http.max_header_bytes"),
			MaxBodySize:       v.GetInt64("http.max_body_size"),
			RateLimitEnabled:  v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			CORSAllowOrigins:  v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:  v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:  v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:    v.GetStringSlice("http.trusted_proxies"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
		},
	}

	// Sync and metrics are on unless explicitly disabled
	if !v.IsSet("sync.enabled") {
		cfg.Sync.Enabled = true
	}
	if !v.IsSet("telemetry.metrics_enabled") {
		cfg.Telemetry.MetricsEnabled = true
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "igfeed"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.App.PublicURL == "" {
		cfg.App.PublicURL = "http://localhost:" + cfg.App.Port
	}
	if cfg.App.AdminURL == "" {
		cfg.App.AdminURL = cfg.App.PublicURL + "/admin"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "igfeed"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "igfeed.db"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if len(cfg.Instagram.Scopes) == 0 {
		cfg.Instagram.Scopes = []string{"instagram_business_basic"}
	}
	if cfg.Instagram.AuthorizeURL == "" {
		cfg.Instagram.AuthorizeURL = "https://api.instagram.com/oauth/authorize"
	}
	if cfg.Instagram.TokenURL == "" {
		cfg.Instagram.TokenURL = "https://api.instagram.com/oauth/access_token"
	}
	if cfg.Instagram.GraphURL == "" {
		cfg.Instagram.GraphURL = "https://graph.instagram.com"
	}
	if cfg.Instagram.TimeoutSeconds == 0 {
		cfg.Instagram.TimeoutSeconds = 15
	}
	if cfg.Instagram.RequestsPerSecond == 0 {
		cfg.Instagram.RequestsPerSecond = 10
	}
	if cfg.OAuth.StateTTL == 0 {
		cfg.OAuth.StateTTL = 600 * time.Second
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "igfeed"
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = time.Hour
	}
	if cfg.Publish.Backend == "" {
		cfg.Publish.Backend = "memory"
	}
	if cfg.Publish.Namespace == "" {
		cfg.Publish.Namespace = "instagram_feed"
	}
	if cfg.Publish.TrackingPath == "" {
		cfg.Publish.TrackingPath = "/api/track"
	}
	if cfg.Publish.S3.Region == "" {
		cfg.Publish.S3.Region = "us-east-1"
	}
	if cfg.Publish.S3.Prefix == "" {
		cfg.Publish.S3.Prefix = "feeds"
	}
	if cfg.Sync.Workers == 0 {
		cfg.Sync.Workers = 3
	}
	if cfg.Sync.QueueSize == 0 {
		cfg.Sync.QueueSize = 100
	}
	if cfg.Sync.JobTimeout == 0 {
		cfg.Sync.JobTimeout = 2 * time.Minute
	}
	if cfg.Sync.RetryAttempts == 0 {
		cfg.Sync.RetryAttempts = 3
	}
	if cfg.Sync.RetryDelay == 0 {
		cfg.Sync.RetryDelay = 30 * time.Second
	}
	if cfg.Sync.CronSchedule == "" {
		cfg.Sync.CronSchedule = "@every 6h"
	}
	if cfg.Sync.RefreshCronSchedule == "" {
		cfg.Sync.RefreshCronSchedule = "@daily"
	}
	if cfg.Sync.RefreshWindow == 0 {
		cfg.Sync.RefreshWindow = 7 * 24 * time.Hour
	}
	if cfg.Sync.LockTTL == 0 {
		cfg.Sync.LockTTL = 5 * time.Minute
	}
	if cfg.Sync.DefaultPostLimit == 0 {
		cfg.Sync.DefaultPostLimit = 12
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20 // 1MB
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 600
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	// Admin API origins have no wildcard fallback; the tracking endpoint sets its own CORS headers.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "igfeed"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"instagram.client_id", c.Instagram.ClientID},
		{"instagram.client_secret", c.Instagram.ClientSecret},
		{"instagram.redirect_uri", c.Instagram.RedirectURI},
		{"storefront.webhook_secret", c.Storefront.WebhookSecret},
		{"oauth.state_secret", c.OAuth.StateSecret},
		{"jwt.secret", c.JWT.Secret},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s", integration.ErrConfigMissing, r.key)
		}
	}

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Publish.Backend {
	case "memory":
	case "redis":
		if !c.Redis.Enabled {
			return fmt.Errorf("publish.backend=redis requires redis.enabled=true")
		}
	case "s3":
		if c.Publish.S3.Bucket == "" {
			return fmt.Errorf("%w: publish.s3.bucket", integration.ErrConfigMissing)
		}
	default:
		return fmt.Errorf("publish.backend must be memory, redis or s3, got %q", c.Publish.Backend)
	}

	if c.Sync.Workers <= 0 {
		return fmt.Errorf("sync.workers must be positive")
	}
	if c.Sync.DefaultPostLimit < integration.MinPostLimit || c.Sync.DefaultPostLimit > integration.MaxPostLimit {
		return fmt.Errorf("sync.default_post_limit must be between %d and %d",
			integration.MinPostLimit, integration.MaxPostLimit)
	}

	if _, err := url.ParseRequestURI(c.Instagram.RedirectURI); err != nil {
		return fmt.Errorf("instagram.redirect_uri is not a valid URL: %w", err)
	}
	if _, err := url.ParseRequestURI(c.App.PublicURL); err != nil {
		return fmt.Errorf("app.public_url is not a valid URL: %w", err)
	}

	if c.App.Env == "production" {
		if len(c.OAuth.StateSecret) < 32 {
			return fmt.Errorf("oauth.state_secret must be at least 32 characters in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver == "postgres" && c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Publish.Backend == "memory" {
			return fmt.Errorf("publish.backend=memory is not allowed in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// TrackingURL returns the absolute URL of the tracking endpoint
func (c *Config) TrackingURL() string {
	return strings.TrimRight(c.App.PublicURL, "/") + c.Publish.TrackingPath
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns host:port of the redis server
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
