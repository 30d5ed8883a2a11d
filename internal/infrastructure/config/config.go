package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Log          LogConfig
	HTTP         HTTPConfig
	Storage      StorageConfig
	Notification NotificationConfig
	Numbering    NumberingConfig
	Image        ImageConfig
	Report       ReportConfig
	Scheduler    SchedulerConfig
	Tracing      TracingConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	Port    string
	BaseURL string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver             string // postgres, mysql, sqlite
	Host               string
	Port               int
	User               string
	Password           string
	DBName             string
	SSLMode            string
	Path               string // sqlite file, ":memory:" for tests
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    int // in minutes
	ConnMaxIdleTime    int // in minutes
	SlowQueryThreshold time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns host:port
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	RefreshSecret          string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	MaxRefreshCount        int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	IdleTimeout             time.Duration
	MaxHeaderBytes          int
	MaxBodySize             int64
	MaxUploadSize           int64
	RateLimitEnabled        bool
	RateLimitRequests       int
	RateLimitWindow         time.Duration
	PublicRateLimitRequests int           // inquiry submissions per client
	PublicRateLimitWindow   time.Duration // window for public submissions
	AuthRateLimitRequests   int
	AuthRateLimitWindow     time.Duration
	CORSAllowOrigins        []string
	CORSAllowMethods        []string
	CORSAllowHeaders        []string
	TrustedProxies          []string
}

// StorageConfig selects where product images are kept
type StorageConfig struct {
	Driver        string // local, s3
	LocalDir      string
	PublicBaseURL string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string // for S3-compatible stores
	S3AccessKey   string
	S3SecretKey   string
	S3PathStyle   bool
}

// NotificationConfig holds email notification settings
type NotificationConfig struct {
	Enabled          bool
	Provider         string // log, ses, sendgrid
	Transport        string // inprocess, amqp
	FromAddress      string
	FromName         string
	SalesInbox       string
	AdminRecipients  []string
	SendGridAPIKey   string
	SESRegion        string
	AMQPURL          string
	AMQPQueue        string
	Workers          int
	QueueSize        int
	SendTimeout      time.Duration
	BreakerTimeout   time.Duration
	BreakerThreshold uint32
}

// NumberingConfig holds document number prefixes
type NumberingConfig struct {
	InquiryPrefix string
	OrderPrefix   string
}

// ImageConfig holds image pipeline settings
type ImageConfig struct {
	MaxWidth       int
	ThumbnailWidth int
	Quality        int
}

// ReportConfig holds report settings
type ReportConfig struct {
	CacheTTL time.Duration
}

// SchedulerConfig holds background sweep settings
type SchedulerConfig struct {
	Enabled           bool
	FollowUpSchedule  string
	OverdueSchedule   string
	LowStockSchedule  string
	ReconcileSchedule string
	JobTimeout        time.Duration
}

// TracingConfig holds OpenTelemetry trace export settings
type TracingConfig struct {
	Enabled       bool
	Endpoint      string
	SamplingRatio float64
	Insecure      bool
	// TraceSQL records statements with their bound values on database spans
	TraceSQL      bool
	// ExportLogs also ships log records to the collector
	ExportLogs    bool
}

// Load loads configuration from an optional .env file, config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with BACKOFFICE_ prefix (e.g., BACKOFFICE_DATABASE_PASSWORD)
// 2. .env entries (exported into the environment, never overriding existing variables)
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
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("BACKOFFICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds, defaults and validates a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	// zero is a valid ratio, so it cannot be defaulted after reading
	v.SetDefault("tracing.sampling_ratio", 1.0)

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			Port:    v.GetString("app.port"),
			BaseURL: v.GetString("app.base_url"),
		},
		Database: DatabaseConfig{
			Driver:             v.GetString("database.driver"),
			Host:               v.GetString("database.host"),
			Port:               v.GetInt("database.port"),
			User:               v.GetString("database.user"),
			Password:           v.GetString("database.password"),
			DBName:             v.GetString("database.dbname"),
			SSLMode:            v.GetString("database.sslmode"),
			Path:               v.GetString("database.path"),
			MaxOpenConns:       v.GetInt("database.max_open_conns"),
			MaxIdleConns:       v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime:    v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime:    v.GetInt("database.conn_max_idle_time"),
			SlowQueryThreshold: v.GetDuration("database.slow_query_threshold"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:                 v.GetString("jwt.secret"),
			RefreshSecret:          v.GetString("jwt.refresh_secret"),
			AccessTokenExpiration:  v.GetDuration("jwt.access_token_expiration"),
			RefreshTokenExpiration: v.GetDuration("jwt.refresh_token_expiration"),
			Issuer:                 v.GetString("jwt.issuer"),
			MaxRefreshCount:        v.GetInt("jwt.max_refresh_count"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:             v.GetDuration("http.read_timeout"),
			WriteTimeout:            v.GetDuration("http.write_timeout"),
			IdleTimeout:             v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:          v.GetInt("http.max_header_bytes"),
			MaxBodySize:             v.GetInt64("http.max_body_size"),
			MaxUploadSize:           v.GetInt64("http.max_upload_size"),
			RateLimitEnabled:        v.GetBool("http.rate_limit_enabled"),
			RateLimitRequests:       v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:         v.GetDuration("http.rate_limit_window"),
			PublicRateLimitRequests: v.GetInt("http.public_rate_limit_requests"),
			PublicRateLimitWindow:   v.GetDuration("http.public_rate_limit_window"),
			AuthRateLimitRequests:   v.GetInt("http.auth_rate_limit_requests"),
			AuthRateLimitWindow:     v.GetDuration("http.auth_rate_limit_window"),
			CORSAllowOrigins:        v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods:        v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders:        v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:          v.GetStringSlice("http.trusted_proxies"),
		},
		Storage: StorageConfig{
			Driver:        v.GetString("storage.driver"),
			LocalDir:      v.GetString("storage.local_dir"),
			PublicBaseURL: v.GetString("storage.public_base_url"),
			S3Bucket:      v.GetString("storage.s3_bucket"),
			S3Region:      v.GetString("storage.s3_region"),
			S3Endpoint:    v.GetString("storage.s3_endpoint"),
			S3AccessKey:   v.GetString("storage.s3_access_key"),
			S3SecretKey:   v.GetString("storage.s3_secret_key"),
			S3PathStyle:   v.GetBool("storage.s3_path_style"),
		},
		Notification: NotificationConfig{
			Enabled:          v.GetBool("notification.enabled"),
			Provider:         v.GetString("notification.provider"),
			Transport:        v.GetString("notification.transport"),
			FromAddress:      v.GetString("notification.from_address"),
			FromName:         v.GetString("notification.from_name"),
			SalesInbox:       v.GetString("notification.sales_inbox"),
			AdminRecipients:  v.GetStringSlice("notification.admin_recipients"),
			SendGridAPIKey:   v.GetString("notification.sendgrid_api_key"),
			SESRegion:        v.GetString("notification.ses_region"),
			AMQPURL:          v.GetString("notification.amqp_url"),
			AMQPQueue:        v.GetString("notification.amqp_queue"),
			Workers:          v.GetInt("notification.workers"),
			QueueSize:        v.GetInt("notification.queue_size"),
			SendTimeout:      v.GetDuration("notification.send_timeout"),
			BreakerTimeout:   v.GetDuration("notification.breaker_timeout"),
			BreakerThreshold: v.GetUint32("notification.breaker_threshold"),
		},
		Numbering: NumberingConfig{
			InquiryPrefix: v.GetString("numbering.inquiry_prefix"),
			OrderPrefix:   v.GetString("numbering.order_prefix"),
		},
		Image: ImageConfig{
			MaxWidth:       v.GetInt("image.max_width"),
			ThumbnailWidth: v.GetInt("image.thumbnail_width"),
			Quality:        v.GetInt("image.quality"),
		},
		Report: ReportConfig{
			CacheTTL: v.GetDuration("report.cache_ttl"),
		},
		Scheduler: SchedulerConfig{
			Enabled:           v.GetBool("scheduler.enabled"),
			FollowUpSchedule:  v.GetString("scheduler.follow_up_schedule"),
			OverdueSchedule:   v.GetString("scheduler.overdue_schedule"),
			LowStockSchedule:  v.GetString("scheduler.low_stock_schedule"),
			ReconcileSchedule: v.GetString("scheduler.reconcile_schedule"),
			JobTimeout:        v.GetDuration("scheduler.job_timeout"),
		},
		Tracing: TracingConfig{
			Enabled:       v.GetBool("tracing.enabled"),
			Endpoint:      v.GetString("tracing.endpoint"),
			SamplingRatio: v.GetFloat64("tracing.sampling_ratio"),
			Insecure:      v.GetBool("tracing.insecure"),
			TraceSQL:      v.GetBool("tracing.trace_sql"),
			ExportLogs:    v.GetBool("tracing.export_logs"),
		},
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
		cfg.App.Name = "uniform-backoffice"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		switch cfg.Database.Driver {
		case "mysql":
			cfg.Database.Port = 3306
		default:
			cfg.Database.Port = 5432
		}
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "backoffice"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "backoffice.db"
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
	if cfg.Database.SlowQueryThreshold == 0 {
		cfg.Database.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.JWT.AccessTokenExpiration == 0 {
		cfg.JWT.AccessTokenExpiration = 15 * time.Minute
	}
	if cfg.JWT.RefreshTokenExpiration == 0 {
		cfg.JWT.RefreshTokenExpiration = 168 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "uniform-backoffice"
	}
	if cfg.JWT.MaxRefreshCount == 0 {
		cfg.JWT.MaxRefreshCount = 50
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
		cfg.HTTP.MaxHeaderBytes = 1 << 20
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 1 << 20
	}
	if cfg.HTTP.MaxUploadSize == 0 {
		cfg.HTTP.MaxUploadSize = 11 << 20
	}
	if cfg.HTTP.RateLimitRequests == 0 {
		cfg.HTTP.RateLimitRequests = 100
	}
	if cfg.HTTP.RateLimitWindow == 0 {
		cfg.HTTP.RateLimitWindow = time.Minute
	}
	if cfg.HTTP.PublicRateLimitRequests == 0 {
		cfg.HTTP.PublicRateLimitRequests = 5
	}
	if cfg.HTTP.PublicRateLimitWindow == 0 {
		cfg.HTTP.PublicRateLimitWindow = 15 * time.Minute
	}
	if cfg.HTTP.AuthRateLimitRequests == 0 {
		cfg.HTTP.AuthRateLimitRequests = 5
	}
	if cfg.HTTP.AuthRateLimitWindow == 0 {
		cfg.HTTP.AuthRateLimitWindow = time.Minute
	}
	// No default CORS origin: cross-origin calls stay blocked until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "local"
	}
	if cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "./uploads"
	}
	if cfg.Storage.PublicBaseURL == "" {
		cfg.Storage.PublicBaseURL = "/uploads"
	}
	if cfg.Notification.Provider == "" {
		cfg.Notification.Provider = "log"
	}
	if cfg.Notification.Transport == "" {
		cfg.Notification.Transport = "inprocess"
	}
	if cfg.Notification.FromAddress == "" {
		cfg.Notification.FromAddress = "no-reply@localhost"
	}
	if cfg.Notification.FromName == "" {
		cfg.Notification.FromName = "Uniform Back Office"
	}
	if cfg.Notification.AMQPQueue == "" {
		cfg.Notification.AMQPQueue = "backoffice.notifications"
	}
	if cfg.Notification.Workers == 0 {
		cfg.Notification.Workers = 2
	}
	if cfg.Notification.QueueSize == 0 {
		cfg.Notification.QueueSize = 256
	}
	if cfg.Notification.SendTimeout == 0 {
		cfg.Notification.SendTimeout = 10 * time.Second
	}
	if cfg.Notification.BreakerTimeout == 0 {
		cfg.Notification.BreakerTimeout = 60 * time.Second
	}
	if cfg.Notification.BreakerThreshold == 0 {
		cfg.Notification.BreakerThreshold = 5
	}
	if cfg.Numbering.InquiryPrefix == "" {
		cfg.Numbering.InquiryPrefix = "INQ"
	}
	if cfg.Numbering.OrderPrefix == "" {
		cfg.Numbering.OrderPrefix = "ORD"
	}
	if cfg.Image.MaxWidth == 0 {
		cfg.Image.MaxWidth = 1200
	}
	if cfg.Image.ThumbnailWidth == 0 {
		cfg.Image.ThumbnailWidth = 300
	}
	if cfg.Image.Quality == 0 {
		cfg.Image.Quality = 85
	}
	if cfg.Report.CacheTTL == 0 {
		cfg.Report.CacheTTL = 5 * time.Minute
	}
	if cfg.Scheduler.FollowUpSchedule == "" {
		cfg.Scheduler.FollowUpSchedule = "0 8 * * *"
	}
	if cfg.Scheduler.OverdueSchedule == "" {
		cfg.Scheduler.OverdueSchedule = "30 1 * * *"
	}
	if cfg.Scheduler.LowStockSchedule == "" {
		cfg.Scheduler.LowStockSchedule = "0 7 * * 1"
	}
	if cfg.Scheduler.ReconcileSchedule == "" {
		cfg.Scheduler.ReconcileSchedule = "15 2 * * *"
	}
	if cfg.Scheduler.JobTimeout == 0 {
		cfg.Scheduler.JobTimeout = 5 * time.Minute
	}
	if cfg.Tracing.Endpoint == "" {
		cfg.Tracing.Endpoint = "localhost:4317"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("database.driver must be postgres, mysql or sqlite, got %q", c.Database.Driver)
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
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("storage.s3_bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("storage.driver must be local or s3, got %q", c.Storage.Driver)
	}
	switch c.Notification.Provider {
	case "log", "ses":
	case "sendgrid":
		if c.Notification.SendGridAPIKey == "" {
			return fmt.Errorf("notification.sendgrid_api_key is required for the sendgrid provider")
		}
	default:
		return fmt.Errorf("notification.provider must be log, ses or sendgrid, got %q", c.Notification.Provider)
	}
	switch c.Notification.Transport {
	case "inprocess":
	case "amqp":
		if c.Notification.AMQPURL == "" {
			return fmt.Errorf("notification.amqp_url is required for the amqp transport")
		}
	default:
		return fmt.Errorf("notification.transport must be inprocess or amqp, got %q", c.Notification.Transport)
	}
	if c.Image.ThumbnailWidth > c.Image.MaxWidth {
		return fmt.Errorf("image.thumbnail_width (%d) cannot exceed image.max_width (%d)", c.Image.ThumbnailWidth, c.Image.MaxWidth)
	}
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return fmt.Errorf("image.quality must be between 1 and 100")
	}
	if c.Tracing.SamplingRatio < 0 || c.Tracing.SamplingRatio > 1 {
		return fmt.Errorf("tracing.sampling_ratio must be between 0 and 1")
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver != "sqlite" && c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Tracing.TraceSQL {
			return fmt.Errorf("tracing.trace_sql must be disabled in production")
		}
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}
	return nil
}

// IsProduction reports whether the app runs in production mode
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// DSN returns the driver-specific connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.DBName)
	case "sqlite":
		return d.Path
	}
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

// MigrationURL returns the database URL understood by golang-migrate
func (d *DatabaseConfig) MigrationURL() string {
	switch d.Driver {
	case "mysql":
		return "mysql://" + d.DSN()
	case "sqlite":
		return "sqlite3://" + d.Path
	}
	return d.DSN()
}
