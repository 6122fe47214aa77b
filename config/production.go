// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Security   SecurityConfig   `json:"security"`
	JWT        JWTConfig        `json:"jwt"`
	SMS        SMSConfig        `json:"sms"`
	Paystack   PaystackConfig   `json:"paystack"`
	Email      EmailConfig      `json:"email"`
	Developer  DeveloperConfig  `json:"developer"`
	Scheduler  SchedulerConfig  `json:"scheduler"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Cache      CacheConfig      `json:"cache"`
	Deployment DeploymentConfig `json:"deployment"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryLog    bool          `json:"slow_query_log"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
}

type ServerConfig struct {
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout"`
	BodyLimit         int           `json:"body_limit"`
	EnableMetrics     bool          `json:"enable_metrics"`
	TrustedProxies    []string      `json:"trusted_proxies"`
	ProxyHeader       string        `json:"proxy_header"`
	EnableCompression bool          `json:"enable_compression"`
	CompressionLevel  int           `json:"compression_level"`
}

type SecurityConfig struct {
	// CORS
	AllowedOrigins   []string `json:"allowed_origins"`
	AllowedMethods   []string `json:"allowed_methods"`
	AllowedHeaders   []string `json:"allowed_headers"`
	AllowCredentials bool     `json:"allow_credentials"`
	CORSMaxAge       int      `json:"cors_max_age"`

	// Rate Limiting
	AuthRateLimit   int           `json:"auth_rate_limit"`   // requests per minute
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per minute
	RateLimitWindow time.Duration `json:"rate_limit_window"`

	// Password & Auth
	PasswordMinLength int `json:"password_min_length"`
	BcryptCost        int `json:"bcrypt_cost"`

	// Password reset tokens
	ResetTokenTTL time.Duration `json:"reset_token_ttl"`

	// Token required by the blog authoring endpoint
	AdminAPIToken string `json:"admin_api_token"`
}

type JWTConfig struct {
	SecretKey       string        `json:"secret_key"`
	AccessTokenTTL  time.Duration `json:"access_token_ttl"`
	RefreshTokenTTL time.Duration `json:"refresh_token_ttl"`
	Issuer          string        `json:"issuer"`
	Audience        string        `json:"audience"`
	Algorithm       string        `json:"algorithm"`
}

// SMSConfig configures the upstream SMS provider and billing behavior.
// UnitCost is in pesewas per message part. BillingPolicy is "send" to
// debit when the provider accepts a message, or "delivery" to debit per
// delivered report.
type SMSConfig struct {
	ProviderBaseURL string        `json:"provider_base_url"`
	APIKey          string        `json:"api_key"`
	SenderID        string        `json:"sender_id"`
	UnitCost        uint64        `json:"unit_cost"`
	BillingPolicy   string        `json:"billing_policy"`
	CallbackURL     string        `json:"callback_url"`
	Timeout         time.Duration `json:"timeout"`

	// Numbering plan for recipient validation
	CountryCode      string   `json:"country_code"`
	OperatorPrefixes []string `json:"operator_prefixes"`
	SubscriberLength int      `json:"subscriber_length"`
}

type PaystackConfig struct {
	BaseURL     string        `json:"base_url"`
	SecretKey   string        `json:"secret_key"`
	PublicKey   string        `json:"public_key"`
	CallbackURL string        `json:"callback_url"`
	Timeout     time.Duration `json:"timeout"`
}

type EmailConfig struct {
	BaseURL       string        `json:"base_url"`
	APIKey        string        `json:"api_key"`
	FromEmail     string        `json:"from_email"`
	FromName      string        `json:"from_name"`
	ResetURLBase  string        `json:"reset_url_base"`
	RetryAttempts int           `json:"retry_attempts"`
	Timeout       time.Duration `json:"timeout"`
}

// DeveloperConfig configures the public developer API surface.
type DeveloperConfig struct {
	Enabled           bool          `json:"enabled"`
	DefaultRateLimit  int           `json:"default_rate_limit"` // requests per minute per key
	RateLimitWindow   time.Duration `json:"rate_limit_window"`
	WebhookTimeout    time.Duration `json:"webhook_timeout"`
	WebhookMaxRetries int           `json:"webhook_max_retries"`
}

// SchedulerConfig configures background sweeps.
type SchedulerConfig struct {
	ExpirySweepEnabled  bool          `json:"expiry_sweep_enabled"`
	ExpirySweepInterval time.Duration `json:"expiry_sweep_interval"`
	MessageTTL          time.Duration `json:"message_ttl"`
}

type LoggingConfig struct {
	Level      string `json:"level"`  // debug, info, warn, error
	Format     string `json:"format"` // json, text
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`

	// Access Logs
	EnableAccessLog bool   `json:"enable_access_log"`
	AccessLogPath   string `json:"access_log_path"`
}

type MetricsConfig struct {
	Enabled        bool   `json:"enabled"`
	Path           string `json:"path"`
	CollectDB      bool   `json:"collect_db"`
	CollectGateway bool   `json:"collect_gateway"`
}

type CacheConfig struct {
	Enabled     bool          `json:"enabled"`
	RedisURL    string        `json:"redis_url"`
	RedisDB     int           `json:"redis_db"`
	RedisPrefix string        `json:"redis_prefix"`
	DefaultTTL  time.Duration `json:"default_ttl"`
}

type DeploymentConfig struct {
	Domain      string `json:"domain"`
	APIDomain   string `json:"api_domain"`
	Environment string `json:"environment"`
	Version     string `json:"version"`
	CommitHash  string `json:"commit_hash"`
	BuildTime   string `json:"build_time"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Load environment variables from .env file
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "nkwabiz"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			SlowQueryLog:    getEnvBool("DB_SLOW_QUERY_LOG", true),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", 1*time.Second),
		},
		Server: ServerConfig{
			Host:              getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:              getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:       getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:      getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:       getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout:   getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:         getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024), // 4MB
			EnableMetrics:     getEnvBool("SERVER_ENABLE_METRICS", true),
			TrustedProxies:    getEnvStringSlice("SERVER_TRUSTED_PROXIES", []string{"127.0.0.1"}),
			ProxyHeader:       getEnvString("SERVER_PROXY_HEADER", "X-Real-IP"),
			EnableCompression: getEnvBool("SERVER_ENABLE_COMPRESSION", true),
			CompressionLevel:  getEnvInt("SERVER_COMPRESSION_LEVEL", 6),
		},
		Security: SecurityConfig{
			AllowedOrigins:    getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"https://nkwabiz.com", "https://app.nkwabiz.com", "https://api.nkwabiz.com"}),
			AllowedMethods:    getEnvStringSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:    getEnvStringSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key"}),
			AllowCredentials:  getEnvBool("CORS_ALLOW_CREDENTIALS", true),
			CORSMaxAge:        getEnvInt("CORS_MAX_AGE", 86400),
			AuthRateLimit:     getEnvInt("AUTH_RATE_LIMIT", 20),
			GlobalRateLimit:   getEnvInt("GLOBAL_RATE_LIMIT", 2000),
			RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
			PasswordMinLength: getEnvInt("PASSWORD_MIN_LENGTH", 8),
			BcryptCost:        getEnvInt("BCRYPT_COST", 12),
			ResetTokenTTL:     getEnvDuration("RESET_TOKEN_TTL", 15*time.Minute),
			AdminAPIToken:     getEnvString("ADMIN_API_TOKEN", ""),
		},
		JWT: JWTConfig{
			SecretKey:       getEnvString("JWT_SECRET_KEY", ""),
			AccessTokenTTL:  getEnvDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			RefreshTokenTTL: getEnvDuration("JWT_REFRESH_TOKEN_TTL", 7*24*time.Hour),
			Issuer:          getEnvString("JWT_ISSUER", "nkwabiz"),
			Audience:        getEnvString("JWT_AUDIENCE", "nkwabiz-api"),
			Algorithm:       getEnvString("JWT_ALGORITHM", "HS256"),
		},
		SMS: SMSConfig{
			ProviderBaseURL:  getEnvString("SMS_PROVIDER_BASE_URL", "https://sms.arkesel.com"),
			APIKey:           getEnvString("SMS_API_KEY", ""),
			SenderID:         getEnvString("SMS_SENDER_ID", "Nkwabiz"),
			UnitCost:         uint64(getEnvInt("SMS_UNIT_COST", 4)),
			BillingPolicy:    getEnvString("SMS_BILLING_POLICY", "send"),
			CallbackURL:      getEnvString("SMS_CALLBACK_URL", ""),
			Timeout:          getEnvDuration("SMS_TIMEOUT", 10*time.Second),
			CountryCode:      getEnvString("SMS_COUNTRY_CODE", "233"),
			OperatorPrefixes: getEnvStringSlice("SMS_OPERATOR_PREFIXES", []string{"20", "23", "24", "25", "26", "27", "28", "50", "53", "54", "55", "56", "57", "59"}),
			SubscriberLength: getEnvInt("SMS_SUBSCRIBER_LENGTH", 7),
		},
		Paystack: PaystackConfig{
			BaseURL:     getEnvString("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			SecretKey:   getEnvString("PAYSTACK_SECRET_KEY", ""),
			PublicKey:   getEnvString("PAYSTACK_PUBLIC_KEY", ""),
			CallbackURL: getEnvString("PAYSTACK_CALLBACK_URL", ""),
			Timeout:     getEnvDuration("PAYSTACK_TIMEOUT", 15*time.Second),
		},
		Email: EmailConfig{
			BaseURL:       getEnvString("EMAIL_BASE_URL", "https://api.resend.com"),
			APIKey:        getEnvString("EMAIL_API_KEY", ""),
			FromEmail:     getEnvString("EMAIL_FROM_EMAIL", "noreply@nkwabiz.com"),
			FromName:      getEnvString("EMAIL_FROM_NAME", "Nkwabiz"),
			ResetURLBase:  getEnvString("EMAIL_RESET_URL_BASE", "https://app.nkwabiz.com/reset-password"),
			RetryAttempts: getEnvInt("EMAIL_RETRY_ATTEMPTS", 3),
			Timeout:       getEnvDuration("EMAIL_TIMEOUT", 15*time.Second),
		},
		Developer: DeveloperConfig{
			Enabled:           getEnvBool("DEVELOPER_API_ENABLED", true),
			DefaultRateLimit:  getEnvInt("DEVELOPER_DEFAULT_RATE_LIMIT", 60),
			RateLimitWindow:   getEnvDuration("DEVELOPER_RATE_LIMIT_WINDOW", 1*time.Minute),
			WebhookTimeout:    getEnvDuration("DEVELOPER_WEBHOOK_TIMEOUT", 10*time.Second),
			WebhookMaxRetries: getEnvInt("DEVELOPER_WEBHOOK_MAX_RETRIES", 3),
		},
		Scheduler: SchedulerConfig{
			ExpirySweepEnabled:  getEnvBool("SCHEDULER_EXPIRY_SWEEP_ENABLED", true),
			ExpirySweepInterval: getEnvDuration("SCHEDULER_EXPIRY_SWEEP_INTERVAL", 5*time.Minute),
			MessageTTL:          getEnvDuration("SCHEDULER_MESSAGE_TTL", 48*time.Hour),
		},
		Logging: LoggingConfig{
			Level:           getEnvString("LOG_LEVEL", "info"),
			Format:          getEnvString("LOG_FORMAT", "json"),
			Output:          getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:        getEnvString("LOG_FILE_PATH", "/var/log/nkwabiz/app.log"),
			MaxSize:         getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups:      getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:          getEnvInt("LOG_MAX_AGE", 30),
			Compress:        getEnvBool("LOG_COMPRESS", true),
			EnableAccessLog: getEnvBool("LOG_ENABLE_ACCESS", true),
			AccessLogPath:   getEnvString("LOG_ACCESS_PATH", "/var/log/nkwabiz/access.log"),
		},
		Metrics: MetricsConfig{
			Enabled:        getEnvBool("METRICS_ENABLED", true),
			Path:           getEnvString("METRICS_PATH", "/metrics"),
			CollectDB:      getEnvBool("METRICS_COLLECT_DB", true),
			CollectGateway: getEnvBool("METRICS_COLLECT_GATEWAY", true),
		},
		Cache: CacheConfig{
			Enabled:     getEnvBool("CACHE_ENABLED", true),
			RedisURL:    getEnvString("CACHE_REDIS_URL", "redis://localhost:6379"),
			RedisDB:     getEnvInt("CACHE_REDIS_DB", 0),
			RedisPrefix: getEnvString("CACHE_REDIS_PREFIX", "nkwabiz:"),
			DefaultTTL:  getEnvDuration("CACHE_DEFAULT_TTL", 1*time.Hour),
		},
		Deployment: DeploymentConfig{
			Domain:      getEnvString("DOMAIN", "nkwabiz.com"),
			APIDomain:   getEnvString("API_DOMAIN", "api.nkwabiz.com"),
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("VERSION", "1.0.0"),
			CommitHash:  getEnvString("COMMIT_HASH", "unknown"),
			BuildTime:   getEnvString("BUILD_TIME", "unknown"),
		},
	}

	// Validate the loaded configuration
	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads environment variables from .env file if it exists
func loadEnvFile() error {
	envFile := ".env"

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		// .env file doesn't exist, continue with environment variables
		return nil
	}

	file, err := os.Open(envFile)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, "=") {
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				value := strings.TrimSpace(parts[1])

				// Remove quotes if present
				if (strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
					(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`)) {
					value = value[1 : len(value)-1]
				}

				// Set environment variable if not already set
				if os.Getenv(key) == "" {
					os.Setenv(key, value)
				}
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	// Validate database configuration
	if cfg.Database.Host == "" {
		errors = append(errors, "DB_HOST is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		errors = append(errors, "DB_PORT must be between 1 and 65535")
	}
	if cfg.Database.Name == "" {
		errors = append(errors, "DB_NAME is required")
	}
	if cfg.Database.User == "" {
		errors = append(errors, "DB_USER is required")
	}
	if cfg.Database.Password == "" {
		errors = append(errors, "DB_PASSWORD is required")
	}

	// Validate JWT configuration
	if cfg.JWT.SecretKey == "" {
		errors = append(errors, "JWT_SECRET_KEY is required")
	}
	if len(cfg.JWT.SecretKey) < 32 {
		errors = append(errors, "JWT_SECRET_KEY must be at least 32 characters long")
	}
	if cfg.JWT.AccessTokenTTL <= 0 {
		errors = append(errors, "JWT_ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.JWT.RefreshTokenTTL <= 0 {
		errors = append(errors, "JWT_REFRESH_TOKEN_TTL must be positive")
	}
	if cfg.JWT.Issuer == "" {
		errors = append(errors, "JWT_ISSUER is required")
	}
	if cfg.JWT.Audience == "" {
		errors = append(errors, "JWT_AUDIENCE is required")
	}

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout <= 0 {
		errors = append(errors, "SERVER_WRITE_TIMEOUT must be positive")
	}
	if cfg.Server.IdleTimeout <= 0 {
		errors = append(errors, "SERVER_IDLE_TIMEOUT must be positive")
	}

	// Validate SMS configuration
	if cfg.SMS.ProviderBaseURL == "" {
		errors = append(errors, "SMS_PROVIDER_BASE_URL is required")
	}
	if cfg.SMS.SenderID == "" {
		errors = append(errors, "SMS_SENDER_ID is required")
	}
	if cfg.SMS.UnitCost == 0 {
		errors = append(errors, "SMS_UNIT_COST must be positive")
	}
	if cfg.SMS.BillingPolicy != "send" && cfg.SMS.BillingPolicy != "delivery" {
		errors = append(errors, "SMS_BILLING_POLICY must be one of: send, delivery")
	}
	if cfg.SMS.Timeout <= 0 {
		errors = append(errors, "SMS_TIMEOUT must be positive")
	}
	if cfg.SMS.CountryCode == "" {
		errors = append(errors, "SMS_COUNTRY_CODE is required")
	}
	if cfg.SMS.SubscriberLength <= 0 {
		errors = append(errors, "SMS_SUBSCRIBER_LENGTH must be positive")
	}

	// Validate Paystack configuration
	if cfg.Paystack.BaseURL == "" {
		errors = append(errors, "PAYSTACK_BASE_URL is required")
	}

	// Validate security configuration
	if cfg.Security.BcryptCost < 10 || cfg.Security.BcryptCost > 15 {
		errors = append(errors, "BCRYPT_COST must be between 10 and 15")
	}
	if cfg.Security.PasswordMinLength < 8 {
		errors = append(errors, "PASSWORD_MIN_LENGTH must be at least 8")
	}
	if cfg.Security.ResetTokenTTL <= 0 {
		errors = append(errors, "RESET_TOKEN_TTL must be positive")
	}

	// Validate developer API configuration
	if cfg.Developer.Enabled {
		if cfg.Developer.DefaultRateLimit <= 0 {
			errors = append(errors, "DEVELOPER_DEFAULT_RATE_LIMIT must be positive")
		}
		if cfg.Developer.RateLimitWindow <= 0 {
			errors = append(errors, "DEVELOPER_RATE_LIMIT_WINDOW must be positive")
		}
	}

	// Validate scheduler configuration
	if cfg.Scheduler.ExpirySweepEnabled {
		if cfg.Scheduler.ExpirySweepInterval <= 0 {
			errors = append(errors, "SCHEDULER_EXPIRY_SWEEP_INTERVAL must be positive")
		}
		if cfg.Scheduler.MessageTTL <= 0 {
			errors = append(errors, "SCHEDULER_MESSAGE_TTL must be positive")
		}
	}

	// Validate cache configuration
	if cfg.Cache.Enabled && cfg.Cache.RedisURL == "" {
		errors = append(errors, "CACHE_REDIS_URL is required when cache is enabled")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}

// GetDatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// IsProduction returns true when running in the production environment
func (c *ProductionConfig) IsProduction() bool {
	return c.Deployment.Environment == "production"
}
