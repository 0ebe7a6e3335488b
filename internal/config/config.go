// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret = "your-secret-key-change-in-production"
	defaultIPNSecret = "change-me-ipn-secret"
)

type Config struct {
	Environment   string
	LogLevel      string
	SeedData      bool
	AdminEmail    string
	AdminPassword string
	Server        ServerConfig
	Database      DatabaseConfig
	JWT           JWTConfig
	AWS           AWSConfig
	Payment       PaymentConfig
	Email         EmailConfig
	Kafka         KafkaConfig
	Elasticsearch ElasticsearchConfig
	Frontend      FrontendConfig
}

type FrontendConfig struct {
	BaseURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Driver       string // "sqlite" or "postgres"
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	DownloadURLTTL  int // in minutes
}

type PaymentConfig struct {
	NOWPaymentsAPIKey  string
	NOWPaymentsBaseURL string
	IPNSecret          string
	CallbackBaseURL    string
	PriceCurrency      string
	DefaultCurrency    string
	RequestTimeout     int // in seconds
	MaxRedirects       int
	CallbackWorkers    int
	CallbackQueueSize  int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

type ElasticsearchConfig struct {
	URL          string
	Username     string
	Password     string
	ProductIndex string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment:   getEnv("ENVIRONMENT", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		SeedData:      getEnvAsBool("SEED_DATA", true),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@toolhatch.shop"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		Server: ServerConfig{
			Port:         getEnv("PORT", "3000"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "sqlite"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "toolhatch"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", ":memory:"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "toolhatch-downloads"),
			DownloadURLTTL:  getEnvAsInt("AWS_DOWNLOAD_URL_TTL", 15),
		},
		Payment: PaymentConfig{
			NOWPaymentsAPIKey:  getEnv("NOWPAYMENTS_API_KEY", ""),
			NOWPaymentsBaseURL: getEnv("NOWPAYMENTS_API_URL", "https://api.nowpayments.io/v1"),
			IPNSecret:          getEnv("NOWPAYMENTS_IPN_SECRET", defaultIPNSecret),
			CallbackBaseURL:    getEnv("CALLBACK_BASE_URL", "http://localhost:3000"),
			PriceCurrency:      getEnv("PAYMENT_PRICE_CURRENCY", "usd"),
			DefaultCurrency:    getEnv("PAYMENT_DEFAULT_CURRENCY", "btc"),
			RequestTimeout:     getEnvAsInt("NOWPAYMENTS_TIMEOUT", 10),
			MaxRedirects:       getEnvAsInt("NOWPAYMENTS_MAX_REDIRECTS", 2),
			CallbackWorkers:    getEnvAsInt("PAYMENT_CALLBACK_WORKERS", 2),
			CallbackQueueSize:  getEnvAsInt("PAYMENT_CALLBACK_QUEUE_SIZE", 100),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@toolhatch.shop"),
			FromName:     getEnv("FROM_NAME", "ToolHatch"),
		},
		Kafka: KafkaConfig{
			Brokers:    getEnvAsList("KAFKA_BROKERS"),
			OrderTopic: getEnv("KAFKA_ORDER_TOPIC", "orders"),
		},
		Elasticsearch: ElasticsearchConfig{
			URL:          getEnv("ES_URL", ""),
			Username:     getEnv("ES_USER", ""),
			Password:     getEnv("ES_PASSWORD", ""),
			ProductIndex: getEnv("ES_PRODUCT_INDEX", "products"),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Environment != "production" {
		return nil
	}

	if c.JWT.SecretKey == defaultJWTSecret {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Payment.IPNSecret == defaultIPNSecret {
		return fmt.Errorf("NOWPayments IPN secret must be set in production")
	}

	if c.Payment.NOWPaymentsAPIKey == "" {
		return fmt.Errorf("NOWPayments API key is required in production")
	}

	if c.Database.Driver == "postgres" && c.Database.Password == "" {
		return fmt.Errorf("database password is required in production")
	}

	return nil
}

// CallbackURL is the IPN endpoint handed to the gateway with every payment.
func (p PaymentConfig) CallbackURL() string {
	base := p.CallbackBaseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return strings.TrimSuffix(base, "/") + "/api/payment-callback"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
