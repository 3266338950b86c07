package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Payment  PaymentConfig
	Call     CallConfig
	Upload   UploadConfig
	CORS     CORSConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type AdminConfig struct {
	Username     string
	PasswordHash string
	// Plaintext fallback for local development when no hash is configured.
	Password           string
	LoginRatePerMinute int
}

type PaymentConfig struct {
	CheckoutBaseURL string
	RatePerMinute   float64
	GrantTTL        time.Duration
}

type CallConfig struct {
	ConnectDelay     time.Duration
	WarningThreshold time.Duration
	TickInterval     time.Duration
}

type UploadConfig struct {
	MaxBytes     int64
	ProbeTimeout time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		redisDB = 0
	}

	jwtExpiry, err := strconv.Atoi(getEnv("JWT_EXPIRY_HOURS", "24"))
	if err != nil {
		jwtExpiry = 24
	}

	loginRate, err := strconv.Atoi(getEnv("ADMIN_LOGIN_RATE_PER_MINUTE", "10"))
	if err != nil {
		loginRate = 10
	}

	ratePerMinute, err := strconv.ParseFloat(getEnv("PAYMENT_RATE_PER_MINUTE", "0.50"), 64)
	if err != nil {
		ratePerMinute = 0.50
	}

	maxUpload, err := strconv.ParseInt(getEnv("UPLOAD_MAX_BYTES", "524288000"), 10, 64)
	if err != nil {
		maxUpload = 500 * 1024 * 1024
	}

	origins := strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ",")

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "callstream"),
			Password: getEnv("DB_PASSWORD", "callstream_password"),
			DBName:   getEnv("DB_NAME", "callstream_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "change-this-secret-key"),
			ExpiryHours: jwtExpiry,
		},
		Admin: AdminConfig{
			Username:           getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash:       getEnv("ADMIN_PASSWORD_HASH", ""),
			Password:           getEnv("ADMIN_PASSWORD", ""),
			LoginRatePerMinute: loginRate,
		},
		Payment: PaymentConfig{
			CheckoutBaseURL: getEnv("PAYMENT_CHECKOUT_URL", "https://checkout.example.com/pay"),
			RatePerMinute:   ratePerMinute,
			GrantTTL:        getDuration("PAYMENT_GRANT_TTL", 15*time.Minute),
		},
		Call: CallConfig{
			ConnectDelay:     getDuration("CALL_CONNECT_DELAY", 3*time.Second),
			WarningThreshold: getDuration("CALL_WARNING_THRESHOLD", 10*time.Second),
			TickInterval:     getDuration("CALL_TICK_INTERVAL", time.Second),
		},
		Upload: UploadConfig{
			MaxBytes:     maxUpload,
			ProbeTimeout: getDuration("UPLOAD_PROBE_TIMEOUT", 10*time.Second),
		},
		CORS: CORSConfig{
			AllowedOrigins: origins,
		},
	}

	// Validate required fields
	if cfg.JWT.Secret == "change-this-secret-key" && cfg.Server.Env == "production" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}
	if cfg.Admin.PasswordHash == "" && cfg.Admin.Password == "" {
		if cfg.Server.Env == "production" {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH must be set in production")
		}
		cfg.Admin.Password = "admin"
	}

	return cfg, nil
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
