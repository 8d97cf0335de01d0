// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	StorageDriverLocal = "local"
	StorageDriverMinio = "minio"
)

// Config holds all configuration for the application
type Config struct {
	Database       DatabaseConfig
	Server         ServerConfig
	Logging        LoggingConfig
	CORS           CORSConfig
	JWT            JWTConfig
	Storage        StorageConfig
	Product        ProductConfig
	MigrationsPath string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port               int
	RateLimitPerMinute int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret      string
	TokenExpiry time.Duration
}

// StorageConfig holds settings of the product image storage
type StorageConfig struct {
	Driver          string
	Directory       string
	UploadMaxMemory int64
	Minio           MinioConfig
}

// MinioConfig holds object storage connection settings, used when Storage.Driver is "minio"
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ProductConfig holds settings of the product creation flow
type ProductConfig struct {
	TxTimeout time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	cfg.Server.Port, err = intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.RateLimitPerMinute, err = intEnv("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // default level
	}
	cfg.Logging.Level = logLevel

	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	cfg.JWT.TokenExpiry, err = durationEnv("JWT_TOKEN_EXPIRY", time.Hour)
	if err != nil {
		return nil, err
	}

	// Storage configuration
	if err := loadStorage(cfg); err != nil {
		return nil, err
	}

	cfg.Product.TxTimeout, err = durationEnv("PRODUCT_TX_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}

	cfg.MigrationsPath = os.Getenv("MIGRATIONS_PATH")
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	return cfg, nil
}

func loadStorage(cfg *Config) error {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORAGE_DRIVER")))
	if driver == "" {
		driver = StorageDriverLocal
	}
	if driver != StorageDriverLocal && driver != StorageDriverMinio {
		return fmt.Errorf("invalid STORAGE_DRIVER: %s", driver)
	}
	cfg.Storage.Driver = driver

	cfg.Storage.Directory = os.Getenv("STORAGE_DIRECTORY")
	if cfg.Storage.Directory == "" {
		cfg.Storage.Directory = "./uploads"
	}

	maxMemory, err := intEnv("UPLOAD_MAX_MEMORY", 10<<20)
	if err != nil {
		return err
	}
	cfg.Storage.UploadMaxMemory = int64(maxMemory)

	if driver != StorageDriverMinio {
		return nil
	}

	cfg.Storage.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	if cfg.Storage.Minio.Endpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_DRIVER is minio")
	}
	cfg.Storage.Minio.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	cfg.Storage.Minio.SecretKey = os.Getenv("MINIO_SECRET_KEY")
	cfg.Storage.Minio.Bucket = os.Getenv("MINIO_BUCKET")
	if cfg.Storage.Minio.Bucket == "" {
		cfg.Storage.Minio.Bucket = "products"
	}
	if useSSL := os.Getenv("MINIO_USE_SSL"); useSSL != "" {
		cfg.Storage.Minio.UseSSL, err = strconv.ParseBool(useSSL)
		if err != nil {
			return fmt.Errorf("invalid MINIO_USE_SSL: %w", err)
		}
	}

	return nil
}

// parseOrigins parses comma-separated origins, allowing all when none are valid
func parseOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}

	origins := strings.Split(raw, ",")
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		return []string{"*"}
	}
	return allowed
}

func intEnv(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

// DSN returns the database connection string
//
// clientFoundRows makes UPDATE report matched rows, so an update that changes nothing
// is still distinguishable from a missing row.
func (c *Config) DSN() string {
	if c.Database.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true&multiStatements=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}
