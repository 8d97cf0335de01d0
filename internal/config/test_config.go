package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads the configuration from the .env file or environment variables for integration tests
// If the database variables are not set, returns a Config with empty database values
// which allows tests to fall back to their own DSN
func LoadTestConfig() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist - it's optional)
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()

	cfg := &Config{
		JWT: JWTConfig{
			Secret:      "test-secret-key",
			TokenExpiry: time.Hour,
		},
		Storage: StorageConfig{
			Driver:          StorageDriverLocal,
			Directory:       os.TempDir(),
			UploadMaxMemory: 10 << 20,
		},
		Product:        ProductConfig{TxTimeout: 3 * time.Second},
		MigrationsPath: "migrations",
	}

	if jwtSecret := os.Getenv("TEST_JWT_SECRET"); jwtSecret != "" {
		cfg.JWT.Secret = jwtSecret
	}
	if dir := os.Getenv("TEST_STORAGE_DIRECTORY"); dir != "" {
		cfg.Storage.Directory = dir
	}

	dbHost := os.Getenv("TEST_DB_HOST")
	if dbHost == "" {
		return cfg, nil
	}

	dbPortStr := os.Getenv("TEST_DB_PORT")
	if dbPortStr == "" {
		return cfg, nil
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid TEST_DB_PORT: %w", err)
	}

	cfg.Database = DatabaseConfig{
		Host:     dbHost,
		Port:     dbPort,
		User:     os.Getenv("TEST_DB_USER"),
		Password: os.Getenv("TEST_DB_PASSWORD"),
		DBName:   os.Getenv("TEST_DB_NAME"),
	}

	return cfg, nil
}
