package config

import (
	"os"
	"strconv"
)

// Storage backends understood by the repository layer
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// DefaultStorageKey is the key the folder collection lives under
const DefaultStorageKey = "@tapstampr/folders"

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Storage
	StorageBackend string
	StorageKey     string
	SQLitePath     string
	DatabaseURL    string
	TablePrefix    string
	MongoURI       string
	MongoDatabase  string
	// Auth (empty JWKS URL disables bearer token verification)
	AuthJWKSURL string
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:8081"),
		StorageBackend: getEnv("STORAGE_BACKEND", BackendSQLite),
		StorageKey:     getEnv("STORAGE_KEY", DefaultStorageKey),
		SQLitePath:     getEnv("SQLITE_PATH", "./data/tapstampr.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		TablePrefix:    getTablePrefix(env),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DATABASE", "tapstampr"),
		AuthJWKSURL:    getEnv("AUTH_JWKS_URL", ""),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// IsProduction reports whether destructive maintenance operations must be refused
func (c *Config) IsProduction() bool {
	return c.Environment == "prod"
}

// AuthEnabled reports whether requests must carry a verified bearer token
func (c *Config) AuthEnabled() bool {
	return c.AuthJWKSURL != ""
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
