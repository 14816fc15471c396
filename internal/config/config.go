package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

// Storage backends for the state layout.
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
)

type Config struct {
	App struct {
		Env string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	Store struct {
		Backend    string
		SQLitePath string
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		Debug    bool
	}

	Redis struct {
		Addr      string
		Password  string
		DB        int
		Namespace string
	}

	Auth struct {
		BcryptCost   int
		SeedPassword string
	}
}

// New reads the configuration from the environment. A .env file in the
// working directory is loaded first when present; real env vars win.
func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.Env = getEnvDefault("APP_ENV", "development")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "skillswap")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// State layout backend
	cfg.Store.Backend = strings.ToLower(getEnvDefault("STORE_BACKEND", BackendSQLite))
	cfg.Store.SQLitePath = getEnvDefault("SQLITE_PATH", "skillswap.db")

	// MySQL
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "skillswap")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}
	cfg.DB.Debug = isTruthy(os.Getenv("DB_DEBUG"))

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}
	cfg.Redis.Namespace = getEnvDefault("REDIS_NAMESPACE", "skillswap")

	// Auth
	cfg.Auth.BcryptCost = bcrypt.DefaultCost
	if costStr := os.Getenv("AUTH_BCRYPT_COST"); costStr != "" {
		if cost, err := strconv.Atoi(costStr); err == nil && cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			cfg.Auth.BcryptCost = cost
		}
	}
	cfg.Auth.SeedPassword = getEnvDefault("AUTH_SEED_PASSWORD", "password")

	return cfg
}

// Validate rejects configurations no backend can start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
	case BackendMySQL:
		if c.DB.DSN == "" {
			return fmt.Errorf("MYSQL_DSN is required for the mysql backend")
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	return nil
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
