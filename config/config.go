// Package config loads service settings from defaults, an optional YAML
// file, the environment (including a .env file) and command-line flags, in
// that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds all service settings.
type Config struct {
	HTTPPort        int           `yaml:"http_port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`

	DBDriver    string `yaml:"db_driver"`
	DBPath      string `yaml:"db_path"`
	DatabaseURL string `yaml:"database_url"`
	DBDebug     bool   `yaml:"db_debug"`

	RedisAddr string        `yaml:"redis_addr"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`

	JWTSecretKey   string        `yaml:"jwt_secret_key"`
	JWTIssuer      string        `yaml:"jwt_issuer"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
	AdminEmail     string        `yaml:"admin_email"`
	AdminPassword  string        `yaml:"admin_password"`

	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
	RateLimitMax      int           `yaml:"rate_limit_max"`
	RateLimitWindow   time.Duration `yaml:"rate_limit_window"`

	StorageDir    string `yaml:"storage_dir"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTPPort:          3000,
		ShutdownTimeout:   30 * time.Second,
		LogLevel:          "info",
		DBDriver:          "sqlite",
		DBPath:            "task_approval.db",
		CacheTTL:          5 * time.Minute,
		JWTSecretKey:      "your-secret-key-change-in-production",
		JWTIssuer:         "task-approval",
		AccessTokenTTL:    15 * time.Minute,
		ReconcileInterval: 5 * time.Minute,
		RateLimitMax:      120,
		RateLimitWindow:   time.Minute,
		StorageDir:        "/tmp/task-approval",
		MaxUploadSize:     10 * 1024 * 1024,
	}
}

// Load builds the configuration for args (without the program name).
func Load(args []string) (Config, error) {
	cfg := Default()

	flags := pflag.NewFlagSet("task-approval", pflag.ContinueOnError)
	configFile := flags.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	envFile := flags.String("env-file", ".env", "path to a .env file")
	port := flags.Int("port", 0, "HTTP port")
	dbDriver := flags.String("db-driver", "", "database driver (sqlite or postgres)")
	dbPath := flags.String("db-path", "", "SQLite database path")
	redisAddr := flags.String("redis-addr", "", "Redis address (host:port); empty disables Redis")
	reconcile := flags.Duration("reconcile-interval", 0, "counter reconciliation interval")
	if err := flags.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}

	if *configFile != "" {
		if err := cfg.loadFile(*configFile); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("[config] Warning: failed to load %s: %v", *envFile, err)
	}
	cfg.applyEnv()

	if flags.Changed("port") {
		cfg.HTTPPort = *port
	}
	if flags.Changed("db-driver") {
		cfg.DBDriver = *dbDriver
	}
	if flags.Changed("db-path") {
		cfg.DBPath = *dbPath
	}
	if flags.Changed("redis-addr") {
		cfg.RedisAddr = *redisAddr
	}
	if flags.Changed("reconcile-interval") {
		cfg.ReconcileInterval = *reconcile
	}

	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPPort = getEnvInt("HTTP_PORT", c.HTTPPort)
	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DBDebug = getEnvBool("DB_DEBUG", c.DBDebug)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.JWTSecretKey = getEnv("JWT_SECRET_KEY", c.JWTSecretKey)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.AccessTokenTTL = getEnvDuration("ACCESS_TOKEN_TTL", c.AccessTokenTTL)
	c.AdminEmail = getEnv("ADMIN_EMAIL", c.AdminEmail)
	c.AdminPassword = getEnv("ADMIN_PASSWORD", c.AdminPassword)
	c.ReconcileInterval = getEnvDuration("RECONCILE_INTERVAL", c.ReconcileInterval)
	c.RateLimitMax = getEnvInt("RATE_LIMIT_MAX", c.RateLimitMax)
	c.RateLimitWindow = getEnvDuration("RATE_LIMIT_WINDOW", c.RateLimitWindow)
	c.StorageDir = getEnv("STORAGE_DIR", c.StorageDir)
	c.MaxUploadSize = getEnvInt64("MAX_UPLOAD_SIZE", c.MaxUploadSize)
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port %d", c.HTTPPort)
	}
	switch c.DBDriver {
	case "sqlite":
		if c.DBPath == "" {
			return errors.New("DB_PATH is required for the sqlite driver")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.ReconcileInterval <= 0 {
		return fmt.Errorf("reconcile interval must be positive, got %s", c.ReconcileInterval)
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive, got %d", c.MaxUploadSize)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("[config] Warning: invalid %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
		log.Printf("[config] Warning: invalid %s=%q, using %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("[config] Warning: invalid %s=%q, using %t", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("[config] Warning: invalid %s=%q, using %s", key, value, defaultValue)
	}
	return defaultValue
}
