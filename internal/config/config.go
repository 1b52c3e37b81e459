package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	RPC       RPCConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Logging   LoggingConfig
	Client    ClientConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type RPCConfig struct {
	Port string
}

type DatabaseConfig struct {
	// Driver is "couch" or "memory".
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Enabled           bool
}

type CORSConfig struct {
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ClientConfig struct {
	// Transport is "rest" or "rpc".
	Transport        string
	APIURL           string
	RPCAddr          string
	RequestTimeout   time.Duration
	DebounceInterval time.Duration
	SessionDir       string
	IdentitySecret   string
}

func Load() (*Config, error) {
	godotenv.Load()

	requestTimeout, err := getEnvAsDuration("NOTEAPP_REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	debounce, err := getEnvAsDuration("NOTEAPP_DEBOUNCE_INTERVAL", 500*time.Millisecond)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
			Env:  getEnv("ENV", "development"),
		},
		RPC: RPCConfig{
			Port: getEnv("RPC_PORT", "9000"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "couch"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5984"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "password"),
			Name:     getEnv("DB_NAME", "noteapp"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 60),
			Enabled:           getEnvAsBool("RATE_LIMIT_ENABLED", true),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Client: ClientConfig{
			Transport:        getEnv("NOTEAPP_TRANSPORT", "rest"),
			APIURL:           getEnv("NOTEAPP_API_URL", "http://localhost:8080"),
			RPCAddr:          getEnv("NOTEAPP_RPC_ADDR", "localhost:9000"),
			RequestTimeout:   requestTimeout,
			DebounceInterval: debounce,
			SessionDir:       getEnv("NOTEAPP_SESSION_DIR", defaultSessionDir()),
			IdentitySecret:   getEnv("NOTEAPP_IDENTITY_SECRET", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "couch", "memory":
	default:
		return fmt.Errorf("invalid DB_DRIVER %q: want couch or memory", c.Database.Driver)
	}
	switch c.Client.Transport {
	case "rest", "rpc":
	default:
		return fmt.Errorf("invalid NOTEAPP_TRANSPORT %q: want rest or rpc", c.Client.Transport)
	}
	return nil
}

func defaultSessionDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".noteapp"
	}
	return filepath.Join(dir, "noteapp", "session")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}
