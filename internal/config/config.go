package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string   `yaml:"port" env:"SERVER_PORT"`
		Mode         string   `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout  string   `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string   `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
		CORSOrigins  []string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Driver          string `yaml:"driver" env:"DB_DRIVER"`
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
	} `yaml:"database"`

	JWT struct {
		Secret                 string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration  string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		RefreshTokenExpiration string `yaml:"refresh_token_expiration" env:"JWT_REFRESH_TOKEN_EXPIRATION"`
		Issuer                 string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Auth struct {
		// BlacklistBackend is one of postgres, redis or memory
		BlacklistBackend string `yaml:"blacklist_backend" env:"AUTH_BLACKLIST_BACKEND"`
	} `yaml:"auth"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB"`
	} `yaml:"redis"`

	Storage struct {
		Backend     string `yaml:"backend" env:"STORAGE_BACKEND"`
		LocalPath   string `yaml:"local_path" env:"STORAGE_LOCAL_PATH"`
		BaseURL     string `yaml:"base_url" env:"STORAGE_BASE_URL"`
		S3Bucket    string `yaml:"s3_bucket" env:"STORAGE_S3_BUCKET"`
		S3Region    string `yaml:"s3_region" env:"STORAGE_S3_REGION"`
		S3Endpoint  string `yaml:"s3_endpoint" env:"STORAGE_S3_ENDPOINT"`
		S3AccessKey string `yaml:"s3_access_key" env:"STORAGE_S3_ACCESS_KEY"`
		S3SecretKey string `yaml:"s3_secret_key" env:"STORAGE_S3_SECRET_KEY"`
	} `yaml:"storage"`

	Seed struct {
		AdminUsername string `yaml:"admin_username" env:"SEED_ADMIN_USERNAME"`
		AdminEmail    string `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// A missing file is fine, defaults and env still apply
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.ReadTimeout = "10s"
	config.Server.WriteTimeout = "10s"
	config.Server.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "abroadcrm"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.AutoMigrate = true

	config.JWT.AccessTokenExpiration = "1h"
	config.JWT.RefreshTokenExpiration = "168h"
	config.JWT.Issuer = "abroadcrm"

	config.Auth.BlacklistBackend = "postgres"

	config.Redis.Addr = "localhost:6379"

	config.Storage.Backend = "local"
	config.Storage.LocalPath = "uploads"
	config.Storage.BaseURL = "http://localhost:8080/uploads"

	config.Seed.AdminUsername = "admin"
	config.Seed.AdminEmail = "admin@example.com"
	config.Seed.AdminPassword = "admin123"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return applyEnv(config, os.LookupEnv)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.JWT.RefreshTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT refresh token expiration format: %w", err)
	}

	switch config.Auth.BlacklistBackend {
	case "postgres":
		if config.Database.Driver != DriverPostgres {
			return fmt.Errorf("postgres token blacklist requires the postgres database driver")
		}
	case "redis":
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis token blacklist")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported token blacklist backend %q", config.Auth.BlacklistBackend)
	}

	switch config.Storage.Backend {
	case "local":
		if config.Storage.LocalPath == "" {
			return fmt.Errorf("storage local_path is required")
		}
	case "s3":
		if config.Storage.S3Bucket == "" {
			return fmt.Errorf("storage s3_bucket is required")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", config.Storage.Backend)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}
