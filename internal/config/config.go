package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port         string `yaml:"port" env:"SERVER_PORT"`
		Mode         string `yaml:"mode" env:"SERVER_MODE"`
		ReadTimeout  string `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
		WriteTimeout string `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
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
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret string `yaml:"secret" env:"JWT_SECRET"`
		Issuer string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	School struct {
		DefaultWeekendDays []int  `yaml:"default_weekend_days" env:"SCHOOL_DEFAULT_WEEKEND_DAYS"`
		PeriodsPerDay      int    `yaml:"periods_per_day" env:"SCHOOL_PERIODS_PER_DAY"`
		FallbackStart      string `yaml:"fallback_start" env:"SCHOOL_FALLBACK_START"`
		FallbackEnd        string `yaml:"fallback_end" env:"SCHOOL_FALLBACK_END"`
		SeedDemo           bool   `yaml:"seed_demo" env:"SCHOOL_SEED_DEMO"`
	} `yaml:"school"`
}

// LoadConfig reads configPath (optional), then .env (optional), then the environment.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Variables already set in the environment win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := processStructFields(config); err != nil {
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
	config.Server.ReadTimeout = "15s"
	config.Server.WriteTimeout = "15s"

	config.Database.Driver = DriverPostgres
	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "schoolcore"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.Issuer = "schoolcore"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.School.DefaultWeekendDays = []int{0, 6}
	config.School.PeriodsPerDay = 5
	config.School.FallbackStart = "2024-06-01"
	config.School.FallbackEnd = "2025-04-30"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	for _, d := range []string{config.Server.ReadTimeout, config.Server.WriteTimeout} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid server timeout %q: %w", d, err)
		}
	}

	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
			return fmt.Errorf("invalid connection max lifetime: %w", err)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown database driver %q", config.Database.Driver)
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	for _, d := range config.School.DefaultWeekendDays {
		if d < 0 || d > 6 {
			return fmt.Errorf("weekend day %d is outside 0..6", d)
		}
	}
	if config.School.PeriodsPerDay < 1 {
		return fmt.Errorf("periods per day must be at least 1")
	}
	start, err := time.Parse("2006-01-02", config.School.FallbackStart)
	if err != nil {
		return fmt.Errorf("invalid fallback start: %w", err)
	}
	end, err := time.Parse("2006-01-02", config.School.FallbackEnd)
	if err != nil {
		return fmt.Errorf("invalid fallback end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("fallback end is before fallback start")
	}

	return nil
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

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
