package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	apperrors "github.com/ayushthakur13/cross-platform-job-analytics/errors"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	RawInputPath       string
	CleanedOutputPath  string `validate:"required"`
	FeaturesOutputPath string `validate:"required"`
	TablesPath         string

	TopSkills   int     `validate:"gte=1"`
	Workers     int     `validate:"gte=0"`
	WinsorLower float64 `validate:"gte=0,ltfield=WinsorUpper"`
	WinsorUpper float64 `validate:"lte=1"`

	LogLevel string `validate:"oneof=debug info warn error"`
	// ReferenceTime is the RFC3339 instant relative posting dates resolve
	// against; empty means the start of the run.
	ReferenceTime string `validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string `validate:"numeric"`
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		RawInputPath:       getEnv("RAW_INPUT_PATH", "./data/raw_jobs.csv"),
		CleanedOutputPath:  getEnv("CLEANED_OUTPUT_PATH", "./output/cleaned_jobs.csv"),
		FeaturesOutputPath: getEnv("FEATURES_OUTPUT_PATH", "./output/job_features.csv"),
		TablesPath:         getEnv("TABLES_PATH", ""),

		TopSkills:   getEnvInt("TOP_SKILLS", 30),
		Workers:     getEnvInt("WORKERS", 4),
		WinsorLower: getEnvFloat("WINSOR_LOWER", 0.01),
		WinsorUpper: getEnvFloat("WINSOR_UPPER", 0.99),

		LogLevel:      strings.ToLower(getEnv("LOG_LEVEL", "info")),
		ReferenceTime: getEnv("REFERENCE_TIME", ""),

		PostgresEnabled:  getEnvBool("POSTGRES_ENABLED", false),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "jobs"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "jobs123"),
		PostgresDB:       getEnv("POSTGRES_DB", "job_analytics"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
	}
}

// Validate checks value ranges. It is called after CLI flags have been
// applied on top of the loaded values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.InvalidInput("config: invalid configuration", err)
	}
	return nil
}

// Reference returns the configured reference instant, or now when none is set.
func (c *Config) Reference(now time.Time) (time.Time, error) {
	if c.ReferenceTime == "" {
		return now, nil
	}
	t, err := time.Parse(time.RFC3339, c.ReferenceTime)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("config: REFERENCE_TIME must be RFC3339", err)
	}
	return t, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}
