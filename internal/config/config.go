package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds every runtime setting of the benchmark.
type Config struct {
	AppPort  string `validate:"required"`
	AppEnv   string `validate:"oneof=development production"`
	LogLevel string `validate:"required"`

	DatabaseDriver string `validate:"oneof=sqlite postgres"`
	DatabaseDSN    string `validate:"required_if=DatabaseDriver postgres"`
	DataDir        string `validate:"required"`
	CatalogName    string `validate:"required"`

	SeedTotal     int `validate:"gt=0"`
	SeedBatchSize int `validate:"gt=0"`

	SearchDebounce time.Duration `validate:"gte=0"`
	SearchLimit    int           `validate:"gt=0"`

	RabbitMQURL string
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("CATALOG_NAME", "warehouse_database")
	v.SetDefault("SEED_TOTAL", 100000)
	v.SetDefault("SEED_BATCH_SIZE", 1000)
	v.SetDefault("SEARCH_DEBOUNCE", 300*time.Millisecond)
	v.SetDefault("SEARCH_LIMIT", 100)
	v.SetDefault("RABBITMQ_URL", "")
}

// Load reads configuration from v (defaults, environment and any bound flags)
// and validates it.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		AppPort:        v.GetString("APP_PORT"),
		AppEnv:         v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		DataDir:        v.GetString("DATA_DIR"),
		CatalogName:    v.GetString("CATALOG_NAME"),
		SeedTotal:      v.GetInt("SEED_TOTAL"),
		SeedBatchSize:  v.GetInt("SEED_BATCH_SIZE"),
		SearchDebounce: v.GetDuration("SEARCH_DEBOUNCE"),
		SearchLimit:    v.GetInt("SEARCH_LIMIT"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// CatalogPath is the sqlite file the catalog persists to.
func (c Config) CatalogPath() string {
	if c.DatabaseDriver == "sqlite" && c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	return filepath.Join(c.DataDir, c.CatalogName+".db")
}

// Development reports whether the process runs in development mode.
func (c Config) Development() bool {
	return c.AppEnv == "development"
}
