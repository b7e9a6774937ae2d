package utils

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

// Settings collects the service endpoints the CLIs wire up from the
// environment. Every field has a local-development default except the
// secrets.
type Settings struct {
	ClickHouseAddr     string `envconfig:"CLICKHOUSE_ADDR" default:"localhost:9000"`
	ClickHouseDatabase string `envconfig:"CLICKHOUSE_DATABASE" default:"default"`
	ClickHouseUsername string `envconfig:"CLICKHOUSE_USERNAME" default:"default"`
	ClickHousePassword string `envconfig:"CLICKHOUSE_PASSWORD"`
	ClickHouseTable    string `envconfig:"CLICKHOUSE_TABLE" default:"minute_bars"`
	PostgresURL        string `envconfig:"POSTGRES_URL"`
	PolygonAPIKey      string `envconfig:"POLYGON_API_KEY"`
}

// LoadSettings reads a .env file when one exists, then maps the environment
// onto a Settings. A missing .env is fine in production, where the
// variables come from the runtime.
func LoadSettings() (*Settings, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded environment from .env")
	}

	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("LoadSettings: %w", err)
	}
	return &s, nil
}

// InitEnvironmentVariables loads the named env file on top of the process
// environment. An empty path falls back to .env in the working directory.
func InitEnvironmentVariables(envFile string) error {
	if envFile == "" {
		envFile = ".env"
	}

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		log.Debugf("env file %s not found, using process environment", envFile)
		return nil
	}

	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("failed to load %s file: %w", envFile, err)
	}
	return nil
}
