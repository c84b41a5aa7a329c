package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
http:
  address: ":9090"
database:
  host: db
  user: routes
  password: secret
  name: routes
kafka:
  brokers: ["kafka:9092"]
  flights_topic: flights
  group_id: airroutes
search:
  max_connection_gap_minutes: 120
  max_expansions: 5000
data:
  flights_file: data/flights.csv
log:
  level: debug
`)

	cfg, err := LoadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTP.Address)
	assert.Equal(t, 2*time.Hour, cfg.Search.MaxConnectionGap())
	assert.Equal(t, 5000, cfg.Search.MaxExpansions)
	assert.Equal(t, "data/flights.csv", cfg.Data.FlightsFile)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Database.Enabled())
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "host=db port=5432 user=routes password=secret dbname=routes sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "{}\n"))

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 6*time.Hour, cfg.Search.MaxConnectionGap())
	assert.Equal(t, 5*time.Minute, cfg.Search.ResultsCacheTTL())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "airroutes", cfg.Metrics.Namespace)
	assert.Equal(t, 3, cfg.Kafka.PublishRetries)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "http: [unclosed"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "search:\n  max_connection_gap_minutes: -1\n"))
	assert.Error(t, err)
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/etc/airroutes.yaml")
	assert.Equal(t, "/etc/airroutes.yaml", PathFromEnv())

	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, PathFromEnv())
}
