package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
app:
  name: "hrms-test"
  timeout: 5
  timezone: "Europe/Berlin"
database:
  url: "mongodb://db:27017"
  dbname: "hrms_test"
session:
  max-daily-hours: 48
pagination:
  default-limit: 500
  max-limit: 100
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFrom_ReadsFileAndDefaults(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "hrms-test", cfg.App.Name)
	assert.Equal(t, 5, cfg.App.Timeout)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.Url)
	assert.Equal(t, "hrms_test", cfg.Database.DbName)
	assert.Equal(t, "sessions", cfg.Database.Collections.Sessions)
	assert.Equal(t, "uptimes", cfg.Database.Collections.Uptimes)
	assert.Equal(t, "local", cfg.Session.LockBackend)
	assert.Equal(t, "session.ended", cfg.Queue.RabbitMQ.RoutingKeys.SessionEnded)
}

func TestLoadFrom_NormalizesLimits(t *testing.T) {
	cfg, err := LoadFrom(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, float64(24), cfg.Session.MaxDailyHours)
	assert.Equal(t, 50, cfg.Pagination.DefaultLimit)
	assert.Equal(t, 100, cfg.Pagination.MaxLimit)
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	t.Setenv("MONGODB_URL", "mongodb://override:27017")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("JWT_KEY", "secret")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := LoadFrom(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "mongodb://override:27017", cfg.Database.Url)
	assert.Equal(t, 3, cfg.Redis.Db)
	assert.Equal(t, "secret", cfg.Security.JwtKey)
	assert.Equal(t, time.UTC, cfg.App.Location())
}

func TestLoadFrom_MissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLocation_UnknownZoneFallsBackToUTC(t *testing.T) {
	app := Application{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, app.Location())
}
