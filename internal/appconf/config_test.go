package appconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReturnsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, Development, cfg.Environment())
	assert.Equal(t, DefaultSourceURL, cfg.Data.SourceURL)
	assert.Equal(t, "@every 6h", cfg.Data.RefreshCron)
	assert.Equal(t, 30*time.Second, cfg.Data.FetchTimeout)
	assert.Equal(t, "timberprices.db", cfg.Storage.SQLitePath)
	assert.Equal(t, 100, cfg.HTTP.RateLimit)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Empty(t, cfg.HTTP.AdminKeys)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "custom.yaml")
	content := `
server:
  port: 8081
  env: test
data:
  source_url: testdata/ms_stumpage.csv
  fetch_timeout: 5s
storage:
  sqlite_path: ":memory:"
http:
  admin_keys: [ops-key]
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, Test, cfg.Environment())
	assert.Equal(t, "testdata/ms_stumpage.csv", cfg.Data.SourceURL)
	assert.Equal(t, 5*time.Second, cfg.Data.FetchTimeout)
	assert.Equal(t, ":memory:", cfg.Storage.SQLitePath)
	assert.Equal(t, []string{"ops-key"}, cfg.HTTP.AdminKeys)
	assert.Equal(t, "@every 6h", cfg.Data.RefreshCron, "unset keys keep their defaults")
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestEnvironmentVariablesOverrideDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TIMBER_SERVER_PORT", "9090")
	t.Setenv("TIMBER_DATA_SOURCE_URL", "http://example.com/prices.csv")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://example.com/prices.csv", cfg.Data.SourceURL)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{Port: 4000, Env: "development"},
			Data:    DataConfig{SourceURL: DefaultSourceURL, FetchTimeout: time.Second},
			Storage: StorageConfig{SQLitePath: "timberprices.db"},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port out of range", func(c *Config) { c.Server.Port = 0 }},
		{"missing source", func(c *Config) { c.Data.SourceURL = " " }},
		{"non-positive timeout", func(c *Config) { c.Data.FetchTimeout = 0 }},
		{"missing sqlite path", func(c *Config) { c.Storage.SQLitePath = "" }},
		{"file database in test env", func(c *Config) { c.Server.Env = "test" }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvFlagToEnvironment(t *testing.T) {
	assert.Equal(t, Test, EnvFlagToEnvironment("test"))
	assert.Equal(t, Production, EnvFlagToEnvironment("Production"))
	assert.Equal(t, Production, EnvFlagToEnvironment("prod"))
	assert.Equal(t, Development, EnvFlagToEnvironment("staging"))
	assert.Equal(t, "test", Test.String())
}
