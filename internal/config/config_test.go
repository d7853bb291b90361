package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "mediadex-bot/0.1", cfg.Crawl.UserAgent)
	require.Equal(t, 8*time.Second, cfg.RequestTimeout())
	require.Equal(t, 8*time.Second, cfg.ProviderTimeout())
	require.Zero(t, cfg.Crawl.MaxItems)
	require.Equal(t, int32(4), cfg.DB.MaxConns)
	require.True(t, cfg.Logging.Development)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
crawl:
  user_agent: custom-bot
  timeout_seconds: 3
  max_items: 500
db:
  dsn: postgres://localhost/mediadex
tmdb:
  api_key: file-key
logging:
  development: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "custom-bot", cfg.Crawl.UserAgent)
	require.Equal(t, 3*time.Second, cfg.RequestTimeout())
	require.Equal(t, 500, cfg.Crawl.MaxItems)
	require.Equal(t, "postgres://localhost/mediadex", cfg.DB.DSN)
	require.Equal(t, "file-key", cfg.TMDB.APIKey)
	require.False(t, cfg.Logging.Development)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(*Config) {}},
		{name: "zero timeout", mutate: func(c *Config) { c.Crawl.TimeoutSeconds = 0 }, wantErr: true},
		{name: "negative provider timeout", mutate: func(c *Config) { c.Crawl.ProviderTimeoutSeconds = -1 }, wantErr: true},
		{name: "negative max items", mutate: func(c *Config) { c.Crawl.MaxItems = -5 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(&cfg)
			err = cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
