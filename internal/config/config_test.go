package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range EnvVars {
		t.Setenv(v, "")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
		errMsg  string
	}{
		{
			name:   "empty config",
			config: Config{},
		},
		{
			name: "valid config",
			config: Config{
				APIURL:       "https://en.wikipedia.org/w/api.php",
				MaxDepth:     10,
				CacheSize:    64,
				FetchTimeout: "5s",
				OutputFormat: "markdown",
			},
		},
		{
			name:    "invalid URL scheme",
			config:  Config{APIURL: "ftp://example.org/api.php"},
			wantErr: true,
			errMsg:  "api_url must use http or https",
		},
		{
			name:    "URL without host",
			config:  Config{APIURL: "https:///api.php"},
			wantErr: true,
			errMsg:  "api_url must include a host",
		},
		{
			name:    "negative depth",
			config:  Config{MaxDepth: -1},
			wantErr: true,
			errMsg:  "max_depth must not be negative",
		},
		{
			name:    "negative cache size",
			config:  Config{CacheSize: -5},
			wantErr: true,
			errMsg:  "cache_size must not be negative",
		},
		{
			name:    "unparseable timeout",
			config:  Config{FetchTimeout: "soon"},
			wantErr: true,
			errMsg:  "fetch_timeout is invalid",
		},
		{
			name:    "zero timeout",
			config:  Config{FetchTimeout: "0s"},
			wantErr: true,
			errMsg:  "fetch_timeout must be positive",
		},
		{
			name:    "unknown output format",
			config:  Config{OutputFormat: "pdf"},
			wantErr: true,
			errMsg:  "output_format must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg := Config{MaxDepth: 7}
	cfg.ApplyDefaults()

	assert.Equal(t, 7, cfg.MaxDepth)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
	assert.Equal(t, DefaultFetchTimeout, cfg.FetchTimeout)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, DefaultOutputFormat, cfg.OutputFormat)
	assert.Equal(t, filepath.Join("/data", "parsoid", "templates.db"), cfg.TemplateDB)
}

func TestConfig_Timeout(t *testing.T) {
	assert.Equal(t, 3*time.Second, (&Config{FetchTimeout: "3s"}).Timeout())
	assert.Equal(t, 10*time.Second, (&Config{}).Timeout())
	assert.Equal(t, 10*time.Second, (&Config{FetchTimeout: "bogus"}).Timeout())
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Run("loads all env vars", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PARSOID_API_URL", "https://env.example.org/w/api.php")
		t.Setenv("PARSOID_USER_AGENT", "env-agent")
		t.Setenv("PARSOID_TEMPLATE_DB", "/tmp/env.db")
		t.Setenv("PARSOID_MAX_DEPTH", "12")
		t.Setenv("PARSOID_CACHE_SIZE", "99")
		t.Setenv("PARSOID_FETCH_TIMEOUT", "2s")
		t.Setenv("PARSOID_OUTPUT_FORMAT", "json")

		cfg := &Config{}
		cfg.LoadFromEnv()

		assert.Equal(t, Config{
			APIURL:       "https://env.example.org/w/api.php",
			UserAgent:    "env-agent",
			TemplateDB:   "/tmp/env.db",
			MaxDepth:     12,
			CacheSize:    99,
			FetchTimeout: "2s",
			OutputFormat: "json",
		}, *cfg)
	})

	t.Run("env vars override existing values", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PARSOID_API_URL", "https://override.example.org/w/api.php")

		cfg := &Config{
			APIURL:    "https://original.example.org/w/api.php",
			UserAgent: "original-agent",
		}
		cfg.LoadFromEnv()

		assert.Equal(t, "https://override.example.org/w/api.php", cfg.APIURL)
		// Empty env var doesn't override
		assert.Equal(t, "original-agent", cfg.UserAgent)
	})

	t.Run("unparseable numbers are ignored", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PARSOID_MAX_DEPTH", "deep")

		cfg := &Config{MaxDepth: 5}
		cfg.LoadFromEnv()
		assert.Equal(t, 5, cfg.MaxDepth)
	})
}

func TestDefaultConfigPath(t *testing.T) {
	t.Run("XDG config home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		assert.Equal(t, filepath.Join("/xdg", "parsoid", "config.yml"), DefaultConfigPath())
	})

	t.Run("home directory", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, err := os.UserHomeDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "parsoid", "config.yml"), DefaultConfigPath())
	})
}

func TestConfig_Save_and_Load(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yml")

	original := Config{
		APIURL:       "https://test.example.org/w/api.php",
		TemplateDB:   "/tmp/templates.db",
		MaxDepth:     20,
		OutputFormat: "json",
	}
	require.NoError(t, original.Save(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, original, *loaded)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yml")
	require.Error(t, err)
}

func TestLoadWithEnv(t *testing.T) {
	t.Run("missing file gives env-only config", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("PARSOID_MAX_DEPTH", "3")

		cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "none.yml"))
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.MaxDepth)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		clearEnv(t)
		path := filepath.Join(t.TempDir(), "config.yml")
		require.NoError(t, os.WriteFile(path, []byte("max_depth: [oops"), 0600))

		_, err := LoadWithEnv(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})
}
