package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanpama/swgraph/internal/config"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		configYAML string
		envVars    map[string]string
		wantErr    bool
		validate   func(*testing.T, *config.Config)
	}{
		{
			name:       "defaults",
			configYAML: "{}\n",
			validate: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, ":8080", cfg.Server.Addr)
				assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
				assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
				assert.Equal(t, config.BackendMemory, cfg.Repository.Backend)
				assert.False(t, cfg.Cache.Enabled)
				assert.Equal(t, "/metrics", cfg.Metrics.Path)
				assert.Equal(t, 16, cfg.Concurrency)
				assert.Empty(t, cfg.Tracing.Endpoint)
			},
		},
		{
			name: "file values",
			configYAML: `
server:
  addr: 127.0.0.1:9090
  timeout: 5s
  cors_origins:
    - https://example.com
repository:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
cache:
  enabled: true
  ttl: 30s
logging:
  level: debug
`,
			validate: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
				assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
				assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSOrigins)
				assert.Equal(t, config.BackendRedis, cfg.Repository.Backend)
				assert.Equal(t, "redis:6379", cfg.Repository.Redis.Addr)
				assert.Equal(t, 2, cfg.Repository.Redis.DB)
				assert.True(t, cfg.Cache.Enabled)
				assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name:       "environment overrides file",
			configYAML: "server:\n  addr: :9000\n",
			envVars: map[string]string{
				"SWGRAPH_SERVER_ADDR":   ":7000",
				"SWGRAPH_LOGGING_LEVEL": "warn",
			},
			validate: func(t *testing.T, cfg *config.Config) {
				t.Helper()
				assert.Equal(t, ":7000", cfg.Server.Addr)
				assert.Equal(t, "warn", cfg.Logging.Level)
			},
		},
		{
			name:       "unknown backend",
			configYAML: "repository:\n  backend: postgres\n",
			wantErr:    true,
		},
		{
			name:       "sample ratio out of range",
			configYAML: "tracing:\n  sample_ratio: 2\n",
			wantErr:    true,
		},
		{
			name:       "malformed yaml",
			configYAML: "server: [\n",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg, err := config.Load(writeConfig(t, tt.configYAML))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validate(t, cfg)
		})
	}
}

func TestLoad_MissingDefaultFileIsOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Repository.Backend)
}
