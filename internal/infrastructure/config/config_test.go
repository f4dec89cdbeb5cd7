package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/Studio/backend/internal/domain/engine"
	"github.com/GriffinCanCode/Studio/backend/internal/infrastructure/storage"
)

var envNames = []string{
	"PORT", "HOST", "CORS_ORIGINS", "STORAGE_DRIVER", "STORAGE_PATH", "STORAGE_COMPRESS", "STORAGE_WATCH",
	"AI_BASE_URL", "AI_API_KEY", "AI_MODEL", "FLOW_CONCURRENCY", "REQUEST_MODE", "REQUEST_DELAY",
	"LIBRARY_DIR", "LOG_LEVEL", "LOG_DEV", FileEnv,
}

// clearEnv unsets variables a developer shell commonly carries
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range envNames {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.False(t, cfg.UseRemoteAI())

	ec := cfg.EngineConfig()
	assert.Equal(t, engine.PolicyAllow, ec.Policy)
	assert.Equal(t, engine.RequestOffline, ec.RequestMode)
	assert.Equal(t, 500*time.Millisecond, ec.RequestDelay)

	sc := cfg.StorageConfig()
	assert.Equal(t, storage.DriverFile, sc.Driver)
	assert.Equal(t, storage.DefaultKey, sc.Key)
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_DRIVER", "bolt")
	t.Setenv("STORAGE_COMPRESS", "true")
	t.Setenv("FLOW_CONCURRENCY", "skip")
	t.Setenv("REQUEST_DELAY", "50ms")
	t.Setenv("AI_API_KEY", "sk-test")
	t.Setenv("CORS_ORIGINS", "http://a.test,http://b.test")

	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, storage.DriverBolt, cfg.Storage.Driver)
	assert.True(t, cfg.Storage.Compress)
	assert.Equal(t, engine.PolicySkip, cfg.EngineConfig().Policy)
	assert.Equal(t, 50*time.Millisecond, cfg.Engine.RequestDelay.Std())
	assert.True(t, cfg.UseRemoteAI())
}

func TestFileOverlay(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "studio.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = "7000"

[storage]
driver = "sqlite"
path = "studio.db"
watch_debounce = "2s"

[engine]
request_mode = "live"

[library]
dir = "components"
`), 0o644))

	t.Setenv("PORT", "7100")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "7100", cfg.Server.Port, "env wins over file")
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "defaults survive")
	assert.Equal(t, storage.DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "studio.db", cfg.Storage.Path)
	assert.Equal(t, 2*time.Second, cfg.Storage.WatchDebounce.Std())
	assert.Equal(t, engine.RequestLive, cfg.EngineConfig().RequestMode)
	assert.Equal(t, "components", cfg.Library.Dir)
	assert.Equal(t, "**/*.json", cfg.Library.Pattern)
}

func TestFileEnvVariable(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "studio.toml")
	require.NoError(t, os.WriteFile(path, []byte("[logging]\nlevel = \"debug\"\n"), 0o644))
	t.Setenv(FileEnv, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "driver", env: map[string]string{"STORAGE_DRIVER": "mongo"}},
		{name: "policy", env: map[string]string{"FLOW_CONCURRENCY": "sometimes"}},
		{name: "request mode", env: map[string]string{"REQUEST_MODE": "maybe"}},
		{name: "duration", env: map[string]string{"SCRIPT_TIMEOUT": "soon"}},
		{name: "unknown file key", file: "[server]\nporty = \"1\"\n"},
		{name: "bad toml", file: "[server\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), "c.toml")
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0o644))
			}
			_, err := LoadFile(path)
			assert.Error(t, err)
		})
	}

	clearEnv(t)
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
