package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	// Save original environment to restore later
	originalEnv := make(map[string]string)
	envVars := []string{
		"TABSCAN_SERVER_PORT", "TABSCAN_SERVER_READ_TIMEOUT", "TABSCAN_SERVER_WRITE_TIMEOUT",
		"TABSCAN_SECURITY_ALLOWED_ORIGINS", "TABSCAN_SECURITY_ENABLE_CORS",
		"TABSCAN_LOGGING_LEVEL", "TABSCAN_LOGGING_FORMAT", "TABSCAN_LOGGING_OUTPUT",
		"TABSCAN_PATHS_DATA_DIR", "TABSCAN_PATHS_WEB_DIR", "TABSCAN_PATHS_LOGS_DIR",
		"TABSCAN_WEBSOCKET_READ_BUFFER_SIZE", "TABSCAN_WEBSOCKET_WRITE_BUFFER_SIZE",
		"TABSCAN_SCAN_WORKERS", "TABSCAN_SCAN_PREVIEW_ROWS",
		"TABSCAN_SENTINELS_NULL_TOKENS", "TABSCAN_SENTINELS_NUMBER_SENTINELS",
		"TABSCAN_SENTINELS_CASE_INSENSITIVE",
	}

	for _, envVar := range envVars {
		originalEnv[envVar] = os.Getenv(envVar)
	}

	defer func() {
		for _, envVar := range envVars {
			if val, exists := originalEnv[envVar]; exists && val != "" {
				os.Setenv(envVar, val)
			} else {
				os.Unsetenv(envVar)
			}
		}
	}()

	clearEnv := func() {
		for _, envVar := range envVars {
			os.Unsetenv(envVar)
		}
	}

	tests := []struct {
		name        string
		setupEnv    func()
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name:     "default configuration with no env vars",
			setupEnv: clearEnv,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
				assert.Equal(t, 1048576, cfg.Server.MaxHeaderBytes)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.EnableCORS)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, 100.0, cfg.Security.RateLimit.RPS)
				assert.Equal(t, 50, cfg.Security.RateLimit.Burst)

				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "both", cfg.Logging.Output)
				assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)

				assert.Equal(t, "data", cfg.Paths.DataDir)
				assert.Equal(t, "web", cfg.Paths.WebDir)
				assert.Equal(t, "logs", cfg.Paths.LogsDir)

				assert.Equal(t, 1024, cfg.WebSocket.ReadBufferSize)
				assert.Equal(t, 30*time.Second, cfg.WebSocket.PingPeriod)

				assert.Equal(t, 4, cfg.Scan.Workers)
				assert.Equal(t, 20, cfg.Scan.PreviewRows)
				assert.Equal(t, int64(52428800), cfg.Scan.MaxUploadBytes)

				assert.Equal(t, []string{"NA", "N/A", "null", "NULL", "-", "?"}, cfg.Sentinels.NullTokens)
				assert.True(t, cfg.Sentinels.CaseInsensitive)
			},
		},
		{
			name: "custom environment variables",
			setupEnv: func() {
				clearEnv()
				os.Setenv("TABSCAN_SERVER_PORT", "9090")
				os.Setenv("TABSCAN_SERVER_READ_TIMEOUT", "30s")
				os.Setenv("TABSCAN_SECURITY_ALLOWED_ORIGINS", "http://example.com,https://example.com")
				os.Setenv("TABSCAN_SECURITY_ENABLE_CORS", "false")
				os.Setenv("TABSCAN_LOGGING_LEVEL", "debug")
				os.Setenv("TABSCAN_LOGGING_FORMAT", "text")
				os.Setenv("TABSCAN_SCAN_WORKERS", "8")
				os.Setenv("TABSCAN_SENTINELS_NULL_TOKENS", "n/d,missing")
				os.Setenv("TABSCAN_SENTINELS_NUMBER_SENTINELS", "-9999,0")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, []string{"http://example.com", "https://example.com"}, cfg.Security.AllowedOrigins)
				assert.False(t, cfg.Security.EnableCORS)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format, "validate() forces the format back to json")
				assert.Equal(t, 8, cfg.Scan.Workers)
				assert.Equal(t, []string{"n/d", "missing"}, cfg.Sentinels.NullTokens)
				assert.Equal(t, []float64{-9999, 0}, cfg.Sentinels.NumberSentinels)
			},
		},
		{
			name: "invalid port number",
			setupEnv: func() {
				clearEnv()
				os.Setenv("TABSCAN_SERVER_PORT", "99999")
			},
			wantErr: true,
		},
		{
			name: "zero workers",
			setupEnv: func() {
				clearEnv()
				os.Setenv("TABSCAN_SCAN_WORKERS", "0")
			},
			wantErr: true,
		},
		{
			name: "blank null token",
			setupEnv: func() {
				clearEnv()
				os.Setenv("TABSCAN_SENTINELS_NULL_TOKENS", "NA, ")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupEnv()

			cfg, err := Load()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config { return Default() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults pass", mutate: func(c *Config) {}},
		{name: "negative port", mutate: func(c *Config) { c.Server.Port = -1 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "zero read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }, wantErr: true},
		{name: "zero write timeout", mutate: func(c *Config) { c.Server.WriteTimeout = 0 }, wantErr: true},
		{name: "no origins", mutate: func(c *Config) { c.Security.AllowedOrigins = nil }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.Scan.Workers = 0 }, wantErr: true},
		{name: "negative preview rows", mutate: func(c *Config) { c.Scan.PreviewRows = -1 }, wantErr: true},
		{name: "empty string sentinel", mutate: func(c *Config) { c.Sentinels.StringSentinels = []string{""} }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_ValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, "logs/app.log", cfg.Logging.FilePath)
}

func TestMergeConfigs(t *testing.T) {
	fileCfg := Config{}
	fileCfg.Server.Port = 3000
	fileCfg.Server.ReadTimeout = 5 * time.Second
	fileCfg.Scan.Workers = 2
	fileCfg.Sentinels.NullTokens = []string{"missing"}

	t.Run("file fills gaps left by env", func(t *testing.T) {
		envCfg := Config{}
		merged := mergeConfigs(fileCfg, envCfg)
		assert.Equal(t, 3000, merged.Server.Port)
		assert.Equal(t, 5*time.Second, merged.Server.ReadTimeout)
		assert.Equal(t, 2, merged.Scan.Workers)
		assert.Equal(t, []string{"missing"}, merged.Sentinels.NullTokens)
	})

	t.Run("env wins when set", func(t *testing.T) {
		envCfg := Config{}
		envCfg.Server.Port = 9999
		envCfg.Scan.Workers = 16
		envCfg.Sentinels.NullTokens = []string{"void"}

		merged := mergeConfigs(fileCfg, envCfg)
		assert.Equal(t, 9999, merged.Server.Port)
		assert.Equal(t, 16, merged.Scan.Workers)
		assert.Equal(t, []string{"void"}, merged.Sentinels.NullTokens)
	})
}

func TestLoadFromFile(t *testing.T) {
	t.Run("valid yaml", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := `
server:
  port: 4242
  read_timeout: 20s
scan:
  workers: 6
sentinels:
  null_tokens: ["NA", "n/d"]
  case_insensitive: true
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		cfg, err := loadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, 4242, cfg.Server.Port)
		assert.Equal(t, 20*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 6, cfg.Scan.Workers)
		assert.Equal(t, []string{"NA", "n/d"}, cfg.Sentinels.NullTokens)
		assert.True(t, cfg.Sentinels.CaseInsensitive)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

		_, err := loadFromFile(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 50<<20, int(cfg.Scan.MaxUploadBytes))
	assert.Equal(t, 45*time.Second, cfg.Scan.FetchTimeout)
	assert.NotEmpty(t, cfg.Sentinels.NullTokens)
	assert.NoError(t, cfg.validate())
}

func TestConfig_DirGetters(t *testing.T) {
	cfg := Default()

	dataDir := cfg.GetDataDir()
	assert.True(t, filepath.IsAbs(dataDir))
	assert.Equal(t, "data", filepath.Base(dataDir))

	webDir := cfg.GetWebDir()
	assert.True(t, filepath.IsAbs(webDir))
	assert.Equal(t, "web", filepath.Base(webDir))

	logsDir := cfg.GetLogsDir()
	assert.True(t, filepath.IsAbs(logsDir))
	assert.Equal(t, "logs", filepath.Base(logsDir))
}

func TestGetSheetsSettings(t *testing.T) {
	t.Setenv("SHEETS_API_KEY", "test-key")
	t.Setenv("SHEETS_MAX_FETCH_ROWS", "500")
	t.Setenv("ENABLE_SHEETS", "false")

	settings := GetSheetsSettings()
	assert.Equal(t, "test-key", settings.APIKey)
	assert.Equal(t, 500, settings.MaxFetchRows)
	assert.False(t, settings.EnableSheets)
}

func TestGetFeatureFlag(t *testing.T) {
	assert.True(t, GetFeatureFlag("websocket"))
	assert.True(t, GetFeatureFlag("metrics"))
	assert.True(t, GetFeatureFlag("sheets"))
	assert.False(t, GetFeatureFlag("mock_data"))
	assert.False(t, GetFeatureFlag("does_not_exist"))
}
