package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// managedEnvVars lists every variable a test may set, so each test starts clean.
var managedEnvVars = []string{
	"GEMINI_API_KEY",
	"SKINCARE_CONFIG_FILE",
	"SKINCARE_LLM_GEMINI_API_KEY",
	"SKINCARE_SERVER_PORT",
	"SKINCARE_SERVER_LOG_LEVEL",
	"SKINCARE_CLASSIFIER_BACKEND",
	"SKINCARE_CLASSIFIER_ENDPOINT",
	"SKINCARE_CLASSIFIER_LABELS",
	"SKINCARE_TASK_WORKER_COUNT",
	"SKINCARE_TASK_JOB_TIMEOUT",
	"SKINCARE_STORE_DRIVER",
	"SKINCARE_STORE_DATABASE_URL",
	"SKINCARE_AUTH_JWT_SECRET",
}

// setupEnv clears the managed variables and sets the given ones for the test.
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	for _, name := range managedEnvVars {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	for name, value := range envVars {
		t.Setenv(name, value)
	}
	// Keep a stray config.yaml in the package directory from leaking in.
	t.Chdir(t.TempDir())
}

// TestLoadDefaults verifies that Load applies defaults when only the API key is set.
func TestLoadDefaults(t *testing.T) {
	setupEnv(t, map[string]string{
		"SKINCARE_LLM_GEMINI_API_KEY": "test-api-key",
	})

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg)
	assert.Equal(t, 8000, cfg.Server.Port, "Default server port should be 8000")
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.ModelName)
	assert.Equal(t, "gemini", cfg.Classifier.Backend)
	assert.Equal(t, DefaultLabels, cfg.Classifier.Labels)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, 4, cfg.Task.WorkerCount)
	assert.Equal(t, 100, cfg.Task.QueueSize)
	assert.Zero(t, cfg.Task.TTL, "records are kept forever unless a TTL is configured")
	assert.False(t, cfg.Auth.Enabled())
}

// TestLoadFromEnv verifies that Load reads values from prefixed environment variables.
func TestLoadFromEnv(t *testing.T) {
	setupEnv(t, map[string]string{
		"SKINCARE_SERVER_PORT":         "9090",
		"SKINCARE_SERVER_LOG_LEVEL":    "debug",
		"SKINCARE_LLM_GEMINI_API_KEY":  "test-api-key",
		"SKINCARE_CLASSIFIER_BACKEND":  "http",
		"SKINCARE_CLASSIFIER_ENDPOINT": "http://localhost:5000/predict",
		"SKINCARE_TASK_WORKER_COUNT":   "8",
		"SKINCARE_TASK_JOB_TIMEOUT":    "45s",
		"SKINCARE_AUTH_JWT_SECRET":     "thisisasecretkeythatis32charslong!!",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "test-api-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, "http", cfg.Classifier.Backend)
	assert.Equal(t, "http://localhost:5000/predict", cfg.Classifier.Endpoint)
	assert.Equal(t, 8, cfg.Task.WorkerCount)
	assert.Equal(t, 45*time.Second, cfg.Task.JobTimeout)
	assert.True(t, cfg.Auth.Enabled())
}

// TestLoadBareGeminiKey verifies the unprefixed GEMINI_API_KEY variable is honoured.
func TestLoadBareGeminiKey(t *testing.T) {
	setupEnv(t, map[string]string{
		"GEMINI_API_KEY": "bare-key",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "bare-key", cfg.LLM.GeminiAPIKey)
}

// TestLoadFromFile verifies values from a YAML file are used and env overrides them.
func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skincare.yaml")
	content := `
server:
  port: 7000
llm:
  gemini_api_key: file-key
task:
  queue_size: 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	setupEnv(t, map[string]string{
		"SKINCARE_CONFIG_FILE": path,
		"SKINCARE_SERVER_PORT": "7100",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Server.Port, "environment should win over the file")
	assert.Equal(t, "file-key", cfg.LLM.GeminiAPIKey)
	assert.Equal(t, 5, cfg.Task.QueueSize)
}

// TestLoadValidationErrors verifies that Load rejects invalid configuration.
func TestLoadValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		envVars map[string]string
	}{
		{
			name:    "missing api key",
			envVars: map[string]string{},
		},
		{
			name: "invalid port number",
			envVars: map[string]string{
				"SKINCARE_LLM_GEMINI_API_KEY": "test-api-key",
				"SKINCARE_SERVER_PORT":        "999999",
			},
		},
		{
			name: "invalid log level",
			envVars: map[string]string{
				"SKINCARE_LLM_GEMINI_API_KEY": "test-api-key",
				"SKINCARE_SERVER_LOG_LEVEL":   "loud",
			},
		},
		{
			name: "http classifier without endpoint",
			envVars: map[string]string{
				"SKINCARE_LLM_GEMINI_API_KEY": "test-api-key",
				"SKINCARE_CLASSIFIER_BACKEND": "http",
			},
		},
		{
			name: "postgres store without url",
			envVars: map[string]string{
				"SKINCARE_LLM_GEMINI_API_KEY": "test-api-key",
				"SKINCARE_STORE_DRIVER":       "postgres",
			},
		},
		{
			name: "unknown store driver",
			envVars: map[string]string{
				"SKINCARE_LLM_GEMINI_API_KEY": "test-api-key",
				"SKINCARE_STORE_DRIVER":       "cassandra",
			},
		},
		{
			name: "short jwt secret",
			envVars: map[string]string{
				"SKINCARE_LLM_GEMINI_API_KEY": "test-api-key",
				"SKINCARE_AUTH_JWT_SECRET":    "tooshort",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setupEnv(t, tc.envVars)

			cfg, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), "validation failed")
			assert.Nil(t, cfg, "Config should be nil when an error occurs")
		})
	}
}

func TestLoadAuthWithoutModelKey(t *testing.T) {
	setupEnv(t, map[string]string{
		"SKINCARE_AUTH_JWT_SECRET": "0123456789abcdef0123456789abcdef",
	})

	_, err := Load()
	require.Error(t, err)

	auth, err := LoadAuth()
	require.NoError(t, err)
	assert.True(t, auth.Enabled())

	t.Setenv("SKINCARE_AUTH_JWT_SECRET", "short")
	_, err = LoadAuth()
	assert.Error(t, err)
}

func TestLoadStoreWithoutModelKey(t *testing.T) {
	setupEnv(t, map[string]string{
		"SKINCARE_STORE_DRIVER":       "postgres",
		"SKINCARE_STORE_DATABASE_URL": "postgres://localhost/skincare",
	})

	store, err := LoadStore()
	require.NoError(t, err)
	assert.Equal(t, "postgres", store.Driver)
	assert.Equal(t, "postgres://localhost/skincare", store.DatabaseURL)

	t.Setenv("SKINCARE_STORE_DATABASE_URL", "")
	_, err = LoadStore()
	assert.Error(t, err)
}
