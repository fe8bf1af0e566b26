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

// ==========================
// Loading
// ==========================

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "app:\n  name: voice\n"))
	require.NoError(t, err)

	assert.Equal(t, "voice", cfg.App.Name)
	assert.Equal(t, BackendKeyword, cfg.Classifier.Backend)
	assert.Equal(t, 70, cfg.NLU.NormalizerThreshold)
	assert.Equal(t, 3, cfg.NLU.MinFuzzyLength)
	assert.Equal(t, 75, cfg.NLU.EntityThreshold)
	assert.Equal(t, 0.4, cfg.NLU.MinConfidence)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.False(t, cfg.Database.Postgres.Enabled())
	assert.False(t, cfg.Database.Redis.Enabled())
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "localhost:6379")
	t.Setenv("TEST_HF_TOKEN", "hf_secret")

	cfg, err := LoadFromFile(writeConfig(t, `
database:
  redis:
    address: ${TEST_REDIS_ADDR}
classifier:
  backend: http
  http:
    url: http://localhost:9000/zero-shot
    api_key: ${TEST_HF_TOKEN}
`))
	require.NoError(t, err)

	assert.Equal(t, "localhost:6379", cfg.Database.Redis.Address)
	assert.True(t, cfg.Database.Redis.Enabled())
	assert.Equal(t, "hf_secret", cfg.Classifier.HTTP.APIKey)
	assert.Equal(t, 2, cfg.Classifier.HTTP.MaxRetries)
}

func TestLoadFromFile_EnvOverridesKeys(t *testing.T) {
	t.Setenv("CLASSIFIER_BACKEND", "genai")
	t.Setenv("GEMINI_API_KEY", "gm-key")

	cfg, err := LoadFromFile(writeConfig(t, "classifier:\n  backend: keyword\n"))
	require.NoError(t, err)

	assert.Equal(t, BackendGenAI, cfg.Classifier.Backend)
	assert.Equal(t, "gm-key", cfg.Classifier.GenAI.APIKey)
}

func TestLoadFromFile_WorkerDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, `
workers:
  parse-voice-command:
    enabled: true
`))
	require.NoError(t, err)

	w := GetWorkerConfig(cfg, "parse-voice-command")
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)

	assert.True(t, IsWorkerEnabled(cfg, "unknown-worker"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "unknown-worker").MaxJobsActive)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// ==========================
// Validation
// ==========================

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"camunda needs broker", "camunda:\n  enabled: true\n", "camunda.broker_address"},
		{"postgres needs database", "database:\n  postgres:\n    host: db\n    user: u\n", "database.postgres.database"},
		{"postgres needs user", "database:\n  postgres:\n    host: db\n    database: shop\n", "database.postgres.user"},
		{"normalizer threshold range", "nlu:\n  normalizer_threshold: 150\n", "nlu.normalizer_threshold"},
		{"entity threshold range", "nlu:\n  entity_threshold: -1\n", "nlu.entity_threshold"},
		{"confidence range", "nlu:\n  min_confidence: 1.5\n", "nlu.min_confidence"},
		{"negative prune interval", "session:\n  prune_interval: -1\n", "session.prune_interval"},
		{"negative max idle", "session:\n  max_idle: -5\n", "session.max_idle"},
		{"http needs url", "classifier:\n  backend: http\n", "classifier.http.url"},
		{"genai needs key", "classifier:\n  backend: genai\n", "classifier.genai.api_key"},
		{"unknown backend", "classifier:\n  backend: onnx\n", "unknown classifier.backend"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "shop", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=shop sslmode=disable", p.GetDSN())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
}

func TestLoadFromFile_UnsetPlaceholdersDisableSections(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, `
database:
  postgres:
    host: ${SHOPSENSE_TEST_UNSET_HOST}
  redis:
    address: ${SHOPSENSE_TEST_UNSET_REDIS}
`))
	require.NoError(t, err)
	assert.False(t, cfg.Database.Postgres.Enabled())
	assert.False(t, cfg.Database.Redis.Enabled())
}
