// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<APP_ENVIRONMENT>.yaml on
// top, applies environment overrides and defaults, and validates the result.
// A missing base file is not an error: defaults plus environment suffice.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// CLASSIFIER_HTTP_API_KEY overrides classifier.http.api_key
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnv(v)
	return v
}

// AutomaticEnv only applies to keys viper already knows about, so keys that
// may be absent from the YAML are bound explicitly.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"app.environment",
		"camunda.enabled", "camunda.broker_address",
		"database.postgres.host", "database.postgres.port", "database.postgres.database",
		"database.postgres.user", "database.postgres.password",
		"database.redis.address", "database.redis.password",
		"http.address",
		"logging.level", "logging.format", "logging.output",
		"nlu.vocabulary_file",
		"classifier.backend",
		"classifier.http.url", "classifier.http.api_key",
		"classifier.genai.api_key", "classifier.genai.model",
	} {
		_ = v.BindEnv(key)
	}
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working
// directory towards the module root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars replaces ${VAR} placeholders in string values. Unset
// variables expand to the empty string so optional sections stay disabled.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			if expanded := os.ExpandEnv(strVal); expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets from their conventional variable names
// when the config left them empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Classifier.HTTP.APIKey == "" {
		if val := os.Getenv("HF_API_TOKEN"); val != "" {
			cfg.Classifier.HTTP.APIKey = val
		}
	}
	if cfg.Classifier.GenAI.APIKey == "" {
		if val := os.Getenv("GEMINI_API_KEY"); val != "" {
			cfg.Classifier.GenAI.APIKey = val
		}
	}
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shopsense-voice"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	// Camunda defaults
	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// HTTP defaults
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = ":8080"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 5000
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15000
	}
	if cfg.HTTP.ParseTimeout == 0 {
		cfg.HTTP.ParseTimeout = 10000
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 15000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// NLU defaults
	if cfg.NLU.NormalizerThreshold == 0 {
		cfg.NLU.NormalizerThreshold = 70
	}
	if cfg.NLU.MinFuzzyLength == 0 {
		cfg.NLU.MinFuzzyLength = 3
	}
	if cfg.NLU.EntityThreshold == 0 {
		cfg.NLU.EntityThreshold = 75
	}
	if cfg.NLU.MinConfidence == 0 {
		cfg.NLU.MinConfidence = 0.4
	}

	// Classifier defaults
	if cfg.Classifier.Backend == "" {
		cfg.Classifier.Backend = BackendKeyword
	}
	if cfg.Classifier.HTTP.Timeout == 0 {
		cfg.Classifier.HTTP.Timeout = 10000
	}
	if cfg.Classifier.HTTP.MaxRetries == 0 {
		cfg.Classifier.HTTP.MaxRetries = 2
	}
	if cfg.Classifier.HTTP.Backoff == 0 {
		cfg.Classifier.HTTP.Backoff = 100
	}

	// Session defaults
	if cfg.Session.MaxIdle == 0 {
		cfg.Session.MaxIdle = 30 * 60 * 1000
	}
	if cfg.Session.PruneInterval == 0 {
		cfg.Session.PruneInterval = 5 * 60 * 1000
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Camunda.Enabled && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when camunda is enabled")
	}

	if cfg.Database.Postgres.Enabled() {
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	}

	if t := cfg.NLU.NormalizerThreshold; t < 0 || t > 100 {
		return fmt.Errorf("nlu.normalizer_threshold must be within 0..100, got %d", t)
	}
	if t := cfg.NLU.EntityThreshold; t < 0 || t > 100 {
		return fmt.Errorf("nlu.entity_threshold must be within 0..100, got %d", t)
	}
	if c := cfg.NLU.MinConfidence; c < 0 || c > 1 {
		return fmt.Errorf("nlu.min_confidence must be within 0..1, got %v", c)
	}

	if cfg.Session.MaxIdle < 0 {
		return fmt.Errorf("session.max_idle must be positive, got %d", cfg.Session.MaxIdle)
	}
	if cfg.Session.PruneInterval < 0 {
		return fmt.Errorf("session.prune_interval must be positive, got %d", cfg.Session.PruneInterval)
	}

	switch cfg.Classifier.Backend {
	case BackendKeyword:
	case BackendHTTP:
		if cfg.Classifier.HTTP.URL == "" {
			return fmt.Errorf("classifier.http.url is required for the http backend")
		}
	case BackendGenAI:
		if cfg.Classifier.GenAI.APIKey == "" {
			return fmt.Errorf("classifier.genai.api_key is required for the genai backend")
		}
	default:
		return fmt.Errorf("unknown classifier.backend %q", cfg.Classifier.Backend)
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetWorkerConfig retrieves worker-specific configuration with fallback to defaults
func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

// IsWorkerEnabled checks if a specific worker is enabled
func IsWorkerEnabled(cfg *Config, workerName string) bool {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker.Enabled
	}
	return true
}
