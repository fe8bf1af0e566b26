// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Database   DatabaseConfig          `mapstructure:"database"`
	HTTP       HTTPConfig              `mapstructure:"http"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	NLU        NLUConfig               `mapstructure:"nlu"`
	Classifier ClassifierConfig        `mapstructure:"classifier"`
	Session    SessionConfig           `mapstructure:"session"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig is optional: without a host the product catalog must be
// supplied by every caller.
type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

func (p PostgresConfig) Enabled() bool { return p.Host != "" }

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig is optional: without an address classifier results are not cached.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

func (r RedisConfig) Enabled() bool { return r.Address != "" }

type HTTPConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ParseTimeout    int    `mapstructure:"parse_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// NLUConfig holds the engine thresholds.
type NLUConfig struct {
	NormalizerThreshold int     `mapstructure:"normalizer_threshold"`
	MinFuzzyLength      int     `mapstructure:"min_fuzzy_length"`
	EntityThreshold     int     `mapstructure:"entity_threshold"`
	MinConfidence       float64 `mapstructure:"min_confidence"`
	VocabularyFile      string  `mapstructure:"vocabulary_file"`
}

const (
	BackendKeyword = "keyword"
	BackendHTTP    = "http"
	BackendGenAI   = "genai"
)

type ClassifierConfig struct {
	Backend  string `mapstructure:"backend"`
	CacheTTL int    `mapstructure:"cache_ttl"` // milliseconds, 0 disables the cache
	HTTP     struct {
		URL        string `mapstructure:"url"`
		APIKey     string `mapstructure:"api_key"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
		MaxRetries int    `mapstructure:"max_retries"`
		Backoff    int    `mapstructure:"backoff"` // milliseconds
	} `mapstructure:"http"`
	GenAI struct {
		APIKey      string  `mapstructure:"api_key"`
		Model       string  `mapstructure:"model"`
		Temperature float64 `mapstructure:"temperature"`
	} `mapstructure:"genai"`
}

type SessionConfig struct {
	MaxIdle       int `mapstructure:"max_idle"`       // milliseconds
	PruneInterval int `mapstructure:"prune_interval"` // milliseconds
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}
