// internal/workers/voice/parse-voice-command/config.go
package parsevoicecommand

import (
	"time"

	"shopsense-voice/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig(cfg *config.Config) *Config {
	c := &Config{
		Timeout:       15 * time.Second,
		MaxJobsActive: 10,
	}
	if cfg == nil {
		return c
	}

	wc := config.GetWorkerConfig(cfg, TaskType)
	if wc.Timeout > 0 {
		c.Timeout = config.GetDuration(wc.Timeout)
	}
	if wc.MaxJobsActive > 0 {
		c.MaxJobsActive = wc.MaxJobsActive
	}
	return c
}
