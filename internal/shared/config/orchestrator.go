package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	TransportHTTP = "http"
	TransportGRPC = "grpc"
)

// OrchestratorConfig contains all configuration for the orchestrator service.
type OrchestratorConfig struct {
	REST    RESTConfig    `mapstructure:"rest"`
	Workers WorkersConfig `mapstructure:"workers"`
	Batch   BatchConfig   `mapstructure:"batch"`
	Polling PollingConfig `mapstructure:"polling"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// RESTConfig contains REST API server configuration.
type RESTConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// WorkersConfig describes the fixed pool of worker nodes.
type WorkersConfig struct {
	Endpoints      []string      `mapstructure:"endpoints"`
	Transport      string        `mapstructure:"transport"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Breaker        BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig tunes the per-worker circuit breaker guarding status probes.
type BreakerConfig struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

// BatchConfig controls how a job's range is partitioned. MaxBatches caps the
// number of batches a single job may produce.
type BatchConfig struct {
	Size       int `mapstructure:"size"`
	MaxBatches int `mapstructure:"max_batches"`
}

// LoadOrchestrator loads the orchestrator configuration from the given path.
// Environment variables with GOFARM_ORCHESTRATOR_ prefix override config file values.
func LoadOrchestrator(configPath string) (*OrchestratorConfig, error) {
	v := viper.New()

	v.SetDefault("rest.addr", ":8080")
	v.SetDefault("rest.read_timeout", 15*time.Second)
	v.SetDefault("rest.write_timeout", 60*time.Second)
	v.SetDefault("rest.idle_timeout", 60*time.Second)
	v.SetDefault("workers.endpoints", []string{})
	v.SetDefault("workers.transport", TransportHTTP)
	v.SetDefault("workers.request_timeout", 10*time.Second)
	v.SetDefault("workers.breaker.max_requests", 1)
	v.SetDefault("workers.breaker.interval", 30*time.Second)
	v.SetDefault("workers.breaker.timeout", 10*time.Second)
	v.SetDefault("workers.breaker.min_requests", 3)
	v.SetDefault("workers.breaker.failure_ratio", 0.6)
	v.SetDefault("batch.size", 10)
	v.SetDefault("batch.max_batches", 10000)
	v.SetDefault("polling.retry_after", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	var cfg OrchestratorConfig
	if err := load(v, configPath, "orchestrator", "GOFARM_ORCHESTRATOR", &cfg); err != nil {
		return nil, err
	}
	cfg.Workers.Endpoints = splitList(cfg.Workers.Endpoints)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *OrchestratorConfig) Validate() error {
	if c.Batch.Size < 1 {
		return fmt.Errorf("batch.size must be at least 1, got %d", c.Batch.Size)
	}
	if c.Batch.MaxBatches < 1 {
		return fmt.Errorf("batch.max_batches must be at least 1, got %d", c.Batch.MaxBatches)
	}
	if len(c.Workers.Endpoints) == 0 {
		return fmt.Errorf("workers.endpoints must list at least one worker")
	}
	switch c.Workers.Transport {
	case TransportHTTP, TransportGRPC:
	default:
		return fmt.Errorf("unsupported workers.transport: %q", c.Workers.Transport)
	}
	return nil
}

// splitList expands comma separated entries, as produced by env overrides, and
// drops blanks.
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
