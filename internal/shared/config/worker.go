package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// WorkerConfig contains all configuration for the worker service.
type WorkerConfig struct {
	REST    RESTConfig       `mapstructure:"rest"`
	GRPC    WorkerGRPCConfig `mapstructure:"grpc"`
	Render  RenderConfig     `mapstructure:"render"`
	Polling PollingConfig    `mapstructure:"polling"`
	Logging LoggingConfig    `mapstructure:"logging"`
}

// WorkerGRPCConfig contains the worker's gRPC server configuration.
// An empty address disables the gRPC surface.
type WorkerGRPCConfig struct {
	Addr             string        `mapstructure:"addr"`
	EnableReflection bool          `mapstructure:"enable_reflection"`
	KeepaliveMinTime time.Duration `mapstructure:"keepalive_min_time"`
}

// RenderConfig describes the external program started for every accepted range.
type RenderConfig struct {
	Command   string   `mapstructure:"command"`
	Args      []string `mapstructure:"args"`
	Scene     string   `mapstructure:"scene"`
	OutputDir string   `mapstructure:"output_dir"`
}

// LoadWorker loads the worker configuration from the given path.
// Environment variables with GOFARM_WORKER_ prefix override config file values.
func LoadWorker(configPath string) (*WorkerConfig, error) {
	v := viper.New()

	v.SetDefault("rest.addr", ":8081")
	v.SetDefault("rest.read_timeout", 15*time.Second)
	v.SetDefault("rest.write_timeout", 15*time.Second)
	v.SetDefault("rest.idle_timeout", 60*time.Second)
	v.SetDefault("grpc.addr", ":9091")
	v.SetDefault("grpc.enable_reflection", true)
	v.SetDefault("grpc.keepalive_min_time", 30*time.Second)
	v.SetDefault("render.command", "blender")
	v.SetDefault("render.args", []string{"-b", "{scene}", "-o", "{output}/frame_####", "-s", "{from}", "-e", "{to}", "-a"})
	v.SetDefault("render.scene", "")
	v.SetDefault("render.output_dir", "./output")
	v.SetDefault("polling.retry_after", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	var cfg WorkerConfig
	if err := load(v, configPath, "worker", "GOFARM_WORKER", &cfg); err != nil {
		return nil, err
	}
	if cfg.Render.Command == "" {
		return nil, fmt.Errorf("render.command is required")
	}
	return &cfg, nil
}
