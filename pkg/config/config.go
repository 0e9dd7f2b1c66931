// Package config loads the triage service configuration from defaults, an
// optional TOML file and the environment.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Environment variables read by Load.
const (
	EnvEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvKey        = "AZURE_OPENAI_KEY"
	EnvDeployment = "AZURE_OPENAI_DEPLOYMENT"
	EnvVersion    = "AZURE_OPENAI_VERSION"
	EnvListen     = "TRIAGE_LISTEN"
)

// Reducer kinds for the sample agent history.
const (
	ReducerTruncation    = "truncation"
	ReducerSummarization = "summarization"
)

// Config is the full service configuration.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	AzureOpenAI AzureOpenAIConfig `toml:"azure_openai"`
	Agents      AgentsConfig      `toml:"agents"`
	Sample      SampleConfig      `toml:"sample"`
	Log         LogConfig         `toml:"log"`
}

type ServerConfig struct {
	Listen          string        `toml:"listen"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	// BodyLimit is the maximum request body size in bytes.
	BodyLimit int  `toml:"body_limit"`
	EnableMCP bool `toml:"enable_mcp"`
}

type AzureOpenAIConfig struct {
	Endpoint   string        `toml:"endpoint"`
	Key        string        `toml:"key"`
	Deployment string        `toml:"deployment"`
	Version    string        `toml:"version"`
	Timeout    time.Duration `toml:"timeout"`
}

type AgentsConfig struct {
	MaxAutoInvoke int `toml:"max_auto_invoke"`
}

type SampleConfig struct {
	Reducer        string `toml:"reducer"`
	TargetCount    int    `toml:"target_count"`
	ThresholdCount int    `toml:"threshold_count"`
}

type LogConfig struct {
	Debug bool `toml:"debug"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          ":8000",
			ShutdownTimeout: 10 * time.Second,
			BodyLimit:       4 * 1024 * 1024,
		},
		AzureOpenAI: AzureOpenAIConfig{
			Version: "2024-10-21",
			Timeout: 60 * time.Second,
		},
		Agents: AgentsConfig{
			MaxAutoInvoke: 5,
		},
		Sample: SampleConfig{
			Reducer:        ReducerTruncation,
			TargetCount:    10,
			ThresholdCount: 5,
		},
	}
}

// Load builds the configuration: defaults, then the TOML file at path (when
// path is non-empty), then environment variables. It does not validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, fmt.Errorf("unknown keys in config file %s: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.AzureOpenAI.Endpoint, EnvEndpoint)
	set(&c.AzureOpenAI.Key, EnvKey)
	set(&c.AzureOpenAI.Deployment, EnvDeployment)
	set(&c.AzureOpenAI.Version, EnvVersion)
	set(&c.Server.Listen, EnvListen)
}

// Validate reports the first configuration problem found. Missing
// credentials are fatal at startup.
func (c *Config) Validate() error {
	var missing []string
	if c.AzureOpenAI.Endpoint == "" {
		missing = append(missing, EnvEndpoint)
	}
	if c.AzureOpenAI.Key == "" {
		missing = append(missing, EnvKey)
	}
	if c.AzureOpenAI.Deployment == "" {
		missing = append(missing, EnvDeployment)
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if _, _, err := net.SplitHostPort(c.Server.Listen); err != nil {
		return fmt.Errorf("invalid server.listen %q: %w", c.Server.Listen, err)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("server.shutdown_timeout must be positive")
	}
	if c.Server.BodyLimit <= 0 {
		return errors.New("server.body_limit must be positive")
	}
	if c.AzureOpenAI.Timeout <= 0 {
		return errors.New("azure_openai.timeout must be positive")
	}
	if c.Agents.MaxAutoInvoke <= 0 {
		return fmt.Errorf("agents.max_auto_invoke must be positive, got %d", c.Agents.MaxAutoInvoke)
	}

	switch c.Sample.Reducer {
	case ReducerTruncation, ReducerSummarization:
	default:
		return fmt.Errorf("invalid sample.reducer %q, must be %q or %q", c.Sample.Reducer, ReducerTruncation, ReducerSummarization)
	}
	if c.Sample.TargetCount <= 0 {
		return fmt.Errorf("sample.target_count must be positive, got %d", c.Sample.TargetCount)
	}
	if c.Sample.ThresholdCount < 0 {
		return fmt.Errorf("sample.threshold_count must not be negative, got %d", c.Sample.ThresholdCount)
	}

	return nil
}
