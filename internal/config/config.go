// Package config loads the service configuration from an optional YAML file.
// Command-line flags are applied on top by the caller.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	executor "github.com/hanpama/bookgraph/internal/executor"
	store "github.com/hanpama/bookgraph/internal/store"
)

type Config struct {
	Server   Server      `yaml:"server"`
	Executor Executor    `yaml:"executor"`
	Otel     Otel        `yaml:"otel"`
	Log      Log         `yaml:"log"`
	Seed     *store.Seed `yaml:"seed,omitempty"`
}

type Server struct {
	Addr         string        `yaml:"addr"`
	Pretty       bool          `yaml:"pretty"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"maxBodyBytes"`
	CORSOrigins  []string      `yaml:"corsOrigins"`
	GraphiQL     bool          `yaml:"graphiql"`
}

type Executor struct {
	MaxDepth    int `yaml:"maxDepth"`
	Parallelism int `yaml:"parallelism"`
}

type Otel struct {
	Endpoint string `yaml:"endpoint"`
	Service  string `yaml:"service"`
}

type Log struct {
	Debug bool `yaml:"debug"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:         ":4000",
			Timeout:      10 * time.Second,
			MaxBodyBytes: 1 << 20,
			GraphiQL:     true,
		},
		Executor: Executor{MaxDepth: executor.DefaultMaxDepth},
		Otel:     Otel{Service: "bookgraph"},
	}
}

// Load reads the YAML file at path over the defaults. An empty path yields the
// defaults; a path that cannot be read is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadSeed reads a YAML file holding authors and books.
func LoadSeed(path string) (store.Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.Seed{}, fmt.Errorf("read seed: %w", err)
	}
	var seed store.Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return store.Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	return seed, nil
}

// StoreSeed returns the configured seed, or the built-in data set when the file
// did not declare one.
func (c *Config) StoreSeed() store.Seed {
	if c.Seed == nil {
		return store.DefaultSeed()
	}
	return *c.Seed
}

// ExecutorOptions converts the executor section into executor options.
func (c *Config) ExecutorOptions() []executor.Option {
	return []executor.Option{
		executor.WithMaxDepth(c.Executor.MaxDepth),
		executor.WithParallelism(c.Executor.Parallelism),
	}
}
