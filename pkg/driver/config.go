package driver

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xyproto/env/v2"
	"gopkg.in/yaml.v3"

	"cilisp/interpreter-go/pkg/interpreter"
)

const (
	DefaultPrompt = "> "

	envMaxDepth = "CILISP_MAX_DEPTH"
	envPrompt   = "CILISP_PROMPT"
	envHistory  = "CILISP_HISTORY"
	envTrace    = "CILISP_TRACE"
	envNoColor  = "NO_COLOR"
)

// Config holds the session settings. Values come from an optional YAML file,
// then the environment, then command-line flags.
type Config struct {
	MaxDepth    int    `yaml:"max_depth,omitempty"`
	Color       bool   `yaml:"color"`
	Trace       bool   `yaml:"trace,omitempty"`
	Prompt      string `yaml:"prompt,omitempty"`
	HistoryFile string `yaml:"history_file,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		MaxDepth: interpreter.DefaultMaxDepth,
		Color:    true,
		Prompt:   DefaultPrompt,
	}
}

// LoadConfig reads path on top of DefaultConfig. An empty path skips the file
// and only applies environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return cfg, fmt.Errorf("config: resolve %s: %w", path, err)
		}
		file, err := os.Open(abs)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", abs, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from CILISP_* variables. NO_COLOR disables color
// whatever its value.
func (c *Config) ApplyEnv() {
	if env.Has(envMaxDepth) {
		c.MaxDepth = env.Int(envMaxDepth, c.MaxDepth)
	}
	c.Prompt = env.Str(envPrompt, c.Prompt)
	c.HistoryFile = env.Str(envHistory, c.HistoryFile)
	if env.Has(envTrace) {
		c.Trace = env.Bool(envTrace)
	}
	if env.Has(envNoColor) {
		c.Color = false
	}
}

func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("config: max_depth must be positive, got %d", c.MaxDepth)
	}
	return nil
}

// WriteConfig serialises cfg to path.
func WriteConfig(cfg Config, path string) error {
	if path == "" {
		return fmt.Errorf("config: empty path")
	}
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
