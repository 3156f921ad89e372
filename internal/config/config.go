package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Transcript         string   `toml:"transcript"`
	DBPath             string   `toml:"db_path"`
	DayFirst           bool     `toml:"day_first"`
	MergeContinuations bool     `toml:"merge_continuations"`
	// MediaTokens and FlirtMarkers fall back to the built-in lists when empty.
	MediaTokens        []string `toml:"media_tokens"`
	FlirtMarkers       []string `toml:"flirt_markers"`
	ReadTimeout        string   `toml:"read_timeout"`
	MetricsAddr        string   `toml:"metrics_addr"`

	Log       LogConfig       `toml:"log"`
	Sentiment SentimentConfig `toml:"sentiment"`

	readTimeout time.Duration
}

type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

type SentimentConfig struct {
	// Threshold is the absolute compound score separating Neutral from Positive/Negative.
	Threshold float64            `toml:"threshold"`
	Lexicon   map[string]float64 `toml:"lexicon"`
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wca", "config.toml"), nil
}

func Default(home string) *Config {
	return &Config{
		DBPath:      filepath.Join(home, ".config", "wca", "wca.db"),
		DayFirst:    true,
		ReadTimeout: "30s",
		Log:         LogConfig{Level: "info"},
		Sentiment:   SentimentConfig{Threshold: 0.05},
	}
}

// Load reads the config file at path (or DefaultPath when empty). A missing
// file is not an error; defaults are returned.
func Load(path string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := Default(home)

	explicit := path != ""
	if !explicit {
		path = filepath.Join(home, ".config", "wca", "config.toml")
	}
	path = expandHome(path, home)

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	// expand ~ in paths
	cfg.Transcript = expandHome(cfg.Transcript, home)
	cfg.DBPath = expandHome(cfg.DBPath, home)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ReadTimeout == "" {
		c.readTimeout = 0
	} else {
		d, err := time.ParseDuration(c.ReadTimeout)
		if err != nil {
			return fmt.Errorf("read_timeout %q: %w", c.ReadTimeout, err)
		}
		if d < 0 {
			return fmt.Errorf("read_timeout %q: must not be negative", c.ReadTimeout)
		}
		c.readTimeout = d
	}
	if c.Sentiment.Threshold < 0 || c.Sentiment.Threshold >= 1 {
		return fmt.Errorf("sentiment.threshold %v: must be in [0,1)", c.Sentiment.Threshold)
	}
	return nil
}

// ReadTimeoutDuration is the parsed read_timeout; zero means no limit.
func (c *Config) ReadTimeoutDuration() time.Duration {
	return c.readTimeout
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
