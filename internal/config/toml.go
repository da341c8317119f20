// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Play        PlayConfig        `toml:"play"`
	Recognizer  RecognizerConfig  `toml:"recognizer"`
	Leaderboard LeaderboardConfig `toml:"leaderboard"`
}

// PlayConfig maps session settings.
type PlayConfig struct {
	Lang   *string `toml:"lang"`
	Words  *int    `toml:"words"`
	MinLen *int    `toml:"min-len"`
	MaxLen *int    `toml:"max-len"`
	Scale  *int    `toml:"scale"`
}

// RecognizerConfig selects and configures the handwriting recognizer.
type RecognizerConfig struct {
	Engine  *string   `toml:"engine"`
	Model   *string   `toml:"model"`
	Project *string   `toml:"project"`
	Region  *string   `toml:"region"`
	URL     *string   `toml:"url"`
	Timeout *Duration `toml:"timeout"`
}

// LeaderboardConfig maps the leaderboard client and service settings.
type LeaderboardConfig struct {
	URL    *string `toml:"url"`
	Listen *string `toml:"listen"`
	DB     *string `toml:"db"`
}

// Duration is a time.Duration decoded from a TOML string such as "20s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
