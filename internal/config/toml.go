// Package config provides configuration helpers and TOML parsing.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Defaults shared by the config template and CLI flags.
const (
	DefaultTestMinutes = 1
	DefaultWords       = 60
	DefaultCaps        = 0.0
	DefaultPunct       = 0.0
	DefaultPunctSet    = ".,;"
	DefaultSyncTimeout = 10
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
)

// FileConfig represents the TOML configuration file. Pointer fields stay
// nil when a key is absent so CLI defaults are kept.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Display  DisplayConfig  `toml:"display"`
	User     UserConfig     `toml:"user"`
	Sync     SyncConfig     `toml:"sync"`
	Log      LogConfig      `toml:"log"`
}

// PracticeConfig maps typing test settings.
type PracticeConfig struct {
	Duration *int     `toml:"duration"`
	Words    *int     `toml:"words"`
	CapsPct  *float64 `toml:"caps"`
	PunctPct *float64 `toml:"punct"`
	PunctSet *string  `toml:"punct-set"`
	WordList *string  `toml:"wordlist"`
}

// DisplayConfig maps typing view toggles.
type DisplayConfig struct {
	Keyboard     *bool `toml:"keyboard"`
	FingerHints  *bool `toml:"finger-hints"`
	ShowMistakes *bool `toml:"show-mistakes"`
}

// UserConfig maps learner details.
type UserConfig struct {
	Name *string `toml:"name"`
}

// SyncConfig maps the remote backend settings.
type SyncConfig struct {
	Endpoint *string `toml:"endpoint"`
	Token    *string `toml:"token"`
	Timeout  *int    `toml:"timeout"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
	File   *string `toml:"file"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, errors.New("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Template returns the commented config file written by `keytutor config`.
func Template() string {
	return fmt.Sprintf(`# keytutor configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# duration = %d           # Typing test length in minutes (1, 2 or 5)
# words = %d             # Words generated per test text
# caps = %.2f             # Probability of capitalized first letter (0-1)
# punct = %.2f            # Punctuation probability per word (0-1)
# punct-set = %q        # Punctuation set
# wordlist = ""           # Optional word list file, one word per line

[display]
# keyboard = true         # Show the virtual keyboard
# finger-hints = true     # Name the finger for the next key
# show-mistakes = true    # Highlight mistyped characters

[user]
# name = ""               # Name printed on certificates

[sync]
# endpoint = ""           # Backend base URL, e.g. https://example.com/api
# token = ""              # Bearer token; sync is off without one
# timeout = %d            # Request timeout in seconds

[log]
# level = %q           # debug, info, warn or error
# format = %q          # json or console
# file = ""               # Log file (default: data dir)
`,
		DefaultTestMinutes,
		DefaultWords,
		DefaultCaps,
		DefaultPunct,
		DefaultPunctSet,
		DefaultSyncTimeout,
		DefaultLogLevel,
		DefaultLogFormat,
	)
}
