// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/config.go
// Summary: Settings for the texelline demo and their loading through viper.
// Usage: cmd/texelline binds its flags on a viper instance and calls Load.
// Notes: Precedence is flag, TEXELLINE_* environment, texelline.json, then
//        the embedded defaults.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/framegrace/texelline/lineedit"
)

// maxBaud matches the fastest line the throttle simulates.
const maxBaud = 1_000_000

// EnvPrefix is prepended to upper-cased keys for environment overrides.
const EnvPrefix = "TEXELLINE"

// Settings is the decoded configuration.
type Settings struct {
	Delimiter      string `mapstructure:"delimiter"`
	Prompt         string `mapstructure:"prompt"`
	HistorySize    int    `mapstructure:"history_size"`
	OutputMode     string `mapstructure:"output_mode"`
	Baud           int    `mapstructure:"baud"`
	HistoryDB      string `mapstructure:"history_db"`
	HistoryReplay  int    `mapstructure:"history_replay"`
	HighlightStyle string `mapstructure:"highlight_style"`
	Listen         string `mapstructure:"listen"`
	LogFile        string `mapstructure:"log_file"`
	LogLevel       string `mapstructure:"log_level"`
}

// Load reads the configuration into v and decodes it. With an empty path
// the file under the user config directory is used, and written with the
// defaults when it does not exist yet. An explicit path must exist.
func Load(v *viper.Viper, path string, logger *log.Logger) (Settings, error) {
	if v == nil {
		v = viper.New()
	}
	if logger == nil {
		logger = log.Default().WithPrefix("config")
	}

	if err := applyDefaults(v); err != nil {
		return Settings{}, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			logger.Warn("Failed to resolve config path, using defaults", "err", err)
			return decode(v)
		}
		path = p
		if err := writeDefaultIfMissing(path, logger); err != nil {
			logger.Warn("Failed to write default config", "path", path, "err", err)
		}
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		logger.Warn("Config file missing, using defaults", "path", path)
	} else {
		logger.Debug("Loaded config", "path", path)
	}
	return decode(v)
}

func decode(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks every field that has a restricted range.
func (s Settings) Validate() error {
	d, err := s.DelimiterBytes()
	if err != nil {
		return err
	}
	if len(d) == 0 {
		return fmt.Errorf("%s: must not be empty", KeyDelimiter)
	}
	if s.HistorySize < 3 {
		return fmt.Errorf("%s: %d is below the minimum of 3", KeyHistorySize, s.HistorySize)
	}
	if _, err := s.Mode(); err != nil {
		return err
	}
	if s.Baud < 0 || s.Baud > maxBaud {
		return fmt.Errorf("%s: %d is outside 0..%d", KeyBaud, s.Baud, maxBaud)
	}
	if s.HistoryReplay < 0 {
		return fmt.Errorf("%s: must not be negative", KeyHistoryReplay)
	}
	if _, err := s.Level(); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return nil
}

// DelimiterBytes returns the delimiter with Go escapes such as \r or \x04
// resolved, so it can be given on the command line or in the environment.
func (s Settings) DelimiterBytes() ([]byte, error) {
	if !strings.Contains(s.Delimiter, `\`) {
		return []byte(s.Delimiter), nil
	}
	unq, err := strconv.Unquote(`"` + strings.ReplaceAll(s.Delimiter, `"`, `\"`) + `"`)
	if err != nil {
		return nil, fmt.Errorf("%s: invalid escape in %q: %w", KeyDelimiter, s.Delimiter, err)
	}
	return []byte(unq), nil
}

// Mode maps output_mode to the editor's redraw strategy.
func (s Settings) Mode() (lineedit.OutputMode, error) {
	switch strings.ToLower(s.OutputMode) {
	case "", "insert":
		return lineedit.InsertDelete, nil
	case "reprint":
		return lineedit.Reprint, nil
	}
	return 0, fmt.Errorf("%s: unknown mode %q (want insert or reprint)", KeyOutputMode, s.OutputMode)
}

// Level parses log_level.
func (s Settings) Level() (log.Level, error) {
	if s.LogLevel == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(s.LogLevel)
}
