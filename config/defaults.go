// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Default values, taken from the embedded texelline.json.

package config

import (
	"encoding/json"

	"github.com/spf13/viper"

	"github.com/framegrace/texelline/defaults"
)

// Keys understood in texelline.json, TEXELLINE_* variables and flags.
const (
	KeyDelimiter      = "delimiter"
	KeyPrompt         = "prompt"
	KeyHistorySize    = "history_size"
	KeyOutputMode     = "output_mode"
	KeyBaud           = "baud"
	KeyHistoryDB      = "history_db"
	KeyHistoryReplay  = "history_replay"
	KeyHighlightStyle = "highlight_style"
	KeyListen         = "listen"
	KeyLogFile        = "log_file"
	KeyLogLevel       = "log_level"
)

func embeddedDefaults() (map[string]interface{}, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(defaults.Config(), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// applyDefaults registers every known key on v so that environment
// overrides work even when the file omits the key.
func applyDefaults(v *viper.Viper) error {
	m, err := embeddedDefaults()
	if err != nil {
		return err
	}
	for k, val := range m {
		v.SetDefault(k, val)
	}
	v.SetDefault(KeyHistoryDB, defaultHistoryDB())
	return nil
}
