// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/paths.go
// Summary: Path helpers for texelline configuration.

package config

import (
	"os"
	"path/filepath"
)

const (
	configDirName  = "texelline"
	configFileName = "texelline.json"
	historyDBName  = "history.db"
)

func configRoot() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configDirName), nil
}

// DefaultPath returns the location of texelline.json.
func DefaultPath() (string, error) {
	root, err := configRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, configFileName), nil
}

func defaultHistoryDB() string {
	root, err := configRoot()
	if err != nil {
		return ""
	}
	return filepath.Join(root, historyDBName)
}
