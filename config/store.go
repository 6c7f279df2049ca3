// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/store.go
// Summary: First-run creation of texelline.json.

package config

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/framegrace/texelline/defaults"
)

// writeDefaultIfMissing writes the embedded defaults to path when the file
// does not exist or is empty. An existing file is never touched otherwise.
func writeDefaultIfMissing(path string, logger *log.Logger) error {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.Size() > 0:
		return nil
	case err != nil && !os.IsNotExist(err):
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(path, defaults.Config(), 0644); err != nil {
		return err
	}
	logger.Info("Wrote default config", "path", path)
	return nil
}
