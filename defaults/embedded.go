// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: defaults/embedded.go
// Summary: Embedded default configuration file.

package defaults

import _ "embed"

//go:embed texelline.json
var config []byte

// Config returns the embedded texelline.json. The slice is a fresh copy.
func Config() []byte {
	return append([]byte(nil), config...)
}
