// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/shell/builtins.go
// Summary: Commands the demo shell runs itself.

package shell

import (
	"bytes"
	"fmt"

	"github.com/mattn/go-runewidth"

	"github.com/framegrace/texelline/lineedit"
)

// builtin runs a command and reports whether the session should end.
type builtin func(s *Session) (quit bool)

var builtins = map[string]builtin{
	"history": (*Session).listHistory,
	"quit":    (*Session).quit,
	"exit":    (*Session).quit,
}

func lookupBuiltin(line []byte) (builtin, bool) {
	run, ok := builtins[string(bytes.TrimSpace(line))]
	return run, ok
}

func (s *Session) quit() bool { return true }

// listHistory prints the ring, oldest first, one numbered entry per row.
// Rows are cut to the terminal width so they never wrap.
func (s *Session) listHistory() bool {
	width := s.width()
	for i, entry := range s.ed.HistoryEntries() {
		row := fmt.Sprintf("%4d  %s", i+1, lineedit.AppendRendered(nil, []byte(entry)))
		if width > 1 {
			row = runewidth.Truncate(row, width-1, "...")
		}
		s.write("\r\n" + row)
	}
	return false
}
