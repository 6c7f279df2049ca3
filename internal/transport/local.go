// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/transport/local.go
// Summary: The process's own stdin/stdout as a terminal.

package transport

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Local reads from in and writes to out. When in is a terminal it stays in
// raw mode until Close.
type Local struct {
	in    *os.File
	out   *os.File
	state *term.State
}

// OpenLocal attaches to in and out, switching in to raw mode if it is a TTY.
func OpenLocal(in, out *os.File) (*Local, error) {
	l := &Local{in: in, out: out}
	if term.IsTerminal(int(in.Fd())) {
		state, err := term.MakeRaw(int(in.Fd()))
		if err != nil {
			return nil, fmt.Errorf("failed to enable raw mode: %w", err)
		}
		l.state = state
	}
	return l, nil
}

func (l *Local) Read(p []byte) (int, error)  { return l.in.Read(p) }
func (l *Local) Write(p []byte) (int, error) { return l.out.Write(p) }

// Raw reports whether the input was switched to raw mode.
func (l *Local) Raw() bool { return l.state != nil }

// Width returns the terminal width in columns, or 0 when out is not a terminal.
func (l *Local) Width() int {
	w, _, err := term.GetSize(int(l.out.Fd()))
	if err != nil || w < 0 {
		return 0
	}
	return w
}

// Close restores the terminal mode. The files stay open.
func (l *Local) Close() error {
	if l.state == nil {
		return nil
	}
	err := term.Restore(int(l.in.Fd()), l.state)
	l.state = nil
	return err
}
