// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/transport/pty.go
// Summary: A fresh pseudo-terminal for another program to attach to.
// Usage: Print Name() and connect with e.g. `screen /dev/pts/7`.

package transport

import (
	"fmt"
	"os"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// PTY is a pseudo-terminal pair. The editor talks to the master side; users
// open the slave. The slave is kept open here so reads on the master block
// instead of failing while nobody is attached.
type PTY struct {
	master *os.File
	slave  *os.File
}

// OpenPTY allocates a pseudo-terminal and puts its slave in raw mode.
func OpenPTY() (*PTY, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open pty: %w", err)
	}
	if _, err := term.MakeRaw(int(slave.Fd())); err != nil {
		master.Close()
		slave.Close()
		return nil, fmt.Errorf("failed to set pty raw mode: %w", err)
	}
	return &PTY{master: master, slave: slave}, nil
}

// Name is the slave device path.
func (p *PTY) Name() string { return p.slave.Name() }

func (p *PTY) Read(b []byte) (int, error)  { return p.master.Read(b) }
func (p *PTY) Write(b []byte) (int, error) { return p.master.Write(b) }

// Width returns the column count the attached terminal set, or 0.
func (p *PTY) Width() int {
	_, cols, err := pty.Getsize(p.slave)
	if err != nil {
		return 0
	}
	return cols
}

// Close releases both ends.
func (p *PTY) Close() error {
	errM := p.master.Close()
	errS := p.slave.Close()
	if errM != nil {
		return errM
	}
	return errS
}
