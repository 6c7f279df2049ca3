// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/transport/devtty.go
// Summary: The controlling terminal opened directly, independent of stdio.

package transport

import (
	"fmt"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
)

// DevTty is /dev/tty in raw mode. Its width is tracked across resizes.
type DevTty struct {
	tty   tcell.Tty
	width atomic.Int64
}

// OpenDevTty opens and starts the controlling terminal.
func OpenDevTty() (*DevTty, error) {
	tty, err := tcell.NewDevTty()
	if err != nil {
		return nil, fmt.Errorf("failed to open /dev/tty: %w", err)
	}
	if err := tty.Start(); err != nil {
		tty.Close()
		return nil, fmt.Errorf("failed to start /dev/tty: %w", err)
	}

	d := &DevTty{tty: tty}
	d.refreshWidth()
	tty.NotifyResize(d.refreshWidth)
	return d, nil
}

func (d *DevTty) refreshWidth() {
	ws, err := d.tty.WindowSize()
	if err != nil {
		return
	}
	d.width.Store(int64(ws.Width))
}

func (d *DevTty) Read(p []byte) (int, error)  { return d.tty.Read(p) }
func (d *DevTty) Write(p []byte) (int, error) { return d.tty.Write(p) }

// Width returns the last known column count, or 0.
func (d *DevTty) Width() int { return int(d.width.Load()) }

// Close restores the terminal and closes it.
func (d *DevTty) Close() error {
	d.tty.NotifyResize(nil)
	if err := d.tty.Stop(); err != nil {
		d.tty.Close()
		return err
	}
	return d.tty.Close()
}
