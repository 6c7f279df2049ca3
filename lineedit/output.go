// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: lineedit/output.go
// Summary: Fixed-size output staging for terminal control sequences.
// Notes: Every write to the sink goes through emitter so the editor never
//        formats into unbounded memory.

package lineedit

import (
	"io"
	"strconv"

	"github.com/charmbracelet/log"
)

const emitterSize = 64

const (
	asciiBS  = 0x08
	asciiESC = 0x1b
	asciiDEL = 0x7f
)

// emitter stages output in a small fixed buffer and flushes it to the sink
// whenever it fills up and at the end of every editing step.
type emitter struct {
	w      io.Writer
	logger *log.Logger
	buf    [emitterSize]byte
	n      int
}

func (o *emitter) reserve(k int) {
	if o.n+k > len(o.buf) {
		o.flush()
	}
}

func (o *emitter) put(b byte) {
	o.reserve(1)
	o.buf[o.n] = b
	o.n++
}

func (o *emitter) repeat(b byte, count int) {
	for ; count > 0; count-- {
		o.put(b)
	}
}

// printable emits the caret-notation rendering of b.
func (o *emitter) printable(b byte) {
	o.reserve(maxPrintableWidth)
	o.n = len(appendPrintable(o.buf[:o.n], b))
}

func (o *emitter) printables(p []byte) {
	for _, b := range p {
		o.printable(b)
	}
}

// csi emits ESC [ n final, leaving out n when it is 1.
func (o *emitter) csi(count int, final byte) {
	o.reserve(24)
	o.buf[o.n] = asciiESC
	o.buf[o.n+1] = '['
	o.n += 2
	if count != 1 {
		o.n = len(strconv.AppendInt(o.buf[:o.n], int64(count), 10))
	}
	o.buf[o.n] = final
	o.n++
}

// back moves the terminal cursor count columns left.
func (o *emitter) back(count int) {
	switch {
	case count <= 0:
	case count == 1:
		o.put(asciiBS)
	default:
		o.csi(count, 'D')
	}
}

// forward moves the terminal cursor count columns right.
func (o *emitter) forward(count int) {
	if count > 0 {
		o.csi(count, 'C')
	}
}

// flush writes the staged bytes. Sink failures are not retried: the display
// may go stale but the edit buffer stays intact.
func (o *emitter) flush() {
	if o.n == 0 {
		return
	}
	if o.w != nil {
		if _, err := o.w.Write(o.buf[:o.n]); err != nil && o.logger != nil {
			o.logger.Warn("output sink write failed", "err", err)
		}
	}
	o.n = 0
}
