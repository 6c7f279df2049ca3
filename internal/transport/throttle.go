// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/transport/throttle.go
// Summary: Serial line speed simulation for terminal output.

package transport

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// bitsPerByte is the 8N1 frame: start bit, eight data bits, stop bit.
const bitsPerByte = 10

// MaxBaud is the fastest line Throttle simulates.
const MaxBaud = 1_000_000

// Throttle writes one byte at a time, no faster than a serial line at the
// configured baud rate would carry them.
type Throttle struct {
	ctx context.Context
	w   io.Writer
	lim *rate.Limiter
}

// NewThrottle wraps w. A baud rate of zero or less returns w unchanged.
func NewThrottle(ctx context.Context, w io.Writer, baud int) io.Writer {
	if baud <= 0 {
		return w
	}
	baud = min(baud, MaxBaud)
	return &Throttle{
		ctx: ctx,
		w:   w,
		lim: rate.NewLimiter(rate.Limit(float64(baud)/bitsPerByte), 1),
	}
}

// Write blocks until every byte went out or ctx is cancelled, in which case
// it reports how many bytes were written.
func (t *Throttle) Write(p []byte) (int, error) {
	for i := range p {
		if err := t.lim.Wait(t.ctx); err != nil {
			return i, err
		}
		if _, err := t.w.Write(p[i : i+1]); err != nil {
			return i, err
		}
	}
	return len(p), nil
}
