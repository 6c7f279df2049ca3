// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/transport/transport.go
// Summary: Input loop shared by every way of attaching a terminal.
// Usage: Run(ctx, terminal, session, Options{...}) until the input closes,
//        the session ends or ctx is cancelled.

package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// EOT is ^D. In local mode it ends the session.
const EOT = 0x04

const defaultReadSize = 256

// Feeder consumes raw terminal input.
type Feeder interface {
	// Feed processes p and reports whether the session is over.
	Feed(p []byte) (done bool)
}

// Options tunes Run.
type Options struct {
	// QuitOnEOT ends the session on ^D. Bytes before it are still fed.
	QuitOnEOT bool
	// ReadSize is the largest chunk handed to the feeder at once.
	ReadSize int
	Logger   *log.Logger
}

// Run reads r and feeds it to f. It returns nil when r reaches EOF or the
// feeder is done, and ctx.Err() on cancellation. A reader blocked in Read is
// only released when the caller closes it.
func Run(ctx context.Context, r io.Reader, f Feeder, opts Options) error {
	size := opts.ReadSize
	if size <= 0 {
		size = defaultReadSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	chunks := make(chan []byte)
	errs := make(chan error, 1)
	stop := make(chan struct{})
	defer close(stop)
	go readPump(r, size, chunks, errs, stop)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("session cancelled")
			return ctx.Err()
		case err := <-errs:
			if errors.Is(err, io.EOF) {
				logger.Debug("input closed")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		case p := <-chunks:
			if opts.QuitOnEOT {
				if i := bytes.IndexByte(p, EOT); i >= 0 {
					f.Feed(p[:i])
					logger.Debug("end of transmission")
					return nil
				}
			}
			if f.Feed(p) {
				return nil
			}
		}
	}
}

// readPump moves chunks from r to the loop. Chunks are handed over in read
// order and the error, if any, always comes after the last chunk.
func readPump(r io.Reader, size int, chunks chan<- []byte, errs chan<- error, stop <-chan struct{}) {
	for {
		buf := make([]byte, size)
		n, err := r.Read(buf)
		if n > 0 {
			select {
			case chunks <- buf[:n]:
			case <-stop:
				return
			}
		}
		if err != nil {
			errs <- err
			return
		}
	}
}
