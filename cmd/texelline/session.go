// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texelline/session.go
// Summary: Wiring of a shell session onto a terminal stream.

package main

import (
	"context"
	"io"

	"github.com/framegrace/texelline/internal/histstore"
	"github.com/framegrace/texelline/internal/shell"
	"github.com/framegrace/texelline/internal/transport"
)

// openStore opens the history database, or returns nil when it is disabled
// or cannot be opened. History persistence is never fatal.
func (a *app) openStore() *histstore.Store {
	if a.settings.HistoryDB == "" {
		return nil
	}
	store, err := histstore.Open(a.settings.HistoryDB, a.logger.WithPrefix("history"))
	if err != nil {
		a.logger.Warn("History persistence disabled", "err", err)
		return nil
	}
	if n, err := store.Count(); err == nil {
		a.logger.Debug("History database ready", "path", a.settings.HistoryDB, "entries", n)
	}
	return store
}

// runTerminal runs one shell session on rw until it ends.
func (a *app) runTerminal(ctx context.Context, rw io.ReadWriter, width func() int, quitOnEOT bool, store *histstore.Store) error {
	delim, _ := a.settings.DelimiterBytes()
	mode, _ := a.settings.Mode()

	opts := shell.Options{
		Prompt:      a.settings.Prompt,
		Delimiter:   delim,
		HistorySize: a.settings.HistorySize,
		Mode:        mode,
		Highlighter: shell.NewHighlighter(a.settings.HighlightStyle),
		Replay:      a.settings.HistoryReplay,
		Width:       width,
		Logger:      a.logger.WithPrefix("shell"),
	}
	if store != nil {
		opts.Store = store
	}

	out := transport.NewThrottle(ctx, rw, a.settings.Baud)
	sess, err := shell.New(out, opts)
	if err != nil {
		return err
	}
	sess.Start()

	err = transport.Run(ctx, rw, sess, transport.Options{
		QuitOnEOT: quitOnEOT,
		Logger:    a.logger.WithPrefix("transport"),
	})
	if sess.Done() {
		a.logger.Debug("Session ended by command")
	}
	return err
}
