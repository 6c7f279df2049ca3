// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/shell/session.go
// Summary: Demo command shell driven by the line editor.
// Usage: A transport feeds raw terminal input to Session.Feed; the session
//        echoes each accepted command, records it in the history ring and the
//        persistent store, and runs the few builtins.

package shell

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/framegrace/texelline/internal/histstore"
	"github.com/framegrace/texelline/lineedit"
)

// acceptedPrefix introduces the echo of an accepted command.
const acceptedPrefix = ">>>>> "

// HistoryStore persists accepted commands across sessions.
type HistoryStore interface {
	Append(line []byte) error
	Recent(n int) ([]histstore.Entry, error)
}

// Options configures a Session.
type Options struct {
	Prompt      string
	Delimiter   []byte
	HistorySize int
	Mode        lineedit.OutputMode

	// Highlighter colours echoed commands; nil disables colouring.
	Highlighter *Highlighter
	// Store receives every accepted command. Replay entries are loaded
	// from it into the history ring by Start.
	Store  HistoryStore
	Replay int

	// Width reports the terminal width for the history listing; nil or a
	// result of 0 disables truncation.
	Width  func() int
	Logger *log.Logger
}

// Session is one interactive shell on one terminal.
type Session struct {
	out    io.Writer
	ed     *lineedit.Editor
	opts   Options
	logger *log.Logger

	done    bool
	scratch []byte
}

// New creates a session writing to out.
func New(out io.Writer, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("shell")
	}
	size := opts.HistorySize
	if size <= 0 {
		size = lineedit.DefaultHistorySize
	}

	ed, err := lineedit.New(out, opts.Delimiter,
		lineedit.WithHistory(make([]byte, size)),
		lineedit.WithOutputMode(opts.Mode),
		lineedit.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create editor: %w", err)
	}

	return &Session{
		out:     out,
		ed:      ed,
		opts:    opts,
		logger:  logger,
		scratch: make([]byte, 0, lineedit.MaxLineLen*4),
	}, nil
}

// Start loads persisted history into the ring and writes the first prompt.
func (s *Session) Start() {
	s.replayHistory()
	s.write(s.opts.Prompt)
}

func (s *Session) replayHistory() {
	if s.opts.Store == nil || s.opts.Replay <= 0 {
		return
	}
	entries, err := s.opts.Store.Recent(s.opts.Replay)
	if err != nil {
		s.logger.Warn("Failed to load history", "err", err)
		return
	}
	loaded := 0
	for _, e := range entries {
		if s.ed.AddHistory(e.Line) {
			loaded++
		}
	}
	s.logger.Debug("Replayed history", "entries", loaded, "skipped", len(entries)-loaded)
}

// Feed processes raw input and reports whether the session has ended.
// Input after a quit command is discarded.
func (s *Session) Feed(p []byte) bool {
	for _, b := range p {
		if s.done {
			break
		}
		if line, ok := s.ed.ProcessByte(b); ok {
			s.accept(line)
		}
	}
	return s.done
}

// Done reports whether a quit command was accepted.
func (s *Session) Done() bool { return s.done }

// accept handles a completed line. line is only valid during the call.
func (s *Session) accept(line []byte) {
	if len(line) > 0 {
		s.write("\r\n" + acceptedPrefix)
		s.scratch = lineedit.AppendRendered(s.scratch[:0], line)
		if err := s.opts.Highlighter.Render(s.out, string(s.scratch)); err != nil {
			s.logger.Warn("Failed to echo command", "err", err)
		}

		if !s.ed.AddHistory(line) {
			s.logger.Debug("Command too long for history ring", "len", len(line))
		}
		if s.opts.Store != nil {
			if err := s.opts.Store.Append(line); err != nil {
				s.logger.Warn("Failed to persist command", "err", err)
			}
		}

		if run, ok := lookupBuiltin(line); ok && run(s) {
			s.write("\r\n")
			s.done = true
			return
		}
	}
	s.write("\r\n" + s.opts.Prompt)
}

func (s *Session) width() int {
	if s.opts.Width == nil {
		return 0
	}
	return s.opts.Width()
}

func (s *Session) write(text string) {
	if _, err := io.WriteString(s.out, text); err != nil {
		s.logger.Warn("Failed to write to terminal", "err", err)
	}
}
