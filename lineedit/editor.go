// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: lineedit/editor.go
// Summary: Byte-at-a-time line editor session.
// Usage: Transports feed raw input with ProcessByte and get back completed
//        lines; all echo and cursor control goes to the configured writer.
// Notes: An Editor never allocates after New and is not safe for concurrent
//        use. Browsing history shows an entry without copying it; the copy
//        happens on the first edit or when the line is completed.

package lineedit

import (
	"errors"
	"io"

	"github.com/charmbracelet/log"
)

var (
	// ErrEmptyDelimiter is returned by New when no delimiter is given.
	ErrEmptyDelimiter = errors.New("lineedit: empty delimiter")
	// ErrHistoryTooSmall is returned by New when history storage is shorter than 3 bytes.
	ErrHistoryTooSmall = errors.New("lineedit: history storage too small")
)

// OutputMode selects how mid-line edits are redrawn.
type OutputMode int

const (
	// InsertDelete uses the terminal's insert/delete character sequences.
	InsertDelete OutputMode = iota
	// Reprint rewrites the rest of the line and moves the cursor back, which
	// works on terminals without ICH/DCH support.
	Reprint
)

func (m OutputMode) String() string {
	switch m {
	case InsertDelete:
		return "insert"
	case Reprint:
		return "reprint"
	}
	return "unknown"
}

// Option configures an Editor.
type Option func(*Editor)

// WithHistory makes the editor keep its history ring in buf. The editor owns
// buf from then on.
func WithHistory(buf []byte) Option {
	return func(e *Editor) {
		e.histStorage = buf
	}
}

// WithOutputMode selects the redraw strategy. The default is InsertDelete.
func WithOutputMode(m OutputMode) Option {
	return func(e *Editor) {
		e.line.mode = m
	}
}

// WithLogger enables debug logging of unrecognised input and sink failures.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		e.logger = l
	}
}

// Editor is one line-editing session.
type Editor struct {
	out   emitter
	delim delimiter
	esc   escParser
	line  lineBuffer
	hist  historyRing

	// current is the history entry on display, -1 when not browsing.
	current int
	// fillBak is the line length saved when browsing started.
	fillBak int

	histStorage []byte
	histDefault [DefaultHistorySize]byte
	lit         [1]byte
	scratch     [escCapacity * maxPrintableWidth]byte
	logger      *log.Logger
}

// New returns an editor writing its output to out and completing lines on
// delim. A nil out discards output.
func New(out io.Writer, delim []byte, opts ...Option) (*Editor, error) {
	if len(delim) == 0 {
		return nil, ErrEmptyDelimiter
	}

	e := &Editor{current: -1}
	for _, opt := range opts {
		opt(e)
	}

	storage := e.histStorage
	if storage == nil {
		storage = e.histDefault[:]
	}
	if len(storage) < minHistorySize {
		return nil, ErrHistoryTooSmall
	}

	e.hist.init(storage)
	e.delim = newDelimiter(delim)
	e.out.w = out
	e.out.logger = e.logger
	return e, nil
}

// ProcessByte feeds one input byte. When b completes the delimiter the
// finished line is returned with ok set; the slice is borrowed from the
// editor and valid until the next call.
func (e *Editor) ProcessByte(b byte) (line []byte, ok bool) {
	defer e.out.flush()

	if e.esc.active() {
		e.escape(b)
		return nil, false
	}

	held := len(e.delim.held())
	if e.delim.feed(b) {
		e.deferredCopy()
		return e.line.snapshot(), true
	}
	if len(e.delim.held()) > 0 {
		return nil, false
	}

	// The match broke: what was held back is ordinary input after all.
	for _, h := range e.delim.pattern[:held] {
		e.dispatch(h)
	}
	e.dispatch(b)
	return nil, false
}

// Feed runs every byte of p through ProcessByte and calls fn for each
// completed line.
func (e *Editor) Feed(p []byte, fn func(line []byte)) {
	for _, b := range p {
		if line, ok := e.ProcessByte(b); ok && fn != nil {
			fn(line)
		}
	}
}

// AddHistory stores line as the newest history entry. It reports false when
// the line is too long for the ring.
func (e *Editor) AddHistory(line []byte) bool {
	e.deferredCopy()
	return e.hist.commit(line)
}

// HistoryEntries returns a copy of the stored entries, oldest first.
func (e *Editor) HistoryEntries() []string {
	if e.hist.empty() {
		return nil
	}
	var entries []string
	for pos := e.hist.oldest; ; pos = e.hist.seekForward(pos) {
		head, tail := e.hist.segments(pos)
		entries = append(entries, string(head)+string(tail))
		if pos == e.hist.newest {
			break
		}
	}
	return entries
}

// Browsing reports whether a history entry is on display.
func (e *Editor) Browsing() bool {
	return e.current >= 0
}

func (e *Editor) dispatch(b byte) {
	if e.esc.active() {
		e.escape(b)
		return
	}

	switch b {
	case asciiDEL, asciiBS:
		e.deferredCopy()
		e.line.eraseBackward(&e.out)
	case asciiESC:
		e.esc.start()
	default:
		e.lit[0] = b
		e.insert(e.lit[:])
	}
}

func (e *Editor) escape(b byte) {
	switch e.esc.feed(b) {
	case actNone:
	case actHistoryPrev:
		e.browsePrevious()
	case actHistoryNext:
		e.browseNext()
	case actCursorRight:
		e.cursorRight()
	case actCursorLeft:
		e.cursorLeft()
	case actDeleteForward:
		e.deferredCopy()
		e.line.eraseForward(&e.out)
	case actUnknown:
		e.echoUnknown()
	}
}

// echoUnknown inserts the caret rendering of a rejected escape sequence.
func (e *Editor) echoUnknown() {
	text := e.scratch[:0]
	for _, b := range e.esc.captured() {
		text = appendPrintable(text, b)
	}
	if e.logger != nil {
		e.logger.Debug("unrecognised escape sequence", "seq", string(text))
	}
	e.insert(text)
}

func (e *Editor) insert(p []byte) {
	e.deferredCopy()
	e.line.insert(&e.out, p)
}

// at returns byte i of what is on display: the browsed entry or the buffer.
func (e *Editor) at(i int) byte {
	if e.current >= 0 {
		return e.hist.byteAt(e.current, i)
	}
	return e.line.buf[i]
}

func (e *Editor) cursorRight() {
	if e.line.cursor == e.line.fill {
		return
	}
	e.out.forward(printableWidth(e.at(e.line.cursor)))
	e.line.cursor++
}

func (e *Editor) cursorLeft() {
	if e.line.cursor == 0 {
		return
	}
	e.line.cursor--
	e.out.back(printableWidth(e.at(e.line.cursor)))
}

// clearDisplay moves back to the start of the line and erases to its end.
func (e *Editor) clearDisplay() {
	w := 0
	for i := 0; i < e.line.cursor; i++ {
		w += printableWidth(e.at(i))
	}
	e.out.back(w)
	e.out.csi(1, 'K')
}

func (e *Editor) browsePrevious() {
	if e.hist.empty() {
		return
	}
	if e.current < 0 {
		e.fillBak = e.line.fill
		e.clearDisplay()
		e.current = e.hist.newest
	} else {
		if e.current == e.hist.oldest {
			return
		}
		e.clearDisplay()
		e.current = e.hist.seekBackward(e.current)
	}
	e.showEntry()
}

func (e *Editor) browseNext() {
	if e.current < 0 {
		return
	}
	e.clearDisplay()
	if e.current == e.hist.newest {
		e.current = -1
		e.line.fill = e.fillBak
		e.line.cursor = e.line.fill
		e.out.printables(e.line.buf[:e.line.fill])
		return
	}
	e.current = e.hist.seekForward(e.current)
	e.showEntry()
}

// showEntry renders the current entry, cut to the buffer capacity, and puts
// the cursor after it.
func (e *Editor) showEntry() {
	head, tail := e.hist.segments(e.current)
	n := min(len(head)+len(tail), MaxLineLen)
	for i := 0; i < n; i++ {
		e.out.printable(e.at(i))
	}
	e.line.fill = n
	e.line.cursor = n
}

// deferredCopy turns the entry on display into buffer content.
func (e *Editor) deferredCopy() {
	if e.current < 0 {
		return
	}
	head, tail := e.hist.segments(e.current)
	n := e.line.fill
	k := copy(e.line.buf[:n], head)
	copy(e.line.buf[k:n], tail)
	e.current = -1
}
