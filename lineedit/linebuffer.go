// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: lineedit/linebuffer.go
// Summary: Fixed-capacity edit buffer with minimal-redraw terminal output.
// Notes: Buffer positions count stored bytes. Terminal movement counts the
//        rendered width of those bytes, so a stored 0x01 is one position but
//        two columns ("^A").

package lineedit

// MaxLineLen is the capacity of the edit buffer in bytes.
const MaxLineLen = 127

// lineBuffer holds the line being edited.
//
// Invariant: 0 <= cursor <= fill <= MaxLineLen. The content is buf[:fill];
// the extra byte leaves room for the NUL written by snapshot.
type lineBuffer struct {
	buf    [MaxLineLen + 1]byte
	cursor int
	fill   int
	mode   OutputMode
}

// insert places p at the cursor. Nothing happens if p does not fit.
func (l *lineBuffer) insert(o *emitter, p []byte) {
	if len(p) == 0 || l.fill+len(p) > MaxLineLen {
		return
	}

	if l.cursor == l.fill {
		copy(l.buf[l.fill:], p)
		l.fill += len(p)
		l.cursor = l.fill
		o.printables(p)
		return
	}

	copy(l.buf[l.cursor+len(p):l.fill+len(p)], l.buf[l.cursor:l.fill])
	copy(l.buf[l.cursor:], p)
	l.fill += len(p)

	switch l.mode {
	case InsertDelete:
		o.csi(renderedWidth(p), '@')
		o.printables(p)
	case Reprint:
		o.printables(l.buf[l.cursor:l.fill])
		o.back(renderedWidth(l.buf[l.cursor+len(p) : l.fill]))
	}
	l.cursor += len(p)
}

// eraseForward removes the byte under the cursor.
func (l *lineBuffer) eraseForward(o *emitter) {
	if l.cursor == l.fill {
		return
	}
	w := printableWidth(l.buf[l.cursor])
	copy(l.buf[l.cursor:], l.buf[l.cursor+1:l.fill])
	l.fill--
	l.redrawAfterErase(o, w)
}

// eraseBackward removes the byte before the cursor.
func (l *lineBuffer) eraseBackward(o *emitter) {
	if l.cursor == 0 {
		return
	}
	w := printableWidth(l.buf[l.cursor-1])

	if l.cursor == l.fill {
		l.cursor--
		l.fill--
		o.back(w)
		o.repeat(' ', w)
		o.back(w)
		return
	}

	copy(l.buf[l.cursor-1:], l.buf[l.cursor:l.fill])
	l.cursor--
	l.fill--
	o.back(w)
	l.redrawAfterErase(o, w)
}

// redrawAfterErase updates the screen once w columns have disappeared at the
// cursor. The cursor ends up where it started.
func (l *lineBuffer) redrawAfterErase(o *emitter, w int) {
	if l.mode == InsertDelete {
		o.csi(w, 'P')
		return
	}
	suffix := l.buf[l.cursor:l.fill]
	o.printables(suffix)
	o.repeat(' ', w)
	o.back(renderedWidth(suffix) + w)
}

// snapshot NUL-terminates the content, returns it and empties the buffer.
// The returned slice aliases the buffer and is only valid until the next edit.
func (l *lineBuffer) snapshot() []byte {
	l.buf[l.fill] = 0
	line := l.buf[:l.fill:l.fill]
	l.cursor, l.fill = 0, 0
	return line
}
