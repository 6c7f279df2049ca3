// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: lineedit/escape.go
// Summary: Escape sequence recogniser for cursor and delete keys.
// Notes: Only ESC [ A/B/C/D and ESC [ 3 ~ carry meaning. SS3 sequences are
//        consumed and echoed, everything else is echoed in caret notation.

package lineedit

type escState int

const (
	escNone escState = iota
	escStarted
	escSS3
	escCSI
)

func (s escState) String() string {
	switch s {
	case escNone:
		return "none"
	case escStarted:
		return "started"
	case escSS3:
		return "ss3"
	case escCSI:
		return "csi"
	}
	return "unknown"
}

// escCapacity bounds a captured sequence, ESC included.
const escCapacity = 6

// escAction is what a finished sequence asks the editor to do.
type escAction int

const (
	actNone    escAction = iota // sequence still in progress
	actUnknown                  // echo the capture as literal text
	actHistoryPrev
	actHistoryNext
	actCursorRight
	actCursorLeft
	actDeleteForward
)

// escParser accumulates one escape sequence at a time.
type escParser struct {
	state escState
	raw   [escCapacity]byte
	n     int
}

func (p *escParser) active() bool {
	return p.state != escNone
}

// start begins a new sequence with the ESC byte already seen.
func (p *escParser) start() {
	p.state = escStarted
	p.raw[0] = asciiESC
	p.n = 1
}

// captured returns the bytes of the sequence seen so far, ESC included.
// It stays valid until the next call to start.
func (p *escParser) captured() []byte {
	return p.raw[:p.n]
}

// feed consumes the next byte of a sequence. When the sequence is finished,
// either recognised or rejected, the parser returns to escNone and the action
// is reported; actNone means more bytes are needed.
func (p *escParser) feed(b byte) escAction {
	p.raw[p.n] = b
	p.n++

	switch p.state {
	case escStarted:
		switch b {
		case '[':
			p.state = escCSI
			return actNone
		case 'O':
			p.state = escSS3
			return actNone
		}
		return p.finish(actUnknown)
	case escSS3:
		return p.finish(actUnknown)
	case escCSI:
		if b >= 0x40 && b <= 0x7e {
			return p.finish(p.interpret())
		}
		if p.n == escCapacity {
			return p.finish(actUnknown)
		}
		return actNone
	}
	return p.finish(actUnknown)
}

// interpret classifies a complete CSI sequence.
func (p *escParser) interpret() escAction {
	body := p.raw[2:p.n]
	switch len(body) {
	case 1:
		switch body[0] {
		case 'A':
			return actHistoryPrev
		case 'B':
			return actHistoryNext
		case 'C':
			return actCursorRight
		case 'D':
			return actCursorLeft
		}
	case 2:
		if body[0] == '3' && body[1] == '~' {
			return actDeleteForward
		}
	}
	return actUnknown
}

func (p *escParser) finish(a escAction) escAction {
	p.state = escNone
	return a
}
