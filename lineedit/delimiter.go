// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: lineedit/delimiter.go
// Summary: Incremental matcher for the line delimiter.

package lineedit

// delimiter tracks how much of the configured line delimiter has been seen.
type delimiter struct {
	pattern []byte
	pos     int
}

func newDelimiter(pattern []byte) delimiter {
	p := make([]byte, len(pattern))
	copy(p, pattern)
	return delimiter{pattern: p}
}

// feed advances the match with b and reports a complete match.
//
// A mismatch resets the match without testing b against the start of the
// pattern again, so "aab" never completes the delimiter "ab".
func (d *delimiter) feed(b byte) bool {
	if b != d.pattern[d.pos] {
		d.pos = 0
		return false
	}
	d.pos++
	if d.pos == len(d.pattern) {
		d.pos = 0
		return true
	}
	return false
}

// held returns the delimiter prefix absorbed so far.
func (d *delimiter) held() []byte {
	return d.pattern[:d.pos]
}
