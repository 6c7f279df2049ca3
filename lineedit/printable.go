// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: lineedit/printable.go
// Summary: Caret-notation rendering of arbitrary bytes.
// Usage: Echo of literal input and of unrecognised escape sequences.

package lineedit

// maxPrintableWidth is the widest rendering of a single byte ("M-^X").
const maxPrintableWidth = 4

// appendPrintable appends the human-readable form of b to dst.
//
// Printable ASCII is appended as is, control bytes use caret notation (^C, ^?)
// and bytes with the high bit set get an "M-" prefix followed by the rendering
// of the low seven bits, the same convention as cat -v.
func appendPrintable(dst []byte, b byte) []byte {
	if b >= 0x80 {
		dst = append(dst, 'M', '-')
		b -= 0x80
	}
	switch {
	case b == 0x7f:
		return append(dst, '^', '?')
	case b < 0x20:
		return append(dst, '^', '@'+b)
	default:
		return append(dst, b)
	}
}

// printableWidth returns the number of screen columns appendPrintable uses for b.
func printableWidth(b byte) int {
	w := 0
	if b >= 0x80 {
		w = 2
		b -= 0x80
	}
	if b < 0x20 || b == 0x7f {
		return w + 2
	}
	return w + 1
}

// renderedWidth is the total screen width of p.
func renderedWidth(p []byte) int {
	n := 0
	for _, b := range p {
		n += printableWidth(b)
	}
	return n
}

// AppendRendered appends the rendering the editor uses on screen for every
// byte of p. Callers echoing a completed line can use it to match the display.
func AppendRendered(dst, p []byte) []byte {
	for _, b := range p {
		dst = appendPrintable(dst, b)
	}
	return dst
}
