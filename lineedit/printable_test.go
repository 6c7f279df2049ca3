// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package lineedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintable_Rendering(t *testing.T) {
	tests := []struct {
		in   byte
		want string
	}{
		{'a', "a"},
		{' ', " "},
		{'~', "~"},
		{0x00, "^@"},
		{0x01, "^A"},
		{0x03, "^C"},
		{0x1b, "^["},
		{0x1f, "^_"},
		{0x7f, "^?"},
		{0x80, "M-^@"},
		{0x9b, "M-^["},
		{0xc1, "M-A"},
		{0xa0, "M- "},
		{0xff, "M-^?"},
	}

	for _, tt := range tests {
		got := appendPrintable(nil, tt.in)
		assert.Equal(t, tt.want, string(got), "byte %#02x", tt.in)
		assert.Equal(t, len(tt.want), printableWidth(tt.in), "width of %#02x", tt.in)
	}
}

func TestPrintable_AppendsInPlace(t *testing.T) {
	var buf [8]byte
	dst := appendPrintable(buf[:0], 0x83)
	dst = appendPrintable(dst, 'z')

	assert.Equal(t, "M-^Cz", string(dst))
	assert.Equal(t, &buf[0], &dst[0], "append should reuse the caller's array")
}

func TestPrintable_RenderedWidth(t *testing.T) {
	assert.Equal(t, 0, renderedWidth(nil))
	assert.Equal(t, 1+2+4, renderedWidth([]byte{'x', 0x02, 0x85}))
}

func TestPrintable_AppendRendered(t *testing.T) {
	got := AppendRendered([]byte("> "), []byte("ls\x01\xe9"))
	assert.Equal(t, "> ls^AM-i", string(got))
	assert.Equal(t, renderedWidth([]byte("ls\x01\xe9")), len(got)-2)
}
