// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: lineedit/history.go
// Summary: Circular store of NUL-terminated command lines.
// Notes: buf[0] and buf[len-1] are permanent NUL sentinels. Entries live in
//        buf[1:len-1] and wrap from the byte before the last sentinel to
//        offset 1. The only entry ever terminated by the last sentinel is one
//        that fills the whole usable region on its own.

package lineedit

import "bytes"

// DefaultHistorySize is the ring size used when no storage is supplied.
const DefaultHistorySize = 512

// minHistorySize fits the two sentinels plus one byte.
const minHistorySize = 3

type historyRing struct {
	buf    []byte
	oldest int // -1 when empty
	newest int // -1 when empty
	put    int
}

func (h *historyRing) init(buf []byte) {
	clear(buf)
	h.buf = buf
	h.oldest, h.newest = -1, -1
	h.put = 1
}

func (h *historyRing) empty() bool {
	return h.oldest < 0
}

// end is the index of the trailing sentinel.
func (h *historyRing) end() int {
	return len(h.buf) - 1
}

// usable is the number of bytes entries may occupy.
func (h *historyRing) usable() int {
	return len(h.buf) - 2
}

func (h *historyRing) next(pos int) int {
	pos++
	if pos == h.end() {
		pos = 1
	}
	return pos
}

func (h *historyRing) prev(pos int) int {
	pos--
	if pos == 0 {
		pos = h.end() - 1
	}
	return pos
}

// free returns the bytes available between put and oldest.
func (h *historyRing) free() int {
	if h.empty() {
		return h.usable()
	}
	d := h.oldest - h.put
	if d < 0 {
		d += h.usable()
	}
	return d
}

// commit stores entry as the newest line, evicting the oldest lines until it
// fits. Entries end at their first NUL, since a NUL inside the ring is a
// terminator. Entries of len(buf)-1 bytes or more are rejected.
func (h *historyRing) commit(entry []byte) bool {
	if i := bytes.IndexByte(entry, 0); i >= 0 {
		entry = entry[:i]
	}
	n := len(entry)
	if n >= len(h.buf)-1 {
		return false
	}

	if n == h.usable() {
		copy(h.buf[1:], entry)
		h.oldest, h.newest, h.put = 1, 1, 1
		return true
	}

	for h.free() < n+1 {
		if h.oldest == h.newest {
			h.oldest, h.newest = -1, -1
			break
		}
		h.oldest = h.seekForward(h.oldest)
	}

	start := h.put
	head := min(n, h.end()-start)
	copy(h.buf[start:start+head], entry[:head])
	copy(h.buf[1:], entry[head:])

	var term int
	if head < n {
		term = 1 + n - head
	} else {
		term = start + n
		if term == h.end() {
			term = 1
		}
	}
	h.buf[term] = 0
	h.put = h.next(term)

	if h.empty() {
		h.oldest = start
	}
	h.newest = start
	return true
}

// seekForward returns the start of the entry after the one at pos.
func (h *historyRing) seekForward(pos int) int {
	i := pos
	for h.buf[i] != 0 {
		i = h.next(i)
		if i == pos {
			return pos
		}
	}
	return h.next(i)
}

// seekBackward returns the start of the entry before the one at pos. The
// caller makes sure pos is not the oldest entry.
func (h *historyRing) seekBackward(pos int) int {
	i := h.prev(pos)
	for i != h.oldest {
		j := h.prev(i)
		if h.buf[j] == 0 {
			break
		}
		i = j
	}
	return i
}

// segments returns the entry at pos as one or two physical slices.
func (h *historyRing) segments(pos int) (head, tail []byte) {
	n := 0
	for i := pos; h.buf[i] != 0; {
		n++
		if i = h.next(i); i == pos {
			break
		}
	}
	if pos+n <= h.end() {
		return h.buf[pos : pos+n], nil
	}
	k := h.end() - pos
	return h.buf[pos:h.end()], h.buf[1 : 1+n-k]
}

// byteAt returns byte i of the entry at pos.
func (h *historyRing) byteAt(pos, i int) byte {
	p := pos + i
	if p >= h.end() {
		p -= h.end() - 1
	}
	return h.buf[p]
}
