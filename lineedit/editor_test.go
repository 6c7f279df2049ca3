// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package lineedit

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	keyUp     = "\x1b[A"
	keyDown   = "\x1b[B"
	keyRight  = "\x1b[C"
	keyLeft   = "\x1b[D"
	keyDelete = "\x1b[3~"
)

func newTestEditor(t *testing.T, opts ...Option) (*Editor, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	e, err := New(&out, []byte("\r"), opts...)
	require.NoError(t, err)
	return e, &out
}

// typeInput feeds input and returns the completed lines as strings.
func typeInput(e *Editor, input string) []string {
	var lines []string
	e.Feed([]byte(input), func(line []byte) {
		lines = append(lines, string(line))
	})
	return lines
}

func content(e *Editor) string {
	return string(e.line.buf[:e.line.fill])
}

func TestEditor_NewValidatesArguments(t *testing.T) {
	_, err := New(io.Discard, nil)
	assert.ErrorIs(t, err, ErrEmptyDelimiter)

	_, err = New(io.Discard, []byte("\r"), WithHistory(make([]byte, 2)))
	assert.ErrorIs(t, err, ErrHistoryTooSmall)

	e, err := New(nil, []byte("\r"))
	require.NoError(t, err)
	assert.Equal(t, []string{"discarded"}, typeInput(e, "discarded\r"))
}

func TestEditor_Echo(t *testing.T) {
	tests := []struct {
		desc   string
		mode   OutputMode
		input  string
		echo   string
		line   string
		cursor int
	}{
		{
			desc:   "append",
			input:  "abc",
			echo:   "abc",
			line:   "abc",
			cursor: 3,
		},
		{
			desc:   "backspace at end",
			input:  "ab\x7f",
			echo:   "ab\b \b",
			line:   "a",
			cursor: 1,
		},
		{
			desc:   "ctrl-h is backspace",
			input:  "ab\b",
			echo:   "ab\b \b",
			line:   "a",
			cursor: 1,
		},
		{
			desc:   "backspace at start",
			input:  "\x7f\x7f",
			echo:   "",
			line:   "",
			cursor: 0,
		},
		{
			desc:   "insert mid-line",
			input:  "ac" + keyLeft + "b",
			echo:   "ac\b\x1b[@b",
			line:   "abc",
			cursor: 2,
		},
		{
			desc:   "insert mid-line reprint",
			mode:   Reprint,
			input:  "ac" + keyLeft + "b",
			echo:   "ac\bbc\b",
			line:   "abc",
			cursor: 2,
		},
		{
			desc:   "insert before long suffix reprint",
			mode:   Reprint,
			input:  "xabc" + keyLeft + keyLeft + keyLeft + keyLeft + "-",
			echo:   "xabc\b\b\b\b-xabc\x1b[4D",
			line:   "-xabc",
			cursor: 1,
		},
		{
			desc:   "delete forward",
			input:  "abc" + keyLeft + keyLeft + keyDelete,
			echo:   "abc\b\b\x1b[P",
			line:   "ac",
			cursor: 1,
		},
		{
			desc:   "delete forward reprint",
			mode:   Reprint,
			input:  "abc" + keyLeft + keyLeft + keyLeft + keyDelete,
			echo:   "abc\b\b\bbc \x1b[3D",
			line:   "bc",
			cursor: 0,
		},
		{
			desc:   "delete forward at end",
			input:  "abc" + keyDelete,
			echo:   "abc",
			line:   "abc",
			cursor: 3,
		},
		{
			desc:   "backspace mid-line",
			input:  "abc" + keyLeft + "\x7f",
			echo:   "abc\b\b\x1b[P",
			line:   "ac",
			cursor: 1,
		},
		{
			desc:   "backspace mid-line reprint",
			mode:   Reprint,
			input:  "abc" + keyLeft + "\x7f",
			echo:   "abc\b\bc \x1b[2D",
			line:   "ac",
			cursor: 1,
		},
		{
			desc:   "cursor bounds",
			input:  keyLeft + "ab" + keyRight + keyLeft + keyLeft + keyLeft + keyRight,
			echo:   "ab\b\b\x1b[C",
			line:   "ab",
			cursor: 1,
		},
		{
			desc:   "control byte",
			input:  "\x01",
			echo:   "^A",
			line:   "\x01",
			cursor: 1,
		},
		{
			desc:   "control byte occupies one position",
			input:  "a\x01b" + keyLeft + keyLeft + keyLeft + keyRight + keyRight,
			echo:   "a^Ab\b\x1b[2D\b\x1b[C\x1b[2C",
			line:   "a\x01b",
			cursor: 2,
		},
		{
			desc:   "backspace over control byte",
			input:  "\x01\x7f",
			echo:   "^A\x1b[2D  \x1b[2D",
			line:   "",
			cursor: 0,
		},
		{
			desc:   "insert control byte mid-line",
			input:  "ab" + keyLeft + "\x02",
			echo:   "ab\b\x1b[2@^B",
			line:   "a\x02b",
			cursor: 2,
		},
		{
			desc:   "delete control byte reprint",
			mode:   Reprint,
			input:  "\x01z" + keyLeft + keyLeft + keyDelete,
			echo:   "^Az\b\x1b[2Dz  \x1b[3D",
			line:   "z",
			cursor: 0,
		},
		{
			desc:   "high byte",
			input:  "\xe9",
			echo:   "M-i",
			line:   "\xe9",
			cursor: 1,
		},
		{
			desc:   "unknown csi",
			input:  "\x1b[99~",
			echo:   "^[[99~",
			line:   "^[[99~",
			cursor: 6,
		},
		{
			desc:   "unknown escape",
			input:  "\x1bq",
			echo:   "^[q",
			line:   "^[q",
			cursor: 3,
		},
		{
			desc:   "ss3 is consumed and echoed",
			input:  "\x1bOA",
			echo:   "^[OA",
			line:   "^[OA",
			cursor: 4,
		},
		{
			desc:   "overlong csi",
			input:  "\x1b[12345",
			echo:   "^[[12345",
			line:   "^[[12345",
			cursor: 8,
		},
		{
			desc:   "unknown csi mid-line",
			input:  "ab" + keyLeft + "\x1b[H",
			echo:   "ab\b\x1b[4@^[[H",
			line:   "a^[[Hb",
			cursor: 5,
		},
		{
			desc:   "up with no history",
			input:  "ab" + keyUp + keyDown,
			echo:   "ab",
			line:   "ab",
			cursor: 2,
		},
	}

	for _, tt := range tests {
		e, out := newTestEditor(t, WithOutputMode(tt.mode))
		assert.Empty(t, typeInput(e, tt.input), tt.desc)
		assert.Equal(t, tt.echo, out.String(), tt.desc)
		assert.Equal(t, tt.line, content(e), tt.desc)
		assert.Equal(t, tt.cursor, e.line.cursor, tt.desc)
	}
}

func TestEditor_CompletesLines(t *testing.T) {
	e, out := newTestEditor(t)

	assert.Equal(t, []string{"one", "", "three"}, typeInput(e, "one\r\rthx\x7free"+keyLeft+keyRight+"\r"))
	assert.Equal(t, 0, e.line.cursor)
	assert.Equal(t, 0, e.line.fill)
	assert.NotContains(t, out.String(), "\r", "the delimiter is not echoed")
}

func TestEditor_CompletedLineIsNulTerminated(t *testing.T) {
	e, _ := newTestEditor(t)
	typeInput(e, "abc")

	line, ok := e.ProcessByte('\r')
	require.True(t, ok)
	assert.Equal(t, "abc", string(line))
	assert.Equal(t, len(line), cap(line))
	assert.Equal(t, byte(0), e.line.buf[len(line)])
}

func TestEditor_MultiByteDelimiter(t *testing.T) {
	var out bytes.Buffer
	e, err := New(&out, []byte("\r\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"ab"}, typeInput(e, "ab\r\n"))
	assert.Equal(t, "ab", out.String())

	out.Reset()
	assert.Equal(t, []string{"a\rb"}, typeInput(e, "a\rb\r\n"))
	assert.Equal(t, "a^Mb", out.String())
}

func TestEditor_HeldDelimiterReplaysEscape(t *testing.T) {
	e, err := New(io.Discard, []byte("\x1b!"))
	require.NoError(t, err)

	assert.Equal(t, []string{"x"}, typeInput(e, "x\x1b!"))
	assert.Empty(t, typeInput(e, "ab\x1b[D"))
	assert.Equal(t, 1, e.line.cursor, "held ESC should start the cursor sequence")
}

func TestEditor_CapacityExhaustion(t *testing.T) {
	e, out := newTestEditor(t)
	full := strings.Repeat("x", MaxLineLen)

	typeInput(e, full)
	require.Equal(t, MaxLineLen, e.line.fill)

	out.Reset()
	typeInput(e, "y\x01\x1b[99~")
	assert.Empty(t, out.String())
	assert.Equal(t, full, content(e))

	assert.Equal(t, []string{full}, typeInput(e, "\r"))

	typeInput(e, strings.Repeat("z", MaxLineLen-3))
	typeInput(e, "\x1b[99~")
	assert.Equal(t, MaxLineLen-3, e.line.fill, "an echo that does not fit is dropped whole")
}

func TestEditor_DeleteEverythingFromStart(t *testing.T) {
	for _, mode := range []OutputMode{InsertDelete, Reprint} {
		e, out := newTestEditor(t, WithOutputMode(mode))
		const n = 5
		typeInput(e, "hello")
		typeInput(e, strings.Repeat(keyLeft, n))
		out.Reset()
		typeInput(e, strings.Repeat(keyDelete, n))

		assert.Equal(t, 0, e.line.fill, mode.String())
		assert.Equal(t, 0, e.line.cursor, mode.String())
		if mode == InsertDelete {
			assert.Equal(t, strings.Repeat("\x1b[P", n), out.String())
		} else {
			assert.Equal(t, "ello \x1b[5Dllo \x1b[4Dlo \x1b[3Do \x1b[2D \b", out.String())
		}
		assert.Equal(t, []string{""}, typeInput(e, "\r"))
	}
}

func TestEditor_BrowseHistory(t *testing.T) {
	e, out := newTestEditor(t)
	require.True(t, e.AddHistory([]byte("one")))
	require.True(t, e.AddHistory([]byte("two")))

	steps := []struct {
		key      string
		echo     string
		browsing bool
	}{
		{keyUp, "\x1b[Ktwo", true},
		{keyUp, "\x1b[3D\x1b[Kone", true},
		{keyUp, "", true},
		{keyDown, "\x1b[3D\x1b[Ktwo", true},
		{keyDown, "\x1b[3D\x1b[K", false},
		{keyDown, "", false},
	}
	for i, s := range steps {
		out.Reset()
		typeInput(e, s.key)
		assert.Equal(t, s.echo, out.String(), "step %d", i)
		assert.Equal(t, s.browsing, e.Browsing(), "step %d", i)
	}
	assert.Equal(t, []string{"one", "two"}, e.HistoryEntries())
}

func TestEditor_BrowseRestoresTypedLine(t *testing.T) {
	e, out := newTestEditor(t)
	require.True(t, e.AddHistory([]byte("previous")))

	typeInput(e, "ab")
	typeInput(e, keyUp)
	assert.Equal(t, "ab", string(e.line.buf[:2]), "browsing must not copy into the buffer")
	assert.Equal(t, len("previous"), e.line.fill)

	out.Reset()
	typeInput(e, keyDown)
	assert.Equal(t, "\x1b[8D\x1b[Kab", out.String())
	assert.Equal(t, 2, e.line.cursor)
	assert.Equal(t, []string{"ab"}, typeInput(e, "\r"))
}

func TestEditor_DeferredCopyOnEdit(t *testing.T) {
	e, _ := newTestEditor(t)
	require.True(t, e.AddHistory([]byte("prior")))

	typeInput(e, "ab")
	typeInput(e, keyUp)
	require.True(t, e.Browsing())

	typeInput(e, "x")
	assert.False(t, e.Browsing())
	assert.Equal(t, "priorx", content(e))
	assert.Equal(t, []string{"priorx"}, typeInput(e, "\r"))
}

func TestEditor_DeferredCopyOnDelete(t *testing.T) {
	e, _ := newTestEditor(t)
	require.True(t, e.AddHistory([]byte("make test")))

	typeInput(e, keyUp+keyLeft+keyLeft+keyLeft+keyLeft+"\x7f"+keyDelete)
	assert.Equal(t, "makeest", content(e))
	assert.Equal(t, 4, e.line.cursor)
}

func TestEditor_DelimiterWhileBrowsing(t *testing.T) {
	e, _ := newTestEditor(t)
	require.True(t, e.AddHistory([]byte("git status")))
	require.True(t, e.AddHistory([]byte("git log")))

	typeInput(e, "unfinished")
	assert.Equal(t, []string{"git status"}, typeInput(e, keyUp+keyUp+"\r"))
	assert.False(t, e.Browsing())
	assert.Equal(t, 0, e.line.fill)
}

func TestEditor_CursorMovesWhileBrowsing(t *testing.T) {
	e, out := newTestEditor(t)
	require.True(t, e.AddHistory([]byte("a\x01b")))

	typeInput(e, keyUp)
	require.Equal(t, 3, e.line.cursor)

	out.Reset()
	typeInput(e, keyLeft+keyLeft)
	assert.Equal(t, "\b\x1b[2D", out.String())
	assert.Equal(t, 1, e.line.cursor)
	assert.True(t, e.Browsing(), "cursor movement keeps the entry on display")

	out.Reset()
	typeInput(e, keyUp)
	assert.Empty(t, out.String(), "single entry: nothing older")

	out.Reset()
	typeInput(e, keyDown)
	assert.Equal(t, "\b\x1b[K", out.String())
}

func TestEditor_BrowseEvictedHistory(t *testing.T) {
	e, _ := newTestEditor(t, WithHistory(make([]byte, 16)))
	for _, s := range []string{"aaaa", "bbbb", "cccc"} {
		require.True(t, e.AddHistory([]byte(s)))
	}
	require.Equal(t, []string{"bbbb", "cccc"}, e.HistoryEntries())

	assert.Equal(t, []string{"bbbb"}, typeInput(e, keyUp+keyUp+keyUp+keyUp+"\r"))
}

func TestEditor_BrowseWrappedEntry(t *testing.T) {
	e, out := newTestEditor(t, WithHistory(make([]byte, 16)))
	require.True(t, e.AddHistory([]byte("aaaaaaaa")))
	require.True(t, e.AddHistory([]byte("bbbbbbb")))

	typeInput(e, keyUp)
	assert.Equal(t, "\x1b[Kbbbbbbb", out.String())

	typeInput(e, "x")
	assert.Equal(t, "bbbbbbbx", content(e))
}

func TestEditor_HistorySizeLimits(t *testing.T) {
	e, _ := newTestEditor(t, WithHistory(make([]byte, 16)))

	assert.False(t, e.AddHistory([]byte(strings.Repeat("n", 15))))
	assert.True(t, e.AddHistory([]byte(strings.Repeat("y", 14))))
	assert.Equal(t, []string{strings.Repeat("y", 14)}, typeInput(e, keyUp+"\r"))
}

func TestEditor_LongEntryIsCutToLineCapacity(t *testing.T) {
	e, _ := newTestEditor(t, WithHistory(make([]byte, 300)))
	long := strings.Repeat("q", 200)
	require.True(t, e.AddHistory([]byte(long)))

	typeInput(e, keyUp)
	assert.Equal(t, MaxLineLen, e.line.fill)
	assert.Equal(t, []string{long[:MaxLineLen]}, typeInput(e, "\r"))
}

func TestEditor_AddHistoryWhileBrowsing(t *testing.T) {
	e, _ := newTestEditor(t, WithHistory(make([]byte, 16)))
	require.True(t, e.AddHistory([]byte("first")))

	typeInput(e, keyUp)
	require.True(t, e.AddHistory([]byte("second one")))
	assert.False(t, e.Browsing())
	assert.Equal(t, []string{"first"}, typeInput(e, "\r"))
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("sink closed")
}

func TestEditor_SinkFailuresAreIgnored(t *testing.T) {
	w := &failingWriter{}
	e, err := New(w, []byte("\r"))
	require.NoError(t, err)

	assert.Equal(t, []string{"ac"}, typeInput(e, "abc"+keyLeft+"\x7f"+keyRight+"\r"))
	assert.Greater(t, w.calls, 0)
}

func TestEditor_LongReprintIsChunked(t *testing.T) {
	e, out := newTestEditor(t, WithOutputMode(Reprint))
	typeInput(e, strings.Repeat("\x01", 100))
	typeInput(e, strings.Repeat(keyLeft, 100))

	out.Reset()
	typeInput(e, "z")
	want := "z" + strings.Repeat("^A", 100) + "\x1b[200D"
	assert.Equal(t, want, out.String())
}

func TestEditor_InvariantsHoldForRandomInput(t *testing.T) {
	alphabet := []string{
		"a", "b", "\x01", "\xff", "\x7f", "\b", "\r",
		keyUp, keyDown, keyLeft, keyRight, keyDelete,
		"\x1b", "\x1b[", "\x1bO", "[", "~", "3",
	}

	for _, mode := range []OutputMode{InsertDelete, Reprint} {
		rng := rand.New(rand.NewSource(42))
		e, _ := newTestEditor(t, WithOutputMode(mode), WithHistory(make([]byte, 48)))

		for i := 0; i < 20000; i++ {
			tok := alphabet[rng.Intn(len(alphabet))]
			for j := 0; j < len(tok); j++ {
				line, ok := e.ProcessByte(tok[j])
				if ok && len(line) > 0 && rng.Intn(2) == 0 {
					e.AddHistory(line)
				}
				require.True(t, 0 <= e.line.cursor && e.line.cursor <= e.line.fill && e.line.fill <= MaxLineLen,
					"mode %v step %d: cursor=%d fill=%d", mode, i, e.line.cursor, e.line.fill)
				require.LessOrEqual(t, e.delim.pos, len(e.delim.pattern))
				require.LessOrEqual(t, e.esc.n, escCapacity)
			}
		}
	}
}

func TestEditor_NoAllocations(t *testing.T) {
	e, err := New(io.Discard, []byte("\r"))
	require.NoError(t, err)
	require.True(t, e.AddHistory([]byte("history entry")))

	input := []byte("abc" + keyLeft + "x\x01" + keyDelete + "\x7f\x1b[99~" + keyUp + "y" + keyUp + keyDown + "\r")
	allocs := testing.AllocsPerRun(100, func() {
		for _, b := range input {
			e.ProcessByte(b)
		}
	})
	assert.Zero(t, allocs)
}

func TestEditor_NulInLineKeepsHistoryWhole(t *testing.T) {
	e, _ := newTestEditor(t)

	lines := typeInput(e, "a\x00b\r")
	require.Equal(t, []string{"a\x00b"}, lines)
	require.True(t, e.AddHistory([]byte(lines[0])))
	require.True(t, e.AddHistory([]byte("c")))
	assert.Equal(t, []string{"a", "c"}, e.HistoryEntries())

	assert.Equal(t, []string{"c"}, typeInput(e, keyUp+"\r"))
	assert.Equal(t, []string{"a"}, typeInput(e, keyUp+keyUp+keyUp+"\r"))
}
