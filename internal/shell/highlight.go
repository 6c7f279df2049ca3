// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/shell/highlight.go
// Summary: Shell syntax colouring for echoed command lines.

package shell

import (
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const highlightLexer = "bash"

// Highlighter colours a single command line with a Chroma style. A nil
// Highlighter writes text unchanged.
type Highlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

// NewHighlighter returns nil for an empty style name. Unknown names fall back
// to Chroma's default style.
func NewHighlighter(styleName string) *Highlighter {
	if styleName == "" {
		return nil
	}
	lexer := lexers.Get(highlightLexer)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Highlighter{
		lexer:     chroma.Coalesce(lexer),
		style:     styles.Get(styleName),
		formatter: formatters.TTY256,
	}
}

// Render writes text, coloured when h is set. text must be a single line of
// printable characters; the lexer's trailing newline is dropped.
func (h *Highlighter) Render(w io.Writer, text string) error {
	if h == nil || text == "" {
		_, err := io.WriteString(w, text)
		return err
	}

	it, err := h.lexer.Tokenise(nil, text)
	if err != nil {
		_, err = io.WriteString(w, text)
		return err
	}
	var sb strings.Builder
	if err := h.formatter.Format(&sb, h.style, it); err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.ReplaceAll(sb.String(), "\n", ""))
	return err
}
