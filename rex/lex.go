package rex

import (
	"fmt"
	"strings"
)

// Lexer splits rex source into logical, comment-stripped lines,
// tracking 1-based line numbers. Grounded on util/semver/lex.go's
// lexer-struct idiom (accumulated first-error, next/peek pair),
// adapted from rune-at-a-time version lexing to line-at-a-time
// statement lexing, since rex's grammar is line-oriented.
type Lexer struct {
	raw []string
	pos int
	err error
}

// NewLexer splits src on newlines; CRLF line endings are tolerated.
func NewLexer(src string) *Lexer {
	lines := strings.Split(src, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return &Lexer{raw: lines}
}

// Next returns the next non-blank, comment-stripped line, or
// ok=false once every line has been consumed.
func (l *Lexer) Next() (line string, lineNo int, ok bool) {
	for l.pos < len(l.raw) {
		n := l.pos + 1
		text := stripComment(l.raw[l.pos])
		l.pos++
		if !quotesBalanced(text) {
			l.setError(fmt.Errorf("rex: line %d: unterminated quote", n))
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		return text, n, true
	}
	return "", 0, false
}

// quotesBalanced reports whether every quote on the line is closed.
func quotesBalanced(s string) bool {
	inSingle, inDouble := false, false
	for _, r := range s {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		}
	}
	return !inSingle && !inDouble
}

// Peek is like Next but does not advance the lexer.
func (l *Lexer) Peek() (string, int, bool) {
	save := l.pos
	line, n, ok := l.Next()
	l.pos = save
	return line, n, ok
}

// RawLine returns line number n (1-based) unstripped, for verbatim
// capture of function bodies. ok is false past the end of input.
func (l *Lexer) RawLine(n int) (string, bool) {
	if n < 1 || n > len(l.raw) {
		return "", false
	}
	return l.raw[n-1], true
}

// Pos reports the current 1-based "next line to read" position.
func (l *Lexer) Pos() int { return l.pos + 1 }

// SeekTo moves the lexer so the next Next() call reads line n.
func (l *Lexer) SeekTo(n int) { l.pos = n - 1 }

func (l *Lexer) setError(err error) {
	if err != nil && l.err == nil {
		l.err = err
	}
}

// Err returns the first error recorded by setError, if any.
func (l *Lexer) Err() error { return l.err }

// stripComment removes a trailing `#...` comment, respecting single-
// and double-quoted spans so a literal '#' inside a quoted alias
// command is not mistaken for a comment start.
func stripComment(s string) string {
	inSingle, inDouble := false, false
	for i, r := range s {
		switch {
		case r == '\'' && !inDouble:
			inSingle = !inSingle
		case r == '"' && !inSingle:
			inDouble = !inDouble
		case r == '#' && !inSingle && !inDouble:
			return s[:i]
		}
	}
	return s
}
