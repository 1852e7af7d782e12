package astshim

import (
	"strings"
	"unicode"

	"github.com/AbdelazizMoustafa10m/rebuild/internal/rerrors"
)

// lexer is a minimal hand-rolled scanner over workflow-file source: it
// knows how to skip whitespace and '#' line comments, and to recognize the
// small set of tokens (idents, quoted strings, punctuation) the parser
// needs. It deliberately collapses "ident" (must start with a letter or
// '_') and "branch ident" (may start with a digit) into one permissive
// identifier charset -- [A-Za-z0-9_] -- since workflow-file identifiers are
// short, unambiguous names and this shim has no separate need to
// disambiguate numeric branch literals from ordinary ones.
type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *lexer) peekByte() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
	}
	return b
}

func (l *lexer) skipWS() {
	for !l.atEnd() {
		b := l.peekByte()
		switch {
		case b == '#':
			for !l.atEnd() && l.peekByte() != '\n' {
				l.advance()
			}
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			l.advance()
		default:
			return
		}
	}
}

func isIdentByte(b byte) bool {
	return unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b)) || b == '_'
}

// ident consumes an identifier starting at the current (already
// whitespace-skipped) position. Returns "", false if the current position
// isn't an identifier start.
func (l *lexer) ident() (string, bool) {
	start := l.pos
	for !l.atEnd() && isIdentByte(l.peekByte()) {
		l.advance()
	}
	if l.pos == start {
		return "", false
	}
	return l.src[start:l.pos], true
}

// quotedString consumes a '"'-delimited string, honoring '\"' and '\\'
// escapes, having already consumed the opening quote.
func (l *lexer) quotedString() (string, error) {
	var sb strings.Builder
	for {
		if l.atEnd() {
			return "", rerrors.New(rerrors.KindUnsupportedFeature, "line %d: unterminated string literal", l.line)
		}
		b := l.advance()
		if b == '"' {
			return sb.String(), nil
		}
		if b == '\\' && !l.atEnd() {
			sb.WriteByte(l.advance())
			continue
		}
		sb.WriteByte(b)
	}
}

// expect skips whitespace, then requires the next byte equal b, consuming
// it. Returns an error naming what was expected otherwise.
func (l *lexer) expect(b byte) error {
	l.skipWS()
	if l.atEnd() || l.peekByte() != b {
		return rerrors.New(rerrors.KindUnsupportedFeature, "line %d: expected %q", l.line, string(b))
	}
	l.advance()
	return nil
}

// peekAfterWS returns the next significant byte without consuming it.
func (l *lexer) peekAfterWS() byte {
	l.skipWS()
	return l.peekByte()
}
