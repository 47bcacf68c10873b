// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// A SyntaxError reports a malformed filter expression.
type SyntaxError struct {
	Query string // the filter expression
	Off   int    // byte offset of the error in Query
	Msg   string
}

func (e *SyntaxError) Error() string {
	// Point the caret at the rune, not the byte.
	pos := 0
	for i, r := range e.Query {
		if i >= e.Off {
			break
		}
		if unicode.IsGraphic(r) {
			pos++
		}
	}
	return fmt.Sprintf("syntax error: %s\n\t%s\n\t%*s^", e.Msg, e.Query, pos, "")
}

// A token is one lexical element of a filter. kind is 'w' for a bare
// word, 'q' for a quoted word, 'r' for a regexp, 'A' and 'O' for the
// AND and OR keywords, the operator byte itself, or 0 at the end.
type token struct {
	kind byte
	off  int
	text string // unescaped for quoted words
	re   *regexp.Regexp
}

// A lexer splits a filter into tokens. After the first error it
// returns only end tokens.
type lexer struct {
	q   string
	pos int
	err *SyntaxError
}

func (l *lexer) fail(off int, msg string) {
	if l.err == nil {
		l.err = &SyntaxError{l.q, off, msg}
	}
	l.pos = len(l.q)
}

func (l *lexer) eof() token {
	return token{off: len(l.q)}
}

func isOp(c byte) bool {
	return c == '(' || c == ')' || c == ':'
}

// "-" and "*" are operators only at the start of a word, so that
// "foo-bar" is one word.
func isStartOp(c byte) bool {
	return isOp(c) || c == '-' || c == '*'
}

// peek returns the next token without consuming it.
func (l *lexer) peek(values bool) token {
	pos := l.pos
	t := l.next(values)
	l.pos = pos
	return t
}

// next consumes the next token. A regexp is only recognized where
// values says a value may appear.
func (l *lexer) next(values bool) token {
	for l.err == nil && l.pos < len(l.q) {
		c := l.q[l.pos]
		r, size := utf8.DecodeRuneInString(l.q[l.pos:])
		switch {
		case unicode.IsSpace(r):
			l.pos += size
		case isStartOp(c):
			l.pos++
			return token{kind: c, off: l.pos - 1, text: l.q[l.pos-1 : l.pos]}
		case values && c == '/':
			return l.regexp()
		case c == '"':
			return l.quoted()
		default:
			return l.word()
		}
	}
	return l.eof()
}

func (l *lexer) quoted() token {
	start := l.pos
	end := start + 1
	for end < len(l.q) && (l.q[end] != '"' || l.q[end-1] == '\\') {
		end++
	}
	if end == len(l.q) {
		l.fail(start, "missing end quote")
		return l.eof()
	}
	s, err := strconv.Unquote(l.q[start : end+1])
	if err != nil {
		l.fail(start, "bad escape sequence")
		return l.eof()
	}
	l.pos = end + 1
	return token{kind: 'q', off: start, text: s}
}

func (l *lexer) word() token {
	start := l.pos
	end := len(l.q)
	for i, r := range l.q[start:] {
		if unicode.IsSpace(r) || (r < utf8.RuneSelf && isOp(byte(r))) {
			end = start + i
			break
		}
	}
	l.pos = end
	t := token{kind: 'w', off: start, text: l.q[start:end]}
	switch t.text {
	case "AND":
		t.kind = 'A'
	case "OR":
		t.kind = 'O'
	}
	return t
}

func (l *lexer) regexp() token {
	start := l.pos
	expr, rest, err := regexpParseUntil(l.q[start+1:], "/")
	if err == errNoDelim {
		l.fail(start, "missing close \"/\"")
		return l.eof()
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		l.fail(start, err.Error())
		return l.eof()
	}
	// A "/" inside the regexp must not be mistaken for the end, so
	// the closing "/" must be followed by a space or an operator.
	end := len(l.q) - len(rest) + 1
	if end < len(l.q) {
		r, _ := utf8.DecodeRuneInString(l.q[end:])
		if !unicode.IsSpace(r) && !isStartOp(l.q[end]) {
			l.fail(end, "regexp must be followed by space or an operator (unescaped \"/\"?)")
			return l.eof()
		}
	}
	l.pos = end
	return token{kind: 'r', off: start, text: expr, re: re}
}

var errNoDelim = errors.New("unterminated regexp")

// regexpParseUntil splits str at the first delim that is outside any
// character class or group. rest begins with delim. If there is no
// such delim it returns errNoDelim.
func regexpParseUntil(str, delim string) (expr, rest string, err error) {
	class, group := 0, 0
	for i := 0; i < len(str); i++ {
		if class == 0 && group == 0 && strings.HasPrefix(str[i:], delim) {
			return str[:i], str[i:], nil
		}
		switch str[i] {
		case '[':
			class++
		case ']':
			if class > 0 { // an unmatched "]" is a literal
				class--
			}
		case '(':
			if class == 0 {
				group++
			}
		case ')':
			if class == 0 {
				group--
			}
		case '\\':
			i++
		}
	}
	return str, "", errNoDelim
}

// quoteWord returns s in a form that lexes back to the word s.
func quoteWord(s string) string {
	if s == "" || s == "AND" || s == "OR" {
		return strconv.Quote(s)
	}
	for i, r := range s {
		if r == '"' || !unicode.IsGraphic(r) || unicode.IsSpace(r) ||
			(r < utf8.RuneSelf && isOp(byte(r))) ||
			(i == 0 && (r == '-' || r == '*' || r == '/')) {
			return strconv.Quote(s)
		}
	}
	return s
}
