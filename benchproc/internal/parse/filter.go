// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import "strconv"

// ParseFilter parses a filter expression.
func ParseFilter(q string) (Filter, error) {
	p := &parser{lex: lexer{q: q}}
	f := p.expr()
	if t := p.lex.next(false); t.kind != 0 {
		p.lex.fail(t.off, "unexpected "+strconv.Quote(t.text))
	}
	if p.lex.err != nil {
		return nil, p.lex.err
	}
	return f, nil
}

type parser struct {
	lex lexer
}

// expr parses and-expressions separated by OR.
func (p *parser) expr() Filter {
	terms := []Filter{p.and()}
	for p.lex.peek(false).kind == 'O' {
		p.lex.next(false)
		terms = append(terms, p.and())
	}
	return join(OpOr, terms)
}

// and parses matches separated by AND or nothing.
func (p *parser) and() Filter {
	terms := []Filter{p.match()}
	for {
		t := p.lex.peek(false)
		switch t.kind {
		case 'A':
			p.lex.next(false)
		case '(', '-', '*', 'w', 'q':
			terms = append(terms, p.match())
		case ')', 'O', 0:
			return join(OpAnd, terms)
		default:
			p.lex.fail(t.off, "unexpected "+strconv.Quote(t.text))
			return nil
		}
	}
}

func (p *parser) match() Filter {
	t := p.lex.next(false)
	switch t.kind {
	case '(':
		f := p.expr()
		if c := p.lex.next(false); c.kind != ')' {
			p.lex.fail(c.off, "missing \")\"")
			return nil
		}
		return f
	case '-':
		return &FilterOp{OpNot, []Filter{p.match()}}
	case '*':
		return &FilterOp{Op: OpAnd}
	case 'w', 'q':
		if p.lex.next(false).kind != ':' {
			p.lex.fail(t.off, "expected key:value")
			return nil
		}
		v := p.lex.next(true)
		switch v.kind {
		case 'w', 'q', 'r':
			return newMatch(t, v)
		case '(':
			return p.values(t)
		}
		p.lex.fail(t.off, "expected key:value")
		return nil
	}
	p.lex.fail(t.off, "expected key:value or subexpression")
	return nil
}

// values parses the rest of key:(v1 OR v2 ...) after the "(".
func (p *parser) values(key token) Filter {
	var terms []Filter
	for {
		v := p.lex.next(true)
		switch v.kind {
		case 'w', 'q', 'r':
			terms = append(terms, newMatch(key, v))
		default:
			p.lex.fail(v.off, "expected value")
			return nil
		}
		switch sep := p.lex.next(true); sep.kind {
		case ')':
			return &FilterOp{OpOr, terms}
		case 'O':
		default:
			p.lex.fail(sep.off, "value list must be separated by OR")
			return nil
		}
	}
}

func newMatch(key, val token) *FilterMatch {
	if val.kind == 'r' {
		return &FilterMatch{Key: key.text, Regexp: val.re, Off: key.off}
	}
	return &FilterMatch{Key: key.text, Lit: val.text, Off: key.off}
}
