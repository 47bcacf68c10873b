// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parse

import "testing"

func TestParseFilter(t *testing.T) {
	check := func(query string, want string) {
		t.Helper()
		q, err := ParseFilter(query)
		if err != nil {
			t.Errorf("%s: unexpected error %s", query, err)
		} else if got := q.String(); got != want {
			t.Errorf("%s: got %s, want %s", query, got, want)
		}
	}
	checkErr := func(query, error string, pos int) {
		t.Helper()
		_, err := ParseFilter(query)
		if se, _ := err.(*SyntaxError); se == nil || se.Msg != error || se.Off != pos {
			t.Errorf("%s: want error %s at %d; got %s", query, error, pos, err)
		}
	}
	check(`*`, `*`)
	check(`m:1000`, `m:1000`)
	checkErr(`m`, "expected key:value", 0)
	checkErr(`m :`, "expected key:value", 0)
	check(`m :1000`, `m:1000`)
	check(`m : 1000`, `m:1000`)
	checkErr(`m:`, "expected key:value", 0)
	checkErr(``, "expected key:value or subexpression", 0)
	checkErr(`()`, "expected key:value or subexpression", 1)
	checkErr(`AND`, "expected key:value or subexpression", 0)
	check(`".method":"Dense serial multiplication"`, `.method:"Dense serial multiplication"`)
	check(`"a\"":"b c"`, `"a\"":"b c"`)
	check(`"a\u2603":"b c"`, `a☃:"b c"`)
	checkErr(`"a\z":"b c"`, "bad escape sequence", 0)
	checkErr(`m "b`, "missing end quote", 2)
	check("a-b:c", `a-b:c`)
	check("a*b:c", `a*b:c`)
	check(`.label:"OR"`, `.label:"OR"`)

	// Parens
	check(`(m:1000)`, `m:1000`)
	checkErr(`(m:1000`, "missing \")\"", 7)
	checkErr(`(m:1000))`, "unexpected \")\"", 8)

	// Operators
	check(`m:1000 sparsity:0.5 iterations:5`, `(m:1000 AND sparsity:0.5 AND iterations:5)`)
	check(`-m:1000`, `-m:1000`)
	check(`-*`, `-*`)
	check(`a:b AND c:d`, `(a:b AND c:d)`)
	check(`-a:b AND c:d`, `(-a:b AND c:d)`)
	check(`-(a:b AND c:d)`, `-(a:b AND c:d)`)
	check(`a:b AND * AND c:d`, `(a:b AND * AND c:d)`)
	check(`a:b OR c:d`, `(a:b OR c:d)`)
	check(`a:b AND c:d OR e:f AND g:h`, `((a:b AND c:d) OR (e:f AND g:h))`)
	check(`a:b AND (c:d OR e:f) AND g:h`, `(a:b AND (c:d OR e:f) AND g:h)`)
	checkErr(`a:b :c`, "unexpected \":\"", 4)

	// Regexp match
	checkErr("a:/b", "missing close \"/\"", 2)
	checkErr("a:/[[:foo:]]/", "error parsing regexp: invalid character class range: `[:foo:]`", 2)
	checkErr("a:/b/c", "regexp must be followed by space or an operator (unescaped \"/\"?)", 5)
	check("a:/b[/](/)\\/c/", "a:/b[/](/)\\/c/")
	check(".method:/^CSR/ threads:4", "(.method:/^CSR/ AND threads:4)")

	// Value lists
	check(`iterations:(5 OR 10)`, `(iterations:5 OR iterations:10)`)
	check(`m:1000 iterations:(5 OR 10)`, `(m:1000 AND (iterations:5 OR iterations:10))`)
	check(`a:(b OR "c " OR /d/)`, `(a:b OR a:"c " OR a:/d/)`)
	checkErr(`a:(b c)`, "value list must be separated by OR", 5)
	checkErr(`a:(b AND c)`, "value list must be separated by OR", 5)
	checkErr(`a:(b OR AND)`, "expected value", 8)
	checkErr(`a:()`, "expected value", 3)
}

func TestFilterMatch(t *testing.T) {
	q, err := ParseFilter(`.method:/parallel/`)
	if err != nil {
		t.Fatal(err)
	}
	m := q.(*FilterMatch)
	if !m.MatchString("CSR parallel multiplication") || m.MatchString("CSR serial multiplication") {
		t.Errorf("regexp %s matched wrongly", m)
	}
	m = &FilterMatch{Key: "m", Lit: "1000"}
	if !m.MatchString("1000") || m.MatchString("10000") {
		t.Errorf("literal %s matched wrongly", m)
	}
}

func TestSyntaxErrorCaret(t *testing.T) {
	_, err := ParseFilter(`☃:x ☃:(`)
	if err == nil {
		t.Fatal("want error")
	}
	// The caret counts runes, not bytes.
	want := "syntax error: expected value\n\t☃:x ☃:(\n\t       ^"
	if got := err.Error(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
