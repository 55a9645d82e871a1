package core

import "testing"

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer(src)
	var acc []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("lexing %q: %v", src, err)
		}
		acc = append(acc, tok)
		if tok.Kind == TokenEnd {
			return acc
		}
	}
}

func TestLexBasics(t *testing.T) {
	toks := lexAll(t, `enabled && properties.name == "Test Node" || count >= -1.5`)
	want := []struct {
		kind TokenKind
		text string
	}{
		{TokenIdent, "enabled"},
		{TokenOp, "&&"},
		{TokenIdent, "properties.name"},
		{TokenOp, "=="},
		{TokenString, "Test Node"},
		{TokenOp, "||"},
		{TokenIdent, "count"},
		{TokenOp, ">="},
		{TokenNumber, "-1.5"},
		{TokenEnd, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text != w.text {
			t.Errorf("token %d: got %v %q, want %v %q", i, toks[i].Kind, toks[i].Text, w.kind, w.text)
		}
	}
}

func TestLexBooleans(t *testing.T) {
	toks := lexAll(t, "true falsey false")
	if toks[0].Kind != TokenBool {
		t.Fatalf("'true' lexed as %s", toks[0].Kind)
	}
	if toks[1].Kind != TokenIdent {
		t.Fatalf("'falsey' lexed as %s", toks[1].Kind)
	}
	if toks[2].Kind != TokenBool {
		t.Fatalf("'false' lexed as %s", toks[2].Kind)
	}
}

func TestLexOperators(t *testing.T) {
	toks := lexAll(t, "< <= > >= ! != == && || ( )")
	kinds := []TokenKind{
		TokenOp, TokenOp, TokenOp, TokenOp, TokenOp, TokenOp, TokenOp,
		TokenOp, TokenOp, TokenLeftParen, TokenRightParen, TokenEnd,
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Errorf("token %d: got %s, want %s", i, toks[i].Kind, k)
		}
	}
}

func TestLexErrors(t *testing.T) {
	for _, src := range []string{`"unterminated`, `x @ y`, `1.2.3`, `a - b`} {
		l := NewLexer(src)
		var err error
		for err == nil {
			var tok Token
			tok, err = l.Next()
			if err == nil && tok.Kind == TokenEnd {
				t.Fatalf("lexing %q: expected an error", src)
			}
		}
		if _, is := err.(*LexError); !is {
			t.Fatalf("lexing %q: got %T (%v)", src, err, err)
		}
	}
}

func TestLexPositions(t *testing.T) {
	toks := lexAll(t, "  ab  ==")
	if toks[0].Pos != 2 {
		t.Fatalf("ident at %d", toks[0].Pos)
	}
	if toks[1].Pos != 6 {
		t.Fatalf("op at %d", toks[1].Pos)
	}
}
