package token

import (
	"testing"
)

func TestLookup(t *testing.T) {
	tf := LookupIdent("function", 3)
	if tf.Type != FUNCTION {
		t.Errorf("LookupIdent(function) returned %v, expected FUNCTION", tf.DebugString())
	}
	if tf.Line != 3 {
		t.Errorf("LookupIdent(function) lost the line: %v", tf.DebugString())
	}
	tt := LookupIdent("true", 1)
	if tt.Type != BOOLEAN || tt.Value != true {
		t.Errorf("LookupIdent(true) returned %#v, expected BOOLEAN true", tt)
	}
	tn := LookupIdent("false", 1)
	if tn.Type != BOOLEAN || tn.Value != false {
		t.Errorf("LookupIdent(false) returned %#v, expected BOOLEAN false", tn)
	}
	tnull := LookupIdent("null", 1)
	if tnull.Type != NULL || tnull.Value != nil {
		t.Errorf("LookupIdent(null) returned %#v, expected NULL nil", tnull)
	}
	tu := LookupIdent("unknown", 1)
	if tu.Type != IDENT {
		t.Errorf("LookupIdent(unknown) returned %v, expected IDENT", tu.DebugString())
	}
	if tu.Value != "unknown" {
		t.Errorf("LookupIdent(unknown) value %v, expected 'unknown'", tu.Value)
	}
	if LookupIdent("and", 1).Type != AND || LookupIdent("or", 1).Type != OR {
		t.Errorf("and/or should be operators")
	}
}

func TestDebugString(t *testing.T) {
	tok := New(GTEQ, ">=", 12)
	expected := `GTEQ:">="@12`
	if tok.DebugString() != expected {
		t.Errorf("Unexpected DebugString: %s vs %s", tok.DebugString(), expected)
	}
	if New(EOF, "", 1).String() != "end of input" {
		t.Errorf("EOF should read as end of input")
	}
	if Type(200).String() != "Type(200)" {
		t.Errorf("unexpected out of range name %q", Type(200).String())
	}
}

func TestIsOperand(t *testing.T) {
	for _, tok := range []Token{New(IDENT, "x", 1), New(NUMBER, "1", 1), New(RPAREN, ")", 1), New(RBRACKET, "]", 1)} {
		if !tok.IsOperand() {
			t.Errorf("%s should end an operand", tok.DebugString())
		}
	}
	for _, tok := range []Token{New(PLUS, "+", 1), New(LPAREN, "(", 1), New(COMMA, ",", 1), New(RETURN, "return", 1)} {
		if tok.IsOperand() {
			t.Errorf("%s should not end an operand", tok.DebugString())
		}
	}
}

func TestInfo(t *testing.T) {
	i := Info()
	for _, k := range []string{"function", "end", "if", "then", "else", "return", "while", "for", "to", "step", "null", "true", "false"} {
		if !i.Keywords.Has(k) {
			t.Errorf("missing keyword %q", k)
		}
		if !IsKeyword(k) {
			t.Errorf("IsKeyword(%q) false", k)
		}
	}
	if !i.Operators.Has("and") || !i.Operators.Has("<=") {
		t.Errorf("missing operators in %v", i.Operators)
	}
	if i.Keywords.Has("and") {
		t.Errorf("and should be an operator, not a keyword")
	}
}
