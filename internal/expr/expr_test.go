package expr

import (
	"testing"

	"github.com/dustlang/dustrun/internal/value"
)

func eval(t *testing.T, src string, env *Environment) value.Value {
	t.Helper()
	if env == nil {
		env = NewEnvironment()
	}
	v, err := Eval(src, env)
	if err != nil {
		t.Fatalf("Eval(%q): %v", src, err)
	}
	return v
}

func TestArithmeticPrecedence(t *testing.T) {
	// Mul binds tighter than Add: 2 Add 3 Mul 4 == 2 + (3*4) == 14.
	v := eval(t, "2 Add 3 Mul 4", nil)
	n, ok := v.AsInt()
	if !ok || n != 14 {
		t.Fatalf("got %v, want Int(14)", v)
	}
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	v := eval(t, "(2 Add 3) Mul 4", nil)
	n, _ := v.AsInt()
	if n != 20 {
		t.Fatalf("got %d, want 20", n)
	}
}

func TestComparisonAndLogic(t *testing.T) {
	v := eval(t, "1 Lt 2 And 3 Gt 2", nil)
	b, ok := v.AsBool()
	if !ok || !b {
		t.Fatalf("got %v, want Bool(true)", v)
	}
}

func TestIdentifierLookup(t *testing.T) {
	env := NewEnvironment()
	env.Set("x", value.Int(9))
	v := eval(t, "x Add 1", env)
	n, _ := v.AsInt()
	if n != 10 {
		t.Fatalf("got %d, want 10", n)
	}
}

func TestUnknownIdentifierIsRuntimeError(t *testing.T) {
	_, err := Eval("missing", NewEnvironment())
	if err == nil {
		t.Fatal("expected error for unknown identifier")
	}
}

func TestDivisionByZero(t *testing.T) {
	_, err := Eval("1 Div 0", NewEnvironment())
	if err == nil {
		t.Fatal("expected division by zero error")
	}
	if err.Error() != "Runtime: division by zero" {
		t.Fatalf("got %v", err)
	}
}

func TestStringLiteralEscapes(t *testing.T) {
	v := eval(t, `"a\nb\"c"`, nil)
	s, ok := v.AsString()
	if !ok || s != "a\nb\"c" {
		t.Fatalf("got %q", s)
	}
}

func TestEqStructuralOnSameKind(t *testing.T) {
	v := eval(t, `"foo" Eq "foo"`, nil)
	b, _ := v.AsBool()
	if !b {
		t.Fatal("expected true")
	}
}

func TestEqTypeMismatchIsError(t *testing.T) {
	_, err := Eval("1 Eq true", NewEnvironment())
	if err == nil {
		t.Fatal("expected type mismatch error")
	}
}

func TestNegativeIntLiteral(t *testing.T) {
	v := eval(t, "-5 Add 2", nil)
	n, _ := v.AsInt()
	if n != -3 {
		t.Fatalf("got %d, want -3", n)
	}
}

func TestNonChainingComparison(t *testing.T) {
	// "1 Lt 2 Lt 3" should fail to parse as a chain; parseCmp consumes
	// only one comparison, leaving a trailing "Lt 3" that the top-level
	// Parse rejects as an unexpected token.
	_, err := Parse("1 Lt 2 Lt 3")
	if err == nil {
		t.Fatal("expected parse error for chained comparison")
	}
}
