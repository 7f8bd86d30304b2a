package admissibility

import (
	"testing"

	"github.com/dustlang/dustrun/internal/expr"
	"github.com/dustlang/dustrun/internal/faults"
	"github.com/dustlang/dustrun/internal/value"
)

func TestCheckTruePasses(t *testing.T) {
	env := expr.NewEnvironment()
	env.Set("x", value.Int(1))
	if err := Check("x Eq 1", env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckFalseIsInadmissible(t *testing.T) {
	env := expr.NewEnvironment()
	env.Set("x", value.Int(1))
	err := Check("x Eq 2", env)
	if err == nil {
		t.Fatal("expected an error")
	}
	fe, ok := faults.As(err)
	if !ok || fe.Kind != faults.Inadmissible {
		t.Fatalf("got %v, want Inadmissible", err)
	}
	want := "constraint failed: x Eq 2"
	if fe.Message != want {
		t.Fatalf("message = %q, want %q", fe.Message, want)
	}
}

func TestCheckNonBoolIsConstraintFailure(t *testing.T) {
	err := Check("1", expr.NewEnvironment())
	if err == nil {
		t.Fatal("expected an error")
	}
	fe, ok := faults.As(err)
	if !ok || fe.Kind != faults.ConstraintFailure {
		t.Fatalf("got %v, want ConstraintFailure", err)
	}
}

func TestCheckEvaluationErrorPropagates(t *testing.T) {
	err := Check("unknown_name", expr.NewEnvironment())
	if err == nil {
		t.Fatal("expected an error")
	}
	fe, ok := faults.As(err)
	if !ok || fe.Kind != faults.Runtime {
		t.Fatalf("got %v, want Runtime", err)
	}
}
