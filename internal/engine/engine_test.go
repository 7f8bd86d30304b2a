package engine

import (
	"testing"

	"github.com/dustlang/dustrun/internal/dirmodel"
	"github.com/dustlang/dustrun/internal/faults"
)

func program(procs ...dirmodel.Proc) *dirmodel.Program {
	return &dirmodel.Program{Forges: []dirmodel.Forge{{Name: "main_forge", Procs: procs}}}
}

func TestKSuccessfulReturn(t *testing.T) {
	p := program(dirmodel.Proc{
		Regime: dirmodel.RegimeK,
		Name:   "main",
		Body: []dirmodel.Stmt{
			{Kind: dirmodel.StmtLet, Name: "x", Expr: "2 Add 3"},
			{Kind: dirmodel.StmtReturn, Expr: "x"},
		},
	})

	outcome, fault := RunEntrypoint(p, "main", Config{})
	if fault != nil {
		t.Fatalf("unexpected fault: %v", fault)
	}
	n, ok := outcome.Returned.AsInt()
	if !ok || n != 5 {
		t.Fatalf("returned = %v, want Int(5)", outcome.Returned)
	}
	if !outcome.Effects.Empty() {
		t.Fatalf("expected empty effects, got %+v", outcome.Effects)
	}
	if outcome.Time.Tick != 1 {
		t.Fatalf("tick = %d, want 1", outcome.Time.Tick)
	}
}

func TestKConstraintFailure(t *testing.T) {
	p := program(dirmodel.Proc{
		Regime: dirmodel.RegimeK,
		Name:   "main",
		Body: []dirmodel.Stmt{
			{Kind: dirmodel.StmtLet, Name: "x", Expr: "1"},
			{Kind: dirmodel.StmtConstrain, Predicate: "x Eq 2"},
			{Kind: dirmodel.StmtReturn, Expr: "x"},
		},
	})

	_, fault := RunEntrypoint(p, "main", Config{})
	if fault == nil {
		t.Fatal("expected a fault")
	}
	if fault.Err.Kind != faults.Inadmissible {
		t.Fatalf("kind = %v, want Inadmissible", fault.Err.Kind)
	}
	want := "constraint failed: x Eq 2"
	if fault.Err.Message != want {
		t.Fatalf("message = %q, want %q", fault.Err.Message, want)
	}
	if !fault.Effects.Empty() {
		t.Fatalf("expected empty effects, got %+v", fault.Effects)
	}
	if fault.Time.Tick != 1 {
		t.Fatalf("tick = %d, want 1", fault.Time.Tick)
	}
}

func TestKEffectThenFailure(t *testing.T) {
	p := program(dirmodel.Proc{
		Regime: dirmodel.RegimeK,
		Name:   "main",
		Body: []dirmodel.Stmt{
			{Kind: dirmodel.StmtEffect, EffectKind: "emit", EffectPayload: `"hi"`},
			{Kind: dirmodel.StmtLet, Name: "y", Expr: "1 Div 0"},
			{Kind: dirmodel.StmtReturn, Expr: "0"},
		},
	})

	_, fault := RunEntrypoint(p, "main", Config{})
	if fault == nil {
		t.Fatal("expected a fault")
	}
	if fault.Err.Kind != faults.Runtime || fault.Err.Message != "division by zero" {
		t.Fatalf("got %v", fault.Err)
	}
	if len(fault.Effects.Events) != 1 || fault.Effects.Events[0].Kind != "emit" || fault.Effects.Events[0].Payload != "hi" {
		t.Fatalf("effects = %+v", fault.Effects.Events)
	}
	if fault.Time.Tick != 1 {
		t.Fatalf("tick = %d, want 1", fault.Time.Tick)
	}
}

func TestQMoveThenUse(t *testing.T) {
	p := program(dirmodel.Proc{
		Regime: dirmodel.RegimeQ,
		Name:   "main",
		Body: []dirmodel.Stmt{
			{Kind: dirmodel.StmtLet, Name: "a", Expr: "q_alloc(QBit)"},
			{Kind: dirmodel.StmtLet, Name: "b", Expr: "q_move(a)"},
			{Kind: dirmodel.StmtLet, Name: "c", Expr: "q_use(a)"},
		},
	})

	_, fault := RunEntrypoint(p, "main", Config{})
	if fault == nil {
		t.Fatal("expected a fault")
	}
	if fault.Err.Kind != faults.Inadmissible {
		t.Fatalf("kind = %v, want Inadmissible", fault.Err.Kind)
	}
	want := "Q use failed: binding already moved: a (op=q_use)"
	if fault.Err.Message != want {
		t.Fatalf("message = %q, want %q", fault.Err.Message, want)
	}
	if fault.Time.Tick != 2 {
		t.Fatalf("tick = %d, want 2", fault.Time.Tick)
	}
}

func TestPhiRefusalWithWitness(t *testing.T) {
	p := program(dirmodel.Proc{
		Regime: dirmodel.RegimePhi,
		Name:   "main",
		Body: []dirmodel.Stmt{
			{Kind: dirmodel.StmtLet, Name: "d", Expr: `"digest:x"`},
			{Kind: dirmodel.StmtLet, Name: "w", Expr: "phi_witness(d)"},
		},
	})

	outcome, fault := RunEntrypoint(p, "main", Config{})
	if outcome != nil {
		t.Fatalf("expected no outcome, got %+v", outcome)
	}
	if fault == nil {
		t.Fatal("expected a fault")
	}
	if fault.Err.Kind != faults.UnsupportedRegime {
		t.Fatalf("kind = %v, want UnsupportedRegime", fault.Err.Kind)
	}
	want := "Φ-regime execution wiring into engine is a later step"
	if fault.Err.Message != want {
		t.Fatalf("message = %q, want %q", fault.Err.Message, want)
	}
	if fault.Time.Tick != 2 {
		t.Fatalf("tick = %d, want 2", fault.Time.Tick)
	}
	if !fault.Effects.Empty() {
		t.Fatalf("expected empty effects, got %+v", fault.Effects)
	}
}

func TestEntrypointMissing(t *testing.T) {
	p := program(dirmodel.Proc{Regime: dirmodel.RegimeK, Name: "not_main", Body: nil})

	_, fault := RunEntrypoint(p, "main", Config{})
	if fault == nil {
		t.Fatal("expected a fault")
	}
	if fault.Err.Kind != faults.EntrypointNotFound {
		t.Fatalf("kind = %v, want EntrypointNotFound", fault.Err.Kind)
	}
	if fault.Err.Message != "main" {
		t.Fatalf("message = %q, want %q", fault.Err.Message, "main")
	}
	if !fault.Effects.Empty() || fault.Time.Tick != 0 {
		t.Fatalf("expected zero context, got effects=%+v time=%d", fault.Effects, fault.Time.Tick)
	}
}

func TestEntrypointWithParamsIsRejected(t *testing.T) {
	p := program(dirmodel.Proc{
		Regime: dirmodel.RegimeK,
		Name:   "main",
		Params: []dirmodel.Param{{Name: "x", Type: "Int"}},
	})
	_, fault := RunEntrypoint(p, "main", Config{})
	if fault == nil || fault.Err.Kind != faults.Runtime {
		t.Fatalf("expected Runtime fault, got %v", fault)
	}
}
