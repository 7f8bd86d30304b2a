package dirmodel

import (
	"strings"
	"testing"

	"github.com/dustlang/dustrun/internal/faults"
)

func TestLoadValidProgram(t *testing.T) {
	src := `{"forges":[{"name":"f","shapes":[],"procs":[{"regime":"K","name":"main","params":[],"uses":[],"ret":"","qualifiers":[],"body":[]}],"binds":[]}]}`
	p, err := Load([]byte(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(p.Forges) != 1 || p.Forges[0].Procs[0].Regime != RegimeK {
		t.Fatalf("unexpected program: %+v", p)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	src := `{"forges":[{"name":"f","bogus_field":true}]}`
	_, err := Load([]byte(src))
	if err == nil {
		t.Fatal("expected an error")
	}
	fe, ok := faults.As(err)
	if !ok || fe.Kind != faults.DirLoad {
		t.Fatalf("got %v, want DirLoad", err)
	}
}

func TestValidateRejectsEmptyForges(t *testing.T) {
	p := &Program{Forges: []Forge{}}
	err := Validate(p)
	if err == nil {
		t.Fatal("expected an error")
	}
	fe, ok := faults.As(err)
	if !ok || fe.Kind != faults.DirValidate {
		t.Fatalf("got %v, want DirValidate", err)
	}
}

func TestValidateRejectsEmptyForgeName(t *testing.T) {
	p := &Program{Forges: []Forge{{Name: ""}}}
	if err := Validate(p); err == nil {
		t.Fatal("expected an error")
	}
}

func TestValidateConcatenatesEveryViolation(t *testing.T) {
	p := &Program{Forges: []Forge{{
		Name:  "",
		Procs: []Proc{{Regime: "X", Name: ""}},
	}}}
	err := Validate(p)
	if err == nil {
		t.Fatal("expected an error")
	}
	fe, ok := faults.As(err)
	if !ok || fe.Kind != faults.DirValidate {
		t.Fatalf("got %v, want DirValidate", err)
	}
	if !strings.Contains(fe.Message, "; ") {
		t.Fatalf("expected concatenated violations, got %q", fe.Message)
	}
	for _, want := range []string{"Forges[0].Name", "Forges[0].Procs[0].Regime", "Forges[0].Procs[0].Name"} {
		if !strings.Contains(fe.Message, want) {
			t.Fatalf("message %q missing violation for %q", fe.Message, want)
		}
	}
}

func TestValidateRejectsUnknownRegime(t *testing.T) {
	p := &Program{Forges: []Forge{{
		Name:  "f",
		Procs: []Proc{{Regime: "X", Name: "main"}},
	}}}
	if err := Validate(p); err == nil {
		t.Fatal("expected an error")
	}
}
