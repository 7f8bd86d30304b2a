// Package dirmodel decodes and structurally validates the Dust
// Intermediate Representation JSON document the engine consumes.
package dirmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dustlang/dustrun/internal/faults"
)

// Regime is a procedure's execution discipline tag.
type Regime string

const (
	RegimeK   Regime = "K"
	RegimeQ   Regime = "Q"
	RegimePhi Regime = "Φ"
)

// Program is the top-level DIR document: a non-empty ordered list of
// Forges.
type Program struct {
	Forges []Forge `json:"forges" validate:"required,min=1,dive"`
}

// Forge groups shapes, procs, and binds under a name.
type Forge struct {
	Name   string  `json:"name" validate:"required"`
	Shapes []Shape `json:"shapes" validate:"dive"`
	Procs  []Proc  `json:"procs" validate:"dive"`
	Binds  []Bind  `json:"binds" validate:"dive"`
}

// Shape is a named record type declaration with ordered fields. The
// interpreter never instantiates Shapes directly; they round-trip for a
// future type checker.
type Shape struct {
	Name   string  `json:"name" validate:"required"`
	Fields []Field `json:"fields" validate:"dive"`
}

// Field is one named, typed member of a Shape.
type Field struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"ty" validate:"required"`
}

// Param is a named, typed procedure parameter. This version's engine
// rejects any entrypoint with a non-empty Params list (§4.G step 3 of the
// execution contract).
type Param struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"ty" validate:"required"`
}

// Uses declares a resource dependency a Q-regime proc draws on. Carried
// for round-trip; the interpreter resolves Q intrinsics from statement
// text, not from Uses.
type Uses struct {
	Resource string   `json:"resource" validate:"required"`
	Args     []string `json:"args"`
}

// Proc is a regime-tagged procedure: an ordered body of statements.
type Proc struct {
	Regime     Regime   `json:"regime" validate:"required,oneof=K Q Φ"`
	Name       string   `json:"name" validate:"required"`
	Params     []Param  `json:"params"`
	Uses       []Uses   `json:"uses"`
	Ret        string   `json:"ret"`
	Qualifiers []string `json:"qualifiers"`
	Body       []Stmt   `json:"body"`
}

// Bind describes a contract between a data source and a target. Loaded
// and ignored by the interpreter in this version (open question in the
// governing spec, resolved as "not wired").
type Bind struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Contract []Clause `json:"contract"`
}

// Clause is one key/operator/value triple inside a Bind contract.
type Clause struct {
	Key   string `json:"key"`
	Op    string `json:"op"`
	Value string `json:"value"`
}

// StmtKind discriminates a Stmt's variant.
type StmtKind string

const (
	StmtLet       StmtKind = "Let"
	StmtConstrain StmtKind = "Constrain"
	StmtProve     StmtKind = "Prove"
	StmtEffect    StmtKind = "Effect"
	StmtReturn    StmtKind = "Return"
)

// Stmt is one statement in a proc body. Exactly the fields relevant to
// its Kind are populated; the rest are zero.
type Stmt struct {
	Kind StmtKind `json:"kind" validate:"required,oneof=Let Constrain Prove Effect Return"`

	// Let
	Name string `json:"name,omitempty"`
	Expr string `json:"expr,omitempty"`

	// Constrain
	Predicate string `json:"predicate,omitempty"`

	// Prove
	From string `json:"from,omitempty"`

	// Effect
	EffectKind    string `json:"effect_kind,omitempty"`
	EffectPayload string `json:"effect_payload,omitempty"`

	// Return reuses Expr above.
}

// Load decodes a DIR JSON document, rejecting unknown fields, then
// structurally validates it. Decode failures surface as *faults.Error of
// kind DirLoad; validation failures surface as kind DirValidate.
func Load(data []byte) (*Program, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p Program
	if err := dec.Decode(&p); err != nil {
		return nil, faults.NewDirLoad("%v", err)
	}
	if dec.More() {
		return nil, faults.NewDirLoad("trailing data after DIR document")
	}

	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

var validate = validator.New()

// Validate checks the structural invariants DIR programs must satisfy:
// at least one forge, non-empty forge and proc names, and a known regime
// tag on every proc.
func Validate(p *Program) error {
	if err := validate.Struct(p); err != nil {
		return faults.NewDirValidate("%v", describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	ve, ok := err.(validator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return err.Error()
	}
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		msgs[i] = fmt.Sprintf("field %q failed %q constraint", fe.Namespace(), fe.Tag())
	}
	return strings.Join(msgs, "; ")
}
