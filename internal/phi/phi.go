// Package phi implements the Φ-regime's constraint prevalidation pass and
// its deterministic witness stub builder.
package phi

import (
	"fmt"

	"github.com/dustlang/dustrun/internal/admissibility"
	"github.com/dustlang/dustrun/internal/dirmodel"
	"github.com/dustlang/dustrun/internal/expr"
	"github.com/dustlang/dustrun/internal/faults"
	"github.com/dustlang/dustrun/internal/ordered"
	"github.com/dustlang/dustrun/internal/value"
)

// WitnessKind discriminates the two forms a witness attestation can take.
type WitnessKind string

const (
	Admissible  WitnessKind = "Admissible"
	NonExistent WitnessKind = "NonExistent"
)

// Witness is a deterministic attestation of local admissibility (or its
// absence) produced during Φ interpretation.
type Witness struct {
	Kind             WitnessKind
	ID               string
	ConstraintDigest string
	Note             string
}

// AsValue renders w as the Struct form the DVM value model carries it in:
// type "PhiWitness" with string fields kind, id, constraint_digest, note,
// in that order.
func (w Witness) AsValue() value.Value {
	fields := ordered.New[value.Value]()
	fields.Set("kind", value.String(string(w.Kind)))
	fields.Set("id", value.String(w.ID))
	fields.Set("constraint_digest", value.String(w.ConstraintDigest))
	fields.Set("note", value.String(w.Note))
	return value.Struct("PhiWitness", fields)
}

// WitnessBuilder mints strictly increasing witness ids within one Φ
// execution, starting from 1.
type WitnessBuilder struct {
	counter uint64
}

// NewWitnessBuilder returns a builder with no ids issued yet.
func NewWitnessBuilder() *WitnessBuilder {
	return &WitnessBuilder{}
}

func (b *WitnessBuilder) nextID() string {
	b.counter++
	return fmt.Sprintf("Φwitness:%d", b.counter)
}

// Admissible mints an Admissible witness over the given digest.
func (b *WitnessBuilder) Admissible(digest, note string) Witness {
	return Witness{Kind: Admissible, ID: b.nextID(), ConstraintDigest: digest, Note: note}
}

// NonExistentWitness mints a NonExistent witness over the given digest.
func (b *WitnessBuilder) NonExistentWitness(digest, note string) Witness {
	return Witness{Kind: NonExistent, ID: b.nextID(), ConstraintDigest: digest, Note: note}
}

// Validation is the result of prevalidating a Φ proc body.
type Validation struct {
	Admissible bool
	Message    string
}

// Validate walks a proc body and evaluates every Constrain statement
// against env without mutating it. A false or non-Bool predicate
// collapses into a LocallyInadmissible result carrying the admissibility
// checker's inner message; any other evaluation error propagates
// unchanged. An all-clear walk reports LocallyAdmissible.
func Validate(body []dirmodel.Stmt, env *expr.Environment) (Validation, error) {
	for _, stmt := range body {
		if stmt.Kind != dirmodel.StmtConstrain {
			continue
		}
		if err := admissibility.Check(stmt.Predicate, env); err != nil {
			fe, ok := faults.As(err)
			if !ok {
				return Validation{}, err
			}
			switch fe.Kind {
			case faults.Inadmissible, faults.ConstraintFailure:
				return Validation{Admissible: false, Message: fe.Message}, nil
			default:
				return Validation{}, err
			}
		}
	}
	return Validation{Admissible: true}, nil
}

// RefuseExecution is the canonical deterministic refusal every Φ
// execution ends in once its interpretation pass completes. The message
// text is part of the external conformance surface.
func RefuseExecution() error {
	return faults.NewUnsupportedRegime("Φ-regime execution wiring into engine is a later step")
}
