// Package admissibility implements the DVM's constraint checker: the
// single operation both the K/Q interpreters' Constrain/Prove statements
// and the Φ-regime validator reduce to.
package admissibility

import (
	"github.com/dustlang/dustrun/internal/expr"
	"github.com/dustlang/dustrun/internal/faults"
)

// Check evaluates predicate against env. A non-Bool result raises
// ConstraintFailure; a false result raises Inadmissible with the
// constraint-failed message carrying the predicate's own source text; a
// true result succeeds.
func Check(predicate string, env *expr.Environment) error {
	v, err := expr.Eval(predicate, env)
	if err != nil {
		return err
	}
	b, ok := v.AsBool()
	if !ok {
		return faults.NewConstraintFailure("predicate did not evaluate to Bool: %s", predicate)
	}
	if !b {
		return faults.NewInadmissible("constraint failed: %s", predicate)
	}
	return nil
}
