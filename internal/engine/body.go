package engine

import (
	"go.uber.org/zap"

	"github.com/dustlang/dustrun/internal/admissibility"
	"github.com/dustlang/dustrun/internal/dirmodel"
	"github.com/dustlang/dustrun/internal/effectlog"
	"github.com/dustlang/dustrun/internal/expr"
	"github.com/dustlang/dustrun/internal/faults"
	"github.com/dustlang/dustrun/internal/value"
)

// evalLetFunc evaluates a Let statement's expression, given the
// statement's bound name (Q's intrinsic recognition needs it; K ignores
// it).
type evalLetFunc func(name, exprStr string) (value.Value, error)

// runBody executes a K- or Q-shaped statement sequence: Let/Constrain/
// Prove/Effect run identically across both regimes, differing only in
// how a Let's expression is evaluated (classical vs intrinsic-aware).
// Return halts the body immediately without advancing time; every other
// executed statement advances time by one. It returns the returned
// value (nil if the body fell off the end) or the fault that halted it.
func runBody(body []dirmodel.Stmt, env *expr.Environment, effects *effectlog.Log, time *effectlog.State, evalLet evalLetFunc, log *zap.Logger) (*value.Value, *faults.Error) {
	for _, stmt := range body {
		switch stmt.Kind {
		case dirmodel.StmtLet:
			v, err := evalLet(stmt.Name, stmt.Expr)
			if err != nil {
				return nil, asFault(err)
			}
			env.Set(stmt.Name, v)
			time.Step()

		case dirmodel.StmtConstrain:
			if err := admissibility.Check(stmt.Predicate, env); err != nil {
				return nil, asFault(err)
			}
			time.Step()

		case dirmodel.StmtProve:
			if err := admissibility.Check(stmt.From, env); err != nil {
				return nil, asFault(err)
			}
			env.Set(stmt.Name, value.Unit())
			time.Step()

		case dirmodel.StmtEffect:
			rendered, err := evalPayload(stmt.EffectPayload, env)
			if err != nil {
				return nil, asFault(err)
			}
			effects.Append(stmt.EffectKind, rendered)
			log.Debug("effect appended", zap.String("kind", stmt.EffectKind))
			time.Step()

		case dirmodel.StmtReturn:
			v, err := expr.Eval(stmt.Expr, env)
			if err != nil {
				return nil, asFault(err)
			}
			return &v, nil

		default:
			return nil, faults.NewRuntime("unknown statement kind: %s", stmt.Kind)
		}
	}
	return nil, nil
}

// evalPayload evaluates an Effect statement's payload expression and
// renders it per the payload-rendering rules.
func evalPayload(payloadExpr string, env *expr.Environment) (string, error) {
	v, err := expr.Eval(payloadExpr, env)
	if err != nil {
		return "", err
	}
	rendered, err := v.Render()
	if err != nil {
		return "", faults.NewRuntime("%v", err)
	}
	return rendered, nil
}
