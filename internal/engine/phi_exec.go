package engine

import (
	"go.uber.org/zap"

	"github.com/dustlang/dustrun/internal/admissibility"
	"github.com/dustlang/dustrun/internal/dirmodel"
	"github.com/dustlang/dustrun/internal/effectlog"
	"github.com/dustlang/dustrun/internal/expr"
	"github.com/dustlang/dustrun/internal/faults"
	"github.com/dustlang/dustrun/internal/phi"
)

// runPhi prevalidates a Φ-regime proc's constraints, interprets its
// intrinsic-recognized body, and always concludes in a canonical
// refusal fault — Φ-regime execution never produces a success outcome
// in this version.
func runPhi(proc *dirmodel.Proc, cfg Config, log *zap.Logger) *Fault {
	env := expr.NewEnvironment()
	effects := effectlog.New()
	time := effectlog.NewState()
	witnesses := phi.NewWitnessBuilder()

	validation, err := phi.Validate(proc.Body, env)
	if err != nil {
		return &Fault{Err: asFault(err), Effects: effects, Time: time}
	}
	if !validation.Admissible {
		return &Fault{Err: faults.NewInadmissible("%s", validation.Message), Effects: effects, Time: time}
	}

	if fault := interpretPhiBody(proc.Body, env, effects, time, witnesses, log); fault != nil {
		return fault
	}

	return &Fault{Err: asFault(phi.RefuseExecution()), Effects: effects, Time: time}
}

func interpretPhiBody(body []dirmodel.Stmt, env *expr.Environment, effects *effectlog.Log, time *effectlog.State, witnesses *phi.WitnessBuilder, log *zap.Logger) *Fault {
	for _, stmt := range body {
		switch stmt.Kind {
		case dirmodel.StmtLet:
			name, inner, ok := parseIntrinsicCall(stmt.Expr)
			if ok && name == "phi_witness" {
				digestVal, err := expr.Eval(inner, env)
				if err != nil {
					return &Fault{Err: asFault(err), Effects: effects, Time: time}
				}
				digest, isStr := digestVal.AsString()
				if !isStr {
					return &Fault{Err: faults.NewRuntime("phi_witness argument must evaluate to String"), Effects: effects, Time: time}
				}
				w := witnesses.Admissible(digest, "")
				env.Set(stmt.Name, w.AsValue())
				log.Debug("phi witness minted", zap.String("id", w.ID))
			} else {
				v, err := expr.Eval(stmt.Expr, env)
				if err != nil {
					return &Fault{Err: asFault(err), Effects: effects, Time: time}
				}
				env.Set(stmt.Name, v)
			}
			time.Step()

		case dirmodel.StmtConstrain:
			time.Step()

		case dirmodel.StmtProve:
			if err := admissibility.Check(stmt.From, env); err != nil {
				return &Fault{Err: asFault(err), Effects: effects, Time: time}
			}
			w := witnesses.Admissible("pred:"+stmt.From, "")
			env.Set(stmt.Name, w.AsValue())
			time.Step()

		case dirmodel.StmtEffect:
			rendered, err := evalPayload(stmt.EffectPayload, env)
			if err != nil {
				return &Fault{Err: asFault(err), Effects: effects, Time: time}
			}
			effects.Append(stmt.EffectKind, rendered)
			time.Step()

		case dirmodel.StmtReturn:
			time.Step()

		default:
			return &Fault{Err: faults.NewRuntime("unknown statement kind: %s", stmt.Kind), Effects: effects, Time: time}
		}
	}
	return nil
}
