package engine

import (
	"go.uber.org/zap"

	"github.com/dustlang/dustrun/internal/dirmodel"
	"github.com/dustlang/dustrun/internal/effectlog"
	"github.com/dustlang/dustrun/internal/expr"
	"github.com/dustlang/dustrun/internal/qstate"
	"github.com/dustlang/dustrun/internal/value"
)

// runQ executes a Q-regime proc body. It behaves exactly like K except
// that a Let statement first inspects its expression text for one of
// the four linear-resource intrinsics before falling back to classical
// evaluation.
func runQ(proc *dirmodel.Proc, cfg Config, log *zap.Logger) (*Outcome, *Fault) {
	env := expr.NewEnvironment()
	effects := effectlog.New()
	time := effectlog.NewState()
	qst := qstate.New()

	evalLet := func(name, exprStr string) (value.Value, error) {
		intrinsic, inner, ok := parseIntrinsicCall(exprStr)
		if !ok {
			return expr.Eval(exprStr, env)
		}
		switch intrinsic {
		case "q_alloc":
			if _, err := qst.Alloc(name, inner); err != nil {
				return value.Value{}, err
			}
			log.Debug("q_alloc", zap.String("name", name), zap.String("type", inner))
			return value.Unit(), nil
		case "q_move":
			if err := qst.Move(inner, name); err != nil {
				return value.Value{}, err
			}
			log.Debug("q_move", zap.String("src", inner), zap.String("dst", name))
			return value.Unit(), nil
		case "q_use":
			if _, err := qst.RequireUsable(inner, "q_use"); err != nil {
				return value.Value{}, err
			}
			return value.Unit(), nil
		case "q_consume":
			if err := qst.Consume(inner, "q_consume"); err != nil {
				return value.Value{}, err
			}
			log.Debug("q_consume", zap.String("name", inner))
			return value.Unit(), nil
		default:
			return expr.Eval(exprStr, env)
		}
	}

	returned, fault := runBody(proc.Body, env, effects, time, evalLet, log)
	if fault != nil {
		return nil, &Fault{Err: fault, Effects: effects, Time: time}
	}
	return &Outcome{Returned: returned, Effects: effects, Time: time}, nil
}
