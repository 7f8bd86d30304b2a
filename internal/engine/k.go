package engine

import (
	"go.uber.org/zap"

	"github.com/dustlang/dustrun/internal/dirmodel"
	"github.com/dustlang/dustrun/internal/effectlog"
	"github.com/dustlang/dustrun/internal/expr"
	"github.com/dustlang/dustrun/internal/value"
)

// runK executes a K-regime proc body: classical expression evaluation
// with no resource discipline.
func runK(proc *dirmodel.Proc, cfg Config, log *zap.Logger) (*Outcome, *Fault) {
	env := expr.NewEnvironment()
	effects := effectlog.New()
	time := effectlog.NewState()

	evalLet := func(_ string, exprStr string) (value.Value, error) {
		return expr.Eval(exprStr, env)
	}

	returned, fault := runBody(proc.Body, env, effects, time, evalLet, log)
	if fault != nil {
		return nil, &Fault{Err: fault, Effects: effects, Time: time}
	}
	return &Outcome{Returned: returned, Effects: effects, Time: time}, nil
}
