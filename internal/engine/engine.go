// Package engine implements the DVM's regime dispatch and the three
// per-regime interpreters (K, Q, Φ) that do the actual statement
// execution. It is single-threaded and fully synchronous: every call to
// RunEntrypoint owns its own environment, resource state, witness
// builder, effect log, and time state, and shares none of it with any
// other call.
package engine

import (
	"go.uber.org/zap"

	"github.com/dustlang/dustrun/internal/dirmodel"
	"github.com/dustlang/dustrun/internal/effectlog"
	"github.com/dustlang/dustrun/internal/faults"
	"github.com/dustlang/dustrun/internal/trace"
	"github.com/dustlang/dustrun/internal/value"
)

// EffectMode selects how Effect statements are handled. Both modes log
// identically in this version; Realize is carried for a future realizer
// registry (see the design notes on the governing specification).
type EffectMode string

const (
	Simulate EffectMode = "simulate"
	Realize  EffectMode = "realize"
)

// Config tunes a single RunEntrypoint call. The zero Config runs in
// Simulate mode with no logging.
type Config struct {
	EffectMode EffectMode
	Logger     *zap.Logger
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

// Outcome is a successful run's result: the returned value (if the body
// reached a Return), the effect log, and the final time state.
type Outcome struct {
	Returned *value.Value
	Effects  *effectlog.Log
	Time     *effectlog.State
}

// Fault is a failed run's result: the error that halted execution, plus
// the effect log and time state accumulated up to (but not including)
// the failing statement.
type Fault struct {
	Err     *faults.Error
	Effects *effectlog.Log
	Time    *effectlog.State
}

func (f *Fault) Error() string { return f.Err.Error() }

func asFault(err error) *faults.Error {
	if fe, ok := faults.As(err); ok {
		return fe
	}
	return faults.NewRuntime("%v", err)
}

func faultFrom(err error, effects *effectlog.Log, time *effectlog.State) *Fault {
	if effects == nil {
		effects = effectlog.New()
	}
	if time == nil {
		time = effectlog.NewState()
	}
	return &Fault{Err: asFault(err), Effects: effects, Time: time}
}

// RunEntrypoint validates the program, locates the named entrypoint,
// rejects entrypoints declaring call-time parameters, and dispatches
// execution to the regime-specific interpreter.
func RunEntrypoint(program *dirmodel.Program, entryName string, cfg Config) (*Outcome, *Fault) {
	if err := dirmodel.Validate(program); err != nil {
		return nil, faultFrom(err, nil, nil)
	}

	proc, ok := findProc(program, entryName)
	if !ok {
		return nil, faultFrom(faults.NewEntrypointNotFound(entryName), nil, nil)
	}

	if len(proc.Params) > 0 {
		return nil, faultFrom(faults.NewRuntime("entrypoint %q must not declare params", entryName), nil, nil)
	}

	log := cfg.logger().With(zap.String("entry", entryName), zap.String("regime", string(proc.Regime)))
	log.Debug("entrypoint dispatch")

	switch proc.Regime {
	case dirmodel.RegimeK:
		return runK(proc, cfg, log)
	case dirmodel.RegimeQ:
		return runQ(proc, cfg, log)
	case dirmodel.RegimePhi:
		return nil, runPhi(proc, cfg, log)
	default:
		return nil, faultFrom(faults.NewUnsupportedRegime("unknown regime: %s", proc.Regime), nil, nil)
	}
}

// RunEntrypointTrace runs entryName and projects the result directly
// into the canonical trace surface.
func RunEntrypointTrace(program *dirmodel.Program, entryName string, cfg Config) trace.Trace {
	outcome, fault := RunEntrypoint(program, entryName, cfg)
	if fault != nil {
		return trace.OfFailure(&trace.Failure{
			Error:   trace.FromError(fault.Err),
			Effects: fault.Effects,
			Time:    fault.Time,
		})
	}
	return trace.OfSuccess(&trace.Success{
		Returned: outcome.Returned,
		Effects:  outcome.Effects,
		Time:     outcome.Time,
	})
}

func findProc(program *dirmodel.Program, name string) (*dirmodel.Proc, bool) {
	for fi := range program.Forges {
		forge := &program.Forges[fi]
		for pi := range forge.Procs {
			if forge.Procs[pi].Name == name {
				return &forge.Procs[pi], true
			}
		}
	}
	return nil, false
}
