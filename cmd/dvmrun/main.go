// Package main — cmd/dvmrun/main.go
//
// dvmrun CLI entrypoint.
//
// Sequence:
//  1. Load config from --config, or Defaults() if not given.
//  2. Build the zap logger from the resolved log level/format.
//  3. Optionally start the Prometheus metrics server.
//  4. Optionally open the run ledger.
//  5. Read the DIR file named by the positional argument.
//  6. Load and structurally validate the DIR document.
//  7. Run the named entrypoint and project the result into a trace.
//  8. Print human-readable output, or the canonical trace JSON under
//     --emit-trace.
//
// Exit codes: 0 success, 2 file-read failure, 3 DIR load failure,
// 4 trace-serialization failure, 10 semantic execution failure.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dustlang/dustrun/internal/config"
	"github.com/dustlang/dustrun/internal/dirmodel"
	"github.com/dustlang/dustrun/internal/engine"
	"github.com/dustlang/dustrun/internal/ledger"
	"github.com/dustlang/dustrun/internal/observability"
	"github.com/dustlang/dustrun/internal/trace"
	"github.com/dustlang/dustrun/internal/value"
)

const (
	exitOK              = 0
	exitFileRead        = 2
	exitDirLoad         = 3
	exitTraceSerialize  = 4
	exitSemanticFailure = 10
)

var opts struct {
	configPath  string
	entry       string
	effects     string
	traceMode   bool
	emitTrace   bool
	quiet       bool
	ledgerPath  string
	metricsAddr string
}

func main() {
	root := &cobra.Command{
		Use:   "dvmrun <dir-file>",
		Short: "Run a DIR program's entrypoint on the Dust Virtual Machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(run(args[0]))
			return nil
		},
		SilenceUsage: true,
	}

	root.Flags().StringVar(&opts.configPath, "config", "", "path to a dvmrun config YAML file")
	root.Flags().StringVar(&opts.entry, "entry", "", "entrypoint name (overrides config; default main)")
	root.Flags().StringVar(&opts.effects, "effects", "", "effect mode: simulate|realize (overrides config)")
	root.Flags().BoolVar(&opts.traceMode, "trace", false, "also print the canonical trace JSON to stderr for diagnostics")
	root.Flags().BoolVar(&opts.emitTrace, "emit-trace", false, "print the canonical trace JSON to stdout instead of human-readable output")
	root.Flags().BoolVar(&opts.quiet, "quiet", false, "suppress the error message dvmrun would otherwise print to stderr on a Fault")
	root.Flags().StringVar(&opts.ledgerPath, "ledger", "", "path to a bbolt run ledger file (enables the ledger)")
	root.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (enables the metrics server)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitSemanticFailure)
	}
}

func run(dirPath string) int {
	cfg := resolveConfig()

	log, err := buildLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: logger init failed: %v\n", err)
		return exitSemanticFailure
	}
	defer log.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()
	if cfg.Metrics.Enabled {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := metrics.ServeMetrics(ctx, cfg.Metrics.Addr); err != nil {
				log.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	var led *ledger.Ledger
	if cfg.Ledger.Enabled {
		l, err := ledger.Open(cfg.Ledger.Path, cfg.Ledger.RetentionRuns, cfg.Ledger.OpenTimeout)
		if err != nil {
			log.Warn("ledger open failed, continuing without it", zap.Error(err))
		} else {
			led = l
			defer led.Close()
		}
	}

	data, err := os.ReadFile(dirPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading %q: %v\n", dirPath, err)
		return exitFileRead
	}

	program, err := dirmodel.Load(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading DIR: %v\n", err)
		return exitDirLoad
	}

	engineCfg := engine.Config{EffectMode: engine.EffectMode(cfg.Effects), Logger: log}
	tr := engine.RunEntrypointTrace(program, cfg.Entry, engineCfg)

	regime := entryRegime(program, cfg.Entry)
	if tr.Failure != nil {
		metrics.RecordRun(regime, "failure", uint64(tr.Failure.Time.Tick), string(tr.Failure.Error.Kind))
		metrics.EffectsAppendedTotal.Add(float64(len(tr.Failure.Effects.Events)))
	} else {
		metrics.RecordRun(regime, "success", uint64(tr.Success.Time.Tick), "")
		metrics.EffectsAppendedTotal.Add(float64(len(tr.Success.Effects.Events)))
	}

	traceJSON, jsonErr := json.Marshal(tr)
	if jsonErr == nil && led != nil {
		if err := led.AppendRun(cfg.Entry, regime, traceJSON); err != nil {
			log.Warn("ledger append failed", zap.Error(err))
		}
	}

	if opts.traceMode && jsonErr == nil {
		fmt.Fprintln(os.Stderr, string(traceJSON))
	}

	if opts.emitTrace {
		if jsonErr != nil {
			fmt.Fprintf(os.Stderr, "error serializing trace: %v\n", jsonErr)
			return exitTraceSerialize
		}
		pretty, err := json.MarshalIndent(tr, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error serializing trace: %v\n", err)
			return exitTraceSerialize
		}
		fmt.Println(string(pretty))
		if tr.Failure != nil {
			return exitSemanticFailure
		}
		return exitOK
	}

	if tr.Failure != nil {
		if !opts.quiet {
			fmt.Fprintf(os.Stderr, "%s: %s\n", tr.Failure.Error.Kind, tr.Failure.Error.Message)
		}
		return exitSemanticFailure
	}

	if tr.Success.Returned != nil {
		fmt.Println(formatValue(*tr.Success.Returned))
	}
	return exitOK
}

func resolveConfig() config.Config {
	cfg := config.Defaults()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			os.Exit(exitSemanticFailure)
		}
		cfg = *loaded
	}
	if opts.entry != "" {
		cfg.Entry = opts.entry
	}
	if opts.effects != "" {
		cfg.Effects = opts.effects
	}
	if opts.ledgerPath != "" {
		cfg.Ledger.Enabled = true
		cfg.Ledger.Path = opts.ledgerPath
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = opts.metricsAddr
	}
	return cfg
}

func entryRegime(program *dirmodel.Program, entry string) string {
	for _, forge := range program.Forges {
		for _, proc := range forge.Procs {
			if proc.Name == entry {
				return string(proc.Regime)
			}
		}
	}
	return "unknown"
}

// buildLogger constructs a zap.Logger with the given level and format.
func buildLogger(level, format string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	return cfg.Build()
}

// formatValue renders v the way a human-facing CLI would, distinct from
// the payload-rendering rules effect statements use: strings are
// Go-syntax quoted rather than raw.
func formatValue(v value.Value) string {
	switch v.Kind() {
	case value.KindInt:
		n, _ := v.AsInt()
		return fmt.Sprintf("%d", n)
	case value.KindBool:
		b, _ := v.AsBool()
		if b {
			return "true"
		}
		return "false"
	case value.KindString:
		s, _ := v.AsString()
		return fmt.Sprintf("%q", s)
	case value.KindUnit:
		return "unit"
	case value.KindStruct:
		var parts []string
		v.Fields().Range(func(k string, fv value.Value) bool {
			parts = append(parts, fmt.Sprintf("%s:%s", k, formatValue(fv)))
			return true
		})
		return fmt.Sprintf("%s{%s}", v.TypeName(), strings.Join(parts, ","))
	default:
		return "<unknown>"
	}
}
