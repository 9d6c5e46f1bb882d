// Command fmfind reads a first-order problem file and searches for a
// finite model of increasing size, following the teacher's
// cmd/catalog/start.go shape: an options struct bound to pflag flags, a
// RunE closure that builds a logger and a cancellable context, and a
// run method that does the actual work.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/fmfinder/internal/inputfmt"
	"github.com/operator-framework/fmfinder/internal/signals"
	"github.com/operator-framework/fmfinder/pkg/fmfind"
	"github.com/operator-framework/fmfinder/pkg/symorder"
)

type options struct {
	inputPath   string
	dimacsPath  string
	startSize   int
	useConstAsN bool
	symmetry    float64
	widgetOrder string
	symbolOrder string
	useModelCap bool
	satBackend  string
	timeLimit   time.Duration
	debug       bool
}

func newRootCmd() *cobra.Command {
	o := options{}

	cmd := &cobra.Command{
		Use:          "fmfind",
		Short:        "Searches for a finite model of a first-order clause set",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			if o.debug {
				logger.SetLevel(logrus.DebugLevel)
			}

			ctx, cancel := context.WithCancel(signals.Context())
			defer cancel()

			return o.run(ctx, logger)
		},
	}

	cmd.Flags().StringVar(&o.inputPath, "input", "", "path to the YAML problem file (required)")
	cmd.Flags().StringVar(&o.dimacsPath, "dimacs-out", "", "if set, write the CNF of the round that found a model to this path")
	cmd.Flags().IntVar(&o.startSize, "start-size", 1, "smallest model size to try")
	cmd.Flags().BoolVar(&o.useConstAsN, "constants-as-start", false, "start from the total constant count instead of --start-size")
	cmd.Flags().Float64Var(&o.symmetry, "symmetry-ratio", 1.0, "canonicity axioms cover ceil(ratio * max model size) grounded terms per sort (all of them when the size is unbounded, none at 0), in [0,1]")
	cmd.Flags().StringVar(&o.widgetOrder, "widget-order", "function-first", "grounded term order: function-first, argument-first, or diagonal")
	cmd.Flags().StringVar(&o.symbolOrder, "symbol-order", "occurrence", "symbol order: occurrence, preprocessed-usage, or usage")
	cmd.Flags().BoolVar(&o.useModelCap, "use-model-size-cap", false, "add the 'value n is taken somewhere' axiom for arity <= 1 signatures")
	cmd.Flags().StringVar(&o.satBackend, "sat-backend", "gini", "SAT backend: gini, gophersat, or dimacs")
	cmd.Flags().DurationVar(&o.timeLimit, "time-limit", 0, "abort the search after this long (0 disables the limit)")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "enable debug logging")

	return cmd
}

func (o *options) run(ctx context.Context, logger *logrus.Logger) error {
	if o.inputPath == "" {
		return fmt.Errorf("fmfind: --input is required")
	}

	f, err := os.Open(o.inputPath)
	if err != nil {
		return fmt.Errorf("fmfind: %w", err)
	}
	defer f.Close()

	sig, clauses, err := inputfmt.Load(f)
	if err != nil {
		return err
	}

	widgetOrder, err := parseWidgetOrder(o.widgetOrder)
	if err != nil {
		return err
	}
	symbolOrder, err := parseSymbolOrder(o.symbolOrder)
	if err != nil {
		return err
	}

	opts := []fmfind.Option{
		fmfind.WithInput(sig, clauses),
		fmfind.WithStartSize(o.startSize),
		fmfind.WithConstantsAsStart(o.useConstAsN),
		fmfind.WithSymmetryRatio(o.symmetry),
		fmfind.WithWidgetOrder(widgetOrder),
		fmfind.WithSymbolOrder(symbolOrder),
		fmfind.WithUseModelSizeCap(o.useModelCap),
		fmfind.WithSATBackend(o.satBackend),
		fmfind.WithLogger(logger),
	}
	if o.timeLimit > 0 {
		opts = append(opts, fmfind.WithTimeLimit(o.timeLimit))
	}
	if o.dimacsPath != "" {
		dump, err := os.Create(o.dimacsPath)
		if err != nil {
			return fmt.Errorf("fmfind: %w", err)
		}
		defer dump.Close()
		opts = append(opts, fmfind.WithDIMACSDump(dump))
	}

	finder, err := fmfind.New(opts...)
	if err != nil {
		return err
	}

	outcome, err := runFinder(ctx, finder)
	if err != nil {
		var refutation fmfind.Refutation
		switch {
		case errors.As(err, &refutation):
			fmt.Println("refutation: the clause set is unsatisfiable")
			return nil
		case errors.Is(err, fmfind.ErrTimeLimit):
			fmt.Printf("time limit reached at model size %d\n", outcome.N)
			return nil
		default:
			return err
		}
	}

	fmt.Printf("model found, size %d\n", outcome.N)
	fmt.Print(outcome.Model.String())
	return nil
}

// runFinder recovers a fmfind.InvariantViolation panic, the one place in
// the pipeline where such a panic is meant to surface as an ordinary
// error rather than crash the process.
func runFinder(ctx context.Context, finder *fmfind.Finder) (out *fmfind.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			if v, ok := r.(fmfind.InvariantViolation); ok {
				err = v
				return
			}
			panic(r)
		}
	}()
	return finder.Run(ctx)
}

func parseWidgetOrder(s string) (symorder.WidgetOrder, error) {
	switch s {
	case "function-first":
		return symorder.FunctionFirst, nil
	case "argument-first":
		return symorder.ArgumentFirst, nil
	case "diagonal":
		return symorder.Diagonal, nil
	default:
		return 0, fmt.Errorf("fmfind: unknown --widget-order %q", s)
	}
}

func parseSymbolOrder(s string) (symorder.SymbolOrder, error) {
	switch s {
	case "occurrence":
		return symorder.Occurrence, nil
	case "preprocessed-usage":
		return symorder.PreprocessedUsage, nil
	case "usage":
		return symorder.Usage, nil
	default:
		return 0, fmt.Errorf("fmfind: unknown --symbol-order %q", s)
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
