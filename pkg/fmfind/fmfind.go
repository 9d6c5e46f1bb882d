// Package fmfind is the top-level entry point: given a first-order
// signature and clause set, prepare, sort-infer, encode and search for
// a finite model, exposing the whole pipeline through a functional
// options constructor in the teacher's style
// (pkg/controller/registry/resolver/solver.New / solver.Option).
package fmfind

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/fmfinder/internal/tracer"
	"github.com/operator-framework/fmfinder/pkg/encoder"
	"github.com/operator-framework/fmfinder/pkg/fo"
	"github.com/operator-framework/fmfinder/pkg/model"
	"github.com/operator-framework/fmfinder/pkg/prep"
	"github.com/operator-framework/fmfinder/pkg/satbridge"
	"github.com/operator-framework/fmfinder/pkg/satbridge/dimacs"
	"github.com/operator-framework/fmfinder/pkg/satbridge/gini"
	"github.com/operator-framework/fmfinder/pkg/satbridge/gophersat"
	"github.com/operator-framework/fmfinder/pkg/search"
	"github.com/operator-framework/fmfinder/pkg/sortinfer"
	"github.com/operator-framework/fmfinder/pkg/symorder"
)

// ErrIncomplete is returned after preparation and sort inference but
// before any round is encoded, when the requested option profile cannot
// make this reasoner complete for the given problem (spec.md §7
// "Incomplete input").
var ErrIncomplete = fmt.Errorf("fmfind: option profile is incomplete for this problem")

// ErrOverflow is the error the encoder reports when a round's
// propositional variable space would overflow the SAT variable type.
// Run does not return it: an overflowing round ends the search with
// Verdict search.Unknown and a nil error.
type ErrOverflow = encoder.ErrOverflow

// ErrTimeLimit indicates the search deadline elapsed before a verdict
// was reached.
var ErrTimeLimit = fmt.Errorf("fmfind: time limit reached")

// Refutation is returned when preparation or search proves the input
// unsatisfiable; Witness is the empty-clause derivation, when available.
type Refutation struct {
	Witness    fo.Clause
	HasWitness bool
}

func (r Refutation) Error() string { return "fmfind: refutation" }

// InvariantViolation is a fatal, non-recoverable internal error: a sort,
// bounds, or flatness invariant did not hold. It is panicked from deep
// inside the pipeline (pkg/encoder's variable layout, pkg/prep's
// flattening) and only ever recovered at the cmd/fmfind boundary,
// matching the teacher's own ASSERTION_VIOLATION_REP treatment.
type InvariantViolation = fo.InvariantViolation

// Outcome is the public result of a Run.
type Outcome struct {
	Verdict search.Verdict
	Model   *model.FiniteModel
	N       int
}

// Finder holds everything needed to run one search: the signature, the
// input clauses, and the resolved configuration.
type Finder struct {
	sig     *fo.Signature
	clauses []fo.Clause

	startSize           int
	useConstantsAsStart bool
	symmetryRatio       float64
	widgetOrder         symorder.WidgetOrder
	symbolOrder         symorder.SymbolOrder
	useModelSizeCap     bool
	satBackend          string
	timeLimit           time.Duration
	dimacsDump          io.Writer
	logger              logrus.FieldLogger
}

// Option configures a Finder, following the teacher's
// `type Option func(s *solver) error` / `defaults` pattern.
type Option func(*Finder) error

func WithStartSize(n int) Option {
	return func(f *Finder) error {
		if n < 1 {
			return fmt.Errorf("fmfind: startSize must be >= 1, got %d", n)
		}
		f.startSize = n
		return nil
	}
}

func WithConstantsAsStart(v bool) Option {
	return func(f *Finder) error { f.useConstantsAsStart = v; return nil }
}

func WithSymmetryRatio(r float64) Option {
	return func(f *Finder) error {
		if r < 0 || r > 1 {
			return fmt.Errorf("fmfind: symmetryRatio must be in [0,1], got %v", r)
		}
		f.symmetryRatio = r
		return nil
	}
}

func WithWidgetOrder(o symorder.WidgetOrder) Option {
	return func(f *Finder) error { f.widgetOrder = o; return nil }
}

func WithSymbolOrder(o symorder.SymbolOrder) Option {
	return func(f *Finder) error { f.symbolOrder = o; return nil }
}

func WithUseModelSizeCap(v bool) Option {
	return func(f *Finder) error { f.useModelSizeCap = v; return nil }
}

func WithSATBackend(name string) Option {
	return func(f *Finder) error {
		switch name {
		case "gini", "gophersat", "dimacs":
		default:
			return fmt.Errorf("fmfind: unknown satBackend %q", name)
		}
		f.satBackend = name
		return nil
	}
}

// WithTimeLimit bounds wall-clock search time.
func WithTimeLimit(d time.Duration) Option {
	return func(f *Finder) error { f.timeLimit = d; return nil }
}

// WithDIMACSDump requests that the CNF of the round that found a model be
// written to w. Nothing is written when the search ends without a model.
func WithDIMACSDump(w io.Writer) Option {
	return func(f *Finder) error { f.dimacsDump = w; return nil }
}

// WithLogger installs a structured logger; without one, logging is
// discarded.
func WithLogger(l logrus.FieldLogger) Option {
	return func(f *Finder) error { f.logger = l; return nil }
}

// WithInput sets the signature and clause set to search over.
func WithInput(sig *fo.Signature, clauses []fo.Clause) Option {
	return func(f *Finder) error {
		f.sig = sig
		f.clauses = clauses
		return nil
	}
}

var defaults = []Option{
	func(f *Finder) error {
		if f.startSize < 1 {
			f.startSize = 1
		}
		return nil
	},
	func(f *Finder) error {
		if f.satBackend == "" {
			f.satBackend = "gini"
		}
		return nil
	},
	func(f *Finder) error {
		if f.logger == nil {
			f.logger = tracer.New(nil)
		}
		return nil
	},
}

// New builds a Finder from options, applying the teacher's
// options-then-defaults merge order.
func New(options ...Option) (*Finder, error) {
	f := &Finder{symmetryRatio: 1}
	for _, o := range append(options, defaults...) {
		if err := o(f); err != nil {
			return nil, err
		}
	}
	if f.sig == nil {
		return nil, fmt.Errorf("fmfind: WithInput is required")
	}
	return f, nil
}

// preprocessedUsage walks the caller's original, unflattened clauses
// and counts each function symbol's occurrences the way Vampire's
// general term/literal sharing does upstream of FMB: an identical
// ground subterm reused across the whole problem is the same shared
// object and is only counted once, unlike the per-clause definitional
// flattening below, which has no cross-clause sharing and mints an
// independent defining literal (and usage increment) for every
// occurrence. This is the snapshot FMBSymbolOrders::PREPROCESSED_USAGE
// keeps by skipping the reset-and-recount pass in
// FiniteModelBuilder.cpp; non-ground subterms carry no identity across
// clauses (their variables are clause-local), so they are always
// counted per occurrence.
func preprocessedUsage(clauses []fo.Clause) map[fo.SymbolID]int {
	usage := map[fo.SymbolID]int{}
	seen := map[string]bool{}
	var walk func(t fo.Term) (key string, ground bool)
	walk = func(t fo.Term) (string, bool) {
		if t.IsVar {
			return fmt.Sprintf("v%d", t.Var), false
		}
		ground := true
		childKeys := make([]string, len(t.Args))
		for i, a := range t.Args {
			k, g := walk(a)
			childKeys[i] = k
			if !g {
				ground = false
			}
		}
		key := fmt.Sprintf("%d(%s)", t.Head, strings.Join(childKeys, ","))
		if ground && seen[key] {
			return key, true
		}
		usage[t.Head]++
		if ground {
			seen[key] = true
		}
		return key, ground
	}
	for _, c := range clauses {
		for _, l := range c.Literals {
			for _, a := range l.Args {
				walk(a)
			}
		}
	}
	return usage
}

// Run drives preparation, sort inference and the search loop to
// completion, or until ctx is done or the time limit set via
// WithTimeLimit elapses.
func (f *Finder) Run(ctx context.Context) (*Outcome, error) {
	if f.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeLimit)
		defer cancel()
	}

	// PreprocessedUsage is captured from the caller's original clauses
	// before this loop resets and recounts, exactly mirroring
	// FiniteModelBuilder.cpp's "if not PREPROCESSED_USAGE: resetUsageCnt
	// then incUsageCnt while walking the flattened clauses" (see
	// preprocessedUsage's doc comment for the reset/recount semantics
	// this snapshot has to differ from).
	preUsage := preprocessedUsage(f.clauses)

	for _, s := range f.sig.Functions {
		s.ResetUsageCount()
	}

	var nonGround, ground []fo.Clause
	for _, c := range f.clauses {
		flat, err := prep.Prepare(c)
		if err != nil {
			if r, ok := err.(prep.ErrRefutation); ok {
				return &Outcome{Verdict: search.RefutationVerdict}, Refutation{Witness: r.Clause, HasWitness: true}
			}
			return nil, err
		}
		for _, fc := range flat {
			for _, l := range fc.Literals {
				if l.IsEquality() && !l.IsTwoVarEquality() {
					f.sig.Function(l.Args[0].Head).IncUsageCount()
				}
			}
			if fc.Ground() {
				ground = append(ground, fc)
			} else {
				nonGround = append(nonGround, fc)
			}
		}
	}

	postUsage := map[fo.SymbolID]int{}
	for _, s := range f.sig.Functions {
		postUsage[s.ID] = s.UsageCount()
	}

	var usage map[fo.SymbolID]int
	switch f.symbolOrder {
	case symorder.PreprocessedUsage:
		usage = preUsage
	case symorder.Usage:
		usage = postUsage
	}

	deletedF := map[fo.SymbolID]bool{}
	deletedP := map[fo.SymbolID]bool{}
	sorted := sortinfer.Infer(f.sig, nonGround, ground, deletedF, deletedP)

	problem := &encoder.Problem{
		Sig:       f.sig,
		Sorted:    sorted,
		DeletedF:  deletedF,
		DeletedP:  deletedP,
		NonGround: nonGround,
		Ground:    ground,
	}

	if !search.IsComplete(problem) {
		return &Outcome{Verdict: search.Unknown}, ErrIncomplete
	}

	loop := search.New(problem, search.Options{
		StartSize:           f.startSize,
		UseConstantsAsStart: f.useConstantsAsStart,
		Config: encoder.Config{
			WidgetOrder:     f.widgetOrder,
			SymbolOrder:     f.symbolOrder,
			SymmetryRatio:   f.symmetryRatio,
			UseModelSizeCap: f.useModelSizeCap,
		},
		Logger:      f.logger,
		NewBridge:   f.newBridge,
		SymbolUsage: usage,
	})

	res, err := loop.Run(ctx)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Verdict: res.Verdict, N: res.N}
	switch res.Verdict {
	case search.SatisfiableVerdict:
		out.Model = model.Extract(f.sig, deletedF, deletedP, res.Round.Layout, res.Assignment, res.N)
		if f.dimacsDump != nil {
			if err := dimacs.WriteDIMACS(f.dimacsDump, res.Buffer.Clauses, res.Round.Layout.Total); err != nil {
				return out, err
			}
		}
		return out, nil
	case search.RefutationVerdict:
		return out, Refutation{}
	case search.TimeLimitVerdict:
		return out, ErrTimeLimit
	default:
		return out, nil
	}
}

func (f *Finder) newBridge() satbridge.Bridge {
	switch f.satBackend {
	case "gophersat":
		return gophersat.New()
	case "dimacs":
		return dimacs.New()
	default:
		return gini.New()
	}
}
