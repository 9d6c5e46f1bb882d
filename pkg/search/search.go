// Package search implements the outer round loop: try successive model
// sizes n = startSize, startSize+1, ... encoding and solving each one
// until a satisfying assignment is found, an upper bound is proved
// unsatisfiable (a refutation), the deadline expires, or the variable
// space overflows.
//
// Grounded on original_source/FMB/FiniteModelBuilder.cpp's runImpl()
// round structure (reset/addNew.../solve loop) and on the teacher's
// solver.Solve(ctx context.Context) shape for context-aware,
// error-returning entry points (pkg/controller/registry/resolver/solver/solve.go).
package search

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/fmfinder/internal/clock"
	"github.com/operator-framework/fmfinder/pkg/encoder"
	"github.com/operator-framework/fmfinder/pkg/fo"
	"github.com/operator-framework/fmfinder/pkg/satbridge"
	"github.com/operator-framework/fmfinder/pkg/sortinfer"
)

// Verdict is the outcome taxonomy of spec.md §6.
type Verdict int

const (
	Unknown Verdict = iota
	SatisfiableVerdict
	RefutationVerdict
	TimeLimitVerdict
)

// ErrOverflow is the error encoder.BuildLayout reports when a round's
// variable space would overflow the SAT variable type. Loop.Run does not
// return it: an overflowing round ends the search with Verdict Unknown.
type ErrOverflow = encoder.ErrOverflow

// Result is everything a completed search run reports.
type Result struct {
	Verdict Verdict
	// N is the model size the verdict was reached at.
	N int
	// Assignment and Round (with its Layout) are set only when Verdict ==
	// SatisfiableVerdict; they are what pkg/model needs to extract a
	// FiniteModel.
	Assignment satbridge.Bridge
	Round      *encoder.Round
	// Buffer holds the CNF of the round that found a model, for callers
	// that asked for a DIMACS dump; like Round, it is only set when
	// Verdict == SatisfiableVerdict.
	Buffer *encoder.Buffer
}

// Options configures one search run.
type Options struct {
	StartSize           int
	UseConstantsAsStart bool
	Config              encoder.Config
	Logger              logrus.FieldLogger
	// NewBridge constructs a fresh SAT backend for each round; the
	// search loop discards it once the round's verdict is known,
	// matching spec.md §5's "the per-round SAT solver instance ... [is]
	// released before the next round."
	NewBridge func() satbridge.Bridge
	// SymbolUsage maps a function symbol to its usage count, consumed by
	// symorder.OrderSymbols for the PreprocessedUsage/Usage policies.
	SymbolUsage map[fo.SymbolID]int
}

// Loop runs the round state machine described in spec.md §4.5.
type Loop struct {
	problem *encoder.Problem
	opts    Options
	log     logrus.FieldLogger
}

func New(problem *encoder.Problem, opts Options) *Loop {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loop{problem: problem, opts: opts, log: log}
}

// Run executes the search loop to completion, or until ctx is done.
func (l *Loop) Run(ctx context.Context) (*Result, error) {
	maxModelSize := deriveMaxModelSize(l.problem)
	n := l.startSize()
	deadline := clock.New(ctx)
	enc := encoder.New(l.problem, l.opts.Config)

	for {
		if deadline.Expired() {
			return &Result{Verdict: TimeLimitVerdict, N: n}, nil
		}

		l.log.WithField("modelSize", n).Info("trying model size")

		buf, round, err := enc.Encode(n, l.opts.SymbolUsage, maxModelSize)
		if err != nil {
			l.log.WithError(err).Warn("variable space overflow")
			return &Result{Verdict: Unknown, N: n}, nil
		}

		bridge := l.newBridge()
		bridge.EnsureVarCount(round.Layout.Total)
		if err := buf.Flush(bridge); err != nil {
			return nil, err
		}

		outcome, err := bridge.Solve(deadline.Context())
		if err != nil {
			return &Result{Verdict: TimeLimitVerdict, N: n}, nil
		}

		switch outcome {
		case satbridge.Satisfiable:
			l.log.WithField("modelSize", n).Info("model found")
			return &Result{Verdict: SatisfiableVerdict, N: n, Assignment: bridge, Round: round, Buffer: buf}, nil
		case satbridge.Unsatisfiable:
			if uint64(n) >= maxModelSize {
				l.log.WithField("modelSize", n).Info("refutation: bound reached")
				return &Result{Verdict: RefutationVerdict, N: n}, nil
			}
			n++
		default:
			return &Result{Verdict: Unknown, N: n}, nil
		}
	}
}

func (l *Loop) newBridge() satbridge.Bridge {
	if l.opts.NewBridge != nil {
		return l.opts.NewBridge()
	}
	panic("search: no SAT backend configured")
}

func (l *Loop) startSize() int {
	if l.opts.UseConstantsAsStart {
		n := 0
		for _, f := range l.problem.Sig.Functions {
			if f.Arity == 0 && !l.problem.DeletedF[f.ID] {
				n++
			}
		}
		if n < 1 {
			n = 1
		}
		return n
	}
	if l.opts.StartSize >= 1 {
		return l.opts.StartSize
	}
	return 1
}

// deriveMaxModelSize implements spec.md §4.5's derivation, following
// FiniteModelBuilder::runImpl exactly: initially infinite, lowered to
// the variable count of any all-positive two-variable-equality clause,
// and further lowered — when the problem is EPR (no function symbols of
// arity > 0) — to the LARGEST per-sort constant count (not the sum:
// `for(s...) if(c>max) max=c`), since a single global model size can
// only be as generous as the loosest-bounded sort.
func deriveMaxModelSize(p *encoder.Problem) uint64 {
	max := uint64(sortinfer.Unbounded)

	for _, c := range p.NonGround {
		if isAllPositiveTwoVarEquality(c) {
			if v := uint64(c.VarCount); v < max {
				max = v
			}
		}
	}

	epr := true
	for _, f := range p.Sig.Functions {
		if p.DeletedF[f.ID] {
			continue
		}
		if f.Arity > 0 {
			epr = false
			break
		}
	}
	if epr {
		perSortMax := uint64(1)
		for _, cs := range p.Sorted.Constants {
			if v := uint64(len(cs)); v > perSortMax {
				perSortMax = v
			}
		}
		if perSortMax < max {
			max = perSortMax
		}
	}

	if max == 0 {
		max = 1
	}
	return max
}

// IsComplete reports whether the reasoner can be complete for p: it
// must either be effectively propositional (bounding model size by the
// largest per-sort constant count) or contain an all-positive
// two-variable-equality clause bounding the model size by that clause's
// variable count. Without either, deriveMaxModelSize never lowers below
// Unbounded and the loop can find a model but can never prove
// REFUTATION, matching spec.md §7's "Incomplete input" error kind.
func IsComplete(p *encoder.Problem) bool {
	return deriveMaxModelSize(p) != sortinfer.Unbounded
}

func isAllPositiveTwoVarEquality(c fo.Clause) bool {
	if len(c.Literals) == 0 {
		return false
	}
	for _, l := range c.Literals {
		if !l.Polarity || !l.IsTwoVarEquality() {
			return false
		}
	}
	return true
}
