// Package gophersat implements satbridge.Bridge on top of
// github.com/crillab/gophersat/solver, a pure-Go CDCL solver retrieved
// alongside the teacher as an alternative SAT engine. It exists so that
// the satBackend configuration knob (spec.md §6) has more than one real
// choice, both sourced from the example pack.
//
// gophersat's Solver is built once from a complete CNF (solver.New),
// unlike gini's incremental Add/Solve API, so this backend buffers
// clauses and (re)builds the underlying solver lazily on Solve.
package gophersat

import (
	"context"
	"fmt"

	gophersolver "github.com/crillab/gophersat/solver"

	"github.com/operator-framework/fmfinder/pkg/satbridge"
)

// Backend buffers a CNF problem and defers construction of the
// underlying gophersat solver until Solve is called.
type Backend struct {
	nVars   int
	clauses [][]int
	dirty   bool
	s       *gophersolver.Solver
}

var _ satbridge.Bridge = (*Backend)(nil)

// New returns a fresh, empty backend.
func New() *Backend {
	return &Backend{}
}

// EnsureVarCount implements satbridge.Bridge.
func (b *Backend) EnsureVarCount(n int) {
	if n > b.nVars {
		b.nVars = n
		b.dirty = true
	}
}

// AddClause implements satbridge.Bridge.
func (b *Backend) AddClause(lits []satbridge.Lit) error {
	if len(lits) == 0 {
		// An empty clause is unsatisfiable by construction; encode it
		// as two contradictory unit clauses over a fresh variable so
		// gophersat still reports Unsat rather than being handed a
		// malformed problem.
		b.nVars++
		b.clauses = append(b.clauses, []int{b.nVars}, []int{-b.nVars})
		b.dirty = true
		return nil
	}
	cl := make([]int, len(lits))
	for i, l := range lits {
		if l.Var() > b.nVars {
			b.nVars = l.Var()
		}
		if l.Positive() {
			cl[i] = l.Var()
		} else {
			cl[i] = -l.Var()
		}
	}
	b.clauses = append(b.clauses, cl)
	b.dirty = true
	return nil
}

// Solve implements satbridge.Bridge.
func (b *Backend) Solve(ctx context.Context) (satbridge.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return satbridge.Unknown, err
	}
	if b.dirty {
		pb := gophersolver.ParseSlice(b.clauses)
		b.s = gophersolver.New(pb)
		b.dirty = false
	}
	if b.s == nil {
		return satbridge.Satisfiable, nil
	}
	switch b.s.Solve() {
	case gophersolver.Sat:
		return satbridge.Satisfiable, nil
	case gophersolver.Unsat:
		return satbridge.Unsatisfiable, nil
	case gophersolver.Indet:
		return satbridge.Unknown, nil
	default:
		return satbridge.Unknown, fmt.Errorf("gophersat: unexpected status")
	}
}

// ValueOf implements satbridge.Bridge.
func (b *Backend) ValueOf(l satbridge.Lit) bool {
	if b.s == nil {
		return false
	}
	m := b.s.Model()
	idx := l.Var() - 1
	if idx < 0 || idx >= len(m) {
		return false
	}
	v := m[idx]
	if !l.Positive() {
		return !v
	}
	return v
}
