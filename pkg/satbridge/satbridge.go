// Package satbridge defines the abstract interface to a propositional
// SAT backend that the encoder and search loop consume: allocate
// variables, add clauses, solve, and read back an assignment.
//
// Grounded on the teacher's pkg/controller/registry/resolver/solver
// package, which wraps github.com/go-air/gini behind a narrower
// interface (dict.AddConstraints / g.Solve / g.Value); satbridge
// generalises that shape to the raw-CNF contract spec.md §6 describes.
package satbridge

import "context"

// Lit is a signed propositional literal: a positive integer for the
// variable, negated by making the integer negative. Variable 0 is
// never valid.
type Lit int32

// Var returns the unsigned variable id underlying the literal.
func (l Lit) Var() int { return int(abs(l)) }

// Neg returns the negation of the literal.
func (l Lit) Neg() Lit { return -l }

// Positive reports whether the literal is unnegated.
func (l Lit) Positive() bool { return l > 0 }

func abs(l Lit) Lit {
	if l < 0 {
		return -l
	}
	return l
}

// NewLit builds a literal for variable v (1-based) with the given
// polarity.
func NewLit(v int, polarity bool) Lit {
	if polarity {
		return Lit(v)
	}
	return Lit(-v)
}

// Outcome is the three-valued result of a solving attempt.
type Outcome int

const (
	Unknown Outcome = iota
	Satisfiable
	Unsatisfiable
)

// Bridge is the abstract interface to a propositional SAT backend.
type Bridge interface {
	// EnsureVarCount declares that variables in [1, n] may be used.
	EnsureVarCount(n int)
	// AddClause appends a CNF clause. An empty clause signals immediate
	// unsatisfiability. Callers are expected to have already removed
	// duplicate literals.
	AddClause(lits []Lit) error
	// Solve runs the backend to completion or until ctx is done.
	Solve(ctx context.Context) (Outcome, error)
	// ValueOf reports the truth value of a literal under the last
	// satisfying assignment. Only meaningful after Solve returned
	// Satisfiable.
	ValueOf(l Lit) bool
}
