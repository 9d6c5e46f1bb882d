// Package gini implements satbridge.Bridge on top of
// github.com/go-air/gini, the SAT engine already depended on by the
// teacher repository's constraint solver
// (pkg/controller/registry/resolver/solver).
package gini

import (
	"context"

	giniapi "github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/operator-framework/fmfinder/pkg/satbridge"
)

// Backend wraps a *gini.Gini instance.
type Backend struct {
	g *giniapi.Gini
}

var _ satbridge.Bridge = (*Backend)(nil)

// New returns a fresh backend with no variables and no clauses.
func New() *Backend {
	return &Backend{g: giniapi.New()}
}

func toGiniLit(l satbridge.Lit) z.Lit {
	v := z.Var(l.Var())
	if l.Positive() {
		return v.Pos()
	}
	return v.Neg()
}

// EnsureVarCount implements satbridge.Bridge.
func (b *Backend) EnsureVarCount(n int) {
	// gini allocates variables lazily as literals referencing them are
	// added; touching the top variable up front keeps its internal
	// arrays pre-sized and avoids reallocation churn during encoding.
	if n <= 0 {
		return
	}
	top := z.Var(n).Pos()
	b.g.Add(top)
	b.g.Add(top.Not())
	b.g.Add(z.LitNull)
}

// AddClause implements satbridge.Bridge.
func (b *Backend) AddClause(lits []satbridge.Lit) error {
	for _, l := range lits {
		b.g.Add(toGiniLit(l))
	}
	b.g.Add(z.LitNull)
	return nil
}

// Solve implements satbridge.Bridge. gini's Solve() is not itself
// context-aware; ctx is checked before the (synchronous) call, matching
// spec.md §5's "cooperative cancellation only between phases" model —
// a round in progress inside the backend is not interrupted mid-solve.
func (b *Backend) Solve(ctx context.Context) (satbridge.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return satbridge.Unknown, err
	}
	switch b.g.Solve() {
	case 1:
		return satbridge.Satisfiable, nil
	case -1:
		return satbridge.Unsatisfiable, nil
	default:
		return satbridge.Unknown, nil
	}
}

// ValueOf implements satbridge.Bridge.
func (b *Backend) ValueOf(l satbridge.Lit) bool {
	return b.g.Value(toGiniLit(l))
}
