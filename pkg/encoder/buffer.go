package encoder

import "github.com/operator-framework/fmfinder/pkg/satbridge"

// Buffer accumulates CNF clauses produced by one encoding pass before
// they are handed to a satbridge.Bridge. Keeping the buffer separate
// from the bridge lets the search loop inspect or persist the raw
// clause set (e.g. WriteDIMACS) before committing it to a solver.
type Buffer struct {
	Clauses [][]satbridge.Lit
}

// Add appends a clause after removing exact duplicate literals, per
// spec.md §4.4.2's "duplicate-literal removal" step. It does not detect
// literal/negation tautologies across distinct literals.
func (b *Buffer) Add(lits []satbridge.Lit) {
	if len(lits) == 0 {
		b.Clauses = append(b.Clauses, nil)
		return
	}
	seen := make(map[satbridge.Lit]bool, len(lits))
	out := make([]satbridge.Lit, 0, len(lits))
	for _, l := range lits {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	b.Clauses = append(b.Clauses, out)
}

// Flush hands every buffered clause to bridge in order.
func (b *Buffer) Flush(bridge satbridge.Bridge) error {
	for _, cl := range b.Clauses {
		if err := bridge.AddClause(cl); err != nil {
			return err
		}
	}
	return nil
}
