// Package dimacs provides a satbridge.Bridge that only records clauses
// and can dump them in DIMACS CNF format, plus a WriteDIMACS helper any
// other backend can reuse for the "write a DIMACS snapshot" persistence
// feature (spec.md §6).
//
// Wire format grounded on other_examples/adenizgelir0-satfarm__dimacs.go
// and other_examples/FabianWe-dimacscnf__doc.go: a "p cnf <vars>
// <clauses>" header followed by space-separated, zero-terminated
// literal lists, one clause per line.
package dimacs

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/operator-framework/fmfinder/pkg/satbridge"
)

// Backend is a satbridge.Bridge that records every clause it is given
// but never solves anything; Solve always reports Unknown. Its purpose
// is to let callers exercise the DIMACS persistence path without
// depending on a real SAT engine.
type Backend struct {
	nVars   int
	clauses [][]satbridge.Lit
}

var _ satbridge.Bridge = (*Backend)(nil)

func New() *Backend { return &Backend{} }

func (b *Backend) EnsureVarCount(n int) {
	if n > b.nVars {
		b.nVars = n
	}
}

func (b *Backend) AddClause(lits []satbridge.Lit) error {
	cp := make([]satbridge.Lit, len(lits))
	copy(cp, lits)
	b.clauses = append(b.clauses, cp)
	return nil
}

func (b *Backend) Solve(ctx context.Context) (satbridge.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return satbridge.Unknown, err
	}
	return satbridge.Unknown, nil
}

func (b *Backend) ValueOf(satbridge.Lit) bool { return false }

// WriteDIMACS renders the buffered problem in DIMACS CNF format.
func (b *Backend) WriteDIMACS(w io.Writer) error {
	return WriteDIMACS(w, b.clauses, b.nVars)
}

// WriteDIMACS renders an arbitrary clause buffer in DIMACS CNF format.
func WriteDIMACS(w io.Writer, clauses [][]satbridge.Lit, nVars int) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", nVars, len(clauses)); err != nil {
		return err
	}
	for _, cl := range clauses {
		for _, l := range cl {
			if _, err := fmt.Fprintf(bw, "%d ", int(l)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw, "0"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
