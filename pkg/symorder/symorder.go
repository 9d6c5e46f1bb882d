// Package symorder produces, per inferred sort, an ordering of
// constants and functions and the resulting "grounded term" lists used
// by the encoder's symmetry-breaking axioms.
//
// Grounded on original_source/FMB/FiniteModelBuilder.cpp's reset()
// (widget order construction) and its FMBSymmetryFunctionComparator /
// fmbSymmetryOrderSymbols handling in init().
package symorder

import (
	"sort"

	"github.com/operator-framework/fmfinder/pkg/fo"
	"github.com/operator-framework/fmfinder/pkg/sortinfer"
)

// WidgetOrder selects how grounded terms are enumerated within a sort.
type WidgetOrder int

const (
	FunctionFirst WidgetOrder = iota
	ArgumentFirst
	Diagonal
)

// SymbolOrder selects how constants/functions are ordered before
// grounded terms are built from them.
type SymbolOrder int

const (
	// Occurrence preserves the signature's original declaration order.
	Occurrence SymbolOrder = iota
	// PreprocessedUsage sorts by usage count captured before any
	// preprocessing-driven reset of those counts (the original's
	// FMBSymbolOrders::PREPROCESSED_USAGE: skip the post-parse
	// recount pass).
	PreprocessedUsage
	// Usage sorts by usage count recomputed after preprocessing, over
	// the final flattened, normalised clause set.
	Usage
)

// GroundedTerm is a (symbol, index) pair: for constants, Grounding is
// always 0.
type GroundedTerm struct {
	Symbol    fo.SymbolID
	Grounding fo.Element
}

// OrderSymbols returns, for each sort, the constants and range-here
// functions in the requested SymbolOrder. usage maps a function symbol
// to its usage count; OrderSymbols sorts by whatever map it is given.
// pkg/fmfind supplies a different map for PreprocessedUsage (occurrences
// in the original clauses, shared ground subterms counted once) and for
// Usage (one per literal f(x̄)=y with f as head in the flattened clauses).
func OrderSymbols(ss *sortinfer.SortedSignature, order SymbolOrder, usage map[fo.SymbolID]int) (constants, rangeHere [][]fo.SymbolID) {
	constants = make([][]fo.SymbolID, ss.Sorts)
	rangeHere = make([][]fo.SymbolID, ss.Sorts)
	for s := 0; s < ss.Sorts; s++ {
		constants[s] = append(constants[s], ss.Constants[s]...)
		rangeHere[s] = append(rangeHere[s], ss.RangeHere[s]...)
		if order == Occurrence {
			continue
		}
		byUsageDesc := func(ids []fo.SymbolID) {
			sort.SliceStable(ids, func(i, j int) bool {
				return usage[ids[i]] > usage[ids[j]]
			})
		}
		byUsageDesc(constants[s])
		byUsageDesc(rangeHere[s])
	}
	return constants, rangeHere
}

// GroundedTerms builds, for a single sort, the ordered list of grounded
// terms at model size n: the sort's constants (grounding 0) followed by
// widget-ordered combinations of its range-here functions with domain
// indices 1..n.
//
// A function f is skipped entirely at index m if its range bound is
// below n, or if any of its argument bounds is below m (the collapsed
// grounding index used uniformly across all of f's arguments) —
// preserved exactly from FiniteModelBuilder::reset, including the
// DIAGONAL order's known non-injectivity when a function is skipped
// mid-sequence (see spec's Open Question: do not deduplicate).
func GroundedTerms(fns []fo.SymbolID, fbounds map[fo.SymbolID][]uint64, constants []fo.SymbolID, n int, order WidgetOrder) []GroundedTerm {
	terms := make([]GroundedTerm, 0, len(constants)+len(fns)*n)
	for _, c := range constants {
		terms = append(terms, GroundedTerm{Symbol: c, Grounding: 0})
	}

	skip := func(f fo.SymbolID, m int) bool {
		b := fbounds[f]
		if b[0] < uint64(n) {
			return true
		}
		for i := 1; i < len(b); i++ {
			if b[i] < uint64(m) {
				return true
			}
		}
		return false
	}

	switch order {
	case FunctionFirst:
		for _, f := range fns {
			for m := 1; m <= n; m++ {
				if skip(f, m) {
					continue
				}
				terms = append(terms, GroundedTerm{Symbol: f, Grounding: fo.Element(m)})
			}
		}
	case ArgumentFirst:
		for m := 1; m <= n; m++ {
			for _, f := range fns {
				if skip(f, m) {
					continue
				}
				terms = append(terms, GroundedTerm{Symbol: f, Grounding: fo.Element(m)})
			}
		}
	case Diagonal:
		for m := 1; m <= n; m++ {
			for i, f := range fns {
				g := 1 + ((m + i) % n)
				if skip(f, g) {
					continue
				}
				terms = append(terms, GroundedTerm{Symbol: f, Grounding: fo.Element(g)})
			}
		}
	}
	return terms
}
