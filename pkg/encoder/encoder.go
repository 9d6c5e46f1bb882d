// Package encoder builds, for a fixed model size n, the propositional
// CNF encoding of a flattened first-order clause set: ground clauses,
// clause instances, functionality and totality axioms for every
// function symbol, and symmetry-breaking axioms over an ordering of
// grounded terms per sort.
//
// Grounded throughout on original_source/FMB/FiniteModelBuilder.cpp's
// addGroundClauses, addNewInstances, addNewFunctionalDefs,
// addNewTotalityDefs, addNewSymmetryOrderingAxioms,
// addNewSymmetryCanonicityAxioms and addUseModelSize, translated to
// spec.md §4.4's normative variable-layout formula rather than that
// file's defensive extra-power-of-n allocation (see DESIGN.md).
package encoder

import (
	"math"

	"github.com/operator-framework/fmfinder/pkg/fo"
	"github.com/operator-framework/fmfinder/pkg/satbridge"
	"github.com/operator-framework/fmfinder/pkg/sortinfer"
	"github.com/operator-framework/fmfinder/pkg/symorder"
)

// Problem bundles the inputs an Encoder needs that do not change across
// model sizes within one search.
type Problem struct {
	Sig       *fo.Signature
	Sorted    *sortinfer.SortedSignature
	DeletedF  map[fo.SymbolID]bool
	DeletedP  map[fo.SymbolID]bool
	NonGround []fo.Clause
	Ground    []fo.Clause
}

// Config selects the symmetry-breaking policy knobs spec.md §6 exposes.
type Config struct {
	WidgetOrder     symorder.WidgetOrder
	SymbolOrder     symorder.SymbolOrder
	SymmetryRatio   float64
	UseModelSizeCap bool
}

// Encoder produces a Buffer of CNF clauses for one round of the search
// loop, at a fixed model size n.
type Encoder struct {
	p   *Problem
	cfg Config
}

func New(p *Problem, cfg Config) *Encoder {
	return &Encoder{p: p, cfg: cfg}
}

// Round is everything the Encoder computed for one model size: the
// variable layout (needed by the model extractor to invert the
// assignment) and the grounded-term orderings (needed to explain a
// symmetry-broken model back to the user).
type Round struct {
	N             int
	Layout        *Layout
	GroundedTerms [][]symorder.GroundedTerm // indexed by sort
}

// Encode builds the full CNF for model size n and returns it alongside
// the Round bookkeeping the caller needs afterwards. usage maps a
// function symbol to its usage count for SymbolOrder ordering; pass nil
// for Occurrence order.
func (e *Encoder) Encode(n int, usage map[fo.SymbolID]int, maxModelSize uint64) (*Buffer, *Round, error) {
	layout, err := BuildLayout(e.p.Sig, e.p.DeletedF, e.p.DeletedP, n)
	if err != nil {
		return nil, nil, err
	}

	ss := e.p.Sorted
	constants, rangeHere := symorder.OrderSymbols(ss, e.cfg.SymbolOrder, usage)
	groundedTerms := make([][]symorder.GroundedTerm, ss.Sorts)
	for s := 0; s < ss.Sorts; s++ {
		groundedTerms[s] = symorder.GroundedTerms(rangeHere[s], ss.FBounds, constants[s], n, e.cfg.WidgetOrder)
	}

	buf := &Buffer{}
	e.encodeGround(buf, layout)
	e.encodeInstances(buf, layout, n)
	e.encodeFunctionality(buf, layout, n)
	e.encodeTotality(buf, layout, n)
	for s := 0; s < ss.Sorts; s++ {
		e.encodeOrderedTotality(buf, layout, n, groundedTerms[s])
		e.encodeCanonicity(buf, layout, groundedTerms[s], maxModelSize)
	}
	if e.cfg.UseModelSizeCap && maxArity(e.p.Sig, e.p.DeletedF) <= 1 {
		for s := 0; s < ss.Sorts; s++ {
			e.encodeUseModelSize(buf, layout, n, groundedTerms[s])
		}
	}

	return buf, &Round{N: n, Layout: layout, GroundedTerms: groundedTerms}, nil
}

func maxArity(sig *fo.Signature, deletedF map[fo.SymbolID]bool) int {
	m := 0
	for _, f := range sig.Functions {
		if deletedF[f.ID] {
			continue
		}
		if f.Arity > m {
			m = f.Arity
		}
	}
	return m
}

// encodeGround emits one SAT clause per already-ground input clause
// (spec.md §4.4.1). After flattening, a ground clause consists solely
// of nullary predicate literals.
func (e *Encoder) encodeGround(buf *Buffer, layout *Layout) {
	for _, c := range e.p.Ground {
		lits := make([]satbridge.Lit, 0, len(c.Literals))
		for _, l := range c.Literals {
			v := layout.Var(false, l.Predicate, nil)
			lits = append(lits, satbridge.NewLit(v, l.Polarity))
		}
		buf.Add(lits)
	}
}

// encodeInstances grounds every non-ground clause over every tuple of
// domain elements within its inferred per-variable bounds (spec.md
// §4.4.2), applying the two-variable-equality tautology/false-literal
// shortcuts before emitting a clause.
func (e *Encoder) encodeInstances(buf *Buffer, layout *Layout, n int) {
	for ci, c := range e.p.NonGround {
		bounds := make([]int, c.VarCount)
		cb := e.p.Sorted.ClauseBounds[ci]
		for v := 0; v < c.VarCount; v++ {
			b := cb[v]
			if b == sortinfer.Unbounded || b > uint64(n) {
				bounds[v] = n
			} else {
				bounds[v] = int(b)
			}
		}
		tc := newTupleCounter(bounds)
		for tc.next() {
			grounding := tc.tuple()
			lits, skip := e.instanceClause(c, grounding, layout)
			if skip {
				continue
			}
			buf.Add(lits)
		}
	}
}

func (e *Encoder) instanceClause(c fo.Clause, g []int, layout *Layout) ([]satbridge.Lit, bool) {
	lits := make([]satbridge.Lit, 0, len(c.Literals))
	for _, l := range c.Literals {
		switch {
		case l.IsTwoVarEquality():
			equal := g[l.Args[0].Var] == g[l.Args[1].Var]
			trivialTrue := (l.Polarity && equal) || (!l.Polarity && !equal)
			if trivialTrue {
				return nil, true
			}
			// Trivially false: drop the literal, keep the rest.
		case l.IsEquality():
			lhs, rhs := l.Args[0], l.Args[1]
			tuple := make([]fo.Element, 0, len(lhs.Args)+1)
			for _, a := range lhs.Args {
				tuple = append(tuple, fo.Element(g[a.Var]))
			}
			tuple = append(tuple, fo.Element(g[rhs.Var]))
			v := layout.Var(true, lhs.Head, tuple)
			lits = append(lits, satbridge.NewLit(v, l.Polarity))
		default:
			tuple := make([]fo.Element, 0, len(l.Args))
			for _, a := range l.Args {
				tuple = append(tuple, fo.Element(g[a.Var]))
			}
			v := layout.Var(false, l.Predicate, tuple)
			lits = append(lits, satbridge.NewLit(v, l.Polarity))
		}
	}
	return lits, false
}

// encodeFunctionality emits, for every live function f, the axiom that
// f cannot map one argument tuple to two distinct values (spec.md
// §4.4.3).
func (e *Encoder) encodeFunctionality(buf *Buffer, layout *Layout, n int) {
	for _, f := range e.p.Sig.Functions {
		if e.p.DeletedF[f.ID] {
			continue
		}
		fb := e.p.Sorted.FBounds[f.ID]
		rangeBound := boundedN(fb[0], n)
		argBounds := make([]int, f.Arity)
		for i := 0; i < f.Arity; i++ {
			argBounds[i] = boundedN(fb[i+1], n)
		}
		forEachArgTuple(argBounds, func(dbar []int) {
			tupleBase := make([]fo.Element, len(dbar))
			for i, d := range dbar {
				tupleBase[i] = fo.Element(d)
			}
			for a := 1; a < rangeBound; a++ {
				for b := a + 1; b <= rangeBound; b++ {
					va := layout.Var(true, f.ID, append(append([]fo.Element{}, tupleBase...), fo.Element(a)))
					vb := layout.Var(true, f.ID, append(append([]fo.Element{}, tupleBase...), fo.Element(b)))
					buf.Add([]satbridge.Lit{satbridge.NewLit(va, false), satbridge.NewLit(vb, false)})
				}
			}
		})
	}
}

// encodeTotality emits, for every live function f, the axiom that f
// produces some value for every argument tuple (spec.md §4.4.4).
func (e *Encoder) encodeTotality(buf *Buffer, layout *Layout, n int) {
	for _, f := range e.p.Sig.Functions {
		if e.p.DeletedF[f.ID] {
			continue
		}
		fb := e.p.Sorted.FBounds[f.ID]
		rangeBound := boundedN(fb[0], n)
		argBounds := make([]int, f.Arity)
		for i := 0; i < f.Arity; i++ {
			argBounds[i] = boundedN(fb[i+1], n)
		}
		forEachArgTuple(argBounds, func(dbar []int) {
			lits := make([]satbridge.Lit, 0, rangeBound)
			for e2 := 1; e2 <= rangeBound; e2++ {
				tuple := make([]fo.Element, len(dbar)+1)
				for i, d := range dbar {
					tuple[i] = fo.Element(d)
				}
				tuple[len(dbar)] = fo.Element(e2)
				v := layout.Var(true, f.ID, tuple)
				lits = append(lits, satbridge.NewLit(v, true))
			}
			buf.Add(lits)
		})
	}
}

// encodeOrderedTotality emits the restricted-totality symmetry axiom for
// a sort: the n-th grounded term takes some value in [1..n] (spec.md
// §4.4.5).
func (e *Encoder) encodeOrderedTotality(buf *Buffer, layout *Layout, n int, gt []symorder.GroundedTerm) {
	if len(gt) < n {
		return
	}
	g := gt[n-1]
	lits := make([]satbridge.Lit, 0, n)
	tupleArity := e.p.Sig.FunctionArity(g.Symbol)
	for i := 1; i <= n; i++ {
		tuple := make([]fo.Element, 0, tupleArity+1)
		for a := 0; a < tupleArity; a++ {
			tuple = append(tuple, g.Grounding)
		}
		tuple = append(tuple, fo.Element(i))
		v := layout.Var(true, g.Symbol, tuple)
		lits = append(lits, satbridge.NewLit(v, true))
	}
	buf.Add(lits)
}

// encodeCanonicity emits the lexicographic canonicity chain that forbids
// the i-th grounded term from taking value n unless some earlier term
// already took value n-1 (spec.md §4.4.6).
func (e *Encoder) encodeCanonicity(buf *Buffer, layout *Layout, gt []symorder.GroundedTerm, maxModelSize uint64) {
	if layout.N <= 1 {
		return
	}
	if e.cfg.SymmetryRatio <= 0 || len(gt) == 0 {
		return
	}
	var w int
	if maxModelSize == sortinfer.Unbounded {
		w = len(gt)
	} else {
		wf := e.cfg.SymmetryRatio * float64(maxModelSize)
		w = int(math.Ceil(wf))
	}
	if w > len(gt) {
		w = len(gt)
	}
	for i := 1; i < w; i++ {
		gi := gt[i]
		ai := e.p.Sig.FunctionArity(gi.Symbol)
		tupleN := make([]fo.Element, 0, ai+1)
		for a := 0; a < ai; a++ {
			tupleN = append(tupleN, gi.Grounding)
		}
		tupleN = append(tupleN, fo.Element(layout.N))
		lits := []satbridge.Lit{satbridge.NewLit(layout.Var(true, gi.Symbol, tupleN), false)}
		for j := 0; j < i; j++ {
			gj := gt[j]
			aj := e.p.Sig.FunctionArity(gj.Symbol)
			tupleNm1 := make([]fo.Element, 0, aj+1)
			for a := 0; a < aj; a++ {
				tupleNm1 = append(tupleNm1, gj.Grounding)
			}
			tupleNm1 = append(tupleNm1, fo.Element(layout.N-1))
			lits = append(lits, satbridge.NewLit(layout.Var(true, gj.Symbol, tupleNm1), true))
		}
		buf.Add(lits)
	}
}

// encodeUseModelSize emits the optional axiom that the top domain value
// n is actually taken by some constant or unary function application in
// the sort, restricted to signatures of arity at most 1 (spec.md
// §4.4.7).
func (e *Encoder) encodeUseModelSize(buf *Buffer, layout *Layout, n int, gt []symorder.GroundedTerm) {
	lits := make([]satbridge.Lit, 0, len(gt)*n)
	for _, g := range gt {
		arity := e.p.Sig.FunctionArity(g.Symbol)
		if arity == 0 {
			v := layout.Var(true, g.Symbol, []fo.Element{fo.Element(n)})
			lits = append(lits, satbridge.NewLit(v, true))
			continue
		}
		for m := 1; m <= n; m++ {
			v := layout.Var(true, g.Symbol, []fo.Element{fo.Element(m), fo.Element(n)})
			lits = append(lits, satbridge.NewLit(v, true))
		}
	}
	if len(lits) > 0 {
		buf.Add(lits)
	}
}

func boundedN(b uint64, n int) int {
	if b == sortinfer.Unbounded || b > uint64(n) {
		return n
	}
	return int(b)
}

// forEachArgTuple enumerates every tuple in [1,bounds[0]] x ... x
// [1,bounds[k-1]], calling fn once per tuple. Arity 0 calls fn once with
// an empty slice.
func forEachArgTuple(bounds []int, fn func(tuple []int)) {
	tc := newTupleCounter(bounds)
	for tc.next() {
		fn(tc.tuple())
	}
}
