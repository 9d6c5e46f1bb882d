// Package sortinfer computes inferred sorts (equivalence classes of
// argument positions that must share a domain in any model) and the
// per-symbol / per-clause-variable cardinality bounds that follow from
// them.
//
// Grounded on spec.md §4.2 and, where the algorithm needs a concrete
// choice not spelled out there, on original_source/FMB/FiniteModelBuilder.cpp's
// use of _sortedSignature (SortInference::apply is external to the
// retrieved sources; its call sites in FiniteModelBuilder.cpp are the
// ground truth used here).
package sortinfer

import (
	"math"

	"github.com/operator-framework/fmfinder/pkg/fo"
)

// Sort is an inferred-sort id.
type Sort int

// Unbounded is the "no known upper bound" sentinel for a sort's
// cardinality, matching the original's UINT_MAX sentinel for functions
// with no sort record.
const Unbounded = math.MaxUint64

type posKey struct {
	isFunc bool
	sym    fo.SymbolID
	index  int // 0 = range (functions only); i+1 = i-th argument (functions); i = i-th argument (predicates)
}

type varKey struct {
	clause int
	v      int
}

// unionFind is a standard weighted quick-union with path compression
// over a dynamically growing universe of opaque node ids.
type unionFind struct {
	parent []int
	rank   []int
}

func (u *unionFind) ensure(id int) {
	for len(u.parent) <= id {
		u.parent = append(u.parent, len(u.parent))
		u.rank = append(u.rank, 0)
	}
}

func (u *unionFind) find(x int) int {
	u.ensure(x)
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}

// SortedSignature is the output of Infer: the sort partition plus
// per-sort constant/function lists and per-symbol/per-clause bounds.
type SortedSignature struct {
	Sorts int

	// Constants[s] and RangeHere[s] are ordered (occurrence order,
	// possibly re-ordered later by symorder) lists of symbols whose
	// range sort is s.
	Constants [][]fo.SymbolID
	RangeHere [][]fo.SymbolID

	// SortBound[s] is the inferred cardinality bound of sort s: its
	// number of constants when no function of arity > 0 ranges into s,
	// Unbounded otherwise. Clauses forcing elements to be distinct do not
	// lower it.
	SortBound []uint64

	// FBounds[f] has length arity(f)+1: index 0 is the range bound,
	// index i+1 is the bound of the i-th argument.
	FBounds map[fo.SymbolID][]uint64
	// PBounds[p] has length arity(p): index i is the bound of the i-th
	// argument.
	PBounds map[fo.SymbolID][]uint64

	// ClauseBounds[c][v] is the tightest known bound for variable v of
	// non-ground clause index c (an index into the non-ground clause
	// slice passed to Infer, not the combined slice).
	ClauseBounds [][]uint64

	sortOfSym map[posKey]Sort
}

// SortOfArg returns the inferred sort of the given argument position,
// and whether one was found (it will not be for eliminated symbols
// that never appear in any clause).
func (s *SortedSignature) SortOfArg(isFunc bool, sym fo.SymbolID, index int) (Sort, bool) {
	so, ok := s.sortOfSym[posKey{isFunc, sym, index}]
	return so, ok
}

// Infer computes the sorted signature for a signature and its clauses.
// nonGround and ground should partition the caller's flattened,
// normalised clause set; nonGround's order determines ClauseBounds'
// indexing.
func Infer(sig *fo.Signature, nonGround, ground []fo.Clause, deletedF, deletedP map[fo.SymbolID]bool) *SortedSignature {
	uf := &unionFind{}
	nodeOf := map[interface{}]int{}
	nextNode := 0
	node := func(k interface{}) int {
		id, ok := nodeOf[k]
		if !ok {
			id = nextNode
			nextNode++
			nodeOf[k] = id
			uf.ensure(id)
		}
		return id
	}

	unifyPositions := func(a, b posKey) { uf.union(node(a), node(b)) }
	unifyVarPos := func(clauseIdx, v int, p posKey) { uf.union(node(varKey{clauseIdx, v}), node(p)) }
	unifyVarVar := func(clauseIdx, v1, v2 int) { uf.union(node(varKey{clauseIdx, v1}), node(varKey{clauseIdx, v2})) }

	visit := func(clauseIdx int, c fo.Clause) {
		for _, l := range c.Literals {
			switch {
			case l.IsTwoVarEquality():
				unifyVarVar(clauseIdx, l.Args[0].Var, l.Args[1].Var)
			case l.IsEquality():
				// Definition equality f(x̄) = y.
				lhs, rhs := l.Args[0], l.Args[1]
				f := lhs.Head
				if !deletedF[f] {
					if rhs.IsVar {
						unifyVarPos(clauseIdx, rhs.Var, posKey{true, f, 0})
					}
					for i, a := range lhs.Args {
						if a.IsVar {
							unifyVarPos(clauseIdx, a.Var, posKey{true, f, i + 1})
						}
					}
				}
			default:
				if !deletedP[l.Predicate] {
					for i, a := range l.Args {
						if a.IsVar {
							unifyVarPos(clauseIdx, a.Var, posKey{false, l.Predicate, i})
						}
					}
				}
			}
		}
	}

	for i, c := range nonGround {
		visit(i, c)
	}
	// Ground clauses carry no variables once flattening has run (see
	// prep.flatten), but registering their symbol positions still
	// matters for propositional (arity-0) predicates: nothing to unify,
	// safe to skip.
	_ = ground
	_ = unifyPositions

	// Assign dense sort ids to roots that contain at least one symbol
	// position (positions with no symbol member never bound a real
	// symbol and are left without a sort, i.e. wholly unconstrained).
	rootSort := map[int]Sort{}
	sortOfSym := map[posKey]Sort{}
	for k, id := range nodeOf {
		pk, ok := k.(posKey)
		if !ok {
			continue
		}
		root := uf.find(id)
		s, ok := rootSort[root]
		if !ok {
			s = Sort(len(rootSort))
			rootSort[root] = s
		}
		sortOfSym[pk] = s
	}
	numSorts := len(rootSort)

	constants := make([][]fo.SymbolID, numSorts)
	rangeHere := make([][]fo.SymbolID, numSorts)
	for _, f := range sig.Functions {
		if deletedF[f.ID] {
			continue
		}
		s, ok := sortOfSym[posKey{true, f.ID, 0}]
		if !ok {
			continue
		}
		if f.Arity == 0 {
			constants[s] = append(constants[s], f.ID)
		} else {
			rangeHere[s] = append(rangeHere[s], f.ID)
		}
	}

	sortBound := make([]uint64, numSorts)
	for s := range sortBound {
		if len(constants[s]) > 0 && len(rangeHere[s]) == 0 {
			sortBound[s] = uint64(len(constants[s]))
		} else {
			sortBound[s] = Unbounded
		}
	}

	fbounds := map[fo.SymbolID][]uint64{}
	for _, f := range sig.Functions {
		if deletedF[f.ID] {
			continue
		}
		b := make([]uint64, f.Arity+1)
		b[0] = boundOf(sortOfSym, sortBound, true, f.ID, 0)
		for i := 0; i < f.Arity; i++ {
			b[i+1] = boundOf(sortOfSym, sortBound, true, f.ID, i+1)
		}
		fbounds[f.ID] = b
	}
	pbounds := map[fo.SymbolID][]uint64{}
	for _, p := range sig.Predicates {
		if p.ID == fo.Eq || deletedP[p.ID] {
			continue
		}
		b := make([]uint64, p.Arity)
		for i := 0; i < p.Arity; i++ {
			b[i] = boundOf(sortOfSym, sortBound, false, p.ID, i)
		}
		pbounds[p.ID] = b
	}

	clauseBounds := make([][]uint64, len(nonGround))
	for i, c := range nonGround {
		b := make([]uint64, c.VarCount)
		for v := 0; v < c.VarCount; v++ {
			id, ok := nodeOf[varKey{i, v}]
			if !ok {
				b[v] = Unbounded
				continue
			}
			root := uf.find(id)
			s, ok := rootSort[root]
			if !ok {
				b[v] = Unbounded
				continue
			}
			b[v] = sortBound[s]
		}
		clauseBounds[i] = b
	}

	return &SortedSignature{
		Sorts:        numSorts,
		Constants:    constants,
		RangeHere:    rangeHere,
		SortBound:    sortBound,
		FBounds:      fbounds,
		PBounds:      pbounds,
		ClauseBounds: clauseBounds,
		sortOfSym:    sortOfSym,
	}
}

func boundOf(sortOfSym map[posKey]Sort, sortBound []uint64, isFunc bool, sym fo.SymbolID, idx int) uint64 {
	s, ok := sortOfSym[posKey{isFunc, sym, idx}]
	if !ok {
		return Unbounded
	}
	return sortBound[s]
}
