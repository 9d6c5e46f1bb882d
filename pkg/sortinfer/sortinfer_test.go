package sortinfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/fmfinder/pkg/fo"
	"github.com/operator-framework/fmfinder/pkg/prep"
)

func TestInferUnifiesArgumentPositionsSharingAVariable(t *testing.T) {
	sig := fo.NewSignature()
	p := sig.AddPredicate("p", 1)
	q := sig.AddPredicate("q", 1)

	// p(X0) v q(X0): both arg-0 positions must share a sort.
	c := fo.Clause{Literals: []fo.Literal{
		{Polarity: true, Predicate: p, Args: []fo.Term{fo.VarTerm(0)}},
		{Polarity: true, Predicate: q, Args: []fo.Term{fo.VarTerm(0)}},
	}}
	norm := prep.Normalize(c)

	ss := Infer(sig, []fo.Clause{norm}, nil, map[fo.SymbolID]bool{}, map[fo.SymbolID]bool{})
	sp, ok := ss.SortOfArg(false, p, 0)
	require.True(t, ok)
	sq, ok := ss.SortOfArg(false, q, 0)
	require.True(t, ok)
	assert.Equal(t, sp, sq)
	assert.Equal(t, 1, ss.Sorts)
}

func TestInferClassifiesConstantsAndFunctionsBySort(t *testing.T) {
	sig := fo.NewSignature()
	a := sig.AddFunction("a", 0)
	f := sig.AddFunction("f", 1)

	// f(X0) = a flattens to X1 = X2 v f(X0) != X1 v a != X2, which unifies
	// f's range with a's range; f's argument forms a second sort.
	c := fo.Clause{Literals: []fo.Literal{
		{Polarity: true, Predicate: fo.Eq, Args: []fo.Term{fo.AppTerm(f, fo.VarTerm(0)), fo.AppTerm(a)}},
	}}
	flat, err := prep.Prepare(c)
	require.NoError(t, err)

	ss := Infer(sig, flat, nil, map[fo.SymbolID]bool{}, map[fo.SymbolID]bool{})
	require.Equal(t, 2, ss.Sorts)
	s, ok := ss.SortOfArg(true, f, 0)
	require.True(t, ok)
	sa, ok := ss.SortOfArg(true, a, 0)
	require.True(t, ok)
	assert.Equal(t, s, sa)
	assert.Equal(t, []fo.SymbolID{a}, ss.Constants[s])
	assert.Equal(t, []fo.SymbolID{f}, ss.RangeHere[s])
	// f ranges into the sort, so its single constant does not bound it.
	assert.Equal(t, uint64(Unbounded), ss.SortBound[s])
}

func TestInferYieldsNoSortsForGroundOnlyInput(t *testing.T) {
	sig := fo.NewSignature()
	p := sig.AddPredicate("p", 0)
	// A ground clause carries no variables to infer sorts for.
	ground := fo.Clause{Literals: []fo.Literal{{Polarity: true, Predicate: p}}}

	ss := Infer(sig, nil, []fo.Clause{ground}, map[fo.SymbolID]bool{}, map[fo.SymbolID]bool{})
	assert.Equal(t, 0, ss.Sorts)
	assert.Empty(t, ss.ClauseBounds)
}
