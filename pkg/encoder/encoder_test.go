package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/fmfinder/pkg/fo"
	"github.com/operator-framework/fmfinder/pkg/prep"
	"github.com/operator-framework/fmfinder/pkg/satbridge"
	"github.com/operator-framework/fmfinder/pkg/sortinfer"
	"github.com/operator-framework/fmfinder/pkg/symorder"
)

// buildProblem is a small helper shared by the encoder tests: a single
// sort with one unary predicate p(x), clause p(X) ∨ p(f(X)).
func buildProblem(t *testing.T) (*Problem, *fo.Signature) {
	t.Helper()
	sig := fo.NewSignature()
	f := sig.AddFunction("f", 1)
	p := sig.AddPredicate("p", 1)

	c := fo.Clause{Literals: []fo.Literal{
		{Polarity: true, Predicate: p, Args: []fo.Term{fo.VarTerm(0)}},
		{Polarity: true, Predicate: p, Args: []fo.Term{fo.AppTerm(f, fo.VarTerm(0))}},
	}}
	flat, err := prep.Prepare(c)
	require.NoError(t, err)
	require.Len(t, flat, 1)

	deletedF := map[fo.SymbolID]bool{}
	deletedP := map[fo.SymbolID]bool{}
	ss := sortinfer.Infer(sig, flat, nil, deletedF, deletedP)

	return &Problem{
		Sig:       sig,
		Sorted:    ss,
		DeletedF:  deletedF,
		DeletedP:  deletedP,
		NonGround: flat,
		Ground:    nil,
	}, sig
}

func TestEncodeProducesNonEmptyClauses(t *testing.T) {
	p, _ := buildProblem(t)
	enc := New(p, Config{WidgetOrder: symorder.FunctionFirst, SymbolOrder: symorder.Occurrence, SymmetryRatio: 1})

	buf, round, err := enc.Encode(2, nil, sortinfer.Unbounded)
	require.NoError(t, err)
	assert.NotEmpty(t, buf.Clauses)
	assert.Equal(t, 2, round.N)
	for _, cl := range buf.Clauses {
		assert.NotEmpty(t, cl, "no clause should be trivially empty for a satisfiable toy problem")
	}
}

// TestEncodeAtModelSizeOneWithSymmetryBreakingDoesNotPanic guards against
// encodeCanonicity indexing domain value n-1==0 at n=1, which
// Layout.Var rejects as out of range. Two same-sorted nullary
// constants under the real fmfind defaults (SymmetryRatio: 1) is
// exactly the shape any first round with startSize 1 hits.
func TestEncodeAtModelSizeOneWithSymmetryBreakingDoesNotPanic(t *testing.T) {
	sig := fo.NewSignature()
	a := sig.AddFunction("a", 0)
	b := sig.AddFunction("b", 0)
	p := sig.AddPredicate("p", 1)
	clauses := []fo.Clause{
		{Literals: []fo.Literal{{Polarity: true, Predicate: p, Args: []fo.Term{fo.AppTerm(a)}}}},
		{Literals: []fo.Literal{{Polarity: true, Predicate: p, Args: []fo.Term{fo.AppTerm(b)}}}},
	}
	var nonGround, ground []fo.Clause
	for _, c := range clauses {
		flat, err := prep.Prepare(c)
		require.NoError(t, err)
		for _, fc := range flat {
			if fc.Ground() {
				ground = append(ground, fc)
			} else {
				nonGround = append(nonGround, fc)
			}
		}
	}
	deletedF := map[fo.SymbolID]bool{}
	deletedP := map[fo.SymbolID]bool{}
	ss := sortinfer.Infer(sig, nonGround, ground, deletedF, deletedP)
	problem := &Problem{
		Sig:       sig,
		Sorted:    ss,
		DeletedF:  deletedF,
		DeletedP:  deletedP,
		NonGround: nonGround,
		Ground:    ground,
	}

	enc := New(problem, Config{
		WidgetOrder:   symorder.FunctionFirst,
		SymbolOrder:   symorder.Occurrence,
		SymmetryRatio: 1,
	})

	assert.NotPanics(t, func() {
		buf, round, err := enc.Encode(1, nil, sortinfer.Unbounded)
		require.NoError(t, err)
		assert.Equal(t, 1, round.N)
		assert.NotEmpty(t, buf.Clauses)
	})
}

func TestEncodeGroundClauseIsPropositional(t *testing.T) {
	sig := fo.NewSignature()
	p := sig.AddPredicate("p", 0)
	q := sig.AddPredicate("q", 0)
	ground := []fo.Clause{
		{Literals: []fo.Literal{{Polarity: true, Predicate: p}, {Polarity: true, Predicate: q}}},
		{Literals: []fo.Literal{{Polarity: false, Predicate: p}}},
	}
	ss := sortinfer.Infer(sig, nil, ground, nil, nil)
	prob := &Problem{Sig: sig, Sorted: ss, NonGround: nil, Ground: ground}
	enc := New(prob, Config{})

	buf, _, err := enc.Encode(3, nil, sortinfer.Unbounded)
	require.NoError(t, err)
	require.Len(t, buf.Clauses, 2)
	assert.Len(t, buf.Clauses[0], 2)
	assert.Len(t, buf.Clauses[1], 1)
}

func TestFunctionalityForbidsTwoValuesForSameTuple(t *testing.T) {
	p, _ := buildProblem(t)
	enc := New(p, Config{})
	layout, err := BuildLayout(p.Sig, p.DeletedF, p.DeletedP, 3)
	require.NoError(t, err)

	buf := &Buffer{}
	enc.encodeFunctionality(buf, layout, 3)

	f := p.Sig.Functions[0].ID
	v1 := layout.Var(true, f, []fo.Element{1, 1})
	v2 := layout.Var(true, f, []fo.Element{1, 2})
	found := false
	for _, cl := range buf.Clauses {
		if len(cl) == 2 {
			has1 := cl[0] == satbridge.NewLit(v1, false) || cl[1] == satbridge.NewLit(v1, false)
			has2 := cl[0] == satbridge.NewLit(v2, false) || cl[1] == satbridge.NewLit(v2, false)
			if has1 && has2 {
				found = true
			}
		}
	}
	assert.True(t, found, "expected a clause forbidding f(1)=1 and f(1)=2 simultaneously")
}

func TestTotalityCoversEveryValue(t *testing.T) {
	p, _ := buildProblem(t)
	enc := New(p, Config{})
	layout, err := BuildLayout(p.Sig, p.DeletedF, p.DeletedP, 2)
	require.NoError(t, err)

	buf := &Buffer{}
	enc.encodeTotality(buf, layout, 2)
	require.Len(t, buf.Clauses, 2) // one tuple per argument value (arity 1, n=2)
	for _, cl := range buf.Clauses {
		assert.Len(t, cl, 2)
	}
}

func TestLayoutOverflowDetected(t *testing.T) {
	sig := fo.NewSignature()
	sig.AddFunction("big", 5)
	_, err := BuildLayout(sig, nil, nil, 1<<20)
	require.Error(t, err)
	var overflow ErrOverflow
	assert.ErrorAs(t, err, &overflow)
}

func TestTupleCounterEnumeratesAllCombinations(t *testing.T) {
	var got [][]int
	forEachArgTuple([]int{2, 3}, func(tuple []int) {
		cp := append([]int{}, tuple...)
		got = append(got, cp)
	})
	assert.Len(t, got, 6)
}

func TestTupleCounterZeroArityYieldsOneEmptyTuple(t *testing.T) {
	count := 0
	forEachArgTuple(nil, func(tuple []int) {
		count++
		assert.Empty(t, tuple)
	})
	assert.Equal(t, 1, count)
}
