package prep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/fmfinder/pkg/fo"
)

func TestPrepareFlattensNestedFunctionApplication(t *testing.T) {
	sig := fo.NewSignature()
	f := sig.AddFunction("f", 1)
	p := sig.AddPredicate("p", 1)

	// p(f(X0))
	c := fo.Clause{Literals: []fo.Literal{
		{Polarity: true, Predicate: p, Args: []fo.Term{fo.AppTerm(f, fo.VarTerm(0))}},
	}}

	out, err := Prepare(c)
	require.NoError(t, err)
	require.Len(t, out, 1)
	flat := out[0]

	require.Len(t, flat.Literals, 2)
	for _, l := range flat.Literals {
		if l.IsEquality() {
			// The definition f(X) != Z keeps f applied, but only to variables.
			assert.Equal(t, f, l.Args[0].Head)
			for _, a := range l.Args[0].Args {
				assert.True(t, a.IsVar, "a definition's arguments must be variables after flattening")
			}
			assert.True(t, l.Args[1].IsVar, "a definition's right-hand side must be a variable")
			continue
		}
		for _, a := range l.Args {
			assert.True(t, a.IsVar, "every predicate argument must be a variable after flattening")
		}
	}
	assert.Equal(t, 2, flat.VarCount)
}

func TestPrepareLeavesAlreadyFlatClauseAlone(t *testing.T) {
	sig := fo.NewSignature()
	p := sig.AddPredicate("p", 1)
	c := fo.Clause{Literals: []fo.Literal{
		{Polarity: true, Predicate: p, Args: []fo.Term{fo.VarTerm(0)}},
	}}

	out, err := Prepare(c)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].VarCount)
	assert.Len(t, out[0].Literals, 1)
}

func TestPrepareReturnsErrRefutationForEmptyClause(t *testing.T) {
	_, err := Prepare(fo.Clause{})
	require.Error(t, err)
	var refutation ErrRefutation
	assert.ErrorAs(t, err, &refutation)
}

func TestNormalizeRenumbersDenselyByFirstOccurrence(t *testing.T) {
	sig := fo.NewSignature()
	p := sig.AddPredicate("p", 2)
	c := fo.Clause{Literals: []fo.Literal{
		{Polarity: true, Predicate: p, Args: []fo.Term{fo.VarTerm(5), fo.VarTerm(2)}},
	}}
	norm := Normalize(c)
	assert.Equal(t, 2, norm.VarCount)
	assert.Equal(t, 0, norm.Literals[0].Args[0].Var)
	assert.Equal(t, 1, norm.Literals[0].Args[1].Var)
}
