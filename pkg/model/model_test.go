package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/fmfinder/pkg/encoder"
	"github.com/operator-framework/fmfinder/pkg/fo"
	"github.com/operator-framework/fmfinder/pkg/prep"
	"github.com/operator-framework/fmfinder/pkg/satbridge"
	"github.com/operator-framework/fmfinder/pkg/satbridge/gini"
	"github.com/operator-framework/fmfinder/pkg/search"
	"github.com/operator-framework/fmfinder/pkg/sortinfer"
)

// solveFA runs the full pipeline for {f(a) = a}, which is satisfiable at
// n=1 with a single domain element carrying both a and f(a).
func solveFA(t *testing.T) (*fo.Signature, map[fo.SymbolID]bool, map[fo.SymbolID]bool, *search.Result) {
	t.Helper()
	sig := fo.NewSignature()
	f := sig.AddFunction("f", 1)
	a := sig.AddFunction("a", 0)

	c := fo.Clause{Literals: []fo.Literal{
		{Polarity: true, Predicate: fo.Eq, Args: []fo.Term{fo.AppTerm(f, fo.AppTerm(a)), fo.AppTerm(a)}},
	}}
	flat, err := prep.Prepare(c)
	require.NoError(t, err)

	var nonGround, ground []fo.Clause
	for _, fc := range flat {
		if fc.Ground() {
			ground = append(ground, fc)
		} else {
			nonGround = append(nonGround, fc)
		}
	}

	deletedF := map[fo.SymbolID]bool{}
	deletedP := map[fo.SymbolID]bool{}
	ss := sortinfer.Infer(sig, nonGround, ground, deletedF, deletedP)
	problem := &encoder.Problem{Sig: sig, Sorted: ss, DeletedF: deletedF, DeletedP: deletedP, NonGround: nonGround, Ground: ground}

	loop := search.New(problem, search.Options{
		StartSize: 1,
		NewBridge: func() satbridge.Bridge { return gini.New() },
	})
	res, err := loop.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, search.SatisfiableVerdict, res.Verdict)

	return sig, deletedF, deletedP, res
}

func TestExtractRecoversConstantAndFunctionGraph(t *testing.T) {
	sig, deletedF, deletedP, res := solveFA(t)
	fm := Extract(sig, deletedF, deletedP, res.Round.Layout, res.Assignment, res.N)

	require.Equal(t, 1, fm.N)
	a := sig.Functions[1].ID
	f := sig.Functions[0].ID
	require.Contains(t, fm.Constants, a)
	assert.Equal(t, fo.Element(1), fm.Constants[a])
	require.Contains(t, fm.Functions, f)
	assert.Equal(t, fo.Element(1), fm.Functions[f]["1"])
}

func TestFiniteModelStringIsDeterministic(t *testing.T) {
	sig, deletedF, deletedP, res := solveFA(t)
	fm := Extract(sig, deletedF, deletedP, res.Round.Layout, res.Assignment, res.N)

	s1 := fm.String()
	s2 := fm.String()
	assert.Equal(t, s1, s2)
	assert.Contains(t, s1, "domain size 1")
	assert.Contains(t, s1, "a = 1")
}
