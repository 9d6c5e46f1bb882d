package gini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/fmfinder/pkg/satbridge"
)

func TestSolveSatisfiable(t *testing.T) {
	b := New()
	b.EnsureVarCount(2)
	require.NoError(t, b.AddClause([]satbridge.Lit{satbridge.NewLit(1, true), satbridge.NewLit(2, true)}))
	require.NoError(t, b.AddClause([]satbridge.Lit{satbridge.NewLit(1, false)}))

	outcome, err := b.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, satbridge.Satisfiable, outcome)
	assert.True(t, b.ValueOf(satbridge.NewLit(2, true)))
}

func TestSolveUnsatisfiable(t *testing.T) {
	b := New()
	b.EnsureVarCount(1)
	require.NoError(t, b.AddClause([]satbridge.Lit{satbridge.NewLit(1, true)}))
	require.NoError(t, b.AddClause([]satbridge.Lit{satbridge.NewLit(1, false)}))

	outcome, err := b.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, satbridge.Unsatisfiable, outcome)
}

func TestSolveRespectsCancelledContext(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Solve(ctx)
	assert.Error(t, err)
}
