package dimacs

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/fmfinder/pkg/satbridge"
)

func TestBackendNeverSolvesAndAlwaysUnknown(t *testing.T) {
	b := New()
	b.EnsureVarCount(2)
	require.NoError(t, b.AddClause([]satbridge.Lit{satbridge.NewLit(1, true)}))

	outcome, err := b.Solve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, satbridge.Unknown, outcome)
	assert.False(t, b.ValueOf(satbridge.NewLit(1, true)))
}

func TestWriteDIMACSFormat(t *testing.T) {
	clauses := [][]satbridge.Lit{
		{satbridge.NewLit(1, true), satbridge.NewLit(2, false)},
		{satbridge.NewLit(2, true)},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteDIMACS(&buf, clauses, 2))

	got := buf.String()
	assert.Equal(t, "p cnf 2 2\n1 -2 0\n2 0\n", got)
}

func TestBackendWriteDIMACSMatchesBufferedClauses(t *testing.T) {
	b := New()
	b.EnsureVarCount(1)
	require.NoError(t, b.AddClause([]satbridge.Lit{satbridge.NewLit(1, true)}))

	var buf bytes.Buffer
	require.NoError(t, b.WriteDIMACS(&buf))
	assert.Equal(t, "p cnf 1 1\n1 0\n", buf.String())
}
