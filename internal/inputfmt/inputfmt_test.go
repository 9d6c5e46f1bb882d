package inputfmt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/operator-framework/fmfinder/pkg/fo"
)

const doc = `
functions:
  - name: a
    arity: 0
  - name: f
    arity: 1
predicates:
  - name: p
    arity: 1
clauses:
  - - {predicate: p, polarity: true, args: ["a"]}
    - {predicate: p, polarity: true, args: ["f(a)"]}
  - - {predicate: "=", polarity: false, args: ["f(X0)", "X0"]}
`

func TestLoadParsesSignatureAndClauses(t *testing.T) {
	sig, clauses, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	require.Len(t, sig.Functions, 2)
	require.Len(t, sig.Predicates, 2) // reserved Eq slot + p
	require.Len(t, clauses, 2)

	// First clause: p(a) v p(f(a))
	c0 := clauses[0]
	require.Len(t, c0.Literals, 2)
	assert.True(t, c0.Literals[0].Polarity)
	assert.False(t, c0.Literals[0].Args[0].IsVar)

	// Second clause: f(X0) != X0
	c1 := clauses[1]
	require.Len(t, c1.Literals, 1)
	assert.True(t, c1.Literals[0].IsEquality())
	assert.False(t, c1.Literals[0].Polarity)
	assert.True(t, c1.Literals[0].Args[1].IsVar)
}

func TestLoadRejectsUndeclaredPredicate(t *testing.T) {
	bad := `
predicates:
  - name: p
    arity: 0
clauses:
  - - {predicate: q, polarity: true, args: []}
`
	_, _, err := Load(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestLoadRejectsUndeclaredFunction(t *testing.T) {
	bad := `
predicates:
  - name: p
    arity: 1
clauses:
  - - {predicate: p, polarity: true, args: ["b"]}
`
	_, _, err := Load(strings.NewReader(bad))
	assert.Error(t, err)
}

func TestParseTermHandlesNestedApplication(t *testing.T) {
	funcID := map[string]fo.SymbolID{"f": 0, "g": 1}
	term, err := parseTerm("f(g(X0))", funcID)
	require.NoError(t, err)
	assert.Equal(t, fo.SymbolID(0), term.Head)
	require.Len(t, term.Args, 1)
	assert.Equal(t, fo.SymbolID(1), term.Args[0].Head)
	require.Len(t, term.Args[0].Args, 1)
	assert.True(t, term.Args[0].Args[0].IsVar)
}
