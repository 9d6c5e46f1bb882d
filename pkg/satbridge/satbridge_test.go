package satbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLitNegAndPositive(t *testing.T) {
	l := NewLit(3, true)
	assert.True(t, l.Positive())
	assert.Equal(t, 3, l.Var())

	n := l.Neg()
	assert.False(t, n.Positive())
	assert.Equal(t, 3, n.Var())
	assert.Equal(t, l, n.Neg())
}

func TestNewLitNegativePolarity(t *testing.T) {
	l := NewLit(7, false)
	assert.False(t, l.Positive())
	assert.Equal(t, 7, l.Var())
}
