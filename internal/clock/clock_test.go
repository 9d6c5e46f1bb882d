package clock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpiredFalseForLiveContext(t *testing.T) {
	d := New(context.Background())
	assert.False(t, d.Expired())
	assert.NoError(t, d.Err())
}

func TestExpiredTrueForCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := New(ctx)
	assert.True(t, d.Expired())
	assert.Error(t, d.Err())
}

func TestNewTreatsNilContextAsBackground(t *testing.T) {
	d := New(nil)
	assert.False(t, d.Expired())
	assert.NotNil(t, d.Context())
}
