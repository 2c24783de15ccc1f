package server

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mj1618/ui-inspector/internal/gather"
	"github.com/mj1618/ui-inspector/internal/model"
)

func countingRead(calls *int) func() (gather.Result, error) {
	return func() (gather.Result, error) {
		*calls++
		return gather.Result{Focal: model.Node{Name: "n"}}, nil
	}
}

func TestTreeCache_HitWithinTTL(t *testing.T) {
	c := NewTreeCache(time.Second)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	calls := 0
	_, hit, err := c.Capture(1, 2, countingRead(&calls))
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = c.Capture(1, 2, countingRead(&calls))
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, calls)

	_, hit, _ = c.Capture(3, 4, countingRead(&calls))
	assert.False(t, hit, "other points are separate entries")

	now = now.Add(time.Second)
	_, hit, _ = c.Capture(1, 2, countingRead(&calls))
	assert.False(t, hit)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, c.Len(), "expired entries are pruned on insert")
}

func TestTreeCache_Disabled(t *testing.T) {
	c := NewTreeCache(0)
	calls := 0
	c.Capture(1, 1, countingRead(&calls))
	c.Capture(1, 1, countingRead(&calls))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 0, c.Len())
}

func TestTreeCache_ErrorsAreNotCached(t *testing.T) {
	c := NewTreeCache(time.Minute)
	_, _, err := c.Capture(1, 1, func() (gather.Result, error) { return gather.Result{}, errors.New("boom") })
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestTreeCache_InvalidateAll(t *testing.T) {
	c := NewTreeCache(time.Minute)
	calls := 0
	c.Capture(1, 1, countingRead(&calls))
	c.InvalidateAll()
	_, hit, _ := c.Capture(1, 1, countingRead(&calls))
	assert.False(t, hit)
	assert.Equal(t, 2, calls)
}
