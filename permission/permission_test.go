// SPDX-License-Identifier: Unlicense OR MIT

package permission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGrant(t *testing.T) {
	m := NewMemory(true)
	assert.False(t, m.Granted(FineLocation))

	ok, err := m.Request(context.Background(), FineLocation)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, m.Granted(FineLocation))
	assert.False(t, m.Granted(CoarseLocation), "grant leaked to another permission")
}

func TestMemoryDeny(t *testing.T) {
	m := NewMemory(false)
	ok, err := m.Request(context.Background(), FineLocation)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, m.Granted(FineLocation))
}

func TestMemoryDenyKeepsEarlierGrant(t *testing.T) {
	m := NewMemory(false, FineLocation)
	ok, err := m.Request(context.Background(), FineLocation)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCancelled(t *testing.T) {
	var m Memory
	m.Answer = true
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := m.Request(ctx, FineLocation)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.False(t, m.Granted(FineLocation))
}
