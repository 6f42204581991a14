package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAcceptsAddrAndURL(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	require.NoError(t, client.Close())

	client, err = New(context.Background(), "redis://"+mr.Addr()+"/2")
	require.NoError(t, err)
	assert.Equal(t, 2, client.Options().DB)
	require.NoError(t, client.Close())
}

func TestNewRejectsBadAddress(t *testing.T) {
	_, err := New(context.Background(), "  ")
	assert.Error(t, err)

	_, err = New(context.Background(), "redis://%zz")
	assert.Error(t, err)
}
