package transport

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoopbackRoundTrip(t *testing.T) {
	a, b := NewLoopbackPair()
	ctx := context.Background()

	require.NoError(t, a.Send(ctx, []byte("hello")))
	frame, err := b.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), frame)

	require.NoError(t, b.Send(ctx, []byte("world")))
	frame, err = a.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("world"), frame)
}

func TestLoopbackCloseDrainsThenErrors(t *testing.T) {
	a, b := NewLoopbackPair()
	ctx := context.Background()

	require.NoError(t, a.Send(ctx, []byte("last")))
	require.NoError(t, a.Close())

	frame, err := b.Recv(ctx)
	require.NoError(t, err)
	require.Equal(t, []byte("last"), frame)

	_, err = b.Recv(ctx)
	require.ErrorIs(t, err, ErrClosed)
}
