package bin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferLongRoundTrip(t *testing.T) {
	b := new(Buffer)
	b.PutLong(-123456789)
	b.PutUint32(0x1234abcd)
	v, err := b.Long()
	require.NoError(t, err)
	require.EqualValues(t, -123456789, v)
	id, err := b.Uint32()
	require.NoError(t, err)
	require.EqualValues(t, 0x1234abcd, id)
}

func TestBufferBytesRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 253, 254, 1000} {
		b := new(Buffer)
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i)
		}
		b.PutBytes(payload)
		require.Zero(t, len(b.Buf)%4)
		got, err := b.Bytes()
		require.NoError(t, err)
		require.Equal(t, payload, got)
		require.Zero(t, b.Len())
	}
}

func TestBufferPeekID(t *testing.T) {
	b := new(Buffer)
	b.PutUint32(0xdeadbeef)
	b.PutLong(42)
	id, err := b.PeekID()
	require.NoError(t, err)
	require.EqualValues(t, 0xdeadbeef, id)
	require.NoError(t, b.ConsumeID(0xdeadbeef))
	v, err := b.Long()
	require.NoError(t, err)
	require.EqualValues(t, 42, v)
}
