package session

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"go.mau.fi/mtproto-core/crypto"
)

func sampleData() *Data {
	var raw [256]byte
	for i := range raw {
		raw[i] = byte(i)
	}
	return &Data{
		DCID:           2,
		IP:             net.ParseIP("149.154.167.50"),
		Port:           443,
		AuthKey:        crypto.NewAuthKey(raw),
		Salt:           0x0102030405060708,
		SessionID:      0x1122334455667788,
		TimeOffset:     -5,
		ContentCounter: 42,
		LastMsgID:      0x7fffffffffffffff,
	}
}

func TestDataMarshalUnmarshalRoundTrip(t *testing.T) {
	d := sampleData()
	raw, err := d.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(raw)
	require.NoError(t, err)

	require.Equal(t, d.DCID, got.DCID)
	require.True(t, d.IP.Equal(got.IP))
	require.Equal(t, d.Port, got.Port)
	require.Equal(t, d.AuthKey.Bytes(), got.AuthKey.Bytes())
	require.Equal(t, d.Salt, got.Salt)
	require.Equal(t, d.SessionID, got.SessionID)
	require.Equal(t, d.TimeOffset, got.TimeOffset)
	require.Equal(t, d.ContentCounter, got.ContentCounter)
	require.Equal(t, d.LastMsgID, got.LastMsgID)
}

func TestUnmarshalRejectsWrongLength(t *testing.T) {
	_, err := Unmarshal([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestLoaderRoundTripThroughStorageMemory(t *testing.T) {
	ctx := context.Background()
	storage := &StorageMemory{}
	loader := Loader{Storage: storage}

	_, err := loader.Load(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	d := sampleData()
	require.NoError(t, loader.Save(ctx, d))

	got, err := loader.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, d.SessionID, got.SessionID)
}
