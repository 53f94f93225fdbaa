package tgtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/clock"
	"go.mau.fi/mtproto-core/crypto"
	"go.mau.fi/mtproto-core/mt"
	"go.mau.fi/mtproto-core/mtproto"
	"go.mau.fi/mtproto-core/transport"
)

func testAuthKey() crypto.AuthKey {
	var raw [256]byte
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	return crypto.NewAuthKey(raw)
}

func TestServerAnswersPingWithPong(t *testing.T) {
	clientT, serverT := transport.NewLoopbackPair()
	authKey := testAuthKey()

	handler := func(body []byte) ([]byte, error) {
		var ping mt.Ping
		if err := ping.Decode(bin.NewBuffer(body)); err != nil {
			return nil, err
		}
		pong := &mt.Pong{MsgID: 1, PingID: ping.PingID}
		var buf bin.Buffer
		if err := pong.Encode(&buf); err != nil {
			return nil, err
		}
		return buf.Buf, nil
	}
	srv := New(serverT, authKey, 0xaabb, handler, Options{Clock: clock.Frozen{At: time.Unix(1700000000, 0)}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx)

	session, err := mtproto.NewEncryptedSession(authKey, 0, 0, mtproto.Options{Random: crypto.SeededRand(1)})
	require.NoError(t, err)

	ping := &mt.Ping{PingID: 42}
	var pingBody bin.Buffer
	require.NoError(t, ping.Encode(&pingBody))
	wire, err := session.Pack(pingBody.Buf, true)
	require.NoError(t, err)
	require.NoError(t, clientT.Send(ctx, wire))

	respWire, err := clientT.Recv(ctx)
	require.NoError(t, err)

	messages, signals, err := session.Unpack(respWire)
	require.NoError(t, err)
	require.Empty(t, signals)
	require.Len(t, messages, 1)

	var pong mt.Pong
	require.NoError(t, pong.Decode(bin.NewBuffer(messages[0].Body)))
	require.Equal(t, int64(42), pong.PingID)
}

func TestServerLearnsClientSessionID(t *testing.T) {
	clientT, serverT := transport.NewLoopbackPair()
	authKey := testAuthKey()

	srv := New(serverT, authKey, 0, func(body []byte) ([]byte, error) { return nil, nil }, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Serve(ctx)

	session, err := mtproto.NewEncryptedSession(authKey, 0, 0, mtproto.Options{Random: crypto.SeededRand(2)})
	require.NoError(t, err)

	wire, err := session.Pack([]byte("anything"), true)
	require.NoError(t, err)
	require.NoError(t, clientT.Send(ctx, wire))

	require.Eventually(t, func() bool {
		return srv.SessionID() == session.SessionID()
	}, time.Second, time.Millisecond)
}
