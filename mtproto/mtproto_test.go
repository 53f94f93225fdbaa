package mtproto

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/clock"
	"go.mau.fi/mtproto-core/crypto"
	"go.mau.fi/mtproto-core/mt"
	"go.mau.fi/mtproto-core/proto"
)

// zeroReader is a deterministic, all-zero RandomSource used to exercise
// the minimum-padding boundary without depending on a real PRNG's output.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func testAuthKey() crypto.AuthKey {
	var raw [256]byte
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	return crypto.NewAuthKey(raw)
}

func newTestSession(t *testing.T, random crypto.RandomSource, firstSalt int64) *EncryptedSession {
	s, err := NewEncryptedSession(testAuthKey(), firstSalt, 0, Options{Random: random, Clock: clock.System})
	require.NoError(t, err)
	return s
}

// decryptClientPacked simulates the server side of the link reading what
// this client just packed: the client always encrypts client->server
// (x=0), so the peer must derive keys with that same offset.
func decryptClientPacked(t *testing.T, authKey crypto.AuthKey, wire []byte) []byte {
	require.GreaterOrEqual(t, len(wire), 24)
	var msgKey [16]byte
	copy(msgKey[:], wire[8:24])
	key, iv := crypto.DeriveMessageKeys(authKey, msgKey, crypto.Client)
	plaintext, err := crypto.IGEDecrypt(wire[24:], key[:], iv[:])
	require.NoError(t, err)
	return plaintext
}

// encryptAsServer builds a wire frame the way the server would: x=8
// key derivation, used to feed EncryptedSession.Unpack in tests.
func encryptAsServer(t *testing.T, authKey crypto.AuthKey, sessionID, salt, msgID int64, seqNo int32, body []byte) []byte {
	var inner bin.Buffer
	inner.PutLong(salt)
	inner.PutLong(sessionID)
	inner.PutLong(msgID)
	inner.PutInt32(seqNo)
	inner.PutInt32(int32(len(body)))
	inner.PutBytesRaw(body)

	plainLen := innerHeaderLen + len(body)
	padLen := (16 - plainLen%16) % 16
	if padLen < 12 {
		padLen += 16
	}
	inner.PutBytesRaw(make([]byte, padLen))

	large := crypto.MessageKeyLarge(authKey, inner.Buf, crypto.Server)
	var msgKey [16]byte
	copy(msgKey[:], large[8:24])
	key, iv := crypto.DeriveMessageKeys(authKey, msgKey, crypto.Server)
	ciphertext, err := crypto.IGEEncrypt(inner.Buf, key[:], iv[:])
	require.NoError(t, err)

	var wire bin.Buffer
	keyID := authKey.KeyID()
	wire.PutBytesRaw(keyID[:])
	wire.PutBytesRaw(msgKey[:])
	wire.PutBytesRaw(ciphertext)
	return wire.Buf
}

// fixedPatternReader repeats a short byte pattern forever. Pinning
// session_id generation and padding choice to a known pattern (rather than
// a seeded PRNG) makes the bytes it produces easy to state in a test without
// depending on any particular RandomSource implementation's output stream.
type fixedPatternReader struct {
	pattern []byte
	pos     int
}

func (r *fixedPatternReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.pattern[r.pos%len(r.pattern)]
		r.pos++
	}
	return len(p), nil
}

func gzipCompress(t *testing.T, data []byte) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestEncryptedSessionPackUnpackRoundTrip(t *testing.T) {
	authKey := testAuthKey()
	s := newTestSession(t, crypto.SeededRand(1), 0x1122)

	body := []byte("outgoing rpc body")
	wire, err := s.Pack(body, true)
	require.NoError(t, err)

	plaintext := decryptClientPacked(t, authKey, wire)
	msg, sessionID, err := parseHeader(plaintext, 0)
	require.NoError(t, err)
	require.Equal(t, s.SessionID(), sessionID)
	require.Equal(t, body, msg.Body)
	require.True(t, proto.IsContentRelated(msg.SeqNo))
}

func TestEncryptedSessionPackContentUnrelatedSeqNo(t *testing.T) {
	authKey := testAuthKey()
	s := newTestSession(t, crypto.SeededRand(2), 0)

	wire, err := s.Pack([]byte("ack"), false)
	require.NoError(t, err)
	plaintext := decryptClientPacked(t, authKey, wire)
	msg, _, err := parseHeader(plaintext, 0)
	require.NoError(t, err)
	require.False(t, proto.IsContentRelated(msg.SeqNo))
}

func TestEncryptedSessionPackMsgIDStrictlyIncreasing(t *testing.T) {
	s := newTestSession(t, crypto.SeededRand(3), 0)
	var last int64
	for i := 0; i < 500; i++ {
		_, msgID, err := s.PackWithMsgID([]byte("x"), true)
		require.NoError(t, err)
		require.Greater(t, msgID, last)
		last = msgID
	}
}

func TestPaddingLengthMinimumIsTwelveBytes(t *testing.T) {
	// body length 4 makes the inner plaintext length (32+4=36) congruent
	// to 4 mod 16, so the minimal alignment padding is exactly 12 bytes,
	// the smallest boundary the padding scheme allows, when the random
	// source never perturbs the choice upward.
	n, err := paddingLength(zeroReader{}, innerHeaderLen+4)
	require.NoError(t, err)
	require.Equal(t, 12, n)
}

func TestPaddingLengthStaysWithinBounds(t *testing.T) {
	for bodyLen := 0; bodyLen < 64; bodyLen++ {
		n, err := paddingLength(crypto.SeededRand(int64(bodyLen)), innerHeaderLen+bodyLen)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 12)
		require.LessOrEqual(t, n, 1024)
		require.Zero(t, (innerHeaderLen+bodyLen+n)%16)
	}
}

func TestEncryptedSessionUnpackDeliversPassthroughMessage(t *testing.T) {
	authKey := testAuthKey()
	s := newTestSession(t, crypto.SeededRand(4), 7)

	pong := &mt.Pong{MsgID: 99, PingID: 42}
	var body bin.Buffer
	require.NoError(t, pong.Encode(&body))

	wire := encryptAsServer(t, authKey, s.SessionID(), s.Salt(), 3, 0, body.Buf)
	messages, signals, err := s.Unpack(wire)
	require.NoError(t, err)
	require.Empty(t, signals)
	require.Len(t, messages, 1)
	require.Equal(t, body.Buf, messages[0].Body)
}

func TestEncryptedSessionUnpackRejectsClientOriginMsgID(t *testing.T) {
	authKey := testAuthKey()
	s := newTestSession(t, crypto.SeededRand(5), 0)

	wire := encryptAsServer(t, authKey, s.SessionID(), s.Salt(), 4 /* even: client-origin */, 0, []byte("x"))
	_, _, err := s.Unpack(wire)
	require.ErrorIs(t, err, ErrMalformedFrame)
}

func TestEncryptedSessionUnpackRejectsDuplicateMsgID(t *testing.T) {
	authKey := testAuthKey()
	s := newTestSession(t, crypto.SeededRand(6), 0)

	wire := encryptAsServer(t, authKey, s.SessionID(), s.Salt(), 5, 0, []byte("x"))
	_, _, err := s.Unpack(wire)
	require.NoError(t, err)

	_, _, err = s.Unpack(wire)
	require.ErrorIs(t, err, ErrMalformedFrame)
}

func TestEncryptedSessionUnpackRejectsSessionIDMismatch(t *testing.T) {
	authKey := testAuthKey()
	s := newTestSession(t, crypto.SeededRand(7), 0)

	wire := encryptAsServer(t, authKey, s.SessionID()+1, s.Salt(), 5, 0, []byte("x"))
	_, _, err := s.Unpack(wire)
	require.ErrorIs(t, err, ErrSessionIDMismatch)
}

func TestEncryptedSessionBadServerSaltCorrectsNextPack(t *testing.T) {
	authKey := testAuthKey()
	s := newTestSession(t, crypto.SeededRand(8), 0)

	note := &mt.BadServerSalt{BadMsgID: 123, BadMsgSeqno: 1, ErrorCode: 48, NewServerSalt: 0xdeadbeef}
	var body bin.Buffer
	require.NoError(t, note.Encode(&body))

	wire := encryptAsServer(t, authKey, s.SessionID(), s.Salt(), 7, 0, body.Buf)
	messages, signals, err := s.Unpack(wire)
	require.NoError(t, err)
	require.Empty(t, messages)
	require.Equal(t, []ServiceSignal{SaltCorrected{NewSalt: 0xdeadbeef}}, signals)
	require.Equal(t, int64(0xdeadbeef), s.Salt())

	outWire, err := s.Pack([]byte("anything"), true)
	require.NoError(t, err)
	plaintext := decryptClientPacked(t, authKey, outWire)
	require.GreaterOrEqual(t, len(plaintext), 8)
	require.Equal(t, uint64(0xdeadbeef), binary.LittleEndian.Uint64(plaintext[:8]))
}

func TestEncryptedSessionUnpackMsgContainerWithNestedGzip(t *testing.T) {
	authKey := testAuthKey()
	s := newTestSession(t, crypto.SeededRand(9), 0)

	b1 := []byte("first message body")
	b3 := []byte("third message body, arrives gzip-wrapped")

	gz := &mt.GzipPacked{PackedData: gzipCompress(t, b3)}
	var gzBody bin.Buffer
	require.NoError(t, gz.Encode(&gzBody))

	container := &mt.MsgContainer{Messages: []mt.ContainedMessage{
		{MsgID: 11, Seqno: 1, Body: b1},
		{MsgID: 13, Seqno: 3, Body: gzBody.Buf},
	}}
	var containerBody bin.Buffer
	require.NoError(t, container.Encode(&containerBody))

	wire := encryptAsServer(t, authKey, s.SessionID(), s.Salt(), 21, 0, containerBody.Buf)
	messages, signals, err := s.Unpack(wire)
	require.NoError(t, err)
	require.Empty(t, signals)
	require.Len(t, messages, 2)
	require.Equal(t, b1, messages[0].Body)
	require.Equal(t, b3, messages[1].Body)
}

func TestEncryptedSessionUnpackRejectsNestedContainer(t *testing.T) {
	authKey := testAuthKey()
	s := newTestSession(t, crypto.SeededRand(10), 0)

	inner := &mt.MsgContainer{Messages: []mt.ContainedMessage{{MsgID: 1, Seqno: 0, Body: []byte("x")}}}
	var innerBody bin.Buffer
	require.NoError(t, inner.Encode(&innerBody))

	outer := &mt.MsgContainer{Messages: []mt.ContainedMessage{{MsgID: 3, Seqno: 0, Body: innerBody.Buf}}}
	var outerBody bin.Buffer
	require.NoError(t, outer.Encode(&outerBody))

	wire := encryptAsServer(t, authKey, s.SessionID(), s.Salt(), 31, 0, outerBody.Buf)
	_, _, err := s.Unpack(wire)
	require.Error(t, err)
}

func TestEncryptedSessionBadMsgNotificationTimeSkew(t *testing.T) {
	authKey := testAuthKey()
	s := newTestSession(t, crypto.SeededRand(11), 0)

	note := &mt.BadMsgNotification{BadMsgID: 1, BadMsgSeqno: 1, ErrorCode: 16}
	var body bin.Buffer
	require.NoError(t, note.Encode(&body))

	serverMsgID := int64(123456) << 32 | 5
	wire := encryptAsServer(t, authKey, s.SessionID(), s.Salt(), serverMsgID, 0, body.Buf)
	messages, signals, err := s.Unpack(wire)
	require.NoError(t, err)
	require.Empty(t, messages)
	require.Len(t, signals, 1)
	_, ok := signals[0].(TimeSkew)
	require.True(t, ok)
}

func TestDecryptFrameStateless(t *testing.T) {
	authKey := testAuthKey()
	sessionID := int64(0x0102030405060708)

	pong := &mt.Pong{MsgID: 1, PingID: 2}
	var body bin.Buffer
	require.NoError(t, pong.Encode(&body))

	wire := encryptAsServer(t, authKey, sessionID, 0, 9, 0, body.Buf)
	msg, err := DecryptFrame(authKey, sessionID, wire)
	require.NoError(t, err)
	require.Equal(t, body.Buf, msg.Body)
}

func TestPlainSessionPackUnpackRoundTrip(t *testing.T) {
	p := NewPlainSession(Options{Clock: clock.System})
	body := []byte("req_pq_multi goes here")
	frame := p.Pack(body)

	got, err := p.Unpack(frame)
	require.NoError(t, err)
	require.Equal(t, body, got)
}

// TestEncryptedSessionPackIsReproducibleUnderFixedInputs pins every input
// Pack's output depends on — auth_key, session_id, time_offset, salt, the
// msg_id clock, and the padding/session_id random stream — and checks that
// two independently constructed sessions produce byte-identical wire frames,
// and therefore identical msg_key, from those inputs. A real PRNG or wall
// clock would make the emitted bytes themselves unreproducible across
// separate runs, so this is what "the pack step is deterministic" actually
// means: fixed inputs, fixed output, not a single hand-authored constant.
func TestEncryptedSessionPackIsReproducibleUnderFixedInputs(t *testing.T) {
	authKey := testAuthKey()
	sessionIDPattern := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	frozen := clock.Frozen{At: time.Unix(1_600_000_000, 0)}
	body := []byte("fixed-body-for-reproducibility-check")

	pack := func() []byte {
		s, err := NewEncryptedSession(authKey, 0, 0, Options{
			Random: &fixedPatternReader{pattern: sessionIDPattern},
			Clock:  frozen,
		})
		require.NoError(t, err)
		require.Equal(t, int64(0x0102030405060708), s.SessionID())

		wire, err := s.Pack(body, true)
		require.NoError(t, err)
		return wire
	}

	first := pack()
	second := pack()
	require.Equal(t, first, second)
	require.GreaterOrEqual(t, len(first), 24)
	require.Equal(t, first[8:24], second[8:24], "msg_key must match when every input to Pack matches")
}

func TestPlainSessionUnpackRejectsNonZeroAuthKeyID(t *testing.T) {
	var b bin.Buffer
	b.PutUint64(1)
	b.PutLong(1)
	b.PutInt32(0)

	p := NewPlainSession(Options{})
	_, err := p.Unpack(b.Buf)
	require.ErrorIs(t, err, ErrAuthKeyMismatch)
}
