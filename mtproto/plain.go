package mtproto

import (
	"github.com/go-faster/errors"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/proto"
)

// PlainSession frames unauthenticated messages during the handshake:
// auth_key_id=0(8) || msg_id(8) || msg_len(4) || body. No
// encryption, no session_id, no seq_no — msg_id monotonicity still holds,
// computed from local time only since time_offset isn't known yet.
type PlainSession struct {
	opts     Options
	msgIDGen *proto.MessageIDGen
}

// NewPlainSession creates a PlainSession. The zero Options is valid.
func NewPlainSession(opts Options) *PlainSession {
	opts.setDefaults()
	return &PlainSession{
		opts:     opts,
		msgIDGen: proto.NewMessageIDGen(opts.Clock),
	}
}

// Pack frames body for the wire.
func (p *PlainSession) Pack(body []byte) []byte {
	msgID := p.msgIDGen.Next()
	var b bin.Buffer
	b.PutUint64(0)
	b.PutLong(msgID)
	b.PutInt32(int32(len(body)))
	b.PutBytesRaw(body)
	return b.Buf
}

// Unpack extracts body from a plain frame, verifying auth_key_id is zero
// and the length field is consistent.
func (p *PlainSession) Unpack(frame []byte) ([]byte, error) {
	b := bin.NewBuffer(frame)
	keyID, err := b.Uint64()
	if err != nil {
		return nil, errors.Wrap(ErrMalformedFrame, "truncated auth_key_id")
	}
	if keyID != 0 {
		return nil, errors.Wrap(ErrAuthKeyMismatch, "plain frame must carry auth_key_id 0")
	}
	if _, err := b.Long(); err != nil {
		return nil, errors.Wrap(ErrMalformedFrame, "truncated msg_id")
	}
	length, err := b.Int32()
	if err != nil {
		return nil, errors.Wrap(ErrMalformedFrame, "truncated msg_len")
	}
	if length < 0 || int(length) > b.Len() {
		return nil, errors.Wrap(ErrLengthOutOfRange, "msg_len exceeds remaining frame")
	}
	return append([]byte(nil), b.Raw()[:length]...), nil
}
