package mtproto

import (
	"encoding/binary"
	"net"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/atomic"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/crypto"
	"go.mau.fi/mtproto-core/mt"
	"go.mau.fi/mtproto-core/proto"
	"go.mau.fi/mtproto-core/session"
)

// EncryptedSession is the post-handshake session core: it packs outgoing
// bodies into encrypted wire frames, decrypts and classifies incoming
// ones, and owns all mutable per-session state (salt, session_id,
// time_offset, seq_no, msg_id bookkeeping). The host holds it exclusively;
// concurrency across calls is the host's problem, though Salt uses an
// atomic so a host may safely read it from another goroutine while a
// single writer goroutine calls Pack/Unpack.
type EncryptedSession struct {
	opts Options

	authKey   crypto.AuthKey
	sessionID int64

	salt        atomic.Int64
	futureSalts atomic.Value // []mt.FutureSalt

	msgIDGen *proto.MessageIDGen
	seqNoGen proto.SeqNoGen

	recent *recentIDs
}

// NewEncryptedSession constructs a session from the output of a completed
// Authorization (auth_key, first_salt, time_offset), generating a fresh
// random session_id.
func NewEncryptedSession(authKey crypto.AuthKey, firstSalt int64, timeOffset int32, opts Options) (*EncryptedSession, error) {
	opts.setDefaults()

	sessionID, err := randomSessionID(opts.Random)
	if err != nil {
		return nil, errors.Wrap(err, "generate session_id")
	}

	s := &EncryptedSession{
		opts:      opts,
		authKey:   authKey,
		sessionID: sessionID,
		msgIDGen:  proto.NewMessageIDGen(opts.Clock),
		recent:    newRecentIDs(),
	}
	s.salt.Store(firstSalt)
	s.msgIDGen.SetTimeOffset(int64(timeOffset) * int64(time.Second))
	return s, nil
}

func randomSessionID(r crypto.RandomSource) (int64, error) {
	var raw [8]byte
	if err := crypto.ReadFull(r, raw[:]); err != nil {
		return 0, err
	}
	id := int64(binary.LittleEndian.Uint64(raw[:]))
	if id == 0 {
		// session_id must be nonzero; astronomically unlikely with real
		// entropy but worth guarding since a seeded RandomSource can hit it.
		id = 1
	}
	return id, nil
}

// AuthKey returns the session's underlying auth key.
func (s *EncryptedSession) AuthKey() crypto.AuthKey { return s.authKey }

// SessionID returns the session's fixed session_id.
func (s *EncryptedSession) SessionID() int64 { return s.sessionID }

// Salt returns the salt currently used on outgoing frames.
func (s *EncryptedSession) Salt() int64 { return s.salt.Load() }

// TimeOffset returns the session's current time_offset in seconds.
func (s *EncryptedSession) TimeOffset() int32 {
	return int32(s.msgIDGen.TimeOffset() / int64(time.Second))
}

// FutureSalts returns the most recently received future_salts batch, or
// nil if none has arrived yet.
func (s *EncryptedSession) FutureSalts() []mt.FutureSalt {
	v := s.futureSalts.Load()
	if v == nil {
		return nil
	}
	return v.([]mt.FutureSalt)
}

// Pack encrypts body into a wire frame.
func (s *EncryptedSession) Pack(body []byte, contentRelated bool) ([]byte, error) {
	wire, _, err := s.pack(body, contentRelated, nil)
	return wire, err
}

// PackWithMsgID is Pack, additionally returning the msg_id it assigned, so
// a host can register a pending-request waiter before the frame reaches
// the wire.
func (s *EncryptedSession) PackWithMsgID(body []byte, contentRelated bool) ([]byte, int64, error) {
	return s.pack(body, contentRelated, nil)
}

// PackContainer bundles items into a single msg_container frame, assigning
// each item its own msg_id/seq_no. The container itself is content-unrelated.
func (s *EncryptedSession) PackContainer(items []PackItem) ([]byte, error) {
	if len(items) == 0 {
		return nil, errors.New("mtproto: PackContainer requires at least one item")
	}
	messages := make([]mt.ContainedMessage, len(items))
	for i, item := range items {
		msgID := s.msgIDGen.Next()
		messages[i] = mt.ContainedMessage{
			MsgID: msgID,
			Seqno: s.nextSeqNo(item.ContentRelated),
			Body:  item.Body,
		}
	}
	container := &mt.MsgContainer{Messages: messages}
	var buf bin.Buffer
	if err := container.Encode(&buf); err != nil {
		return nil, errors.Wrap(err, "encode msg_container")
	}
	wire, _, err := s.pack(buf.Buf, false, nil)
	return wire, err
}

func (s *EncryptedSession) nextSeqNo(contentRelated bool) int32 {
	if contentRelated {
		return s.seqNoGen.NextContentRelated()
	}
	return s.seqNoGen.NextContentUnrelated()
}

func (s *EncryptedSession) pack(body []byte, contentRelated bool, forcedMsgID *int64) ([]byte, int64, error) {
	msgID := s.msgIDGen.Next()
	if forcedMsgID != nil {
		msgID = *forcedMsgID
	}
	seqNo := s.nextSeqNo(contentRelated)

	var inner bin.Buffer
	inner.PutLong(s.salt.Load())
	inner.PutLong(s.sessionID)
	inner.PutLong(msgID)
	inner.PutInt32(seqNo)
	inner.PutInt32(int32(len(body)))
	inner.PutBytesRaw(body)

	padLen, err := paddingLength(s.opts.Random, inner.Len())
	if err != nil {
		return nil, 0, errors.Wrap(err, "choose padding length")
	}
	pad := make([]byte, padLen)
	if err := crypto.ReadFull(s.opts.Random, pad); err != nil {
		return nil, 0, errors.Wrap(err, "read message padding")
	}
	inner.PutBytesRaw(pad)

	msgKey, ciphertext, err := crypto.EncryptMessage(s.authKey, inner.Buf)
	if err != nil {
		return nil, 0, err
	}

	var wire bin.Buffer
	keyID := s.authKey.KeyID()
	wire.PutBytesRaw(keyID[:])
	wire.PutBytesRaw(msgKey[:])
	wire.PutBytesRaw(ciphertext)
	return wire.Buf, msgID, nil
}

// paddingLength picks a random padding length in [12,1024] such that
// plainLen+padLen is a multiple of 16. With an all-zero RandomSource and
// plainLen%16==4 (the 32-byte fixed header plus a body whose length is
// 4 more than a multiple of 16, e.g. a bare constructor ID) this returns exactly 12, the
// smallest boundary the padding scheme allows.
func paddingLength(r crypto.RandomSource, plainLen int) (int, error) {
	minPad := (16 - plainLen%16) % 16
	if minPad < 12 {
		minPad += 16
	}
	extraSteps := (1024 - minPad) / 16

	var raw [2]byte
	if err := crypto.ReadFull(r, raw[:]); err != nil {
		return 0, err
	}
	n := int(binary.BigEndian.Uint16(raw[:])) % (extraSteps + 1)
	return minPad + n*16, nil
}

// Unpack decrypts and classifies a wire frame, returning any messages it
// should deliver to the host and any ServiceSignals describing state
// changes already applied.
func (s *EncryptedSession) Unpack(wire []byte) ([]MtpMessage, []ServiceSignal, error) {
	plaintext, err := decryptFrame(s.authKey, wire)
	if err != nil {
		return nil, nil, err
	}
	msg, _, err := parseHeader(plaintext, s.sessionID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.checkServerMsgID(msg.MsgID); err != nil {
		return nil, nil, err
	}
	return s.dispatch(msg, 0)
}

// checkServerMsgID enforces that server-originated msg_ids always carry a
// nonzero low bit (01 or 11), and must not repeat within the recent window.
func (s *EncryptedSession) checkServerMsgID(msgID int64) error {
	if msgID&1 == 0 {
		return errors.Wrap(ErrMalformedFrame, "msg_id has a client-origin bit pattern")
	}
	if s.recent.contains(msgID) {
		return errors.Wrap(ErrMalformedFrame, "duplicate msg_id")
	}
	s.recent.record(msgID)
	return nil
}

// Snapshot captures the session's persistable state. The caller supplies
// the connection endpoint fields the session itself doesn't track.
func (s *EncryptedSession) Snapshot(dcID int32, ip net.IP, port uint16) *session.Data {
	return &session.Data{
		DCID:           dcID,
		IP:             ip,
		Port:           port,
		AuthKey:        s.authKey,
		Salt:           s.salt.Load(),
		SessionID:      s.sessionID,
		TimeOffset:     s.TimeOffset(),
		ContentCounter: s.seqNoGen.ContentCounter(),
		LastMsgID:      s.msgIDGen.LastMsgID(),
	}
}

// Restore rebuilds a session from a persisted snapshot, preserving its
// session_id so the server does not treat this as a new session.
func Restore(d *session.Data, opts Options) *EncryptedSession {
	opts.setDefaults()
	s := &EncryptedSession{
		opts:      opts,
		authKey:   d.AuthKey,
		sessionID: d.SessionID,
		msgIDGen:  proto.NewMessageIDGen(opts.Clock),
		recent:    newRecentIDs(),
	}
	s.salt.Store(d.Salt)
	s.msgIDGen.SetTimeOffset(int64(d.TimeOffset) * int64(time.Second))
	s.msgIDGen.SetLastMsgID(d.LastMsgID)
	s.seqNoGen.SetContentCounter(d.ContentCounter)
	return s
}
