// Package tgtest provides scripted fake MTProto peers for exercising the
// wire protocol end-to-end over a real transport.Transport. Server plays
// the post-handshake encrypted wire format against an already-agreed
// AuthKey, as if resuming a session restored from a snapshot. HandshakeServer
// plays the RSA/DH authorization handshake itself, against a throwaway key
// and DH prime this package generates on the spot rather than any of
// Telegram's real keys.
package tgtest

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/clock"
	"go.mau.fi/mtproto-core/crypto"
	"go.mau.fi/mtproto-core/transport"
)

// Handler answers one decrypted client message body, returning the body of
// the message to send back (nil to send nothing, as a real server does for
// content-unrelated messages like acks).
type Handler func(body []byte) ([]byte, error)

// Options configures a Server.
type Options struct {
	// Logger receives diagnostic output. Defaults to zap.NewNop().
	Logger *zap.Logger
	// Clock supplies server-assigned msg_ids. Defaults to clock.System.
	Clock clock.Clock
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = clock.System
	}
}

// Server plays the server side of the encrypted wire format against one
// client transport: it decrypts client->server frames with the x=0
// key-derivation offset and encrypts server->client ones with x=8, the
// mirror image of mtproto.EncryptedSession. It learns session_id from the
// client's first frame.
type Server struct {
	opts    Options
	t       transport.Transport
	authKey crypto.AuthKey
	salt    int64
	handler Handler

	sessionID atomic.Int64
	nextMsgID int64 // only touched from the single Serve loop goroutine
}

// New constructs a Server. salt is the value adopted for the session before
// any bad_server_salt correction a test script chooses to send.
func New(t transport.Transport, authKey crypto.AuthKey, salt int64, handler Handler, opts Options) *Server {
	opts.setDefaults()
	return &Server{opts: opts, t: t, authKey: authKey, salt: salt, handler: handler}
}

// SessionID returns the client's session_id once learned from its first
// frame, or 0 before that.
func (s *Server) SessionID() int64 { return s.sessionID.Load() }

// Serve runs the request/response loop until ctx is cancelled or the
// transport closes.
func (s *Server) Serve(ctx context.Context) error {
	for {
		frame, err := s.t.Recv(ctx)
		if err != nil {
			return err
		}
		if err := s.handleFrame(ctx, frame); err != nil {
			s.opts.Logger.Warn("tgtest: dropping unhandled frame", zap.Error(err))
		}
	}
}

func (s *Server) handleFrame(ctx context.Context, frame []byte) error {
	body, err := s.decryptClientFrame(frame)
	if err != nil {
		return errors.Wrap(err, "decrypt client frame")
	}
	respBody, err := s.handler(body)
	if err != nil {
		return errors.Wrap(err, "handler")
	}
	if respBody == nil {
		return nil
	}
	wire, err := s.encryptServerFrame(respBody)
	if err != nil {
		return errors.Wrap(err, "encrypt server frame")
	}
	return s.t.Send(ctx, wire)
}

func (s *Server) decryptClientFrame(frame []byte) ([]byte, error) {
	if len(frame) < 24 {
		return nil, errors.New("tgtest: frame shorter than 24-byte header")
	}
	var msgKey [16]byte
	copy(msgKey[:], frame[8:24])

	key, iv := crypto.DeriveMessageKeys(s.authKey, msgKey, crypto.Client)
	plaintext, err := crypto.IGEDecrypt(frame[24:], key[:], iv[:])
	if err != nil {
		return nil, errors.Wrap(err, "ige decrypt")
	}

	b := bin.NewBuffer(plaintext)
	if _, err := b.Long(); err != nil { // salt
		return nil, err
	}
	sessionID, err := b.Long()
	if err != nil {
		return nil, err
	}
	s.sessionID.Store(sessionID)
	if _, err := b.Long(); err != nil { // msg_id
		return nil, err
	}
	if _, err := b.Int32(); err != nil { // seq_no
		return nil, err
	}
	length, err := b.Int32()
	if err != nil {
		return nil, err
	}
	if length < 0 || int(length) > b.Len() {
		return nil, errors.New("tgtest: body length out of range")
	}
	return append([]byte(nil), b.Raw()[:length]...), nil
}

func (s *Server) encryptServerFrame(body []byte) ([]byte, error) {
	msgID := s.allocServerMsgID()

	var inner bin.Buffer
	inner.PutLong(s.salt)
	inner.PutLong(s.sessionID.Load())
	inner.PutLong(msgID)
	inner.PutInt32(0)
	inner.PutInt32(int32(len(body)))
	inner.PutBytesRaw(body)

	padLen := (16 - inner.Len()%16) % 16
	if padLen < 12 {
		padLen += 16
	}
	inner.PutBytesRaw(make([]byte, padLen))

	large := crypto.MessageKeyLarge(s.authKey, inner.Buf, crypto.Server)
	var msgKey [16]byte
	copy(msgKey[:], large[8:24])
	key, iv := crypto.DeriveMessageKeys(s.authKey, msgKey, crypto.Server)
	ciphertext, err := crypto.IGEEncrypt(inner.Buf, key[:], iv[:])
	if err != nil {
		return nil, err
	}

	var wire bin.Buffer
	keyID := s.authKey.KeyID()
	wire.PutBytesRaw(keyID[:])
	wire.PutBytesRaw(msgKey[:])
	wire.PutBytesRaw(ciphertext)
	return wire.Buf, nil
}

// allocServerMsgID assigns a server-origin msg_id (low bit pattern 01),
// strictly increasing by construction. Serve
// processes frames sequentially, so no locking is needed here.
func (s *Server) allocServerMsgID() int64 {
	candidate := s.opts.Clock.Now().Unix()<<32 | 1
	if candidate <= s.nextMsgID {
		candidate = s.nextMsgID + 4
	}
	s.nextMsgID = candidate
	return candidate
}
