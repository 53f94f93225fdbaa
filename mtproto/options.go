// Package mtproto implements post-handshake MTProto 2.0 session operation:
// plaintext handshake framing, encrypted message packing/unpacking, and
// dispatch of protocol-level service messages.
package mtproto

import (
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/clock"
	"go.mau.fi/mtproto-core/crypto"
)

// Options configures a PlainSession or EncryptedSession.
type Options struct {
	// Logger receives diagnostic output for service-message handling.
	// Defaults to zap.NewNop().
	Logger *zap.Logger
	// Clock supplies local time for msg_id generation. Defaults to
	// clock.System.
	Clock clock.Clock
	// Random supplies entropy for session_id generation and message
	// padding. Defaults to crypto.DefaultRand().
	Random crypto.RandomSource
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Clock == nil {
		o.Clock = clock.System
	}
	if o.Random == nil {
		o.Random = crypto.DefaultRand()
	}
}
