// Package exchange implements the client side of the MTProto authorization
// handshake: the three-round, RSA-anchored Diffie-Hellman exchange that
// derives a 2048-bit authorization key.
package exchange

import (
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/clock"
	"go.mau.fi/mtproto-core/crypto"
)

// Options configures an Authorization.
type Options struct {
	// Logger receives diagnostic output for each handshake step. Defaults
	// to zap.NewNop().
	Logger *zap.Logger
	// Random supplies entropy for nonces, DH secrets and RSA padding.
	// Defaults to crypto.DefaultRand().
	Random crypto.RandomSource
	// Clock supplies the local time used to compute TimeOffset. Defaults
	// to clock.System.
	Clock clock.Clock
	// DC is the target datacenter ID, carried in PQInnerDataDC. Most
	// callers leave this at 0 for a connection already dialed to the
	// right DC; it only matters to servers that route by DC hint.
	DC int32
	// Temporary, if true, requests a PFS-style temporary auth key instead
	// of a permanent one. Not implemented by this handshake — present as
	// an extension hook (see the Open Questions in the design notes);
	// set, it makes Step1 return ErrTempAuthKeyUnsupported immediately.
	Temporary bool
	// Keys resolves the RSA fingerprint resPQ offers to a public key.
	// Defaults to crypto.DefaultKeys, the baked-in production/test table;
	// callers driving a handshake against a fake server that mints its
	// own throwaway key pass crypto.WithExtraKeys(crypto.DefaultKeys, ...)
	// instead of that key ever entering the baked-in table itself.
	Keys crypto.KeyTable
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Random == nil {
		o.Random = crypto.DefaultRand()
	}
	if o.Clock == nil {
		o.Clock = clock.System
	}
	if o.Keys == nil {
		o.Keys = crypto.DefaultKeys
	}
}
