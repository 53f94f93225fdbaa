package exchange

import "github.com/go-faster/errors"

// Error classes group handshake failures by cause: Protocol covers
// nonce mismatches, bad hashes and out-of-range DH parameters; Crypto
// covers AES/RSA internal failures; Factorization covers an exhausted
// Pollard's-rho budget; Transport is reserved for the host to wrap its own
// send/recv failures (this package never returns it itself).
var (
	ErrProtocol      = errors.New("exchange: protocol violation")
	ErrCrypto        = errors.New("exchange: cryptographic failure")
	ErrFactorization = errors.New("exchange: factorization budget exhausted")
	ErrTransport     = errors.New("exchange: transport failure")
)

// ErrDHGenRetry is returned by Finish when the server answered with
// dh_gen_retry: the server's view of the derived auth key didn't match
// ours. The caller should abort and restart the whole handshake from
// Step1, not retry Finish itself.
var ErrDHGenRetry = errors.New("exchange: server requested dh_gen_retry")

// ErrDHGenFail is returned by Finish when the server answered with
// dh_gen_fail. This is fatal; callers should not retry.
var ErrDHGenFail = errors.New("exchange: server reported dh_gen_fail")

// ErrTempAuthKeyUnsupported is returned by Step1 when Options.Temporary is
// set: this handshake implements only the permanent auth key flow. The
// later steps then return ErrUnexpectedState, since the handshake never
// left its start state.
var ErrTempAuthKeyUnsupported = errors.New("exchange: temporary (PFS) auth key flow is not implemented")

// ErrUnexpectedState is returned when a step method is called out of
// sequence (e.g. Step3 before Step2).
var ErrUnexpectedState = errors.New("exchange: method called in wrong handshake state")

func protocolErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrProtocol, format, args...)
}
