package mtproto

import "github.com/go-faster/errors"

// Error sentinels classify decryption failures. They are fatal to the
// current EncryptedSession but not to the
// underlying AuthKey — a host may construct a fresh session (with a new
// session_id) and retry.
var (
	// ErrAuthKeyMismatch is returned when a frame's auth_key_id does not
	// match the session's.
	ErrAuthKeyMismatch = errors.New("mtproto: auth_key_id mismatch")
	// ErrMsgKeyMismatch is returned when the recomputed msg_key does not
	// match the one carried on the wire.
	ErrMsgKeyMismatch = errors.New("mtproto: msg_key mismatch")
	// ErrSessionIDMismatch is returned when a decrypted frame's
	// session_id does not match this session's.
	ErrSessionIDMismatch = errors.New("mtproto: session_id mismatch")
	// ErrMalformedFrame covers truncated frames, bad block alignment, and
	// header fields that don't parse.
	ErrMalformedFrame = errors.New("mtproto: malformed frame")
	// ErrLengthOutOfRange is returned when the inner length/padding
	// fields are inconsistent with the decrypted plaintext's size.
	ErrLengthOutOfRange = errors.New("mtproto: length out of range")
)

// ServiceSignal is a non-error effect produced by unpacking a service
// message: it is delivered to the host alongside, or instead of, a
// decrypted MtpMessage, after the session state it describes has already
// been applied.
type ServiceSignal interface {
	isServiceSignal()
}

// SaltCorrected reports that the server rejected the salt in use and
// supplied a replacement, which the session has already adopted.
type SaltCorrected struct {
	NewSalt int64
}

// TimeSkew reports that the session's time_offset was recomputed in
// response to a bad_msg_notification code 16/17.
type TimeSkew struct {
	NewOffset int32
}

// SessionReset reports a new_session_created from the server: the host
// should discard pending requests older than FirstMsgID.
type SessionReset struct {
	FirstMsgID int64
}

// BadMsgFatal reports a bad_msg_notification the session cannot recover
// from on its own (seq_no desync, or any code without a defined recovery
// path); the host should reopen the session.
type BadMsgFatal struct {
	Code int32
}

func (SaltCorrected) isServiceSignal() {}
func (TimeSkew) isServiceSignal()      {}
func (SessionReset) isServiceSignal()  {}
func (BadMsgFatal) isServiceSignal()   {}
