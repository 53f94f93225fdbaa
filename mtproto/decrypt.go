package mtproto

import (
	"github.com/go-faster/errors"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/crypto"
)

// innerHeaderLen is the fixed salt||session_id||msg_id||seq_no||len prefix
// of an encrypted message's inner plaintext.
const innerHeaderLen = 8 + 8 + 8 + 4 + 4

// decryptFrame validates and decrypts the auth_key_id||msg_key||ciphertext
// wire layout, without touching a live EncryptedSession. This is what both
// EncryptedSession.Unpack and the stateless DecryptFrame are built on.
func decryptFrame(authKey crypto.AuthKey, frame []byte) ([]byte, error) {
	if len(frame) < 24 {
		return nil, errors.Wrap(ErrMalformedFrame, "frame shorter than 24-byte header")
	}
	var keyID [8]byte
	copy(keyID[:], frame[:8])
	if keyID != authKey.KeyID() {
		return nil, ErrAuthKeyMismatch
	}

	var msgKey [16]byte
	copy(msgKey[:], frame[8:24])

	ciphertext := frame[24:]
	if len(ciphertext)%16 != 0 {
		return nil, errors.Wrap(ErrMalformedFrame, "ciphertext not a multiple of the AES block size")
	}

	plaintext, err := crypto.DecryptMessage(authKey, msgKey, ciphertext)
	if err != nil {
		if errors.Is(err, crypto.ErrMessageKeyMismatch) {
			return nil, ErrMsgKeyMismatch
		}
		return nil, errors.Wrap(err, "ige decrypt")
	}
	return plaintext, nil
}

// parseHeader parses the fixed inner-plaintext header and verifies
// session_id and length/padding consistency.
// sid comparison is skipped when wantSessionID is 0, for callers (such as
// DecryptFrame) that don't know the session_id ahead of decryption.
func parseHeader(plaintext []byte, wantSessionID int64) (MtpMessage, int64, error) {
	if len(plaintext) < innerHeaderLen {
		return MtpMessage{}, 0, errors.Wrap(ErrMalformedFrame, "plaintext shorter than inner header")
	}
	b := bin.NewBuffer(plaintext)

	if _, err := b.Long(); err != nil { // salt, not needed by the caller
		return MtpMessage{}, 0, errors.Wrap(ErrMalformedFrame, "truncated salt")
	}
	sessionID, err := b.Long()
	if err != nil {
		return MtpMessage{}, 0, errors.Wrap(ErrMalformedFrame, "truncated session_id")
	}
	if wantSessionID != 0 && sessionID != wantSessionID {
		return MtpMessage{}, 0, ErrSessionIDMismatch
	}
	msgID, err := b.Long()
	if err != nil {
		return MtpMessage{}, 0, errors.Wrap(ErrMalformedFrame, "truncated msg_id")
	}
	seqNo, err := b.Int32()
	if err != nil {
		return MtpMessage{}, 0, errors.Wrap(ErrMalformedFrame, "truncated seq_no")
	}
	length, err := b.Int32()
	if err != nil {
		return MtpMessage{}, 0, errors.Wrap(ErrMalformedFrame, "truncated len")
	}

	remaining := b.Len()
	if length < 0 || int(length) > remaining {
		return MtpMessage{}, 0, errors.Wrap(ErrLengthOutOfRange, "body len exceeds remaining plaintext")
	}
	padding := remaining - int(length)
	if padding < 12 || padding > 1024 {
		return MtpMessage{}, 0, errors.Wrap(ErrLengthOutOfRange, "padding outside [12,1024]")
	}

	body := append([]byte(nil), b.Raw()[:length]...)
	return MtpMessage{MsgID: msgID, SeqNo: seqNo, Body: body}, sessionID, nil
}

// DecryptFrame decrypts a single wire frame without requiring a live
// EncryptedSession, for hosts that split reading onto its own path while a
// writer owns the mutable session (grammers' split-reader pattern). It
// skips the duplicate-msg_id window and service-message dispatch that
// EncryptedSession.Unpack performs — callers that want those should use a
// real EncryptedSession instead.
func DecryptFrame(authKey crypto.AuthKey, sessionID int64, frame []byte) (MtpMessage, error) {
	plaintext, err := decryptFrame(authKey, frame)
	if err != nil {
		return MtpMessage{}, err
	}
	msg, _, err := parseHeader(plaintext, sessionID)
	return msg, err
}
