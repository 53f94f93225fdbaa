package crypto

import (
	"crypto/subtle"

	"github.com/go-faster/errors"
)

// Side selects which direction of the MTProto 2.0 key-derivation formula to
// use: x=0 for client→server, x=8 for server→client.
type Side int

const (
	// Client is the client→server encryption direction (x=0).
	Client Side = 0
	// Server is the server→client decryption direction (x=8).
	Server Side = 8
)

func (s Side) offset() int { return int(s) }

// DeriveMessageKeys computes the AES-256 (key, iv) pair for a given msg_key
// and direction:
//
//	sha_a = SHA256(msg_key || auth_key[x:x+36])
//	sha_b = SHA256(auth_key[40+x:40+x+36] || msg_key)
//	aes_key = sha_a[0:8]  || sha_b[8:24] || sha_a[24:32]
//	aes_iv  = sha_b[0:8]  || sha_a[8:24] || sha_b[24:32]
func DeriveMessageKeys(authKey AuthKey, msgKey [16]byte, side Side) (key, iv [32]byte) {
	x := side.offset()
	data := authKey.data
	shaA := SHA256(msgKey[:], data[x:x+36])
	shaB := SHA256(data[40+x:40+x+36], msgKey[:])

	copy(key[:8], shaA[:8])
	copy(key[8:24], shaB[8:24])
	copy(key[24:32], shaA[24:32])

	copy(iv[:8], shaB[:8])
	copy(iv[8:24], shaA[8:24])
	copy(iv[24:32], shaB[24:32])
	return key, iv
}

// MessageKeyLarge computes SHA256(auth_key[88+x:88+x+32] || plaintext) for
// the given direction; the transmitted msg_key is bytes [8:24] of this.
func MessageKeyLarge(authKey AuthKey, plaintext []byte, side Side) [32]byte {
	x := side.offset()
	data := authKey.data
	return SHA256(data[88+x:88+x+32], plaintext)
}

// EncryptMessage AES-IGE-encrypts an already-padded inner plaintext and
// returns (msg_key, ciphertext). Callers
// (mtproto.EncryptedSession) are responsible for building the plaintext
// header/body/padding and for prefixing auth_key_id/msg_key on the wire.
func EncryptMessage(authKey AuthKey, plaintext []byte) (msgKey [16]byte, ciphertext []byte, err error) {
	large := MessageKeyLarge(authKey, plaintext, Client)
	copy(msgKey[:], large[8:24])

	key, iv := DeriveMessageKeys(authKey, msgKey, Client)
	ciphertext, err = IGEEncrypt(plaintext, key[:], iv[:])
	if err != nil {
		return msgKey, nil, errors.Wrap(err, "ige encrypt")
	}
	return msgKey, ciphertext, nil
}

// DecryptMessage is the inverse of EncryptMessage, verifying the received
// msg_key in constant time.
func DecryptMessage(authKey AuthKey, msgKey [16]byte, ciphertext []byte) (plaintext []byte, err error) {
	key, iv := DeriveMessageKeys(authKey, msgKey, Server)
	plaintext, err = IGEDecrypt(ciphertext, key[:], iv[:])
	if err != nil {
		return nil, errors.Wrap(err, "ige decrypt")
	}

	want := MessageKeyLarge(authKey, plaintext, Server)
	var got [16]byte
	copy(got[:], want[8:24])
	if subtle.ConstantTimeCompare(got[:], msgKey[:]) != 1 {
		return nil, ErrMessageKeyMismatch
	}
	return plaintext, nil
}

// ErrMessageKeyMismatch is returned by DecryptMessage when the recomputed
// msg_key does not match the one carried on the wire.
var ErrMessageKeyMismatch = errors.New("crypto: msg_key mismatch")
