package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageEncryptIsNotDecryptableAsServerFrame(t *testing.T) {
	var raw [256]byte
	for i := range raw {
		raw[i] = byte(i)
	}
	authKey := NewAuthKey(raw)

	plaintext := make([]byte, 64)
	for i := range plaintext {
		plaintext[i] = byte(200 + i)
	}

	msgKey, ciphertext, err := EncryptMessage(authKey, plaintext)
	require.NoError(t, err)
	require.Len(t, ciphertext, len(plaintext))

	// The server side derives keys with x=8; the client encrypted with
	// x=0, so decrypting the client's own ciphertext with the server
	// direction should fail the msg_key check — this is intentional:
	// EncryptMessage/DecryptMessage model opposite ends of the wire.
	_, err = DecryptMessage(authKey, msgKey, ciphertext)
	require.ErrorIs(t, err, ErrMessageKeyMismatch)
}

func TestMessageDecryptMatchesServerSideEncrypt(t *testing.T) {
	var raw [256]byte
	for i := range raw {
		raw[i] = byte(i)
	}
	authKey := NewAuthKey(raw)

	plaintext := make([]byte, 48)
	for i := range plaintext {
		plaintext[i] = byte(7 + i)
	}

	// Model what the server does when it sends us a frame: derive
	// msg_key/keys with the Server direction (x=8), the mirror image of
	// what DecryptMessage does on receipt.
	large := MessageKeyLarge(authKey, plaintext, Server)
	var msgKey [16]byte
	copy(msgKey[:], large[8:24])
	key, iv := DeriveMessageKeys(authKey, msgKey, Server)
	ciphertext, err := IGEEncrypt(plaintext, key[:], iv[:])
	require.NoError(t, err)

	got, err := DecryptMessage(authKey, msgKey, ciphertext)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestAuthKeyID(t *testing.T) {
	var raw [256]byte
	raw[0] = 1
	ak := NewAuthKey(raw)
	sha := SHA1(raw[:])
	var want [8]byte
	copy(want[:], sha[12:20])
	require.Equal(t, want, ak.KeyID())
}
