package crypto

import (
	"encoding/binary"
	"math/big"

	"github.com/go-faster/errors"

	"go.mau.fi/mtproto-core/bin"
)

// RSAPublicKey is one of Telegram's well-known RSA keys, identified by its
// fingerprint (the low 64 bits of SHA1 of its DER-ish (n, e) serialization).
type RSAPublicKey struct {
	Fingerprint int64
	N           *big.Int
	E           *big.Int
}

// RSARawEncrypt performs the bare modular exponentiation
// ciphertext = data^e mod n, returning a 256-byte big-endian block.
//
// data must already be exactly 255 bytes; there is no PKCS padding here,
// the caller (exchange.Authorization step 2) composes the RSA-PAD-less
// payload the old MTProto handshake scheme uses: a leading zero byte plus a
// 255-byte SHA1(inner)||inner||random_padding block, treated as one 256-byte
// big-endian integer.
func RSARawEncrypt(data []byte, key RSAPublicKey) ([]byte, error) {
	if len(data) != 255 {
		return nil, errors.Errorf("crypto: RSA payload must be 255 bytes, got %d", len(data))
	}
	// Prepend the zero byte so the 256-byte integer is guaranteed smaller
	// than any bit pattern that would need 257 bytes, then let the caller's
	// retry loop reject it if it isn't smaller than n.
	padded := make([]byte, 256)
	copy(padded[1:], data)

	m := new(big.Int).SetBytes(padded)
	if m.Cmp(key.N) >= 0 {
		return nil, ErrRSAPayloadTooLarge
	}
	c := new(big.Int).Exp(m, key.E, key.N)

	out := make([]byte, 256)
	c.FillBytes(out)
	return out, nil
}

// ErrRSAPayloadTooLarge signals the padded RSA payload was not strictly
// less than the modulus; the caller should retry with fresh random padding.
var ErrRSAPayloadTooLarge = errors.New("crypto: RSA payload not smaller than modulus, retry with fresh padding")

// BuildRSAPayload assembles the 255-byte payload
// SHA1(inner) || inner || random_padding required by RSARawEncrypt. inner
// must be at most 235 bytes (255 - 20 hash bytes); padding is drawn from
// random.
func BuildRSAPayload(inner []byte, random RandomSource) ([]byte, error) {
	const total = 255
	hash := SHA1(inner)
	need := total - len(hash) - len(inner)
	if need < 0 {
		return nil, errors.Errorf("crypto: inner data too large for RSA payload: %d bytes", len(inner))
	}
	pad := make([]byte, need)
	if err := ReadFull(random, pad); err != nil {
		return nil, errors.Wrap(err, "read random padding")
	}
	out := make([]byte, 0, total)
	out = append(out, hash[:]...)
	out = append(out, inner...)
	out = append(out, pad...)
	return out, nil
}

// Fingerprint computes a Telegram-style RSA public key fingerprint: the TL
// serialization of rsa_public_key#487a5b5c n:string e:string, SHA1-hashed,
// with the key taken from the digest's low 64 bits (its last 8 bytes, read
// little-endian). KeyForFingerprint/FirstKnownFingerprint look keys up by
// exactly this value.
func Fingerprint(n, e *big.Int) int64 {
	const rsaPublicKeyID = 0x487a5b5c
	var buf bin.Buffer
	buf.PutUint32(rsaPublicKeyID)
	buf.PutBytes(n.Bytes())
	buf.PutBytes(e.Bytes())
	sum := SHA1(buf.Raw())
	return int64(binary.LittleEndian.Uint64(sum[12:20]))
}

// EncryptRSA retries BuildRSAPayload+RSARawEncrypt with fresh padding until
// the resulting integer is smaller than the modulus.
func EncryptRSA(inner []byte, key RSAPublicKey, random RandomSource) ([]byte, error) {
	const maxAttempts = 32
	for i := 0; i < maxAttempts; i++ {
		payload, err := BuildRSAPayload(inner, random)
		if err != nil {
			return nil, err
		}
		ct, err := RSARawEncrypt(payload, key)
		if errors.Is(err, ErrRSAPayloadTooLarge) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return ct, nil
	}
	return nil, errors.New("crypto: exhausted RSA padding attempts")
}
