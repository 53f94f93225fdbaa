package crypto

import "github.com/go-faster/xor"

// KeyFromNonces implements the AuthKeyDerivation chain: it
// turns (new_nonce, server_nonce) into the AES-256-IGE (key, iv) pair used
// to decrypt the server's DH answer and to encrypt the client's DH-inner
// reply.
func KeyFromNonces(newNonce [32]byte, serverNonce [16]byte) (key, iv [32]byte) {
	t1 := SHA1(newNonce[:], serverNonce[:])
	t2 := SHA1(serverNonce[:], newNonce[:])
	t3 := SHA1(newNonce[:], newNonce[:])

	copy(key[:20], t1[:])
	copy(key[20:32], t2[:12])

	copy(iv[:8], t2[12:20])
	copy(iv[8:28], t3[:])
	copy(iv[28:32], newNonce[:4])
	return key, iv
}

// FirstSalt computes the initial server salt:
// new_nonce[0:8] XOR server_nonce[0:8], interpreted little-endian.
func FirstSalt(newNonce [32]byte, serverNonce [16]byte) int64 {
	var out [8]byte
	xor.Bytes(out[:], newNonce[:8], serverNonce[:8])
	return int64(
		uint64(out[0]) | uint64(out[1])<<8 | uint64(out[2])<<16 | uint64(out[3])<<24 |
			uint64(out[4])<<32 | uint64(out[5])<<40 | uint64(out[6])<<48 | uint64(out[7])<<56,
	)
}
