package crypto

// AuthKey is the 256-byte (2048-bit) secret derived by the DH handshake.
// It is immutable once constructed; AuxHash and KeyID are pre-computed from
// SHA1(data) at construction time since both are needed on every
// encrypt/decrypt call.
type AuthKey struct {
	data    [256]byte
	auxHash [8]byte
	keyID   [8]byte
}

// NewAuthKey wraps raw 256-byte DH output.
func NewAuthKey(data [256]byte) AuthKey {
	sha := SHA1(data[:])
	var ak AuthKey
	ak.data = data
	copy(ak.auxHash[:], sha[:8])
	// auth_key_id is the low 64 bits of SHA1(auth_key); for a big-endian
	// 160-bit digest "low 64 bits" means its last 8 bytes.
	copy(ak.keyID[:], sha[12:20])
	return ak
}

// Bytes returns the raw 256-byte representation.
func (k AuthKey) Bytes() [256]byte { return k.data }

// KeyID returns the 8-byte auth_key_id used to tag every encrypted frame.
func (k AuthKey) KeyID() [8]byte { return k.keyID }

// AuxHash returns SHA1(auth_key)[0:8], used by CalcNewNonceHash.
func (k AuthKey) AuxHash() [8]byte { return k.auxHash }

// IsZero reports whether this is the zero-value AuthKey (never derived).
func (k AuthKey) IsZero() bool { return k.keyID == [8]byte{} && k.data == [256]byte{} }

// CalcNewNonceHash computes the new_nonce_hashN value the server's
// dh_gen_ok/retry/fail responses must match:
//
//	SHA1(new_nonce || number || aux_hash)[4:20]
func (k AuthKey) CalcNewNonceHash(newNonce [32]byte, number byte) [16]byte {
	sha := SHA1(newNonce[:], []byte{number}, k.auxHash[:])
	var out [16]byte
	copy(out[:], sha[4:20])
	return out
}
