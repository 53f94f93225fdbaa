package crypto

import (
	"crypto/sha1"  //nolint:gosec // MTProto's own key-derivation chain mandates SHA-1, not a choice of ours.
	"crypto/sha256"
)

// SHA1 hashes the concatenation of parts, returning the 20-byte digest.
// The general-purpose primitive itself is out of this module's scope (it is
// MTProto's own mandated hash, consumed as-is); this helper just avoids
// repeating the concatenate-then-hash dance at every call site.
func SHA1(parts ...[]byte) [20]byte {
	h := sha1.New()
	for _, p := range parts {
		h.Write(p) //nolint:errcheck // hash.Hash.Write never errors.
	}
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SHA256 hashes the concatenation of parts, returning the 32-byte digest.
func SHA256(parts ...[]byte) [32]byte {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p) //nolint:errcheck // hash.Hash.Write never errors.
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
