// Package bin implements the little-endian primitive buffer MTProto framing
// is built out of: longs, ints, raw bytes and CRC32 constructor IDs. It does
// not know about the TL schema — encoding/decoding named constructors is the
// generated tg package's job (out of scope for the session core), this only
// provides the primitives that job is built from, and which the core itself
// needs for its own fixed-layout framing (auth_key_id, msg_key, msg_id...).
package bin

import "github.com/go-faster/errors"

// Buffer is a growable little-endian byte buffer with TL-primitive
// accessors. The zero value is an empty, ready to use buffer.
type Buffer struct {
	Buf []byte
}

// NewBuffer creates a Buffer wrapping buf (not copied).
func NewBuffer(buf []byte) *Buffer {
	return &Buffer{Buf: buf}
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int { return len(b.Buf) }

// Reset empties the buffer, keeping the underlying array.
func (b *Buffer) Reset() { b.Buf = b.Buf[:0] }

// ResetTo replaces the buffer contents with buf.
func (b *Buffer) ResetTo(buf []byte) { b.Buf = buf }

// Raw returns the unread bytes without consuming them.
func (b *Buffer) Raw() []byte { return b.Buf }

// Skip discards n unread bytes.
func (b *Buffer) Skip(n int) error {
	if n < 0 || n > len(b.Buf) {
		return errors.Errorf("skip %d: buffer has %d bytes", n, len(b.Buf))
	}
	b.Buf = b.Buf[n:]
	return nil
}

// PutBytesRaw appends p verbatim, with no length prefix.
func (b *Buffer) PutBytesRaw(p []byte) { b.Buf = append(b.Buf, p...) }

// PutUint32 appends a little-endian uint32 (used for CRC32 constructor IDs).
func (b *Buffer) PutUint32(v uint32) {
	b.Buf = append(b.Buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// PutInt32 appends a little-endian int32.
func (b *Buffer) PutInt32(v int32) { b.PutUint32(uint32(v)) }

// PutUint64 appends a little-endian uint64.
func (b *Buffer) PutUint64(v uint64) {
	b.Buf = append(b.Buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56),
	)
}

// PutLong appends a little-endian int64 ("long" in TL terms).
func (b *Buffer) PutLong(v int64) { b.PutUint64(uint64(v)) }

// PutDouble appends a little-endian IEEE-754 double.
func (b *Buffer) PutDouble(v float64) { b.PutUint64(mathFloatBits(v)) }

// PutInt128 appends a 16-byte value verbatim (used for nonces).
func (b *Buffer) PutInt128(v [16]byte) { b.Buf = append(b.Buf, v[:]...) }

// PutInt256 appends a 32-byte value verbatim (used for new_nonce).
func (b *Buffer) PutInt256(v [32]byte) { b.Buf = append(b.Buf, v[:]...) }

// PutBytes appends a TL "bytes" value: a length prefix followed by the
// payload and padding to a multiple of 4 bytes, per TL's bare-bytes rule.
func (b *Buffer) PutBytes(v []byte) {
	n := len(v)
	switch {
	case n <= 253:
		b.Buf = append(b.Buf, byte(n))
	default:
		b.Buf = append(b.Buf, 254, byte(n), byte(n>>8), byte(n>>16))
	}
	b.Buf = append(b.Buf, v...)
	if pad := tlPad(len(v) + tlPrefixLen(n)); pad > 0 {
		b.Buf = append(b.Buf, make([]byte, pad)...)
	}
}

// PutString appends a TL "string" value using the same encoding as PutBytes.
func (b *Buffer) PutString(v string) { b.PutBytes([]byte(v)) }

func tlPrefixLen(n int) int {
	if n <= 253 {
		return 1
	}
	return 4
}

func tlPad(total int) int {
	if rem := total % 4; rem != 0 {
		return 4 - rem
	}
	return 0
}

// Uint32 consumes and returns a little-endian uint32.
func (b *Buffer) Uint32() (uint32, error) {
	if len(b.Buf) < 4 {
		return 0, errors.New("bin: buffer too short for uint32")
	}
	v := uint32(b.Buf[0]) | uint32(b.Buf[1])<<8 | uint32(b.Buf[2])<<16 | uint32(b.Buf[3])<<24
	b.Buf = b.Buf[4:]
	return v, nil
}

// Int32 consumes and returns a little-endian int32.
func (b *Buffer) Int32() (int32, error) {
	v, err := b.Uint32()
	return int32(v), err
}

// Uint64 consumes and returns a little-endian uint64.
func (b *Buffer) Uint64() (uint64, error) {
	if len(b.Buf) < 8 {
		return 0, errors.New("bin: buffer too short for uint64")
	}
	v := uint64(b.Buf[0]) | uint64(b.Buf[1])<<8 | uint64(b.Buf[2])<<16 | uint64(b.Buf[3])<<24 |
		uint64(b.Buf[4])<<32 | uint64(b.Buf[5])<<40 | uint64(b.Buf[6])<<48 | uint64(b.Buf[7])<<56
	b.Buf = b.Buf[8:]
	return v, nil
}

// Long consumes and returns a little-endian int64.
func (b *Buffer) Long() (int64, error) {
	v, err := b.Uint64()
	return int64(v), err
}

// Double consumes and returns a little-endian IEEE-754 double.
func (b *Buffer) Double() (float64, error) {
	v, err := b.Uint64()
	if err != nil {
		return 0, err
	}
	return mathFloatFromBits(v), nil
}

// Int128 consumes and returns a 16-byte value.
func (b *Buffer) Int128() ([16]byte, error) {
	var out [16]byte
	if len(b.Buf) < 16 {
		return out, errors.New("bin: buffer too short for int128")
	}
	copy(out[:], b.Buf[:16])
	b.Buf = b.Buf[16:]
	return out, nil
}

// Int256 consumes and returns a 32-byte value.
func (b *Buffer) Int256() ([32]byte, error) {
	var out [32]byte
	if len(b.Buf) < 32 {
		return out, errors.New("bin: buffer too short for int256")
	}
	copy(out[:], b.Buf[:32])
	b.Buf = b.Buf[32:]
	return out, nil
}

// Bytes consumes and returns a TL "bytes" value.
func (b *Buffer) Bytes() ([]byte, error) {
	if len(b.Buf) < 1 {
		return nil, errors.New("bin: buffer empty, expected bytes length")
	}
	var n, prefix int
	switch b.Buf[0] {
	case 254:
		if len(b.Buf) < 4 {
			return nil, errors.New("bin: buffer too short for long bytes length")
		}
		n = int(b.Buf[1]) | int(b.Buf[2])<<8 | int(b.Buf[3])<<16
		prefix = 4
	default:
		n = int(b.Buf[0])
		prefix = 1
	}
	total := prefix + n + tlPad(n+prefix)
	if len(b.Buf) < total {
		return nil, errors.Errorf("bin: buffer has %d bytes, need %d", len(b.Buf), total)
	}
	out := make([]byte, n)
	copy(out, b.Buf[prefix:prefix+n])
	b.Buf = b.Buf[total:]
	return out, nil
}

// String consumes and returns a TL "string" value.
func (b *Buffer) String() (string, error) {
	v, err := b.Bytes()
	return string(v), err
}

// PeekID returns the CRC32 constructor ID at the front of the buffer without
// consuming it.
func (b *Buffer) PeekID() (uint32, error) {
	if len(b.Buf) < 4 {
		return 0, errors.New("bin: buffer too short to peek an ID")
	}
	return uint32(b.Buf[0]) | uint32(b.Buf[1])<<8 | uint32(b.Buf[2])<<16 | uint32(b.Buf[3])<<24, nil
}

// ConsumeID reads and discards the CRC32 constructor ID, verifying it
// matches want.
func (b *Buffer) ConsumeID(want uint32) error {
	got, err := b.Uint32()
	if err != nil {
		return err
	}
	if got != want {
		return errors.Errorf("bin: unexpected constructor 0x%08x, want 0x%08x", got, want)
	}
	return nil
}

// Encoder is implemented by every hand-written wire type in mt.
type Encoder interface {
	Encode(b *Buffer) error
}

// Decoder is implemented by every hand-written wire type in mt.
type Decoder interface {
	Decode(b *Buffer) error
}

// Object is a named, self-describing wire type: it knows its own
// constructor ID, for registries like tmap.
type Object interface {
	Encoder
	Decoder
	TypeID() uint32
}
