// Package session implements the persisted snapshot format for an
// EncryptedSession and the Loader/Storage contract the host uses to save
// and restore it across process restarts.
package session

import (
	"net"

	"github.com/go-faster/errors"

	"go.mau.fi/mtproto-core/crypto"
)

const (
	magic         = 0x4d54504b // "MTPK"
	currentVersion = 1
)

// Data is the full persisted state of one EncryptedSession: everything
// needed to resume sending/receiving without repeating the handshake.
type Data struct {
	DCID int32
	IP   net.IP
	Port uint16

	AuthKey crypto.AuthKey

	Salt           int64
	SessionID      int64
	TimeOffset     int32
	ContentCounter uint32
	LastMsgID      int64
}

// Marshal encodes Data into the versioned binary layout:
//
//	magic(4) || version(2) || dc_id(4) || ip(16) || port(2) || auth_key(256)
//	  || salt(8) || session_id(8) || time_offset(4) || content_counter(4)
//	  || last_msg_id(8)
func (d *Data) Marshal() ([]byte, error) {
	ip16 := d.IP.To16()
	if ip16 == nil {
		return nil, errors.Errorf("session: IP %v is neither IPv4 nor IPv6", d.IP)
	}

	buf := make([]byte, 0, 4+2+4+16+2+256+8+8+4+4+8)
	buf = putU32(buf, magic)
	buf = putU16(buf, currentVersion)
	buf = putI32(buf, d.DCID)
	buf = append(buf, ip16...)
	buf = putU16(buf, d.Port)
	keyBytes := d.AuthKey.Bytes()
	buf = append(buf, keyBytes[:]...)
	buf = putI64(buf, d.Salt)
	buf = putI64(buf, d.SessionID)
	buf = putI32(buf, d.TimeOffset)
	buf = putU32(buf, d.ContentCounter)
	buf = putI64(buf, d.LastMsgID)
	return buf, nil
}

// Unmarshal decodes Data from the layout Marshal produces.
func Unmarshal(raw []byte) (*Data, error) {
	const wantLen = 4 + 2 + 4 + 16 + 2 + 256 + 8 + 8 + 4 + 4 + 8
	if len(raw) != wantLen {
		return nil, errors.Errorf("session: snapshot has %d bytes, want %d", len(raw), wantLen)
	}
	r := raw

	gotMagic, r := getU32(r)
	if gotMagic != magic {
		return nil, errors.Errorf("session: bad magic 0x%08x", gotMagic)
	}
	version, r := getU16(r)
	if version != currentVersion {
		return nil, errors.Errorf("session: unsupported snapshot version %d", version)
	}

	var d Data
	var dcID uint32
	dcID, r = getU32(r)
	d.DCID = int32(dcID)

	ipBytes := append(net.IP(nil), r[:16]...)
	d.IP = ipBytes
	r = r[16:]

	d.Port, r = getU16(r)

	var keyBytes [256]byte
	copy(keyBytes[:], r[:256])
	d.AuthKey = crypto.NewAuthKey(keyBytes)
	r = r[256:]

	var salt uint64
	salt, r = getU64(r)
	d.Salt = int64(salt)

	var sid uint64
	sid, r = getU64(r)
	d.SessionID = int64(sid)

	var offset uint32
	offset, r = getU32(r)
	d.TimeOffset = int32(offset)

	d.ContentCounter, r = getU32(r)

	var lastMsgID uint64
	lastMsgID, r = getU64(r)
	d.LastMsgID = int64(lastMsgID)

	return &d, nil
}

func putU16(buf []byte, v uint16) []byte { return append(buf, byte(v), byte(v>>8)) }
func putU32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
func putI32(buf []byte, v int32) []byte { return putU32(buf, uint32(v)) }
func putI64(buf []byte, v int64) []byte {
	u := uint64(v)
	return append(buf, byte(u), byte(u>>8), byte(u>>16), byte(u>>24), byte(u>>32), byte(u>>40), byte(u>>48), byte(u>>56))
}

func getU16(b []byte) (uint16, []byte) {
	return uint16(b[0]) | uint16(b[1])<<8, b[2:]
}
func getU32(b []byte) (uint32, []byte) {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, b[4:]
}
func getU64(b []byte) (uint64, []byte) {
	v := uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
	return v, b[8:]
}
