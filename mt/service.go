package mt

import "go.mau.fi/mtproto-core/bin"

// MsgsAck acknowledges receipt of one or more message IDs.
type MsgsAck struct {
	MsgIDs []int64
}

// TypeID implements bin.Object.
func (*MsgsAck) TypeID() uint32 { return IDMsgsAck }

// Encode implements bin.Encoder.
func (m *MsgsAck) Encode(b *bin.Buffer) error {
	b.PutUint32(IDMsgsAck)
	putLongVector(b, m.MsgIDs)
	return nil
}

// Decode implements bin.Decoder.
func (m *MsgsAck) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDMsgsAck); err != nil {
		return err
	}
	var err error
	m.MsgIDs, err = getLongVector(b)
	return err
}

// BadMsgNotification reports a malformed or out-of-window message, keyed by
// error_code: 16/17 mean our clock is off and the session's time_offset must
// be recomputed, 32/33 mean seq_no is out of sync, 48 means a salt mismatch.
// Unlike BadServerSalt it carries no replacement salt.
type BadMsgNotification struct {
	BadMsgID    int64
	BadMsgSeqno int32
	ErrorCode   int32
}

// TypeID implements bin.Object.
func (*BadMsgNotification) TypeID() uint32 { return IDBadMsgNotification }

// Encode implements bin.Encoder.
func (m *BadMsgNotification) Encode(b *bin.Buffer) error {
	b.PutUint32(IDBadMsgNotification)
	b.PutLong(m.BadMsgID)
	b.PutInt32(m.BadMsgSeqno)
	b.PutInt32(m.ErrorCode)
	return nil
}

// Decode implements bin.Decoder.
func (m *BadMsgNotification) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDBadMsgNotification); err != nil {
		return err
	}
	var err error
	if m.BadMsgID, err = b.Long(); err != nil {
		return err
	}
	if m.BadMsgSeqno, err = b.Int32(); err != nil {
		return err
	}
	m.ErrorCode, err = b.Int32()
	return err
}

// BadServerSalt tells the client the salt it used is stale and supplies the
// correct one to retry with.
type BadServerSalt struct {
	BadMsgID    int64
	BadMsgSeqno int32
	ErrorCode   int32
	NewServerSalt int64
}

// TypeID implements bin.Object.
func (*BadServerSalt) TypeID() uint32 { return IDBadServerSalt }

// Encode implements bin.Encoder.
func (m *BadServerSalt) Encode(b *bin.Buffer) error {
	b.PutUint32(IDBadServerSalt)
	b.PutLong(m.BadMsgID)
	b.PutInt32(m.BadMsgSeqno)
	b.PutInt32(m.ErrorCode)
	b.PutLong(m.NewServerSalt)
	return nil
}

// Decode implements bin.Decoder.
func (m *BadServerSalt) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDBadServerSalt); err != nil {
		return err
	}
	var err error
	if m.BadMsgID, err = b.Long(); err != nil {
		return err
	}
	if m.BadMsgSeqno, err = b.Int32(); err != nil {
		return err
	}
	if m.ErrorCode, err = b.Int32(); err != nil {
		return err
	}
	m.NewServerSalt, err = b.Long()
	return err
}

// NewSessionCreated is sent once by the server the first time it processes a
// message on a fresh session, carrying the salt the client should adopt.
type NewSessionCreated struct {
	FirstMsgID int64
	UniqueID   int64
	ServerSalt int64
}

// TypeID implements bin.Object.
func (*NewSessionCreated) TypeID() uint32 { return IDNewSessionCreated }

// Encode implements bin.Encoder.
func (m *NewSessionCreated) Encode(b *bin.Buffer) error {
	b.PutUint32(IDNewSessionCreated)
	b.PutLong(m.FirstMsgID)
	b.PutLong(m.UniqueID)
	b.PutLong(m.ServerSalt)
	return nil
}

// Decode implements bin.Decoder.
func (m *NewSessionCreated) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDNewSessionCreated); err != nil {
		return err
	}
	var err error
	if m.FirstMsgID, err = b.Long(); err != nil {
		return err
	}
	if m.UniqueID, err = b.Long(); err != nil {
		return err
	}
	m.ServerSalt, err = b.Long()
	return err
}

// Ping is a keepalive request, sendable by either side.
type Ping struct {
	PingID int64
}

// TypeID implements bin.Object.
func (*Ping) TypeID() uint32 { return IDPing }

// Encode implements bin.Encoder.
func (m *Ping) Encode(b *bin.Buffer) error {
	b.PutUint32(IDPing)
	b.PutLong(m.PingID)
	return nil
}

// Decode implements bin.Decoder.
func (m *Ping) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDPing); err != nil {
		return err
	}
	var err error
	m.PingID, err = b.Long()
	return err
}

// Pong answers a Ping.
type Pong struct {
	MsgID  int64
	PingID int64
}

// TypeID implements bin.Object.
func (*Pong) TypeID() uint32 { return IDPong }

// Encode implements bin.Encoder.
func (m *Pong) Encode(b *bin.Buffer) error {
	b.PutUint32(IDPong)
	b.PutLong(m.MsgID)
	b.PutLong(m.PingID)
	return nil
}

// Decode implements bin.Decoder.
func (m *Pong) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDPong); err != nil {
		return err
	}
	var err error
	if m.MsgID, err = b.Long(); err != nil {
		return err
	}
	m.PingID, err = b.Long()
	return err
}

// GzipPacked wraps a gzip-compressed inner message body, decompressed and
// redispatched in place of the wrapper.
type GzipPacked struct {
	PackedData []byte
}

// TypeID implements bin.Object.
func (*GzipPacked) TypeID() uint32 { return IDGzipPacked }

// Encode implements bin.Encoder.
func (m *GzipPacked) Encode(b *bin.Buffer) error {
	b.PutUint32(IDGzipPacked)
	b.PutBytes(m.PackedData)
	return nil
}

// Decode implements bin.Decoder.
func (m *GzipPacked) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDGzipPacked); err != nil {
		return err
	}
	var err error
	m.PackedData, err = b.Bytes()
	return err
}

// RPCResult carries the response to an earlier request, keyed by the
// original request's msg_id.
type RPCResult struct {
	ReqMsgID int64
	Result   []byte
}

// TypeID implements bin.Object.
func (*RPCResult) TypeID() uint32 { return IDRPCResult }

// Encode implements bin.Encoder.
func (m *RPCResult) Encode(b *bin.Buffer) error {
	b.PutUint32(IDRPCResult)
	b.PutLong(m.ReqMsgID)
	b.PutBytesRaw(m.Result)
	return nil
}

// Decode implements bin.Decoder.
//
// Result is left as the raw remaining bytes of the frame: decoding the
// actual RPC response body belongs to the (out of scope) generated API
// layer, which knows the shape of the originating request.
func (m *RPCResult) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDRPCResult); err != nil {
		return err
	}
	var err error
	if m.ReqMsgID, err = b.Long(); err != nil {
		return err
	}
	m.Result = append([]byte(nil), b.Raw()...)
	return b.Skip(len(b.Raw()))
}

// RPCError is an error response, usually nested inside RPCResult.Result.
type RPCError struct {
	ErrorCode    int32
	ErrorMessage string
}

// TypeID implements bin.Object.
func (*RPCError) TypeID() uint32 { return IDRPCError }

// Encode implements bin.Encoder.
func (m *RPCError) Encode(b *bin.Buffer) error {
	b.PutUint32(IDRPCError)
	b.PutInt32(m.ErrorCode)
	b.PutString(m.ErrorMessage)
	return nil
}

// Decode implements bin.Decoder.
func (m *RPCError) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDRPCError); err != nil {
		return err
	}
	var err error
	if m.ErrorCode, err = b.Int32(); err != nil {
		return err
	}
	m.ErrorMessage, err = b.String()
	return err
}

// FutureSalt is one entry of a FutureSalts response.
type FutureSalt struct {
	ValidSince int32
	ValidUntil int32
	Salt       int64
}

// TypeID implements bin.Object.
func (*FutureSalt) TypeID() uint32 { return IDFutureSalt }

// Encode implements bin.Encoder.
func (m *FutureSalt) Encode(b *bin.Buffer) error {
	b.PutUint32(IDFutureSalt)
	b.PutInt32(m.ValidSince)
	b.PutInt32(m.ValidUntil)
	b.PutLong(m.Salt)
	return nil
}

// Decode implements bin.Decoder.
func (m *FutureSalt) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDFutureSalt); err != nil {
		return err
	}
	var err error
	if m.ValidSince, err = b.Int32(); err != nil {
		return err
	}
	if m.ValidUntil, err = b.Int32(); err != nil {
		return err
	}
	m.Salt, err = b.Long()
	return err
}

// FutureSalts answers a get_future_salts request with a batch of upcoming
// salts, for salt rotation.
type FutureSalts struct {
	ReqMsgID int64
	Now      int32
	Salts    []FutureSalt
}

// TypeID implements bin.Object.
func (*FutureSalts) TypeID() uint32 { return IDFutureSalts }

// Encode implements bin.Encoder.
func (m *FutureSalts) Encode(b *bin.Buffer) error {
	b.PutUint32(IDFutureSalts)
	b.PutLong(m.ReqMsgID)
	b.PutInt32(m.Now)
	const vectorID = 0x1cb5c415
	b.PutUint32(vectorID)
	b.PutInt32(int32(len(m.Salts)))
	for _, s := range m.Salts {
		// FutureSalt here is encoded bare (no constructor ID repeated
		// per element), matching the TL vector-of-bare-struct layout.
		b.PutInt32(s.ValidSince)
		b.PutInt32(s.ValidUntil)
		b.PutLong(s.Salt)
	}
	return nil
}

// Decode implements bin.Decoder.
func (m *FutureSalts) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDFutureSalts); err != nil {
		return err
	}
	var err error
	if m.ReqMsgID, err = b.Long(); err != nil {
		return err
	}
	if m.Now, err = b.Int32(); err != nil {
		return err
	}
	const vectorID = 0x1cb5c415
	if err := b.ConsumeID(vectorID); err != nil {
		return err
	}
	n, err := b.Int32()
	if err != nil {
		return err
	}
	m.Salts = make([]FutureSalt, 0, n)
	for i := int32(0); i < n; i++ {
		var s FutureSalt
		if s.ValidSince, err = b.Int32(); err != nil {
			return err
		}
		if s.ValidUntil, err = b.Int32(); err != nil {
			return err
		}
		if s.Salt, err = b.Long(); err != nil {
			return err
		}
		m.Salts = append(m.Salts, s)
	}
	return nil
}
