package mt

import (
	"github.com/go-faster/errors"

	"go.mau.fi/mtproto-core/bin"
)

// ContainedMessage is one bare entry inside a MsgContainer: msg_id, seqno,
// and the raw encoded body (itself a full TL object starting with its own
// constructor ID).
type ContainedMessage struct {
	MsgID int64
	Seqno int32
	Body  []byte
}

func (m *ContainedMessage) encode(b *bin.Buffer) {
	b.PutLong(m.MsgID)
	b.PutInt32(m.Seqno)
	b.PutInt32(int32(len(m.Body)))
	b.PutBytesRaw(m.Body)
}

func (m *ContainedMessage) decode(b *bin.Buffer) error {
	var err error
	if m.MsgID, err = b.Long(); err != nil {
		return err
	}
	if m.Seqno, err = b.Int32(); err != nil {
		return err
	}
	n, err := b.Int32()
	if err != nil {
		return err
	}
	if n < 0 || int(n) > b.Len() {
		return errors.Errorf("mt: msg_container entry length %d exceeds remaining %d bytes", n, b.Len())
	}
	m.Body = append([]byte(nil), b.Raw()[:n]...)
	return b.Skip(int(n))
}

// MsgContainer bundles several messages into a single outer frame. Unlike
// the TL "bytes" fields of the handshake types, its inner messages are
// length-prefixed raw bodies: there is no padding between entries.
type MsgContainer struct {
	Messages []ContainedMessage
}

// TypeID implements bin.Object.
func (*MsgContainer) TypeID() uint32 { return IDMsgContainer }

// Encode implements bin.Encoder.
func (c *MsgContainer) Encode(b *bin.Buffer) error {
	b.PutUint32(IDMsgContainer)
	b.PutInt32(int32(len(c.Messages)))
	for i := range c.Messages {
		c.Messages[i].encode(b)
	}
	return nil
}

// Decode implements bin.Decoder.
func (c *MsgContainer) Decode(b *bin.Buffer) error {
	if err := b.ConsumeID(IDMsgContainer); err != nil {
		return err
	}
	n, err := b.Int32()
	if err != nil {
		return err
	}
	c.Messages = make([]ContainedMessage, n)
	for i := int32(0); i < n; i++ {
		if err := c.Messages[i].decode(b); err != nil {
			return err
		}
	}
	return nil
}
