package mtproto

// MtpMessage is one decrypted, dispatch-classified message delivered to
// the host.
type MtpMessage struct {
	MsgID int64
	SeqNo int32
	Body  []byte
}

// PackItem is one entry of a PackContainer call: a serialized TL body and
// whether it is content-related (consumes a seq_no counter slot).
type PackItem struct {
	Body           []byte
	ContentRelated bool
}
