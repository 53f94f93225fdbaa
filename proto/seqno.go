package proto

// SeqNoGen encodes the MTProto seq_no field: a
// content-related message (an RPC call) consumes a counter slot and is
// tagged odd; a content-unrelated message (ack, pong) reuses the current
// counter value and is tagged even, without advancing it.
//
// The zero value is ready to use, starting at counter 0.
type SeqNoGen struct {
	contentCounter uint32
}

// NextContentRelated returns the seq_no for a content-related message and
// advances the counter.
func (g *SeqNoGen) NextContentRelated() int32 {
	n := g.contentCounter
	g.contentCounter++
	return int32(n<<1) | 1
}

// NextContentUnrelated returns the seq_no for a content-unrelated message
// without advancing the counter.
func (g *SeqNoGen) NextContentUnrelated() int32 {
	return int32(g.contentCounter << 1)
}

// ContentCounter returns the current counter value, used by session
// snapshot/restore.
func (g *SeqNoGen) ContentCounter() uint32 { return g.contentCounter }

// SetContentCounter restores the counter from a session snapshot.
func (g *SeqNoGen) SetContentCounter(v uint32) { g.contentCounter = v }

// IsContentRelated reports whether seqNo's low bit marks it content-related.
func IsContentRelated(seqNo int32) bool { return seqNo&1 == 1 }
