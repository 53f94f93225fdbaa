// Package proto implements the small pieces of MTProto bookkeeping shared
// by plaintext and encrypted sessions: message ID allocation and sequence
// number encoding.
package proto

import "go.mau.fi/mtproto-core/clock"

// MessageIDGen allocates strictly monotonically increasing msg_id values
// for client-generated messages, combining wall-clock time with a
// within-second counter the way the protocol requires: the low two bits of
// every client msg_id must be zero, so each new allocation advances by at
// least 4.
//
// Create one with NewMessageIDGen, which defaults a nil Clock to
// clock.System. The zero value has no Clock, and Next panics on it.
type MessageIDGen struct {
	clock       clock.Clock
	timeOffset  int64 // nanoseconds, added to local time before deriving now_ns
	lastMsgID   int64
}

// NewMessageIDGen creates a generator using c for wall-clock time. A nil c
// defaults to clock.System.
func NewMessageIDGen(c clock.Clock) *MessageIDGen {
	if c == nil {
		c = clock.System
	}
	return &MessageIDGen{clock: c}
}

// SetTimeOffset updates the offset (in nanoseconds) added to the local
// clock when computing candidate msg_ids; called with a corrected value
// after a bad_msg_notification code 16/17.
func (g *MessageIDGen) SetTimeOffset(offsetNanos int64) {
	g.timeOffset = offsetNanos
}

// TimeOffset returns the current offset in nanoseconds.
func (g *MessageIDGen) TimeOffset() int64 { return g.timeOffset }

// ResetLastMsgID clears the monotonicity floor, used when a
// bad_msg_notification code 16/17 forces a fresh time_offset.
func (g *MessageIDGen) ResetLastMsgID() { g.lastMsgID = 0 }

// Next allocates the next msg_id:
//
//	now_ns = local_unix_nanos() + time_offset_nanos
//	candidate = (now_ns / 1e9) << 32 | (uint32((now_ns % 1e9) * 2^32 / 1e9) with the low 2 bits cleared)
//	if candidate <= last_msg_id { candidate = last_msg_id + 4 }
//	last_msg_id = candidate
func (g *MessageIDGen) Next() int64 {
	nowNanos := g.clock.Now().UnixNano() + g.timeOffset
	seconds := nowNanos / 1_000_000_000
	fraction := nowNanos % 1_000_000_000
	// Scale the sub-second fraction into a 32-bit field and clear the low
	// two bits, which the protocol reserves (client msg_ids always end in
	// 0b00).
	subSecond := int64(uint32(fraction*(1<<32)/1_000_000_000) &^ 0b11)
	candidate := (seconds << 32) | subSecond
	if candidate <= g.lastMsgID {
		candidate = g.lastMsgID + 4
	}
	g.lastMsgID = candidate
	return candidate
}

// LastMsgID returns the most recently allocated msg_id, or 0 if none has
// been allocated yet.
func (g *MessageIDGen) LastMsgID() int64 { return g.lastMsgID }

// SetLastMsgID restores the monotonicity floor from a session snapshot, so
// Next continues strictly above the value the session had before it was
// persisted.
func (g *MessageIDGen) SetLastMsgID(v int64) { g.lastMsgID = v }
