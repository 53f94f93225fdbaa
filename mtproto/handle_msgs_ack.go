package mtproto

import (
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/mt"
)

// handleMsgsAck logs which msg_ids the server acknowledged. Marking them
// acknowledged in a pending-request table belongs to the host, which
// receives the message unmodified alongside this log line.
func (s *EncryptedSession) handleMsgsAck(body []byte) {
	var ack mt.MsgsAck
	if err := ack.Decode(bin.NewBuffer(body)); err != nil {
		s.opts.Logger.Warn("failed to decode msgs_ack for logging", zap.Error(err))
		return
	}
	s.opts.Logger.Debug("msgs_ack", zap.Int("count", len(ack.MsgIDs)))
}
