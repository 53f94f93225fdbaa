package mtproto

import (
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/mt"
)

// handlePong logs a pong for diagnostics. Matching it against a pending
// ping belongs to the host, which receives the message unmodified
// alongside this log line.
func (s *EncryptedSession) handlePong(body []byte) {
	var pong mt.Pong
	if err := pong.Decode(bin.NewBuffer(body)); err != nil {
		s.opts.Logger.Warn("failed to decode pong for logging", zap.Error(err))
		return
	}
	s.opts.Logger.Debug("pong", zap.Int64("ping_id", pong.PingID), zap.Int64("msg_id", pong.MsgID))
}
