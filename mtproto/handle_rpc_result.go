package mtproto

import (
	"go.uber.org/zap"

	"go.mau.fi/mtproto-core/bin"
	"go.mau.fi/mtproto-core/mt"
)

// handleRPCResult logs the correlating req_msg_id. Delivering the result
// to the pending-request table it answers is the host's job, so the
// message is delivered unmodified alongside this log line.
func (s *EncryptedSession) handleRPCResult(body []byte) {
	var res mt.RPCResult
	if err := res.Decode(bin.NewBuffer(body)); err != nil {
		s.opts.Logger.Warn("failed to decode rpc_result for logging", zap.Error(err))
		return
	}
	s.opts.Logger.Debug("rpc_result", zap.Int64("req_msg_id", res.ReqMsgID))
}
